package crawler

import (
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	quantityRe    = regexp.MustCompile(`\d+`)
	errNoQuantity = errors.New("quantity element not found")
)

// ExtractQuantity returns the first run of digits in text, or 0 when there is none.
func ExtractQuantity(text string) int {
	m := quantityRe.FindString(text)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// QuantityText returns the text of the first element matching quantitySel inside rowHTML.
func QuantityText(rowHTML, quantitySel string) (string, error) {
	root, err := html.Parse(strings.NewReader(rowHTML))
	if err != nil {
		return "", err
	}
	q := goquery.NewDocumentFromNode(root).Find(quantitySel).First()
	if q.Length() == 0 {
		return "", errNoQuantity
	}
	return strings.TrimSpace(q.Text()), nil
}

// Summarize counts the rows with a positive quantity and sums those quantities.
// Rows that cannot be read are skipped one by one.
func Summarize(rows []Row, quantitySel string, logger *slog.Logger) (stores, total int) {
	if logger == nil {
		logger = slog.Default()
	}
	for i, row := range rows {
		if row.Err != nil {
			logger.Debug("skipping store row", "index", i, "error", row.Err)
			continue
		}
		text, err := QuantityText(row.HTML, quantitySel)
		if err != nil {
			logger.Debug("skipping store row", "index", i, "error", err)
			continue
		}
		if qty := ExtractQuantity(text); qty > 0 {
			stores++
			total += qty
		}
	}
	return stores, total
}
