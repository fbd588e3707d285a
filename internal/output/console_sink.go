package output

import (
	"fmt"
	"io"
	"stock-crawler/pkg/models"
	"strings"
)

const (
	productLabel = "товар"
	storesLabel  = "количество магазинов с ненулевым остатком"
	totalLabel   = "количество товаров во всех магазинах"
)

var separator = strings.Repeat("-", 30)

// ConsoleSink implements engine.Sink by printing the fixed report format.
type ConsoleSink struct {
	w io.Writer
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (s *ConsoleSink) Save(r models.StockResult) error {
	_, err := fmt.Fprintf(s.w, "%s\n%s\n%s\n%d\n%s\n%d\n%s\n",
		productLabel, r.URL,
		storesLabel, r.StoreCount,
		totalLabel, r.TotalQuantity,
		separator,
	)
	return err
}

func (s *ConsoleSink) Fail(url string, err error) error {
	_, werr := fmt.Fprintf(s.w, "Ошибка при обработке %s: %v\n", url, err)
	return werr
}
