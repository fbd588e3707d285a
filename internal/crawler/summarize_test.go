package crawler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quantitySel = "div.Map__rests"

func storeRow(qtyText string) Row {
	return Row{HTML: fmt.Sprintf(
		`<div class="VV21_MapPanelShop__Col"><div class="Map__address">ул. Ленина, 1</div><div class="Map__rests">%s</div></div>`,
		qtyText,
	)}
}

func TestExtractQuantity(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"in stock", "В наличии: 5", 5},
		{"no digits", "Нет в наличии", 0},
		{"remainder", "Остаток: 12", 12},
		{"first number wins", "3 шт. из 40", 3},
		{"leading zeros", "007", 7},
		{"zero", "0 шт.", 0},
		{"empty", "", 0},
		{"overflow", "99999999999999999999999", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractQuantity(tt.in))
		})
	}
}

func TestQuantityText(t *testing.T) {
	text, err := QuantityText(storeRow("  Остаток: 12 ").HTML, quantitySel)
	require.NoError(t, err)
	assert.Equal(t, "Остаток: 12", text)

	_, err = QuantityText(`<div class="VV21_MapPanelShop__Col">no rests</div>`, quantitySel)
	assert.ErrorIs(t, err, errNoQuantity)
}

func TestSummarize_Scenario(t *testing.T) {
	rows := []Row{
		storeRow("В наличии: 5"),
		storeRow("Нет в наличии"),
		storeRow("Остаток: 12"),
	}

	stores, total := Summarize(rows, quantitySel, nil)
	assert.Equal(t, 2, stores)
	assert.Equal(t, 17, total)
}

func TestSummarize_SkipsBrokenRows(t *testing.T) {
	rows := []Row{
		storeRow("4"),
		{Err: errors.New("node detached")},
		{HTML: `<div class="VV21_MapPanelShop__Col">closed</div>`},
		storeRow("6"),
	}

	stores, total := Summarize(rows, quantitySel, nil)
	assert.Equal(t, 2, stores)
	assert.Equal(t, 10, total)
}

func TestSummarize_OrderIndependent(t *testing.T) {
	rows := []Row{storeRow("1"), storeRow("0"), storeRow("8"), storeRow("Нет"), storeRow("2")}
	reversed := make([]Row, len(rows))
	for i, r := range rows {
		reversed[len(rows)-1-i] = r
	}

	s1, t1 := Summarize(rows, quantitySel, nil)
	s2, t2 := Summarize(reversed, quantitySel, nil)
	assert.Equal(t, s1, s2)
	assert.Equal(t, t1, t2)
	assert.Equal(t, 3, s1)
	assert.Equal(t, 11, t1)
}

func TestSummarize_Empty(t *testing.T) {
	stores, total := Summarize(nil, quantitySel, nil)
	assert.Zero(t, stores)
	assert.Zero(t, total)
}
