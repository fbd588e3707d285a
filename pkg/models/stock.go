package models

// StockResult is the availability summary for one product page.
type StockResult struct {
	URL           string
	StoreCount    int // stores showing a positive quantity
	TotalQuantity int
}

// Selectors identify the availability panel parts on a product page.
type Selectors struct {
	PanelButton string `yaml:"panel_button"`
	StoreRow    string `yaml:"store_row"`
	Quantity    string `yaml:"quantity"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		PanelButton: "button.js-vv23-product-goto-rests",
		StoreRow:    "div.VV21_MapPanelShop__Col",
		Quantity:    "div.Map__rests",
	}
}
