package domain

import "github.com/shopspring/decimal"

// Category groups menu items for browsing.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// MenuItem is a catalog entry. The cart references items by id only and
// snapshots name and price when a line is added.
type MenuItem struct {
	ID          string          `json:"id"`
	CategoryID  string          `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
}
