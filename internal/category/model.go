package category

import "errors"

var ErrInvalidQuery = errors.New("invalid category query")

// Category is derived from the category column of active products.
type Category struct {
	Name         string `json:"name"`
	ProductCount int    `json:"product_count"`
	InStockCount int    `json:"in_stock_count"`
}

type ListResult struct {
	Items []*Category `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}
