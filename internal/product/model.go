package product

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Delimiters used to store list columns as text.
const (
	sizeSeparator  = ","
	imageSeparator = "|"
)

type Product struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images"`
	Sizes       []string        `json:"sizes"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// HasSize reports whether size is offered. Products without sizes accept only "".
func (p *Product) HasSize(size string) bool {
	if len(p.Sizes) == 0 {
		return size == ""
	}
	return slices.ContainsFunc(p.Sizes, func(s string) bool {
		return strings.EqualFold(s, size)
	})
}

type SortField string

const (
	SortFieldCreatedAt SortField = "created_at"
	SortFieldPrice     SortField = "price"
	SortFieldName      SortField = "name"
)

type SortDirection string

const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

type ListOptions struct {
	Search          string
	Category        string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	InStock         bool
	IncludeInactive bool
	SortField       SortField
	SortDirection   SortDirection
	Page            int
	Limit           int
	IncludeCount    bool
}

type ListResult struct {
	Items      []*Product `json:"items"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalCount *int       `json:"total_count,omitempty"`
}

type CreateParams struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images"`
	Sizes       []string        `json:"sizes"`
}

type UpdateParams struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Images      *[]string        `json:"images"`
	Sizes       *[]string        `json:"sizes"`
	Active      *bool            `json:"active"`
}

func (p UpdateParams) empty() bool {
	return p.Name == nil && p.Description == nil && p.Category == nil &&
		p.Price == nil && p.Images == nil && p.Sizes == nil && p.Active == nil
}

type PurchasedProduct struct {
	Product         *Product  `json:"product"`
	TotalQuantity   int       `json:"total_quantity"`
	LastPurchasedAt time.Time `json:"last_purchased_at"`
}
