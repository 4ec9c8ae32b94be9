package rest

import (
	"net/http"
	"strings"

	"storefront-be/internal/product"
	"storefront-be/internal/utils"

	"github.com/shopspring/decimal"
)

// listOptions reads the catalog query string shared by the storefront and admin lists.
func listOptions(r *http.Request) (product.ListOptions, error) {
	q := r.URL.Query()
	opts := product.ListOptions{
		Search:        strings.TrimSpace(q.Get("q")),
		Category:      strings.TrimSpace(q.Get("category")),
		InStock:       q.Get("in_stock") == "true",
		SortField:     product.SortField(q.Get("sort")),
		SortDirection: product.SortDirection(strings.ToLower(q.Get("order"))),
		Page:          queryInt(r, "page"),
		Limit:         queryInt(r, "limit"),
		IncludeCount:  q.Get("count") != "false",
	}

	for name, dst := range map[string]**decimal.Decimal{
		"min_price": &opts.MinPrice,
		"max_price": &opts.MaxPrice,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return opts, product.ErrInvalidProduct
		}
		*dst = &d
	}
	return opts, nil
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		badRequest(w, "invalid price filter")
		return
	}

	res, err := h.Products.List(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}

	p, err := h.Products.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) PurchasedProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.Products.Purchased(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		badRequest(w, "invalid price filter")
		return
	}
	opts.IncludeInactive = r.URL.Query().Get("include_inactive") != "false"

	res, err := h.Products.List(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in product.CreateParams
	if err := utils.DecodeJSON(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}

	p, err := h.Products.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}

	var in product.UpdateParams
	if err := utils.DecodeJSON(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}

	p, err := h.Products.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}

	if err := h.Products.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}

	var in struct {
		Delta int `json:"delta"`
	}
	if err := utils.DecodeJSON(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}

	p, err := h.Products.AdjustStock(r.Context(), id, in.Delta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := h.LowStockThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		threshold = queryInt(r, "threshold")
	}

	items, err := h.Products.LowStock(r.Context(), threshold, queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"threshold": threshold, "items": items})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	res, err := h.Categories.List(r.Context(), r.URL.Query().Get("q"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}
