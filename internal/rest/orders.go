package rest

import (
	"net/http"
	"strings"

	"storefront-be/internal/order"
	"storefront-be/internal/utils"
)

func orderFilter(r *http.Request) order.ListFilter {
	q := r.URL.Query()
	return order.ListFilter{
		Status: order.OrderStatus(strings.ToUpper(q.Get("status"))),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	}
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Lines    []order.Line   `json:"lines"`
		Shipping order.Shipping `json:"shipping"`
	}
	if err := utils.DecodeJSON(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}

	o, err := h.Orders.Place(r.Context(), order.PlaceOrderParams{
		UserID:   currentUser(r),
		Lines:    in.Lines,
		Shipping: in.Shipping,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, o)
}

// ListOrders lists the caller's orders. Admins reach every order through the admin routes.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	res, err := h.Orders.List(r.Context(), orderFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	filter := orderFilter(r)
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := utils.ToUint(raw)
		if err != nil {
			badRequest(w, "invalid user_id")
			return
		}
		filter.UserID = id
	}

	res, err := h.Orders.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w, "invalid order id")
		return
	}

	o, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w, "invalid order id")
		return
	}

	o, err := h.Orders.Cancel(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w, "invalid order id")
		return
	}

	var in struct {
		Status string `json:"status"`
	}
	if err := utils.DecodeJSON(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}

	o, err := h.Orders.UpdateStatus(r.Context(), id, order.OrderStatus(strings.ToUpper(in.Status)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}
