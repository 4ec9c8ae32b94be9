package rest

import (
	"net/http"

	"storefront-be/internal/buynow"
	"storefront-be/internal/cart"
	"storefront-be/internal/order"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type checkoutRequest struct {
	Shipping order.Shipping `json:"shipping"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.Cart.GetCart(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var in cart.AddToCartParams
	if err := utils.DecodeJSON(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}
	in.UserID = currentUser(r)

	item, err := h.Cart.AddToCart(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := idParam(r, "itemID")
	if !ok {
		badRequest(w, "invalid cart item id")
		return
	}

	var in struct {
		Quantity int `json:"quantity"`
	}
	if err := utils.DecodeJSON(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}

	item, err := h.Cart.UpdateQuantity(r.Context(), currentUser(r), itemID, in.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if item == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	utils.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := idParam(r, "itemID")
	if !ok {
		badRequest(w, "invalid cart item id")
		return
	}

	if err := h.Cart.RemoveFromCart(r.Context(), currentUser(r), itemID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Cart.ClearCart(r.Context(), currentUser(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CheckoutCart(w http.ResponseWriter, r *http.Request) {
	var in checkoutRequest
	if err := utils.DecodeJSON(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}

	o, err := h.Orders.CheckoutCart(r.Context(), currentUser(r), in.Shipping)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, o)
}

func sessionID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	return id, err == nil
}

func (h *Handler) CreateBuyNow(w http.ResponseWriter, r *http.Request) {
	var in buynow.CreateParams
	if err := utils.DecodeJSON(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}
	in.UserID = currentUser(r)

	s, err := h.BuyNow.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, s)
}

func (h *Handler) GetBuyNow(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		writeError(w, r, buynow.ErrSessionNotFound)
		return
	}

	s, err := h.BuyNow.Get(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) CheckoutBuyNow(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		writeError(w, r, buynow.ErrSessionNotFound)
		return
	}

	var in checkoutRequest
	if err := utils.DecodeJSON(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}

	o, err := h.BuyNow.Checkout(r.Context(), currentUser(r), id, in.Shipping)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) CancelBuyNow(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		writeError(w, r, buynow.ErrSessionNotFound)
		return
	}

	if err := h.BuyNow.Cancel(r.Context(), currentUser(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
