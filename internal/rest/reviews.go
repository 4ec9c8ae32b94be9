package rest

import (
	"net/http"

	"storefront-be/internal/utils"
)

func (h *Handler) RatingSummary(w http.ResponseWriter, r *http.Request) {
	productID, ok := idParam(r, "productID")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}

	s, err := h.Ratings.Summary(r.Context(), productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) MyRating(w http.ResponseWriter, r *http.Request) {
	productID, ok := idParam(r, "productID")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}

	rt, err := h.Ratings.UserRating(r.Context(), currentUser(r), productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rt)
}

func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	productID, ok := idParam(r, "productID")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}

	var in struct {
		Rating int `json:"rating"`
	}
	if err := utils.DecodeJSON(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}

	rt, err := h.Ratings.Rate(r.Context(), currentUser(r), productID, in.Rating)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rt)
}

func (h *Handler) RemoveRating(w http.ResponseWriter, r *http.Request) {
	productID, ok := idParam(r, "productID")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}

	if err := h.Ratings.Remove(r.Context(), currentUser(r), productID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	productID, ok := idParam(r, "productID")
	if !ok {
		badRequest(w, "invalid product id")
		return
	}

	res, err := h.Comments.List(r.Context(), productID, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductID uint   `json:"product_id"`
		Body      string `json:"body"`
	}
	if err := utils.DecodeJSON(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}
	if in.ProductID == 0 {
		badRequest(w, "product_id is required")
		return
	}

	c, err := h.Comments.Create(r.Context(), currentUser(r), in.ProductID, in.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w, "invalid comment id")
		return
	}

	if err := h.Comments.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
