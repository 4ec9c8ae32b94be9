package rest

import (
	"net/http"
	"strings"

	"storefront-be/internal/user"
	"storefront-be/internal/utils"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.Users.List(r.Context(), user.ListFilter{
		Search: strings.TrimSpace(q.Get("q")),
		Status: user.Status(strings.ToLower(q.Get("status"))),
		Role:   user.Role(strings.ToUpper(q.Get("role"))),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w, "invalid user id")
		return
	}

	var in struct {
		Blocked   bool `json:"blocked"`
		Suspended bool `json:"suspended"`
	}
	if err := utils.DecodeJSON(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}

	u, err := h.Users.SetStatus(r.Context(), id, in.Blocked, in.Suspended)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) DashboardOverview(w http.ResponseWriter, r *http.Request) {
	o, err := h.Dashboard.Overview(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) DashboardSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Dashboard.Sales(r.Context(), queryInt(r, "days"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"items": sales})
}

func (h *Handler) DashboardTopProducts(w http.ResponseWriter, r *http.Request) {
	top, err := h.Dashboard.TopProducts(r.Context(), queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"items": top})
}
