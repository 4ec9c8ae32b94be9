package rest

import (
	"errors"
	"io"
	"net/http"

	"storefront-be/internal/search"
	"storefront-be/internal/utils"
)

const imageFormField = "image"

func (h *Handler) KeywordSearch(w http.ResponseWriter, r *http.Request) {
	res, err := h.Search.Keyword(r.Context(), r.URL.Query().Get("q"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

// ImageSearch accepts a multipart upload in the "image" field.
func (h *Handler) ImageSearch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, search.MaxImageSize+1<<20)

	file, _, err := r.FormFile(imageFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, search.ErrImageTooLarge)
			return
		}
		badRequest(w, "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, search.MaxImageSize+1))
	if err != nil {
		badRequest(w, "failed to read image")
		return
	}

	results, err := h.Search.Image(r.Context(), data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"items": results})
}
