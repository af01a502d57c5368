package handler

import (
	"errors"
	"log"
	"net/http"

	"lumigram/internal/httputil"
	"lumigram/internal/model"
)

type SearchHandler struct {
	searchService SearchService
}

func NewSearchHandler(searchService SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search handles GET /api/search?q=&type=all|hashtag|user
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	resp, err := h.searchService.Search(r.Context(), q.Get("q"), q.Get("type"))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrQueryRequired):
			httputil.WriteBadRequest(w, "Query parameter q is required")
		case errors.Is(err, model.ErrInvalidSearchType):
			httputil.WriteBadRequest(w, "type must be one of all, hashtag, user")
		default:
			log.Printf("[ERROR] Search handler: q=%q err=%v", q.Get("q"), err)
			httputil.WriteInternalError(w, "Search failed")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
