package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biterush/campusgrub/internal/catalog"
)

type CatalogHandler struct {
	Catalog *catalog.Service
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/blocks", h.listBlocks)
	r.Get("/blocks/{blockID}/foodcourts", h.listFoodCourts)
	r.Get("/foodcourts/{id}/menu", h.listMenu)
}

func (h *CatalogHandler) listBlocks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	blocks, err := h.Catalog.Repo.ListBlocks(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load blocks")
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (h *CatalogHandler) listFoodCourts(w http.ResponseWriter, r *http.Request) {
	blockID := chi.URLParam(r, "blockID")
	if blockID == "" {
		writeError(w, http.StatusBadRequest, "missing block id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	courts, err := h.Catalog.Repo.ListFoodCourts(ctx, blockID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load food courts")
		return
	}
	writeJSON(w, http.StatusOK, courts)
}

func (h *CatalogHandler) listMenu(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing food court id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Catalog.Menu(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load menu")
		return
	}
	writeJSON(w, http.StatusOK, items)
}
