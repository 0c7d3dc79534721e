package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/catalog"
)

// CatalogClient is the slice of the catalog client the handler needs.
type CatalogClient interface {
	Page(ctx context.Context, limit, skip int) (*catalog.Page, error)
}

type ProductHandler struct {
	catalog CatalogClient
	timeout time.Duration
}

func NewProductHandler(client CatalogClient, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: client,
		timeout: timeout,
	}
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	limit := queryInt(r, "limit", catalog.DefaultPageSize)
	skip := queryInt(r, "skip", 0)

	page, err := h.catalog.Page(ctx, limit, skip)
	if err != nil {
		var catalogErr *catalog.Error
		if errors.As(err, &catalogErr) {
			respondError(w, http.StatusBadGateway, "catalog_unavailable", catalogErr.Error())
			return
		}
		log.Printf("catalog fetch failed (request %s): %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "failed to fetch products")
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
