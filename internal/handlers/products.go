package handlers

import (
	"net/http"
	"strings"

	"github.com/xelth-com/orderflowgo/internal/models"
)

// searchResultLimit caps fuzzy search responses; the ranking beyond this
// point carries no review value.
const searchResultLimit = 10

// searchProducts performs a case-insensitive substring search over catalog
// descriptions. A blank query returns an empty list rather than the whole
// catalog.
func (r *Router) searchProducts(w http.ResponseWriter, req *http.Request) {
	q := strings.TrimSpace(req.URL.Query().Get("q"))

	products := []models.Product{}
	if q == "" {
		respondJSON(w, http.StatusOK, products)
		return
	}

	if err := r.db.
		Where("description ILIKE ?", "%"+q+"%").
		Limit(searchResultLimit).
		Find(&products).Error; err != nil {
		respondDetail(w, http.StatusInternalServerError, "Failed to search products")
		return
	}

	respondJSON(w, http.StatusOK, products)
}
