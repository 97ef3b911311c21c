package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/xelth-com/orderflowgo/internal/models"
)

var exportHeader = []string{
	"Line Item ID", "Extracted Text", "Matched Product ID",
	"Product Description", "Product Type", "Material",
	"Size", "Length", "Coating", "Thread Type",
	"Quantity", "Confidence Score",
}

// exportOrder streams the reviewed order as CSV. The filename is carried in
// Content-Disposition; clients fall back to a default when it is absent.
func (r *Router) exportOrder(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.Atoi(mux.Vars(req)["id"])
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var order models.Order
	if err := r.db.First(&order, id).Error; err != nil {
		respondDetail(w, http.StatusNotFound, "Order not found")
		return
	}

	var items []models.LineItem
	if err := r.db.Where("order_id = ?", order.ID).Order("id").Find(&items).Error; err != nil {
		respondDetail(w, http.StatusInternalServerError, "Failed to fetch line items")
		return
	}

	filename := fmt.Sprintf("order_%s_%s.csv", order.Filename, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	cw.Write(exportHeader)

	for _, item := range items {
		var product models.Product
		matched := ""
		if item.MatchedProductID != nil {
			matched = strconv.Itoa(*item.MatchedProductID)
			// Missing product rows just leave the attribute columns blank
			r.db.First(&product, *item.MatchedProductID)
		}

		cw.Write([]string{
			strconv.Itoa(item.ID),
			item.ExtractedText,
			matched,
			product.Description,
			product.Type,
			product.Material,
			product.Size,
			product.Length,
			product.Coating,
			product.ThreadType,
			strconv.Itoa(item.Quantity),
			fmt.Sprintf("%.2f", item.ConfidenceScore),
		})
	}
	cw.Flush()
}
