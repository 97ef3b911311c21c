package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/xelth-com/orderflowgo/internal/models"
)

// listOrders returns all orders (summary records, no line items)
func (r *Router) listOrders(w http.ResponseWriter, req *http.Request) {
	orders := []models.Order{}
	if err := r.db.Order("id").Find(&orders).Error; err != nil {
		respondDetail(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// getOrder returns one order with its line items ordered by id
func (r *Router) getOrder(w http.ResponseWriter, req *http.Request) {
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

	items := []models.LineItem{}
	if err := r.db.Where("order_id = ?", order.ID).Order("id").Find(&items).Error; err != nil {
		respondDetail(w, http.StatusInternalServerError, "Failed to fetch line items")
		return
	}

	respondJSON(w, http.StatusOK, models.OrderDetails{Order: order, LineItems: items})
}

// updateLineItem sets a line item's matched product from the operator's
// manual selection. Returns the updated line item as confirmation.
func (r *Router) updateLineItem(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	orderID, err := strconv.Atoi(vars["id"])
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid order id")
		return
	}
	itemID, err := strconv.Atoi(vars["itemId"])
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid line item id")
		return
	}
	productID, err := strconv.Atoi(req.URL.Query().Get("product_id"))
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var item models.LineItem
	if err := r.db.Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error; err != nil {
		respondDetail(w, http.StatusNotFound, "Line item not found")
		return
	}

	item.MatchedProductID = &productID
	if err := r.db.Save(&item).Error; err != nil {
		log.Printf("❌ Failed to update line item %d: %v", itemID, err)
		respondDetail(w, http.StatusInternalServerError, "Failed to update line item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// updateOrderStatus applies a requested status transition and returns the
// updated order. Illegal transitions are rejected with a detail message the
// client surfaces verbatim.
func (r *Router) updateOrderStatus(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.Atoi(mux.Vars(req)["id"])
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var body struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if !body.Status.IsValid() {
		respondDetail(w, http.StatusBadRequest, "Invalid status")
		return
	}

	var order models.Order
	if err := r.db.First(&order, id).Error; err != nil {
		respondDetail(w, http.StatusNotFound, "Order not found")
		return
	}

	if !models.CanTransition(order.Status, body.Status) {
		respondDetail(w, http.StatusBadRequest,
			fmt.Sprintf("Cannot change order status from %s to %s", order.Status, body.Status))
		return
	}

	order.Status = body.Status
	if err := r.db.Save(&order).Error; err != nil {
		log.Printf("❌ Failed to update status for order %d: %v", id, err)
		respondDetail(w, http.StatusInternalServerError, "Failed to update order status")
		return
	}

	log.Printf("🔁 Order %d status -> %s", order.ID, order.Status)
	r.hub.BroadcastOrder(order)
	respondJSON(w, http.StatusOK, order)
}
