package review

import "github.com/xelth-com/orderflowgo/internal/models"

// CanCompleteReview reports whether the "complete review" action may be
// offered for the order. It is the only transition this client initiates;
// every other status change is driven by the upstream pipeline and merely
// observed. Status is externally authoritative: the engine never infers a
// transition locally, it only substitutes orders returned by the server.
func CanCompleteReview(order models.Order) bool {
	return order.Status == models.OrderStatusNeedsReview
}
