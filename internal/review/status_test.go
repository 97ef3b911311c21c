package review

import (
	"testing"

	"github.com/xelth-com/orderflowgo/internal/models"
)

func TestCanCompleteReview(t *testing.T) {
	if !CanCompleteReview(models.Order{Status: models.OrderStatusNeedsReview}) {
		t.Error("complete-review must be offered for needs_review")
	}

	for _, status := range []models.OrderStatus{
		models.OrderStatusProcessing,
		models.OrderStatusCompleted,
		models.OrderStatusError,
	} {
		if CanCompleteReview(models.Order{Status: status}) {
			t.Errorf("complete-review must not be offered for %s", status)
		}
	}
}
