package notify

import (
	"context"
	"log"

	"github.com/craftora/marketplace/internal/domain"
)

// LogSink is the default notification sink: it records lifecycle events
// on the process log until a real delivery channel is attached.
type LogSink struct{}

func (LogSink) OrderStatusChanged(_ context.Context, order domain.Order, previous, next domain.OrderStatus) error {
	log.Printf("order %s status changed: %s -> %s", order.ID, previous, next)
	return nil
}
