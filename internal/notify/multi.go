package notify

import (
	"context"
	"log/slog"

	"astro-readings/internal/model"
)

// MultiSink fans out to every configured sink and absorbs their failures:
// a dead log file or chat webhook never fails the order it was reporting.
type MultiSink struct {
	sinks  []Sink
	logger *slog.Logger
}

func NewMultiSink(logger *slog.Logger, sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks, logger: logger}
}

func (m *MultiSink) OrderCreated(ctx context.Context, order *model.Order, item *model.OrderItem) error {
	for _, s := range m.sinks {
		if err := s.OrderCreated(ctx, order, item); err != nil {
			m.logger.ErrorContext(ctx, "notification sink failed",
				"event", EventCreated, "order_id", order.OrderID, "err", err)
		}
	}
	return nil
}

func (m *MultiSink) OrderPaid(ctx context.Context, order *model.Order, set *model.Settlement) error {
	for _, s := range m.sinks {
		if err := s.OrderPaid(ctx, order, set); err != nil {
			m.logger.ErrorContext(ctx, "notification sink failed",
				"event", EventPaid, "order_id", order.OrderID, "err", err)
		}
	}
	return nil
}
