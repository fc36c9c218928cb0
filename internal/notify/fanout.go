package notify

import (
	"context"
	"errors"
	"fmt"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

// Fanout delivers to every notifier even when some fail.
type Fanout []port.OrderNotifier

func (f Fanout) NotifyOrderPlaced(ctx context.Context, order domain.Order) error {
	var errs []error
	for i, n := range f {
		if err := n.NotifyOrderPlaced(ctx, order); err != nil {
			errs = append(errs, fmt.Errorf("notifier[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Log records placed orders; it stands in when no delivery channel is configured.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) NotifyOrderPlaced(_ context.Context, order domain.Order) error {
	l.logger.Info("order notification",
		zap.Stringer("order_id", order.ID),
		zap.String("customer_email", order.Customer.Email),
		zap.Int("lines", len(order.Items)),
		zap.Stringer("total", domain.NewMoney(order.Total, order.Currency)))
	return nil
}
