package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"CanSlimHunter/internal/model"
)

// Notifier delivers one alert per qualifying symbol.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, alert *model.Alert) error
}

// permanent is implemented by errors that retrying cannot fix.
type permanent interface {
	Permanent() bool
}

// SendWithRetry calls send with exponential backoff (base, 2×base, 4×base, ...).
// Errors reporting Permanent() stop the loop at once.
func SendWithRetry(ctx context.Context, logger *zap.Logger, op string, maxRetries int, base time.Duration, send func(ctx context.Context) error) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := send(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		var p permanent
		if errors.As(err, &p) && p.Permanent() {
			return err
		}
		if i == maxRetries {
			break
		}
		backoff := base * time.Duration(1<<uint(i))
		logger.Warn("send failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d attempts exhausted: %w", maxRetries+1, lastErr)
}

// Multi fans an alert out to every notifier in order. One failure does not stop the rest.
type Multi struct {
	Notifiers []Notifier
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Notify(ctx context.Context, alert *model.Alert) error {
	var errs []error
	for _, n := range m.Notifiers {
		if err := n.Notify(ctx, alert); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
