package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"SignalSentinel/internal/model"
)

// Notifier delivers a report. Failures wrap model.ErrDeliveryFailed.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
	Name() string
}

// Multi fans a report out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Name() string { return "multi" }

func (m Multi) Send(ctx context.Context, subject, body string) error {
	var errs []error
	for _, n := range m {
		if err := n.Send(ctx, subject, body); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// LogNotifier writes reports to the logger. Used when no transport is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notifier").Logger()}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Send(_ context.Context, subject, body string) error {
	n.log.Info().Str("subject", subject).Msg(body)
	return nil
}

func deliveryFailed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrDeliveryFailed, fmt.Sprintf(format, args...))
}
