// Package events fans coordinator events out to the live streams, the broker
// and the audit log.
package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/logging"
)

type Sink interface {
	Publish(ctx context.Context, ev domain.Event) error
}

type SinkFunc func(ctx context.Context, ev domain.Event) error

func (f SinkFunc) Publish(ctx context.Context, ev domain.Event) error {
	return f(ctx, ev)
}

// Dispatcher delivers every event to each sink. A failing sink does not stop
// delivery to the others.
type Dispatcher struct {
	sinks  map[string]Sink
	order  []string
	logger logging.Logger
}

func NewDispatcher(logger logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Dispatcher{
		sinks:  make(map[string]Sink),
		logger: logger,
	}
}

// Add registers a named sink. It is not safe to call once events flow.
func (d *Dispatcher) Add(name string, sink Sink) *Dispatcher {
	if _, ok := d.sinks[name]; !ok {
		d.order = append(d.order, name)
	}
	d.sinks[name] = sink
	return d
}

func (d *Dispatcher) Publish(ctx context.Context, ev domain.Event) error {
	var errs []error

	for _, name := range d.order {
		if err := d.sinks[name].Publish(ctx, ev); err != nil {
			d.logger.Warn(logging.Internal, logging.Broadcast, "event sink failed", map[logging.ExtraKey]any{
				"sink":               name,
				"event_type":         string(ev.Type),
				logging.MeetingID:    ev.MeetingID,
				logging.ErrorMessage: err.Error(),
			})
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}
