package dispatcher

import (
	"context"
	"fmt"

	"github.com/Vg34100/agent-board/internal/domain"
)

// Handler executes one named command against normalized args.
type Handler func(ctx context.Context, args Args) (any, error)

// Dispatcher is the single name-to-handler registry shared by the CLI's
// invoke subcommand and the HTTP Gateway's /api/invoke endpoint.
type Dispatcher struct {
	handlers map[string]Handler
}

// newRegistry returns an empty Dispatcher; commands.go's New populates it.
func newRegistry() *Dispatcher {
	return &Dispatcher{handlers: map[string]Handler{}}
}

// Register adds handler under name, overwriting any prior registration.
func (d *Dispatcher) Register(name string, handler Handler) {
	d.handlers[name] = handler
}

// Dispatch normalizes rawArgs and invokes the handler registered under name.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, rawArgs map[string]any) (any, error) {
	h, ok := d.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCommand, name)
	}
	return h(ctx, normalizeArgs(rawArgs))
}

// Commands returns every registered command name, for introspection.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	return names
}
