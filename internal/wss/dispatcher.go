package wss

import (
	"errors"
	"fmt"
	"log"

	wsstypes "github.com/zenvx/CodeBattleCoordService/internal/wss/types"
)

var ErrUnknownEvent = errors.New("no handler registered for event")

// WsHandlerType is the signature every websocket event handler satisfies.
type WsHandlerType func(*wsstypes.WsContext) error

// Dispatcher routes incoming websocket messages to the handler registered
// for their event type.
type Dispatcher struct {
	handlers map[string]WsHandlerType
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]WsHandlerType),
	}
}

// Register binds an event type to its handler. Last registration wins.
func (d *Dispatcher) Register(event string, handler WsHandlerType) {
	d.handlers[event] = handler
}

func (d *Dispatcher) Dispatch(event string, ctx *wsstypes.WsContext) error {
	handler, ok := d.handlers[event]
	if !ok {
		log.Printf("[Dispatcher] no handler for event %s", event)
		return fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}
	return handler(ctx)
}
