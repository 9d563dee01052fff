package wss

import (
	"errors"
	"testing"

	wsstypes "github.com/zenvx/CodeBattleCoordService/internal/wss/types"
)

func TestDispatchRoutesToRegisteredHandler(t *testing.T) {
	d := NewDispatcher()

	var got string
	d.Register("PING_SERVER", func(ctx *wsstypes.WsContext) error {
		got, _ = ctx.Payload["echo"].(string)
		return nil
	})

	err := d.Dispatch("PING_SERVER", &wsstypes.WsContext{
		Payload: map[string]any{"echo": "pong"},
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got != "pong" {
		t.Fatalf("handler saw payload %q, want pong", got)
	}
}

func TestDispatchUnknownEvent(t *testing.T) {
	d := NewDispatcher()
	if err := d.Dispatch("NO_SUCH_EVENT", &wsstypes.WsContext{}); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("dispatch unknown = %v, want ErrUnknownEvent", err)
	}
}

func TestRegisterLastWins(t *testing.T) {
	d := NewDispatcher()

	var called string
	d.Register("GO_ONLINE", func(*wsstypes.WsContext) error { called = "first"; return nil })
	d.Register("GO_ONLINE", func(*wsstypes.WsContext) error { called = "second"; return nil })

	if err := d.Dispatch("GO_ONLINE", &wsstypes.WsContext{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if called != "second" {
		t.Fatalf("dispatched to %q, want the later registration", called)
	}
}
