package core

import (
	"context"
	"reflect"
	"time"

	"github.com/encodeous/strand/state"
)

func Get[T state.NyModule](s *state.State) T {
	t := reflect.TypeFor[T]()
	return s.Modules[t.String()].(T)
}

// sendTimeout bounds an outgoing protocol message by the node lifetime and state.SendDataTimeout
func sendTimeout(e *state.Env) (context.Context, context.CancelFunc) {
	return context.WithTimeout(e.Context, state.SendDataTimeout)
}

func millis(d time.Duration) uint32 {
	return uint32(min(d.Milliseconds(), int64(^uint32(0))))
}
