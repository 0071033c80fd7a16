package fsm

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// EventName names the event of the edge src -> dst. State machines built
// from mission specs have one event per declared edge.
func EventName(src, dst string) string {
	return src + "->" + dst
}

// WrapEvent adapts an error returning callback. A non-nil error cancels the
// event: raised in a before_ hook the state stays put and Event returns a
// CanceledError; raised later the state has changed and Event returns err.
func WrapEvent(fn func(ctx context.Context, event *fsm.Event) error) fsm.Callback {
	return func(ctx context.Context, event *fsm.Event) {
		if err := fn(ctx, event); err != nil {
			event.Cancel(err)
		}
	}
}

// IgnoreNoTransition drops the error fsm reports when an event leaves the
// state unchanged.
func IgnoreNoTransition(err error) error {
	if errors.As(err, &fsm.NoTransitionError{}) {
		return nil
	}
	return err
}
