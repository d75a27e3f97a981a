package testutil

import (
	"context"

	"github.com/biomesh-ai/biomesh/core"
)

// FakeEngine replays a canned event sequence (or a canned error) for each
// Stream call and records the inputs it received.
type FakeEngine struct {
	Events []core.TraceEvent
	Err    error

	Calls []core.Input
	Opts  []core.StreamOptions
}

// Stream implements core.Engine.
func (f *FakeEngine) Stream(ctx context.Context, input core.Input, opts core.StreamOptions) (<-chan core.TraceEvent, <-chan error) {
	f.Calls = append(f.Calls, input)
	f.Opts = append(f.Opts, opts)

	events := make(chan core.TraceEvent, len(f.Events)+1)
	errCh := make(chan error, 1)
	go func() {
		defer close(events)
		defer close(errCh)
		for _, ev := range f.Events {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
		if f.Err != nil {
			errCh <- f.Err
		}
	}()
	return events, errCh
}
