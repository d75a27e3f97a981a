package core

import "context"

// StreamMode selects the trace shape an engine emits.
type StreamMode string

const (
	// StreamModeTrace emits the detailed trace (task start/result events plus
	// checkpoints) used for answer extraction on non-streaming queries.
	StreamModeTrace StreamMode = "trace"

	// StreamModeUpdates emits incremental per-node output deltas used for
	// streaming queries.
	StreamModeUpdates StreamMode = "updates"
)

// Input is the normalized engine input for one turn.
type Input struct {
	Messages []Message `json:"messages"`
}

// StreamOptions carries per-invocation configuration.
type StreamOptions struct {
	SessionID string
	Mode      StreamMode
}

// Engine coordinates multi-agent execution and event emission.
//
// A concrete implementation is responsible for:
//   - Running the turn described by Input within the given session
//   - Emitting TraceEvents on the returned channel in execution order
//   - Closing both channels when the turn terminates
//   - Surfacing terminal errors via the error channel (buffered size 1)
//
// Implementations SHOULD propagate context cancellation to underlying model
// calls. Consumers pull; no event is produced ahead of channel capacity.
type Engine interface {
	Stream(ctx context.Context, input Input, opts StreamOptions) (<-chan TraceEvent, <-chan error)
}
