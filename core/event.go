package core

import "time"

// TraceEvent is the closed set of events an execution engine may emit while
// processing a turn. Concrete event types implement the unexported
// isTraceEvent marker so the extractor's dispatch is exhaustive rather than
// duck-typed. After emission an event should be treated as immutable.
type TraceEvent interface{ isTraceEvent() }

// KeyMessages is the result-channel key carrying conversation messages.
const KeyMessages = "messages"

// ResultPair is one key/value entry of a task result. When Key is
// KeyMessages the Messages field carries the ordered conversation snapshot;
// for any other channel the opaque Value is populated instead.
type ResultPair struct {
	Key      string    `json:"key"`
	Messages []Message `json:"messages,omitempty"`
	Value    any       `json:"value,omitempty"`
}

// TaskResultEvent is the finalized output of a single graph step. Its Result
// sequence mirrors the engine's per-channel writes in emission order.
type TaskResultEvent struct {
	Step      int          `json:"step"`
	Node      string       `json:"node,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Result    []ResultPair `json:"result"`
}

func (TaskResultEvent) isTraceEvent() {}

// Messages returns the message sequence of the "messages" result channel,
// or nil when the step produced none.
func (e TaskResultEvent) Messages() []Message {
	for _, pair := range e.Result {
		if pair.Key == KeyMessages {
			return pair.Messages
		}
	}
	return nil
}

// CheckpointValues is the state snapshot carried by a checkpoint.
type CheckpointValues struct {
	Messages []Message      `json:"messages,omitempty"`
	State    map[string]any `json:"state,omitempty"`
}

// CheckpointEvent is a raw engine state snapshot taken between steps. It is
// consulted for answer extraction only when no task result yields one.
type CheckpointEvent struct {
	Step      int              `json:"step"`
	Timestamp time.Time        `json:"timestamp"`
	Values    CheckpointValues `json:"values"`
}

func (CheckpointEvent) isTraceEvent() {}

// NodeOutput is the incremental state delta a single node contributed during
// a streaming turn. Messages carries conversation additions; the scalar
// fields are the named result channels a node may write instead.
type NodeOutput struct {
	Messages        []Message `json:"messages,omitempty"`
	AnalysisResults string    `json:"analysis_results,omitempty"`
	Next            string    `json:"next,omitempty"`
	DataContext     string    `json:"data_context,omitempty"`
}

// NodeUpdateEvent maps a node name to its output state. Emitted by the
// incremental per-node trace mode used for streaming queries.
type NodeUpdateEvent struct {
	Node      string     `json:"node"`
	Timestamp time.Time  `json:"timestamp"`
	Output    NodeOutput `json:"output"`
}

func (NodeUpdateEvent) isTraceEvent() {}

// TaskStartEvent records that a graph step was scheduled. Carried in detailed
// traces for observability; never consulted for answer extraction.
type TaskStartEvent struct {
	Step      int       `json:"step"`
	Node      string    `json:"node"`
	Timestamp time.Time `json:"timestamp"`
}

func (TaskStartEvent) isTraceEvent() {}
