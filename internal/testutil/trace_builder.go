package testutil

import (
	"time"

	"github.com/biomesh-ai/biomesh/core"
)

// TraceBuilder provides a fluent helper for constructing trace event
// sequences in tests. Example:
//
//	events := NewTraceBuilder().
//		TaskStart(1, "supervisor").
//		TaskResultText(2, "expert", "hello", "the answer").
//		Build()
//
// Chain only the events you need; steps and timestamps are explicit so tests
// stay deterministic.
type TraceBuilder struct {
	events []core.TraceEvent
	now    time.Time
}

// NewTraceBuilder creates a builder with a fixed base timestamp.
func NewTraceBuilder() *TraceBuilder {
	return &TraceBuilder{now: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
}

// next returns monotonically increasing timestamps so event ordering is
// observable in assertions.
func (b *TraceBuilder) next() time.Time {
	b.now = b.now.Add(time.Second)
	return b.now
}

// TaskStart appends a task start event (chainable).
func (b *TraceBuilder) TaskStart(step int, node string) *TraceBuilder {
	b.events = append(b.events, core.TaskStartEvent{Step: step, Node: node, Timestamp: b.next()})
	return b
}

// TaskResult appends a task result event with the given conversation
// snapshot on the messages channel (chainable).
func (b *TraceBuilder) TaskResult(step int, node string, messages ...core.Message) *TraceBuilder {
	b.events = append(b.events, core.TaskResultEvent{
		Step:      step,
		Node:      node,
		Timestamp: b.next(),
		Result:    []core.ResultPair{{Key: core.KeyMessages, Messages: messages}},
	})
	return b
}

// TaskResultText appends a task result holding a user/assistant exchange
// (chainable).
func (b *TraceBuilder) TaskResultText(step int, node, userText, assistantText string) *TraceBuilder {
	return b.TaskResult(step, node,
		core.NewUserMessage(userText),
		core.NewAssistantMessage(assistantText),
	)
}

// TaskResultValue appends a task result carrying a non-message channel
// (chainable).
func (b *TraceBuilder) TaskResultValue(step int, node, key string, value any) *TraceBuilder {
	b.events = append(b.events, core.TaskResultEvent{
		Step:      step,
		Node:      node,
		Timestamp: b.next(),
		Result:    []core.ResultPair{{Key: key, Value: value}},
	})
	return b
}

// Checkpoint appends a checkpoint event with the given messages (chainable).
func (b *TraceBuilder) Checkpoint(step int, messages ...core.Message) *TraceBuilder {
	b.events = append(b.events, core.CheckpointEvent{
		Step:      step,
		Timestamp: b.next(),
		Values:    core.CheckpointValues{Messages: messages},
	})
	return b
}

// NodeUpdate appends a node update event (chainable).
func (b *TraceBuilder) NodeUpdate(node string, output core.NodeOutput) *TraceBuilder {
	b.events = append(b.events, core.NodeUpdateEvent{Node: node, Timestamp: b.next(), Output: output})
	return b
}

// Build returns the accumulated event sequence.
func (b *TraceBuilder) Build() []core.TraceEvent {
	return b.events
}
