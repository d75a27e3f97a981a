package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/biomesh-ai/biomesh/core"
	"github.com/biomesh-ai/biomesh/logging"
	"github.com/biomesh-ai/biomesh/model"
)

// Expert is one routable agent of the mesh.
type Expert struct {
	// Name is the node name used for routing and trace events.
	Name string
	// Description tells the supervisor when to route here.
	Description string
	// Instructions is the system prompt used for generation.
	Instructions string
	// Model produces the expert's responses.
	Model model.Model
}

// Options configures a Mesh.
type Options struct {
	// Supervisor is the routing model. When nil, every turn goes to
	// DefaultExpert.
	Supervisor model.Model
	// Experts are the routable agents, in registration order.
	Experts []Expert
	// DefaultExpert is the fallback node when routing yields no usable
	// expert name. Empty means the first registered expert.
	DefaultExpert string
	// Logger receives structured run logs. Defaults to a no-op logger.
	Logger logging.Logger
}

// Mesh is a supervisor/expert execution graph implementing core.Engine.
type Mesh struct {
	supervisor    model.Model
	experts       map[string]Expert
	order         []string
	defaultExpert string
	logger        logging.Logger
}

// New creates a Mesh. At least one expert is required.
func New(optFns ...func(o *Options)) (*Mesh, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if len(opts.Experts) == 0 {
		return nil, fmt.Errorf("mesh requires at least one expert")
	}

	m := &Mesh{
		supervisor:    opts.Supervisor,
		experts:       make(map[string]Expert, len(opts.Experts)),
		defaultExpert: opts.DefaultExpert,
		logger:        opts.Logger,
	}
	for _, e := range opts.Experts {
		if e.Name == "" {
			return nil, fmt.Errorf("expert without a name")
		}
		if e.Model == nil {
			return nil, fmt.Errorf("expert %q has no model", e.Name)
		}
		if _, dup := m.experts[e.Name]; dup {
			return nil, fmt.Errorf("duplicate expert %q", e.Name)
		}
		m.experts[e.Name] = e
		m.order = append(m.order, e.Name)
	}
	if m.defaultExpert == "" {
		m.defaultExpert = m.order[0]
	}
	if _, ok := m.experts[m.defaultExpert]; !ok {
		return nil, fmt.Errorf("default expert %q is not registered", m.defaultExpert)
	}
	return m, nil
}

// Stream runs one turn and emits trace events as the graph advances.
// The event channel is closed when the run completes; a failure is reported
// once on the error channel and ends the run.
func (m *Mesh) Stream(ctx context.Context, input core.Input, opts core.StreamOptions) (<-chan core.TraceEvent, <-chan error) {
	events := make(chan core.TraceEvent, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errCh)

		expertName, err := m.route(ctx, input.Messages, events, opts.Mode)
		if err != nil {
			errCh <- err
			return
		}
		expert := m.experts[expertName]
		m.logger.Info("routing turn", "session_id", opts.SessionID, "node", expertName)

		if opts.Mode != core.StreamModeUpdates {
			if !emit(ctx, events, core.TaskStartEvent{Step: 2, Node: expertName, Timestamp: time.Now()}) {
				return
			}
		}

		answer, err := m.generate(ctx, expert, input.Messages)
		if err != nil {
			errCh <- fmt.Errorf("expert %s: %w", expertName, err)
			return
		}

		history := append(append([]core.Message{}, input.Messages...), core.NewAssistantMessage(answer))

		if opts.Mode == core.StreamModeUpdates {
			emit(ctx, events, core.NodeUpdateEvent{
				Node:      expertName,
				Timestamp: time.Now(),
				Output:    core.NodeOutput{Messages: []core.Message{core.NewAssistantMessage(answer)}},
			})
			return
		}

		if !emit(ctx, events, core.CheckpointEvent{
			Step:      2,
			Timestamp: time.Now(),
			Values:    core.CheckpointValues{Messages: history},
		}) {
			return
		}
		emit(ctx, events, core.TaskResultEvent{
			Step:      2,
			Node:      expertName,
			Timestamp: time.Now(),
			Result: []core.ResultPair{
				{Key: core.KeyMessages, Messages: history},
			},
		})
	}()

	return events, errCh
}

// route picks the expert for this turn. With a supervisor model configured
// the decision is delegated to it; otherwise the default expert handles
// everything.
func (m *Mesh) route(ctx context.Context, messages []core.Message, events chan<- core.TraceEvent, mode core.StreamMode) (string, error) {
	if mode != core.StreamModeUpdates {
		if !emit(ctx, events, core.TaskStartEvent{Step: 1, Node: "supervisor", Timestamp: time.Now()}) {
			return "", ctx.Err()
		}
	}
	if m.supervisor == nil || len(m.order) == 1 {
		m.emitRouting(ctx, events, mode, m.defaultExpert)
		return m.defaultExpert, nil
	}

	respCh, errCh := m.supervisor.Generate(ctx, model.Request{
		Instructions: m.routingPrompt(),
		Messages:     messages,
	})
	decision, err := model.CollectText(respCh, errCh)
	if err != nil {
		return "", fmt.Errorf("supervisor: %w", err)
	}

	name := m.matchExpert(decision)
	m.emitRouting(ctx, events, mode, name)
	return name, nil
}

func (m *Mesh) emitRouting(ctx context.Context, events chan<- core.TraceEvent, mode core.StreamMode, next string) {
	if mode == core.StreamModeUpdates {
		emit(ctx, events, core.NodeUpdateEvent{
			Node:      "supervisor",
			Timestamp: time.Now(),
			Output:    core.NodeOutput{Next: next},
		})
		return
	}
	emit(ctx, events, core.TaskResultEvent{
		Step:      1,
		Node:      "supervisor",
		Timestamp: time.Now(),
		Result: []core.ResultPair{
			{Key: "next", Value: next},
		},
	})
}

func (m *Mesh) routingPrompt() string {
	var b strings.Builder
	b.WriteString("You are a routing supervisor. Pick the single best agent for the user's latest message and respond with exactly that agent's name, nothing else.\n\nAgents:\n")
	for _, name := range m.order {
		e := m.experts[name]
		fmt.Fprintf(&b, "- %s: %s\n", e.Name, e.Description)
	}
	return b.String()
}

// matchExpert maps a supervisor decision string onto a registered expert,
// tolerating surrounding prose. Unmatched decisions fall back to the default.
func (m *Mesh) matchExpert(decision string) string {
	decision = strings.ToLower(strings.TrimSpace(decision))
	if _, ok := m.experts[decision]; ok {
		return decision
	}
	for _, name := range m.order {
		if strings.Contains(decision, strings.ToLower(name)) {
			return name
		}
	}
	return m.defaultExpert
}

func (m *Mesh) generate(ctx context.Context, expert Expert, messages []core.Message) (string, error) {
	respCh, errCh := expert.Model.Generate(ctx, model.Request{
		Instructions: expert.Instructions,
		Messages:     messages,
	})
	return model.CollectText(respCh, errCh)
}

// emit sends an event unless the context is done. Returns false when the
// run should stop.
func emit(ctx context.Context, events chan<- core.TraceEvent, ev core.TraceEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
