package client

import (
	"context"
	"fmt"
	"time"

	"github.com/biomesh-ai/biomesh/core"
	"github.com/biomesh-ai/biomesh/data"
	"github.com/biomesh-ai/biomesh/export"
	"github.com/biomesh-ai/biomesh/logging"
)

// Options holds configuration overrides passed to New().
type Options struct {
	// SessionID identifies the conversation. Defaults to a timestamped id.
	SessionID string
	// WorkspacePath is the session workspace root, used when no DataManager
	// is supplied.
	WorkspacePath string
	// DataManager is the artifact store for this session. When nil one is
	// created under WorkspacePath.
	DataManager *data.Manager
	// OnEvent, when set, observes every trace event as it arrives. More
	// observers can be registered later with AddCallback.
	OnEvent func(core.TraceEvent)
	// Logger receives structured session logs.
	Logger logging.Logger
}

// QueryResult is the outcome of a single non-streaming query.
type QueryResult struct {
	Success     bool               `json:"success"`
	Response    string             `json:"response"`
	Duration    time.Duration      `json:"duration"`
	EventsCount int                `json:"events_count"`
	SessionID   string             `json:"session_id"`
	HasData     bool               `json:"has_data"`
	Plots       []data.PlotSummary `json:"plots,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// Status is a point-in-time snapshot of the session.
type Status struct {
	SessionID     string               `json:"session_id"`
	MessageCount  int                  `json:"message_count"`
	HasData       bool                 `json:"has_data"`
	PlotCount     int                  `json:"plot_count"`
	CallbackCount int                  `json:"callback_count"`
	DataSummary   data.DataSummary     `json:"data_summary"`
	WorkspacePath string               `json:"workspace_path"`
	Workspace     data.WorkspaceStatus `json:"workspace"`
}

// Client orchestrates one conversational session against an engine.
type Client struct {
	sessionID string
	engine    core.Engine
	dm        *data.Manager
	packager  *export.Packager
	history   []core.Message
	meta      map[string]any
	callbacks []func(core.TraceEvent)
	logger    logging.Logger
}

// New constructs a Client around the given engine.
func New(engine core.Engine, optFns ...func(o *Options)) (*Client, error) {
	if engine == nil {
		return nil, fmt.Errorf("client requires an engine")
	}
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.SessionID == "" {
		opts.SessionID = "session_" + time.Now().Format("20060102_150405")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	dm := opts.DataManager
	if dm == nil {
		var err error
		dm, err = data.New(func(o *data.Options) {
			o.WorkspacePath = opts.WorkspacePath
			o.Logger = opts.Logger
		})
		if err != nil {
			return nil, fmt.Errorf("create data manager: %w", err)
		}
	}

	c := &Client{
		sessionID: opts.SessionID,
		engine:    engine,
		dm:        dm,
		packager: export.New(dm, func(o *export.Options) {
			o.Logger = opts.Logger
		}),
		meta:   map[string]any{"created_at": time.Now().Format(time.RFC3339)},
		logger: opts.Logger,
	}
	if opts.OnEvent != nil {
		c.callbacks = append(c.callbacks, opts.OnEvent)
	}
	c.logger.Info("session started", "session_id", c.sessionID, "workspace", dm.WorkspacePath())
	return c, nil
}

// SessionID returns the session identifier.
func (c *Client) SessionID() string { return c.sessionID }

// DataManager returns the session's artifact store.
func (c *Client) DataManager() *data.Manager { return c.dm }

// Query runs one conversational turn and blocks until the answer is ready.
//
// Engine failures never surface as a Go error: the result carries
// Success=false and a conversational "I encountered an error: ..." response,
// and the failed exchange is still recorded in the history.
func (c *Client) Query(ctx context.Context, text string) QueryResult {
	start := time.Now()
	c.history = append(c.history, core.NewUserMessage(text))

	events, runErr := c.collect(ctx, core.StreamModeTrace)

	result := QueryResult{
		SessionID:   c.sessionID,
		EventsCount: len(events),
		HasData:     c.dm.HasData(),
		Plots:       latestPlotSummaries(c.dm, 5),
	}

	var response string
	if runErr != nil {
		c.logger.Error("query failed", "session_id", c.sessionID, "error", runErr.Error())
		response = fmt.Sprintf("I encountered an error: %v", runErr)
		result.Error = runErr.Error()
	} else {
		response = core.ExtractResponse(events)
		result.Success = true
	}

	c.history = append(c.history, core.NewAssistantMessage(response))
	result.Response = response
	result.Duration = time.Since(start)
	return result
}

// collect drains one engine run into a slice, forwarding events to the
// registered callbacks. The returned error is the engine's terminal error, the
// context error, or nil.
func (c *Client) collect(ctx context.Context, mode core.StreamMode) ([]core.TraceEvent, error) {
	eventCh, errCh := c.engine.Stream(ctx, core.Input{Messages: c.historySnapshot()}, core.StreamOptions{
		SessionID: c.sessionID,
		Mode:      mode,
	})

	var events []core.TraceEvent
	for eventCh != nil || errCh != nil {
		select {
		case ev, ok := <-eventCh:
			if !ok {
				eventCh = nil
				continue
			}
			for _, fn := range c.callbacks {
				fn(ev)
			}
			events = append(events, ev)
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return events, err
			}
		case <-ctx.Done():
			return events, ctx.Err()
		}
	}
	return events, nil
}

func latestPlotSummaries(dm *data.Manager, n int) []data.PlotSummary {
	records := dm.GetLatestPlots(n)
	if len(records) == 0 {
		return nil
	}
	out := make([]data.PlotSummary, 0, len(records))
	for _, record := range records {
		out = append(out, record.Summary())
	}
	return out
}

func (c *Client) historySnapshot() []core.Message {
	out := make([]core.Message, len(c.history))
	copy(out, c.history)
	return out
}

// AddCallback registers an observer invoked for every trace event that
// arrives during subsequent queries.
func (c *Client) AddCallback(fn func(core.TraceEvent)) {
	if fn != nil {
		c.callbacks = append(c.callbacks, fn)
	}
}

// GetConversationHistory returns a copy of the conversation so far.
func (c *Client) GetConversationHistory() []core.Message {
	return c.historySnapshot()
}

// GetStatus returns a snapshot of the session state.
func (c *Client) GetStatus() Status {
	return Status{
		SessionID:     c.sessionID,
		MessageCount:  len(c.history),
		HasData:       c.dm.HasData(),
		PlotCount:     c.dm.PlotCount(),
		CallbackCount: len(c.callbacks),
		DataSummary:   c.dm.GetDataSummary(),
		WorkspacePath: c.dm.WorkspacePath(),
		Workspace:     c.dm.GetWorkspaceStatus(),
	}
}

// Reset clears the conversation history. Loaded data, plots and provenance
// stay intact; the reset is recorded in the session metadata.
func (c *Client) Reset() {
	c.history = nil
	c.meta["reset_at"] = time.Now().Format(time.RFC3339)
	c.logger.Info("session reset", "session_id", c.sessionID)
}
