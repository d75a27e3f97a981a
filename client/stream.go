package client

import (
	"context"
	"fmt"
	"time"

	"github.com/biomesh-ai/biomesh/core"
)

// Chunk types emitted by QueryStream.
const (
	ChunkStream   = "stream"
	ChunkComplete = "complete"
	ChunkError    = "error"
)

// StreamChunk is one increment of a streaming query. Duration and SessionID
// are populated on the terminal chunks.
type StreamChunk struct {
	Type      string        `json:"type"`
	Content   string        `json:"content"`
	Duration  time.Duration `json:"duration,omitempty"`
	SessionID string        `json:"session_id,omitempty"`
}

// QueryStream runs one conversational turn in updates mode and emits display
// chunks as graph nodes complete. The channel carries zero or more
// ChunkStream entries followed by exactly one terminal chunk: ChunkComplete
// with the final answer and total duration, or ChunkError. The exchange is
// recorded in the history either way.
//
// The caller must drain the channel until it closes. The assistant turn is
// appended to the history only when a terminal chunk is produced, so
// abandoning the channel mid-stream can block the producing goroutine and
// leave the history ending with the user message. Cancelling ctx instead
// terminates the stream with a ChunkError and keeps the history paired.
func (c *Client) QueryStream(ctx context.Context, text string) <-chan StreamChunk {
	out := make(chan StreamChunk, 16)
	start := time.Now()
	c.history = append(c.history, core.NewUserMessage(text))

	go func() {
		defer close(out)

		eventCh, errCh := c.engine.Stream(ctx, core.Input{Messages: c.historySnapshot()}, core.StreamOptions{
			SessionID: c.sessionID,
			Mode:      core.StreamModeUpdates,
		})

		final := ""
		fail := func(err error) {
			c.logger.Error("streaming query failed", "session_id", c.sessionID, "error", err.Error())
			response := fmt.Sprintf("I encountered an error: %v", err)
			c.history = append(c.history, core.NewAssistantMessage(response))
			out <- StreamChunk{
				Type:      ChunkError,
				Content:   response,
				Duration:  time.Since(start),
				SessionID: c.sessionID,
			}
		}

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
				update, isUpdate := ev.(core.NodeUpdateEvent)
				if !isUpdate {
					continue
				}
				content, ok := core.DisplayContent(update.Output)
				if !ok || content == "" {
					continue
				}
				if len(update.Output.Messages) > 0 {
					final = content
				}
				out <- StreamChunk{Type: ChunkStream, Content: content}
			case err, ok := <-errCh:
				if !ok {
					errCh = nil
					continue
				}
				if err != nil {
					fail(err)
					return
				}
			case <-ctx.Done():
				fail(ctx.Err())
				return
			}
		}

		if final == "" {
			final = core.NoResponse
		}
		c.history = append(c.history, core.NewAssistantMessage(final))
		out <- StreamChunk{
			Type:      ChunkComplete,
			Content:   final,
			Duration:  time.Since(start),
			SessionID: c.sessionID,
		}
	}()

	return out
}
