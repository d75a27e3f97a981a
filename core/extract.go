package core

import (
	"fmt"
	"strings"
)

// NoResponse is the sentinel returned when a trace yields no answer.
const NoResponse = "No response generated."

// ExtractResponse reduces an ordered trace to the final user-facing answer.
//
// Events are scanned in reverse insertion order, task results first: the
// last assistant-authored message of the most recent task result's
// "messages" channel is the answer. Checkpoint snapshots are consulted only
// when no task result yields one; task results represent finalized step
// outputs while checkpoints are raw state. An explicitly empty assistant
// message counts as a valid (empty) answer and terminates the search;
// whitespace-only content does not.
func ExtractResponse(events []TraceEvent) string {
	if len(events) == 0 {
		return NoResponse
	}

	for i := len(events) - 1; i >= 0; i-- {
		if ev, ok := events[i].(TaskResultEvent); ok {
			if text, found := lastAssistantText(ev.Messages()); found {
				return text
			}
		}
	}

	for i := len(events) - 1; i >= 0; i-- {
		if ev, ok := events[i].(CheckpointEvent); ok {
			if text, found := lastAssistantText(ev.Values.Messages); found {
				return text
			}
		}
	}

	return NoResponse
}

// lastAssistantText scans messages most recent first for an assistant
// message whose content is either non-blank or exactly empty.
func lastAssistantText(messages []Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if !msg.IsAssistant() {
			continue
		}
		trimmed := strings.TrimSpace(msg.Content)
		if trimmed != "" || msg.Content == "" {
			return trimmed, true
		}
	}
	return "", false
}

// DisplayContent extracts the displayable portion of a node output for
// streaming consumption: the last assistant message with content, or the
// first populated named result field rendered as "<field>: <value>". The
// second return is false when the output carries nothing worth showing.
func DisplayContent(out NodeOutput) (string, bool) {
	for i := len(out.Messages) - 1; i >= 0; i-- {
		msg := out.Messages[i]
		if msg.IsAssistant() && msg.Content != "" {
			return msg.Content, true
		}
	}

	fields := []struct {
		name  string
		value string
	}{
		{"analysis_results", out.AnalysisResults},
		{"next", out.Next},
		{"data_context", out.DataContext},
	}
	for _, f := range fields {
		if f.value != "" {
			return fmt.Sprintf("%s: %s", f.name, f.value), true
		}
	}

	return "", false
}
