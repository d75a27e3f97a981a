package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomesh-ai/biomesh/core"
	"github.com/biomesh-ai/biomesh/internal/testutil"
)

func collectChunks(ch <-chan StreamChunk) []StreamChunk {
	var out []StreamChunk
	for chunk := range ch {
		out = append(out, chunk)
	}
	return out
}

func TestQueryStream_EmitsNodeUpdates(t *testing.T) {
	engine := &testutil.FakeEngine{
		Events: testutil.NewTraceBuilder().
			NodeUpdate("supervisor", core.NodeOutput{Next: "transcriptomics_expert"}).
			NodeUpdate("transcriptomics_expert", core.NodeOutput{
				Messages: []core.Message{core.NewAssistantMessage("Found 5 clusters.")},
			}).
			Build(),
	}
	c := newTestClient(t, engine)

	chunks := collectChunks(c.QueryStream(context.Background(), "cluster my data"))

	require.Len(t, chunks, 3)
	assert.Equal(t, ChunkStream, chunks[0].Type)
	assert.Equal(t, "next: transcriptomics_expert", chunks[0].Content)
	assert.Equal(t, ChunkStream, chunks[1].Type)
	assert.Equal(t, "Found 5 clusters.", chunks[1].Content)
	assert.Equal(t, ChunkComplete, chunks[2].Type)
	assert.Equal(t, "Found 5 clusters.", chunks[2].Content)
	assert.Positive(t, chunks[2].Duration, "completion chunk carries the total duration")
	assert.Equal(t, c.SessionID(), chunks[2].SessionID)
	assert.Zero(t, chunks[0].Duration, "stream chunks carry no duration")

	require.Len(t, engine.Opts, 1)
	assert.Equal(t, core.StreamModeUpdates, engine.Opts[0].Mode)
}

func TestQueryStream_SuppressesEmptyUpdates(t *testing.T) {
	engine := &testutil.FakeEngine{
		Events: testutil.NewTraceBuilder().
			NodeUpdate("supervisor", core.NodeOutput{}).
			NodeUpdate("expert", core.NodeOutput{
				Messages: []core.Message{core.NewAssistantMessage("answer")},
			}).
			Build(),
	}
	c := newTestClient(t, engine)

	chunks := collectChunks(c.QueryStream(context.Background(), "q"))
	require.Len(t, chunks, 2, "empty updates produce no chunk")
	assert.Equal(t, ChunkStream, chunks[0].Type)
	assert.Equal(t, ChunkComplete, chunks[1].Type)
}

func TestQueryStream_NoUpdatesYieldsSentinel(t *testing.T) {
	c := newTestClient(t, &testutil.FakeEngine{})

	chunks := collectChunks(c.QueryStream(context.Background(), "q"))
	require.Len(t, chunks, 1)
	assert.Equal(t, ChunkComplete, chunks[0].Type)
	assert.Equal(t, core.NoResponse, chunks[0].Content)
}

func TestQueryStream_ErrorChunkTerminates(t *testing.T) {
	engine := &testutil.FakeEngine{Err: errors.New("stream broke")}
	c := newTestClient(t, engine)

	chunks := collectChunks(c.QueryStream(context.Background(), "q"))
	require.Len(t, chunks, 1)
	assert.Equal(t, ChunkError, chunks[0].Type)
	assert.Equal(t, "I encountered an error: stream broke", chunks[0].Content)
	assert.Positive(t, chunks[0].Duration)

	history := c.GetConversationHistory()
	require.Len(t, history, 2)
	assert.Equal(t, chunks[0].Content, history[1].Content)
}

func TestQueryStream_RecordsHistory(t *testing.T) {
	engine := &testutil.FakeEngine{
		Events: testutil.NewTraceBuilder().
			NodeUpdate("expert", core.NodeOutput{
				Messages: []core.Message{core.NewAssistantMessage("final")},
			}).
			Build(),
	}
	c := newTestClient(t, engine)

	collectChunks(c.QueryStream(context.Background(), "q"))

	history := c.GetConversationHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "q", history[0].Content)
	assert.Equal(t, "final", history[1].Content)
}
