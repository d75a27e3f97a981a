package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultProfile(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	assert.Equal(t, "production", c.Profile())
	supervisor := c.Agent(AgentSupervisor)
	assert.Equal(t, "anthropic", supervisor.Provider)
	assert.Equal(t, "claude-3-5-sonnet-20241022", supervisor.Model)
	assert.Equal(t, 0.1, supervisor.Temperature)
	assert.Equal(t, int64(8192), supervisor.MaxTokens)
}

func TestNew_NamedProfile(t *testing.T) {
	c, err := New(func(o *Options) { o.Profile = "cost-optimized" })
	require.NoError(t, err)

	assert.Equal(t, "cost-optimized", c.Profile())
	expert := c.Agent(AgentTranscriptomics)
	assert.Equal(t, "openai", expert.Provider)
	assert.Equal(t, "gpt-4o-mini", expert.Model)
}

func TestNew_UnknownProfile(t *testing.T) {
	_, err := New(func(o *Options) { o.Profile = "bogus" })
	assert.Error(t, err)
}

func TestNew_ConfigFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "biomesh.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"profile": "development",
		"agents": {
			"method_agent": {"preset": "gpt-4o", "temperature": 0.5}
		},
		"export": {"include_plots": false, "include_raw_data": true, "include_provenance": true}
	}`), 0o644))

	c, err := New(func(o *Options) { o.ConfigFile = path })
	require.NoError(t, err)

	assert.Equal(t, "development", c.Profile())

	method := c.Agent(AgentMethod)
	assert.Equal(t, "openai", method.Provider)
	assert.Equal(t, "gpt-4o", method.Model)
	assert.Equal(t, 0.5, method.Temperature)

	// Untouched agents keep the profile defaults.
	assert.Equal(t, "claude-3-5-haiku-20241022", c.Agent(AgentSupervisor).Model)
	assert.False(t, c.Export().IncludePlots)
}

func TestNew_ConfigFileMissing(t *testing.T) {
	_, err := New(func(o *Options) { o.ConfigFile = "/nonexistent/biomesh.json" })
	assert.Error(t, err)
}

func TestEnvOverrides_Profile(t *testing.T) {
	t.Setenv("BIOMESH_PROFILE", "development")
	c, err := New()
	require.NoError(t, err)
	assert.Equal(t, "development", c.Profile())
}

func TestEnvOverrides_GlobalModel(t *testing.T) {
	t.Setenv("BIOMESH_GLOBAL_MODEL", "gpt-4o-mini")
	c, err := New()
	require.NoError(t, err)

	for _, name := range c.Agents() {
		assert.Equal(t, "gpt-4o-mini", c.Agent(name).Model, "agent %s", name)
		assert.Equal(t, "openai", c.Agent(name).Provider, "agent %s", name)
	}
}

func TestEnvOverrides_PerAgent(t *testing.T) {
	t.Setenv("BIOMESH_SUPERVISOR_MODEL", "claude-haiku")
	t.Setenv("BIOMESH_SUPERVISOR_TEMPERATURE", "0.9")
	c, err := New()
	require.NoError(t, err)

	supervisor := c.Agent(AgentSupervisor)
	assert.Equal(t, "claude-3-5-haiku-20241022", supervisor.Model, "preset names resolve")
	assert.Equal(t, 0.9, supervisor.Temperature)

	// Other agents are untouched.
	assert.Equal(t, "claude-3-5-sonnet-20241022", c.Agent(AgentMethod).Model)
}

func TestEnvOverrides_RawModelID(t *testing.T) {
	t.Setenv("BIOMESH_METHOD_AGENT_MODEL", "claude-3-opus-20240229")
	c, err := New()
	require.NoError(t, err)

	method := c.Agent(AgentMethod)
	assert.Equal(t, "claude-3-opus-20240229", method.Model)
	assert.Equal(t, "anthropic", method.Provider, "provider inferred from the model id")
}

func TestAgent_UnknownFallsBackToSupervisor(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	assert.Equal(t, c.Agent(AgentSupervisor), c.Agent("brand_new_node"))
}

func TestAgents_Sorted(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	assert.Equal(t, []string{
		AgentGeneralConversation,
		AgentMethod,
		AgentSupervisor,
		AgentTranscriptomics,
	}, c.Agents())
}

func TestAPIKey_EnvFallback(t *testing.T) {
	t.Setenv("BIOMESH_ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-plain")
	c, err := New()
	require.NoError(t, err)
	assert.Equal(t, "sk-plain", c.APIKey("anthropic"))

	t.Setenv("BIOMESH_ANTHROPIC_API_KEY", "sk-prefixed")
	assert.Equal(t, "sk-prefixed", c.APIKey("anthropic"))
}
