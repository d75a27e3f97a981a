package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Agent names recognized by the default profiles.
const (
	AgentSupervisor          = "supervisor"
	AgentTranscriptomics     = "transcriptomics_expert"
	AgentMethod              = "method_agent"
	AgentGeneralConversation = "general_conversation"
)

// ModelPreset names a known provider/model pair with sane token limits.
type ModelPreset struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	MaxTokens int64  `json:"max_tokens"`
}

// Presets maps short preset names to concrete models. Config files and
// environment overrides may reference either a preset name or a raw model id.
var Presets = map[string]ModelPreset{
	"claude-sonnet": {Provider: "anthropic", Model: "claude-3-5-sonnet-20241022", MaxTokens: 8192},
	"claude-haiku":  {Provider: "anthropic", Model: "claude-3-5-haiku-20241022", MaxTokens: 8192},
	"claude-opus":   {Provider: "anthropic", Model: "claude-3-opus-20240229", MaxTokens: 4096},
	"gpt-4o":        {Provider: "openai", Model: "gpt-4o", MaxTokens: 16384},
	"gpt-4o-mini":   {Provider: "openai", Model: "gpt-4o-mini", MaxTokens: 16384},
}

// AgentConfig holds the resolved model settings for one agent.
type AgentConfig struct {
	Preset      string  `json:"preset"`
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int64   `json:"max_tokens"`
}

// Profile is a named set of agent configurations.
type Profile map[string]AgentConfig

// Profiles holds the built-in deployment profiles. "production" favors the
// strongest models, "cost-optimized" routes everything through cheap ones,
// and "high-performance" raises token limits for long analyses.
var Profiles = map[string]Profile{
	"development": {
		AgentSupervisor:          {Preset: "claude-haiku", Temperature: 0.1},
		AgentTranscriptomics:     {Preset: "claude-haiku", Temperature: 0.2},
		AgentMethod:              {Preset: "claude-haiku", Temperature: 0.2},
		AgentGeneralConversation: {Preset: "claude-haiku", Temperature: 0.7},
	},
	"production": {
		AgentSupervisor:          {Preset: "claude-sonnet", Temperature: 0.1},
		AgentTranscriptomics:     {Preset: "claude-sonnet", Temperature: 0.2},
		AgentMethod:              {Preset: "claude-sonnet", Temperature: 0.2},
		AgentGeneralConversation: {Preset: "claude-sonnet", Temperature: 0.7},
	},
	"high-performance": {
		AgentSupervisor:          {Preset: "claude-sonnet", Temperature: 0.1, MaxTokens: 16384},
		AgentTranscriptomics:     {Preset: "claude-opus", Temperature: 0.2, MaxTokens: 8192},
		AgentMethod:              {Preset: "claude-opus", Temperature: 0.2, MaxTokens: 8192},
		AgentGeneralConversation: {Preset: "claude-sonnet", Temperature: 0.7},
	},
	"cost-optimized": {
		AgentSupervisor:          {Preset: "claude-haiku", Temperature: 0.1},
		AgentTranscriptomics:     {Preset: "gpt-4o-mini", Temperature: 0.2},
		AgentMethod:              {Preset: "gpt-4o-mini", Temperature: 0.2},
		AgentGeneralConversation: {Preset: "claude-haiku", Temperature: 0.7},
	},
}

// DefaultProfile is used when neither the config file nor the environment
// names one.
const DefaultProfile = "production"

// ExportConfig controls what ExportSession and the data packager include.
type ExportConfig struct {
	IncludePlots      bool   `json:"include_plots"`
	IncludeRawData    bool   `json:"include_raw_data"`
	IncludeProvenance bool   `json:"include_provenance"`
	OutputDir         string `json:"output_dir"`
}

// Options configures a Configurator.
type Options struct {
	// Profile selects a built-in profile by name. Empty means DefaultProfile.
	Profile string
	// ConfigFile is an optional JSON file layered over the profile.
	ConfigFile string
	// EnvPrefix is the environment variable prefix. Defaults to "BIOMESH".
	EnvPrefix string
}

// Configurator resolves per-agent model settings from profiles, an optional
// config file, and environment overrides.
type Configurator struct {
	profile string
	agents  map[string]AgentConfig
	export  ExportConfig
	v       *viper.Viper
}

type fileConfig struct {
	Profile string                 `json:"profile"`
	Agents  map[string]AgentConfig `json:"agents"`
	Export  *ExportConfig          `json:"export"`
}

// New creates a Configurator with all three layers resolved.
func New(optFns ...func(o *Options)) (*Configurator, error) {
	opts := Options{EnvPrefix: "BIOMESH"}
	for _, fn := range optFns {
		fn(&opts)
	}

	v := viper.New()
	v.SetEnvPrefix(opts.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var fc fileConfig
	if opts.ConfigFile != "" {
		raw, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(raw, &fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", opts.ConfigFile, err)
		}
	}

	profile := DefaultProfile
	if fc.Profile != "" {
		profile = fc.Profile
	}
	if opts.Profile != "" {
		profile = opts.Profile
	}
	if env := v.GetString("profile"); env != "" {
		profile = env
	}

	base, ok := Profiles[profile]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", profile)
	}

	c := &Configurator{
		profile: profile,
		agents:  make(map[string]AgentConfig, len(base)),
		export: ExportConfig{
			IncludePlots:      true,
			IncludeRawData:    true,
			IncludeProvenance: true,
		},
		v: v,
	}

	for name, ac := range base {
		c.agents[name] = resolvePreset(ac)
	}
	for name, ac := range fc.Agents {
		merged := c.agents[name]
		if ac.Preset != "" {
			merged = resolvePreset(AgentConfig{Preset: ac.Preset, Temperature: merged.Temperature})
		}
		if ac.Model != "" {
			merged.Model = ac.Model
			merged.Preset = ""
		}
		if ac.Provider != "" {
			merged.Provider = ac.Provider
		}
		if ac.Temperature != 0 {
			merged.Temperature = ac.Temperature
		}
		if ac.MaxTokens != 0 {
			merged.MaxTokens = ac.MaxTokens
		}
		c.agents[name] = merged
	}
	if fc.Export != nil {
		c.export = *fc.Export
	}

	c.applyEnvOverrides()
	return c, nil
}

// applyEnvOverrides layers BIOMESH_GLOBAL_MODEL and per-agent
// BIOMESH_<AGENT>_MODEL / BIOMESH_<AGENT>_TEMPERATURE on top of the
// resolved settings.
func (c *Configurator) applyEnvOverrides() {
	if global := c.v.GetString("global_model"); global != "" {
		for name, ac := range c.agents {
			c.agents[name] = withModel(ac, global)
		}
	}
	for name, ac := range c.agents {
		key := strings.ToLower(name)
		if m := c.v.GetString(key + "_model"); m != "" {
			ac = withModel(ac, m)
		}
		if c.v.IsSet(key + "_temperature") {
			ac.Temperature = c.v.GetFloat64(key + "_temperature")
		}
		c.agents[name] = ac
	}
}

// withModel applies a preset name or raw model id to an agent config.
func withModel(ac AgentConfig, model string) AgentConfig {
	if preset, ok := Presets[model]; ok {
		ac.Preset = model
		ac.Provider = preset.Provider
		ac.Model = preset.Model
		if ac.MaxTokens == 0 || ac.MaxTokens > preset.MaxTokens {
			ac.MaxTokens = preset.MaxTokens
		}
		return ac
	}
	ac.Preset = ""
	ac.Model = model
	if strings.HasPrefix(model, "gpt-") || strings.HasPrefix(model, "o1") {
		ac.Provider = "openai"
	} else if strings.HasPrefix(model, "claude-") {
		ac.Provider = "anthropic"
	}
	return ac
}

func resolvePreset(ac AgentConfig) AgentConfig {
	preset, ok := Presets[ac.Preset]
	if !ok {
		return ac
	}
	ac.Provider = preset.Provider
	ac.Model = preset.Model
	if ac.MaxTokens == 0 {
		ac.MaxTokens = preset.MaxTokens
	}
	return ac
}

// Profile returns the active profile name.
func (c *Configurator) Profile() string { return c.profile }

// Agent returns the resolved configuration for the named agent. Unknown
// agents inherit the supervisor configuration so new graph nodes work
// without a config change.
func (c *Configurator) Agent(name string) AgentConfig {
	if ac, ok := c.agents[name]; ok {
		return ac
	}
	return c.agents[AgentSupervisor]
}

// Agents returns the resolved agent names in sorted order.
func (c *Configurator) Agents() []string {
	names := make([]string, 0, len(c.agents))
	for name := range c.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Export returns the export settings.
func (c *Configurator) Export() ExportConfig { return c.export }

// APIKey returns the provider API key from the environment
// (BIOMESH_ANTHROPIC_API_KEY falls back to ANTHROPIC_API_KEY).
func (c *Configurator) APIKey(provider string) string {
	if key := c.v.GetString(provider + "_api_key"); key != "" {
		return key
	}
	return os.Getenv(strings.ToUpper(provider) + "_API_KEY")
}
