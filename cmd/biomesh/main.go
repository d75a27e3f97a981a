// Command biomesh is the conversational bioinformatics assistant CLI.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/openai/openai-go"
	"github.com/spf13/cobra"

	"github.com/biomesh-ai/biomesh/client"
	"github.com/biomesh-ai/biomesh/config"
	"github.com/biomesh-ai/biomesh/core"
	"github.com/biomesh-ai/biomesh/data"
	"github.com/biomesh-ai/biomesh/engine"
	"github.com/biomesh-ai/biomesh/export"
	"github.com/biomesh-ai/biomesh/logging"
	"github.com/biomesh-ai/biomesh/model"
	anthropicmodel "github.com/biomesh-ai/biomesh/model/anthropic"
	openaimodel "github.com/biomesh-ai/biomesh/model/openai"
	"github.com/biomesh-ai/biomesh/server"
)

const version = "0.3.0"

type cliFlags struct {
	workspace  string
	profile    string
	configFile string
	verbose    bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &cliFlags{}

	rootCmd := &cobra.Command{
		Use:   "biomesh",
		Short: "Conversational bioinformatics assistant",
		Long:  "biomesh runs a multi-agent analysis session over your datasets: load data, ask questions, collect plots, export everything.",
	}

	rootCmd.PersistentFlags().StringVarP(&flags.workspace, "workspace", "w", "", "Session workspace directory")
	rootCmd.PersistentFlags().StringVarP(&flags.profile, "profile", "p", "", "Model profile (development, production, high-performance, cost-optimized)")
	rootCmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(newChatCommand(flags))
	rootCmd.AddCommand(newServeCommand(flags))
	rootCmd.AddCommand(newExportCommand(flags))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("biomesh %s\n", version)
		},
	})
	return rootCmd
}

func newLogger(flags *cliFlags) logging.Logger {
	level := logging.LogLevelWarn
	if flags.verbose {
		level = logging.LogLevelDebug
	}
	return logging.NewSlogLogger(level, "text", false)
}

// buildEngine assembles the supervisor/expert mesh from the resolved config.
func buildEngine(cfg *config.Configurator, logger logging.Logger) (core.Engine, error) {
	experts := []engine.Expert{
		{
			Name:         config.AgentTranscriptomics,
			Description:  "Single-cell and bulk RNA-seq analysis: loading expression data, quality control, clustering, differential expression, visualization.",
			Instructions: "You are a transcriptomics expert. Analyze the loaded expression data and answer with concrete, method-level detail.",
		},
		{
			Name:         config.AgentMethod,
			Description:  "Bioinformatics methodology questions: which tool, pipeline or statistical approach fits the problem.",
			Instructions: "You are a bioinformatics methods expert. Recommend tools and pipelines with their trade-offs.",
		},
		{
			Name:         config.AgentGeneralConversation,
			Description:  "Everything else: greetings, clarifications, general science chat.",
			Instructions: "You are a helpful bioinformatics assistant.",
		},
	}
	for i := range experts {
		m, err := buildModel(cfg, experts[i].Name)
		if err != nil {
			return nil, err
		}
		experts[i].Model = m
	}

	supervisor, err := buildModel(cfg, config.AgentSupervisor)
	if err != nil {
		return nil, err
	}

	return engine.New(func(o *engine.Options) {
		o.Supervisor = supervisor
		o.Experts = experts
		o.DefaultExpert = config.AgentGeneralConversation
		o.Logger = logger
	})
}

func buildModel(cfg *config.Configurator, agent string) (model.Model, error) {
	ac := cfg.Agent(agent)
	switch ac.Provider {
	case "anthropic":
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.Model = anthropic.Model(ac.Model)
			o.Temperature = ac.Temperature
			o.MaxTokens = ac.MaxTokens
			o.APIKey = cfg.APIKey("anthropic")
		}), nil
	case "openai":
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			o.Model = openai.ChatModel(ac.Model)
			o.Temperature = ac.Temperature
			o.MaxTokens = ac.MaxTokens
			o.APIKey = cfg.APIKey("openai")
		}), nil
	default:
		return nil, fmt.Errorf("agent %s: unknown provider %q", agent, ac.Provider)
	}
}

func loadConfig(flags *cliFlags) (*config.Configurator, error) {
	return config.New(func(o *config.Options) {
		o.Profile = flags.profile
		o.ConfigFile = flags.configFile
	})
}

func newChatCommand(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(flags)
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			eng, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}
			cl, err := client.New(eng, func(o *client.Options) {
				o.WorkspacePath = flags.workspace
				o.Logger = logger
			})
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), cl)
		},
	}
}

func runChat(ctx context.Context, cl *client.Client) error {
	bold := color.New(color.Bold)
	prompt := color.New(color.FgCyan, color.Bold)
	answer := color.New(color.FgGreen)
	faint := color.New(color.Faint)

	bold.Printf("biomesh %s (session %s)\n", version, cl.SessionID())
	faint.Println("Type a question, or /status, /export, /reset, /quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		prompt.Print("you> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case "/quit", "/exit":
			return nil
		case "/reset":
			cl.Reset()
			faint.Println("conversation cleared")
			continue
		case "/status":
			status := cl.GetStatus()
			fmt.Printf("session: %s\nmessages: %d\ndata loaded: %v\nplots: %d\nworkspace: %s\n",
				status.SessionID, status.MessageCount, status.HasData, status.PlotCount, status.WorkspacePath)
			continue
		case "/export":
			path, err := cl.ExportSession()
			if err != nil {
				color.Red("export failed: %v", err)
				continue
			}
			faint.Printf("exported to %s\n", path)
			continue
		}

		for chunk := range cl.QueryStream(ctx, line) {
			switch chunk.Type {
			case client.ChunkStream:
				faint.Println(chunk.Content)
			case client.ChunkComplete:
				answer.Println(chunk.Content)
			case client.ChunkError:
				color.Red(chunk.Content)
			}
		}
	}
}

func newServeCommand(flags *cliFlags) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(flags)
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			eng, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}
			srv, err := server.New(eng, func(o *server.Options) {
				o.Host = host
				o.Port = port
				if flags.workspace != "" {
					o.WorkspaceRoot = flags.workspace
				}
				o.Debug = flags.verbose
				o.Logger = logger
			})
			if err != nil {
				return err
			}
			return srv.ListenAndServe()
		},
	}
	cmd.Flags().StringVar(&host, "host", "localhost", "Listen host")
	cmd.Flags().IntVar(&port, "port", 8080, "Listen port")
	return cmd
}

func newExportCommand(flags *cliFlags) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Package a workspace's data and plots into a zip archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(flags)
			dm, err := data.New(func(o *data.Options) {
				o.WorkspacePath = flags.workspace
				o.Logger = logger
			})
			if err != nil {
				return err
			}
			if input != "" {
				f, err := os.Open(input)
				if err != nil {
					return err
				}
				ds, err := data.LoadCSV(f)
				f.Close()
				if err != nil {
					return err
				}
				if _, err := dm.SetData(ds, map[string]any{"source": input}); err != nil {
					return err
				}
			}
			packager := export.New(dm, func(o *export.Options) {
				o.Logger = logger
			})
			path, err := packager.CreateDataPackage(dm.ExportsDir())
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "CSV file to load before packaging")
	return cmd
}
