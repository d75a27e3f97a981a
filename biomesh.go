// Package biomesh provides a high-level façade over the session client,
// execution engine and artifact store, enabling rapid construction of
// conversational analysis sessions. Most applications interact with this
// package by:
//  1. Creating a BioMesh via New() around a configured engine (or the
//     default supervisor/expert mesh)
//  2. Opening one or more sessions (OpenSession)
//  3. Running queries against a session and exporting its artifacts
//
// All defaults are safe for local development; production deployments
// typically supply provider-backed models and a structured logger.
package biomesh

import (
	"fmt"
	"path/filepath"

	"github.com/biomesh-ai/biomesh/client"
	"github.com/biomesh-ai/biomesh/core"
	"github.com/biomesh-ai/biomesh/engine"
	"github.com/biomesh-ai/biomesh/logging"
	"github.com/biomesh-ai/biomesh/model"
)

// Options configures the BioMesh instance.
type Options struct {
	// Engine overrides the execution engine. When nil a single-expert mesh
	// backed by Model is assembled.
	Engine core.Engine

	// Model backs the default engine when Engine is nil. When both are nil
	// a deterministic mock model is used, which is only useful for tests
	// and examples.
	Model model.Model

	// WorkspaceRoot is the directory session workspaces are created under.
	// Defaults to the current directory.
	WorkspaceRoot string

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// BioMesh is the high-level façade aggregating the engine and session setup.
type BioMesh struct {
	engine        core.Engine
	workspaceRoot string
	logger        logging.Logger
}

// New creates a BioMesh instance with optional overrides.
func New(optFns ...func(o *Options)) (*BioMesh, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	eng := opts.Engine
	if eng == nil {
		m := opts.Model
		if m == nil {
			m = model.NewMockModel("biomesh-default")
		}
		var err error
		eng, err = engine.New(func(o *engine.Options) {
			o.Experts = []engine.Expert{{
				Name:         "assistant",
				Description:  "general analysis assistant",
				Instructions: "You are a helpful bioinformatics assistant.",
				Model:        m,
			}}
			o.Logger = opts.Logger
		})
		if err != nil {
			return nil, fmt.Errorf("build default engine: %w", err)
		}
	}

	return &BioMesh{
		engine:        eng,
		workspaceRoot: opts.WorkspaceRoot,
		logger:        opts.Logger,
	}, nil
}

// Engine returns the underlying execution engine.
func (b *BioMesh) Engine() core.Engine { return b.engine }

// OpenSession creates a session client with its own workspace.
func (b *BioMesh) OpenSession(sessionID string) (*client.Client, error) {
	return client.New(b.engine, func(o *client.Options) {
		o.SessionID = sessionID
		if b.workspaceRoot != "" && sessionID != "" {
			o.WorkspacePath = filepath.Join(b.workspaceRoot, sessionID)
		} else if b.workspaceRoot != "" {
			o.WorkspacePath = b.workspaceRoot
		}
		o.Logger = b.logger
	})
}
