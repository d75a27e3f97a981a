package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/biomesh-ai/biomesh/client"
	"github.com/biomesh-ai/biomesh/core"
	"github.com/biomesh-ai/biomesh/logging"
)

// Options holds configuration overrides passed to New().
type Options struct {
	// Host and Port form the listen address. Defaults: localhost:8080.
	Host string
	Port int
	// WorkspaceRoot is the directory session workspaces are created under.
	// Defaults to "./biomesh_sessions".
	WorkspaceRoot string
	// Debug keeps gin in debug mode.
	Debug bool
	// Logger receives structured server logs.
	Logger logging.Logger
}

// session pairs a client with a mutex that serializes handler access to it.
type session struct {
	mu        sync.Mutex
	client    *client.Client
	createdAt time.Time
}

// Server hosts sessions over HTTP.
type Server struct {
	engine        core.Engine
	router        *gin.Engine
	httpServer    *http.Server
	workspaceRoot string
	logger        logging.Logger
	startTime     time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// New constructs a Server around the given execution engine.
func New(engine core.Engine, optFns ...func(o *Options)) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("server requires an engine")
	}
	opts := Options{
		Host:          "localhost",
		Port:          8080,
		WorkspaceRoot: "./biomesh_sessions",
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = 32 << 20

	s := &Server{
		engine:        engine,
		router:        router,
		workspaceRoot: opts.WorkspaceRoot,
		logger:        opts.Logger,
		startTime:     time.Now(),
		sessions:      make(map[string]*session),
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler:      router,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")

	api.GET("/health", s.handleHealth)

	sessions := api.Group("/sessions")
	{
		sessions.POST("", s.handleCreateSession)
		sessions.GET("", s.handleListSessions)
		sessions.GET("/:id", s.handleGetSession)
		sessions.DELETE("/:id", s.handleDeleteSession)
		sessions.POST("/:id/query", s.handleQuery)
		sessions.GET("/:id/history", s.handleHistory)
		sessions.POST("/:id/reset", s.handleReset)
		sessions.POST("/:id/export", s.handleExport)

		sessions.POST("/:id/files", s.handleUploadFile)
		sessions.GET("/:id/files", s.handleListFiles)
		sessions.GET("/:id/files/download", s.handleDownloadFile)
		sessions.GET("/:id/files/info", s.handleFileInfo)
		sessions.DELETE("/:id/files", s.handleDeleteFile)
	}
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts serving and blocks until the listener fails.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// createSession registers a new session and returns its id.
func (s *Server) createSession() (string, *session, error) {
	id := uuid.NewString()
	cl, err := client.New(s.engine, func(o *client.Options) {
		o.SessionID = id
		o.WorkspacePath = filepath.Join(s.workspaceRoot, id)
		o.Logger = s.logger
	})
	if err != nil {
		return "", nil, err
	}
	sess := &session{client: cl, createdAt: time.Now()}
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return id, sess, nil
}

func (s *Server) lookup(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}
