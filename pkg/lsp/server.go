package lsp

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/walteh/gitlab-ls/pkg/cache"
	"github.com/walteh/gitlab-ls/pkg/config"
	"github.com/walteh/gitlab-ls/pkg/gitlab"
	"github.com/walteh/gitlab-ls/pkg/lsp/protocol"
)

const ServerName = "gitlab-ls"

// FetcherFactory builds the fetcher used to load GitLab resources once the
// configuration is known.
type FetcherFactory func(cfg *config.Config) cache.Fetcher

func defaultFetcherFactory(cfg *config.Config) cache.Fetcher {
	return gitlab.NewClient(cfg.APIBase, cfg.APIKey)
}

// Server represents an LSP server instance
type Server struct {
	// Server identification
	id      string
	version string

	defaultAPIBase string
	lookupEnv      config.LookupEnv
	newFetcher     FetcherFactory
	logToClient    bool

	// mu guards everything below
	mu          sync.Mutex
	config      *config.Config
	encoding    protocol.PositionEncodingKind
	documents   *DocumentManager
	cache       *cache.Cache
	initialized bool
	shutdown    bool
}

type Option func(*Server)

func WithAPIBase(apiBase string) Option {
	return func(s *Server) {
		s.defaultAPIBase = apiBase
	}
}

func WithLookupEnv(lookup config.LookupEnv) Option {
	return func(s *Server) {
		s.lookupEnv = lookup
	}
}

func WithFetcherFactory(f FetcherFactory) Option {
	return func(s *Server) {
		s.newFetcher = f
	}
}

// WithClientLogging forwards server logs to the client via window/logMessage.
func WithClientLogging(enabled bool) Option {
	return func(s *Server) {
		s.logToClient = enabled
	}
}

func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

func NewServer(opts ...Option) *Server {
	s := &Server{
		id:             xid.New().String(),
		defaultAPIBase: gitlab.DefaultAPIBase,
		newFetcher:     defaultFetcherFactory,
		encoding:       protocol.PositionEncodingUTF16,
		documents:      NewDocumentManager(),
		cache:          cache.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) ID() string {
	return s.id
}

// Config returns the configuration accepted by initialize, or nil.
func (s *Server) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Start serves the language server protocol over rwc until the client
// disconnects, sends exit, or ctx is cancelled.
func (s *Server) Start(ctx context.Context, rwc io.ReadWriteCloser) error {
	handler := jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
		if s.logToClient {
			ctx = s.ApplyLSPWriter(ctx, conn)
		}
		return s.handle(ctx, conn, req)
	})

	conn := jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}), handler)

	zerolog.Ctx(ctx).Debug().Str("server", s.id).Msg("language server started")

	select {
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	case <-conn.DisconnectNotify():
		zerolog.Ctx(ctx).Debug().Str("server", s.id).Msg("client disconnected")
		return nil
	}
}

func invalidParams(err error) *jsonrpc2.Error {
	return &jsonrpc2.Error{
		Code:    jsonrpc2.CodeInvalidParams,
		Message: err.Error(),
	}
}

func unmarshalParams(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidParams,
			Message: "missing params for " + req.Method,
		}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return invalidParams(err)
	}
	return nil
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	logger := zerolog.Ctx(ctx).With().Str("method", req.Method).Logger()
	ctx = logger.WithContext(ctx)

	if s.isShutdown() && req.Method != "exit" && !req.Notif {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidRequest,
			Message: "server is shutting down",
		}
	}

	switch req.Method {
	case "initialize":
		var params protocol.InitializeParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.Initialize(ctx, &params)

	case "initialized":
		return nil, s.Initialized(ctx)

	case "shutdown":
		return nil, s.Shutdown(ctx)

	case "exit":
		logger.Debug().Msg("exit requested, closing connection")
		return nil, conn.Close()

	case "textDocument/didOpen":
		var params protocol.DidOpenTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return nil, s.DidOpen(ctx, &params)

	case "textDocument/didChange":
		var params protocol.DidChangeTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return nil, s.DidChange(ctx, &params)

	case "textDocument/didSave":
		var params protocol.DidSaveTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return nil, s.DidSave(ctx, &params)

	case "textDocument/didClose":
		var params protocol.DidCloseTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return nil, s.DidClose(ctx, &params)

	case "textDocument/completion":
		var params protocol.CompletionParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		items, err := s.Completion(ctx, &params)
		if err != nil {
			return nil, err
		}
		if items == nil {
			return nil, nil
		}
		return items, nil

	case "$/cancelRequest",
		"$/setTrace",
		"workspace/didChangeConfiguration",
		"workspace/didChangeWatchedFiles",
		"workspace/didChangeWorkspaceFolders":
		logger.Debug().Msg("ignoring notification")
		return nil, nil

	default:
		if req.Notif {
			logger.Debug().Msg("ignoring unknown notification")
			return nil, nil
		}
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: "method not supported: " + req.Method,
		}
	}
}

func (s *Server) Initialized(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().Msg("client finished initializing")
	return nil
}

func (s *Server) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shutdown = true
	zerolog.Ctx(ctx).Debug().Int("open_documents", s.documents.Len()).Msg("shutting down")
	return nil
}
