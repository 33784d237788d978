package lsp

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/walteh/gitlab-ls/pkg/cache"
	"github.com/walteh/gitlab-ls/pkg/candidate"
	"github.com/walteh/gitlab-ls/pkg/config"
	"github.com/walteh/gitlab-ls/pkg/lsp/protocol"
)

// CodeConfigurationError is returned from initialize when the server cannot
// be configured.
const CodeConfigurationError int64 = 1

func configurationError(err error) *jsonrpc2.Error {
	return &jsonrpc2.Error{
		Code:    CodeConfigurationError,
		Message: err.Error(),
	}
}

// negotiateEncoding prefers utf-32, which matches how lines are indexed,
// and falls back to the protocol default.
func negotiateEncoding(caps protocol.ClientCapabilities) protocol.PositionEncodingKind {
	if caps.SupportsPositionEncoding(protocol.PositionEncodingUTF32) {
		return protocol.PositionEncodingUTF32
	}
	return protocol.PositionEncodingUTF16
}

func capabilities(enc protocol.PositionEncodingKind) protocol.ServerCapabilities {
	return protocol.ServerCapabilities{
		PositionEncoding: enc,
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: true,
			Change:    protocol.SyncFull,
		},
		CompletionProvider: &protocol.CompletionOptions{
			ResolveProvider:   false,
			TriggerCharacters: candidate.TriggerCharacters(),
		},
	}
}

// Initialize validates the configuration, loads the project's labels,
// milestones and members, and reports the server capabilities. Resource
// fetches that fail only leave their completions empty.
func (s *Server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("server", s.id).Str("version", s.version).Msgf("initializing %s", ServerName)
	if params.ClientInfo != nil {
		logger.Debug().Str("client", params.ClientInfo.Name).Str("client_version", params.ClientInfo.Version).Msg("client info")
	}

	s.mu.Lock()
	already := s.initialized
	s.mu.Unlock()
	if already {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidRequest,
			Message: "server already initialized",
		}
	}

	cfg, err := config.Load(s.lookupEnv, params.InitializationOptions, s.defaultAPIBase)
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return nil, configurationError(err)
	}

	logger.Debug().Str("project", cfg.Project).Str("api_base", cfg.APIBase).Msg("loading project resources")

	// fetch without the lock so document traffic is not held up by the api
	sets, err := cache.FetchAll(ctx, s.newFetcher(cfg), cfg.Project, candidate.Fetchable...)
	if err != nil {
		logger.Error().Err(err).Msg("some project resources could not be loaded, their completions will be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.config = cfg
	s.encoding = negotiateEncoding(params.Capabilities)
	for kind, set := range sets {
		s.cache.Store(kind, set)
	}
	s.initialized = true

	for _, kind := range candidate.Fetchable {
		logger.Debug().Str("kind", kind.String()).Int("count", s.cache.Get(kind).Len()).Msg("cached completions")
	}
	logger.Debug().Str("position_encoding", string(s.encoding)).Msg("negotiated position encoding")

	return &protocol.InitializeResult{
		Capabilities: capabilities(s.encoding),
		ServerInfo: &protocol.ServerInfo{
			Name:    ServerName,
			Version: s.version,
		},
	}, nil
}
