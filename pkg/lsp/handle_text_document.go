package lsp

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/gitlab-ls/pkg/completion"
	"github.com/walteh/gitlab-ls/pkg/lsp/protocol"
	"gitlab.com/tozd/go/errors"
)

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	item := params.TextDocument

	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents.Store(&Document{
		URI:        item.URI,
		LanguageID: item.LanguageID,
		Version:    item.Version,
		Content:    item.Text,
	})

	zerolog.Ctx(ctx).Debug().
		Str("uri", string(item.URI)).
		Str("language", item.LanguageID).
		Int32("version", item.Version).
		Int("length", len(item.Text)).
		Msg("document opened")
	return nil
}

// DidChange replaces the document text with the last change in the batch.
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	logger := zerolog.Ctx(ctx)

	if len(params.ContentChanges) == 0 {
		logger.Debug().Str("uri", string(params.TextDocument.URI)).Msg("change without content, ignoring")
		return nil
	}

	last := params.ContentChanges[len(params.ContentChanges)-1]

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		logger.Debug().Str("uri", string(params.TextDocument.URI)).Msg("change for unopened document, storing it")
		doc = &Document{URI: params.TextDocument.URI}
	}
	doc.Version = params.TextDocument.Version
	doc.Content = last.Text
	s.documents.Store(doc)

	logger.Debug().
		Str("uri", string(params.TextDocument.URI)).
		Int32("version", doc.Version).
		Int("length", len(doc.Content)).
		Msg("document changed")
	return nil
}

func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	zerolog.Ctx(ctx).Debug().Str("uri", string(params.TextDocument.URI)).Msg("document saved")
	return nil
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents.Delete(params.TextDocument.URI)

	zerolog.Ctx(ctx).Debug().Str("uri", string(params.TextDocument.URI)).Int("open_documents", s.documents.Len()).Msg("document closed")
	return nil
}

// Completion returns the candidates for the reference being typed at the
// requested position. A nil slice means there is nothing to offer.
func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) ([]protocol.CompletionItem, error) {
	logger := zerolog.Ctx(ctx)
	uri := params.TextDocument.URI
	pos := params.Position

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents.Get(uri)
	if !ok {
		logger.Debug().Str("uri", string(uri)).Msg("completion for unknown document")
		return nil, nil
	}

	resolved, ok, err := completion.ResolvePosition(doc.Content, pos, s.encoding, s.cache)
	if err != nil {
		logger.Debug().Err(err).Uint32("line", pos.Line).Uint32("character", pos.Character).Msg("bad completion position")
		return nil, invalidParams(errors.Errorf("resolving completion context: %w", err))
	}
	if !ok {
		logger.Debug().Uint32("line", pos.Line).Uint32("character", pos.Character).Msg("no trigger under cursor")
		return nil, nil
	}

	items := completion.Assemble(resolved)

	logger.Debug().
		Str("kind", resolved.Kind.String()).
		Int("start", resolved.Start).
		Int("end", resolved.End).
		Int("items", len(items)).
		Msg("completion resolved")
	return items, nil
}
