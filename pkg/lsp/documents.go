package lsp

import (
	"github.com/walteh/gitlab-ls/pkg/lsp/protocol"
)

// Document represents a text document with its metadata
type Document struct {
	URI        protocol.DocumentURI
	LanguageID string
	Version    int32
	Content    string
}

// DocumentManager holds the full text of every open document, keyed by path.
// It does no locking of its own; the Server serializes access.
type DocumentManager struct {
	store map[string]*Document
}

func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		store: map[string]*Document{},
	}
}

func (m *DocumentManager) Get(uri protocol.DocumentURI) (*Document, bool) {
	doc, ok := m.store[uri.Path()]
	return doc, ok
}

func (m *DocumentManager) Store(doc *Document) {
	m.store[doc.URI.Path()] = doc
}

func (m *DocumentManager) Delete(uri protocol.DocumentURI) {
	delete(m.store, uri.Path())
}

func (m *DocumentManager) Len() int {
	return len(m.store)
}
