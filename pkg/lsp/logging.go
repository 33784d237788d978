package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/walteh/gitlab-ls/pkg/logging"
	"github.com/walteh/gitlab-ls/pkg/lsp/protocol"
)

// Notifier is the part of a jsonrpc2 connection the log writer needs.
type Notifier interface {
	Notify(ctx context.Context, method string, params interface{}, opts ...jsonrpc2.CallOption) error
}

// LSPWriter implements io.Writer to redirect zerolog output to the client
// as window/logMessage notifications.
type LSPWriter struct {
	mu   sync.Mutex
	conn Notifier
	ctx  context.Context
}

func NewLSPWriter(ctx context.Context, conn Notifier) *LSPWriter {
	return &LSPWriter{
		conn: conn,
		ctx:  ctx,
	}
}

// ApplyLSPWriter returns a ctx whose logger writes to the client, keeping
// the level of the logger already in ctx.
func (s *Server) ApplyLSPWriter(ctx context.Context, conn Notifier) context.Context {
	level := zerolog.Ctx(ctx).GetLevel()

	logger := zerolog.New(NewLSPWriter(ctx, conn)).
		Level(level).
		With().
		Str("server", s.id).
		Logger().
		Hook(logging.CallerHook{WithColor: false})

	return logger.WithContext(ctx)
}

func (w *LSPWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var entry map[string]interface{}
	if err := json.Unmarshal(p, &entry); err != nil {
		return len(p), nil // skip malformed entries
	}

	level := protocol.Log
	if l, ok := entry["level"].(string); ok {
		level = protocol.MessageTypeFromZerolog(l)
	}
	delete(entry, "level")

	msg := ""
	if m, ok := entry["message"].(string); ok {
		msg = m
	}
	delete(entry, "message")

	err = w.conn.Notify(w.ctx, "window/logMessage", protocol.LogMessageParams{
		Type:    level,
		Message: formatLogMessage(msg, entry),
	})
	return len(p), err
}

func formatLogMessage(msg string, fields map[string]interface{}) string {
	if len(fields) == 0 {
		return msg
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	return b.String()
}
