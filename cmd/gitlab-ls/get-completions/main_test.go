package get_completions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/gitlab-ls/pkg/config"
	"github.com/walteh/gitlab-ls/pkg/lsp/protocol"
)

func fakeGitLab(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/labels"):
			w.Write([]byte(`[{"name":"bug","description":"Something is broken"},{"name":"needs review","description":null}]`))
		case strings.HasSuffix(r.URL.Path, "/members/all"):
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"403 Forbidden"}`))
		case strings.HasSuffix(r.URL.Path, "/milestones"):
			w.Write([]byte(`[{"title":"v1","description":"","expired":false}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewGetCompletionsCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "issue.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGetCompletions(t *testing.T) {
	t.Setenv(config.TokenEnvVar, "glpat-test")
	srv := fakeGitLab(t)
	path := writeFile(t, "fix ~b\n@\n")

	t.Run("labels", func(t *testing.T) {
		out, err := run(t, "group/proj", path, "0", "5", "--api-base", srv.URL)
		require.NoError(t, err)

		var items []protocol.CompletionItem
		require.NoError(t, json.Unmarshal([]byte(out), &items))
		require.Len(t, items, 2)
		assert.Equal(t, `~"needs review" `, items[0].Label)
		assert.Equal(t, "~bug ", items[1].Label)
		assert.Equal(t, "Something is broken", items[1].Documentation)
		assert.Equal(t, uint32(4), items[1].TextEdit.Range.Start.Character)
		assert.Equal(t, uint32(6), items[1].TextEdit.Range.End.Character)
	})

	t.Run("failed kind is empty", func(t *testing.T) {
		out, err := run(t, "group/proj", path, "1", "1", "--api-base", srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "[]\n", out)
	})

	t.Run("no trigger", func(t *testing.T) {
		out, err := run(t, "group/proj", path, "0", "2", "--api-base", srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "null\n", out)
	})

	t.Run("bad position", func(t *testing.T) {
		_, err := run(t, "group/proj", path, "9", "0", "--api-base", srv.URL)
		require.Error(t, err)
	})
}

func TestGetCompletionsArgs(t *testing.T) {
	_, err := run(t, "group/proj", "file.md", "x", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid line number")

	_, err = run(t, "group/proj")
	require.Error(t, err)
}

func TestGetCompletionsMissingToken(t *testing.T) {
	t.Setenv(config.TokenEnvVar, "")
	path := writeFile(t, "~")

	_, err := run(t, "group/proj", path, "0", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no GITLAB_API_PRIVATE_TOKEN environment variable detected")
}
