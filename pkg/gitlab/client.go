package gitlab

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
	"github.com/walteh/gitlab-ls/pkg/candidate"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultAPIBase = "https://gitlab.com/api/v4"

	// only the first page is ever requested
	// https://docs.gitlab.com/ee/api/rest/index.html#offset-based-pagination
	PageSize = 100
)

// Client fetches project resources from the GitLab REST API.
type Client struct {
	apiBase string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(me *Client) {
		me.http = c
	}
}

func NewClient(apiBase, token string, opts ...Option) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	me := &Client{
		apiBase: apiBase,
		token:   token,
		http:    cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(me)
	}
	return me
}

func (me *Client) APIBase() string {
	return me.apiBase
}

// ResourceURL builds the listing url for a project resource.
func ResourceURL(apiBase, project string, kind candidate.Kind) (string, error) {
	path, err := kind.APIPath()
	if err != nil {
		return "", errors.Errorf("building resource url: %w", err)
	}

	apiBase = strings.TrimSuffix(apiBase, "/")
	project = strings.ReplaceAll(project, "/", "%2F")

	return fmt.Sprintf("%s/projects/%s/%s?per_page=%d", apiBase, project, path, PageSize), nil
}

// Fetch loads and normalizes one resource kind for the project.
func (me *Client) Fetch(ctx context.Context, project string, kind candidate.Kind) (candidate.Set, error) {
	url, err := ResourceURL(me.apiBase, project, kind)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("kind", kind.String()).Str("url", url).Logger()
	logger.Debug().Msg("fetching resource")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+me.token)
	req.Header.Set("Accept", "application/json")

	resp, err := me.http.Do(req)
	if err != nil {
		return nil, errors.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	set, err := Normalize(kind, body)
	if err != nil {
		return nil, err
	}

	logger.Debug().Int("count", set.Len()).Msg("fetched resource")

	return set, nil
}
