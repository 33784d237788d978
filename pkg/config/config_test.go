package config_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/gitlab-ls/pkg/config"
	"gitlab.com/tozd/go/errors"
)

func env(vals map[string]string) config.LookupEnv {
	return func(key string) (string, bool) {
		v, ok := vals[key]
		return v, ok
	}
}

func TestLoad(t *testing.T) {
	withToken := env(map[string]string{config.TokenEnvVar: "secret"})

	tests := []struct {
		name    string
		env     config.LookupEnv
		options string
		want    *config.Config
		wantErr error
	}{
		{
			name:    "project only",
			env:     withToken,
			options: `{"project":"group/project"}`,
			want:    &config.Config{APIKey: "secret", Project: "group/project", APIBase: "https://default"},
		},
		{
			name:    "api base override",
			env:     withToken,
			options: `{"project":"group/project","apiBase":"https://gitlab.example.com/api/v4"}`,
			want:    &config.Config{APIKey: "secret", Project: "group/project", APIBase: "https://gitlab.example.com/api/v4"},
		},
		{
			name:    "missing token",
			env:     env(nil),
			options: `{"project":"group/project"}`,
			wantErr: config.ErrMissingToken,
		},
		{
			name:    "empty token",
			env:     env(map[string]string{config.TokenEnvVar: ""}),
			options: `{"project":"group/project"}`,
			wantErr: config.ErrMissingToken,
		},
		{
			name:    "token is checked before project",
			env:     env(nil),
			options: `{"project":42}`,
			wantErr: config.ErrMissingToken,
		},
		{
			name:    "no options",
			env:     withToken,
			options: ``,
			wantErr: config.ErrMissingProject,
		},
		{
			name:    "null options",
			env:     withToken,
			options: `null`,
			wantErr: config.ErrMissingProject,
		},
		{
			name:    "options without project",
			env:     withToken,
			options: `{"other":true}`,
			wantErr: config.ErrMissingProject,
		},
		{
			name:    "options are a string",
			env:     withToken,
			options: `"group/project"`,
			wantErr: config.ErrMissingProject,
		},
		{
			name:    "options are an array",
			env:     withToken,
			options: ` [] `,
			wantErr: config.ErrMissingProject,
		},
		{
			name:    "options are a number",
			env:     withToken,
			options: `7`,
			wantErr: config.ErrMissingProject,
		},
		{
			name:    "project wrong type",
			env:     withToken,
			options: `{"project":42}`,
			wantErr: config.ErrInvalidProject,
		},
		{
			name:    "api base wrong type",
			env:     withToken,
			options: `{"project":"p","apiBase":false}`,
			wantErr: config.ErrInvalidAPIBase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := config.Load(tt.env, json.RawMessage(tt.options), "https://default")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadErrorMessages(t *testing.T) {
	_, err := config.Load(env(nil), nil, "")
	require.Error(t, err)
	assert.Equal(t, "no GITLAB_API_PRIVATE_TOKEN environment variable detected", err.Error())

	_, err = config.Load(env(map[string]string{config.TokenEnvVar: "x"}), json.RawMessage(`{"project":[]}`), "")
	require.Error(t, err)
	assert.Equal(t, "invalid configuration param 'project' supplied, expected string", err.Error())

	_, err = config.Load(env(map[string]string{config.TokenEnvVar: "x"}), json.RawMessage(`"group/project"`), "")
	require.Error(t, err)
	assert.Equal(t, "required configuration param 'project' not supplied", err.Error())
}
