package config

import (
	"bytes"
	"encoding/json"
	"os"

	"gitlab.com/tozd/go/errors"
)

const TokenEnvVar = "GITLAB_API_PRIVATE_TOKEN"

var (
	ErrMissingToken   = errors.Base("no " + TokenEnvVar + " environment variable detected")
	ErrMissingProject = errors.Base("required configuration param 'project' not supplied")
	ErrInvalidProject = errors.Base("invalid configuration param 'project' supplied, expected string")
	ErrInvalidAPIBase = errors.Base("invalid configuration param 'apiBase' supplied, expected string")
)

// Config is fixed once the client has initialized the server.
type Config struct {
	APIKey  string
	Project string
	APIBase string
}

// LookupEnv matches os.LookupEnv so tests can swap the environment.
type LookupEnv func(key string) (string, bool)

// InitializationOptions is what clients send as initializationOptions.
// Values are kept raw so a wrong type can be told apart from a missing key.
type InitializationOptions struct {
	Project json.RawMessage `json:"project"`
	APIBase json.RawMessage `json:"apiBase"`
}

// Load builds the config from the environment and the client's
// initializationOptions. defaultAPIBase is used unless the client overrides
// it. The token is checked first so nothing else is looked at without it.
func Load(lookup LookupEnv, rawOptions json.RawMessage, defaultAPIBase string) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	token, ok := lookup(TokenEnvVar)
	if !ok || token == "" {
		return nil, ErrMissingToken
	}

	cfg := &Config{
		APIKey:  token,
		APIBase: defaultAPIBase,
	}

	// anything but an object carries no project
	var opts InitializationOptions
	if len(rawOptions) > 0 && !isNull(rawOptions) {
		if !isObject(rawOptions) {
			return nil, ErrMissingProject
		}
		if err := json.Unmarshal(rawOptions, &opts); err != nil {
			return nil, errors.Errorf("decoding initialization options: %w", err)
		}
	}

	project, present, err := optionalString(opts.Project)
	if err != nil {
		return nil, ErrInvalidProject
	}
	if !present || project == "" {
		return nil, ErrMissingProject
	}
	cfg.Project = project

	apiBase, present, err := optionalString(opts.APIBase)
	if err != nil {
		return nil, ErrInvalidAPIBase
	}
	if present && apiBase != "" {
		cfg.APIBase = apiBase
	}

	return cfg, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func optionalString(raw json.RawMessage) (string, bool, error) {
	if len(raw) == 0 || isNull(raw) {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", true, errors.Errorf("expected string: %w", err)
	}
	return s, true, nil
}
