package serve_lsp

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/gitlab-ls/pkg/gitlab"
	"github.com/walteh/gitlab-ls/pkg/logging"
	"github.com/walteh/gitlab-ls/pkg/lsp"
	"gitlab.com/tozd/go/errors"
)

type Handler struct {
	debug       bool
	apiBase     string
	logToClient bool
	version     string
}

func NewServeLSPCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "serve-lsp",
		Short: "start the language server on stdin/stdout",
	}

	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")
	cmd.Flags().StringVar(&me.apiBase, "api-base", gitlab.DefaultAPIBase, "GitLab REST API base url, clients may override it with the apiBase initialization option")
	cmd.Flags().BoolVar(&me.logToClient, "log-to-client", false, "send server logs to the client as window/logMessage notifications")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.version = cmd.Root().Version
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	// stdout carries the protocol, so logs go to stderr
	ctx = logging.WithLogger(ctx, logging.NewConsoleLogger(os.Stderr, me.debug))

	server := lsp.NewServer(
		lsp.WithAPIBase(me.apiBase),
		lsp.WithVersion(me.version),
		lsp.WithClientLogging(me.logToClient),
	)

	zerolog.Ctx(ctx).Info().Str("server", server.ID()).Str("api_base", me.apiBase).Msg("starting language server")

	if err := server.Start(ctx, lsp.NewReadWriteCloser(os.Stdin, os.Stdout)); err != nil {
		return errors.Errorf("error running language server: %w", err)
	}

	return nil
}
