package get_completions

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/gitlab-ls/pkg/cache"
	"github.com/walteh/gitlab-ls/pkg/completion"
	"github.com/walteh/gitlab-ls/pkg/config"
	"github.com/walteh/gitlab-ls/pkg/gitlab"
	"github.com/walteh/gitlab-ls/pkg/logging"
	"github.com/walteh/gitlab-ls/pkg/lsp/protocol"
	"gitlab.com/tozd/go/errors"
)

type Handler struct {
	project   string
	filePath  string
	line      int
	character int
	apiBase   string
	debug     bool

	out io.Writer
}

func NewGetCompletionsCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "get-completions [project] [file-path] [line] [character]",
		Short: "print the completions for a position in a file as json",
		Long:  "print the completions for a position in a file as json. character counts utf-16 code units, as language server clients do.",
	}

	cmd.Args = cobra.ExactArgs(4)

	cmd.Flags().StringVar(&me.apiBase, "api-base", gitlab.DefaultAPIBase, "GitLab REST API base url")
	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.project = args[0]
		me.filePath = args[1]
		var err error
		me.line, err = strconv.Atoi(args[2])
		if err != nil {
			return errors.Errorf("invalid line number: %w", err)
		}
		me.character, err = strconv.Atoi(args[3])
		if err != nil {
			return errors.Errorf("invalid character number: %w", err)
		}
		me.out = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	ctx = logging.WithLogger(ctx, logging.NewConsoleLogger(os.Stderr, me.debug))

	options, err := json.Marshal(map[string]string{"project": me.project})
	if err != nil {
		return errors.Errorf("encoding options: %w", err)
	}

	cfg, err := config.Load(os.LookupEnv, options, me.apiBase)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	content, err := os.ReadFile(me.filePath)
	if err != nil {
		return errors.Errorf("failed to read file: %w", err)
	}

	c := cache.New()
	if err := c.Populate(ctx, gitlab.NewClient(cfg.APIBase, cfg.APIKey), cfg.Project); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("continuing with partial completions")
	}

	pos := protocol.Position{Line: uint32(me.line), Character: uint32(me.character)}
	resolved, ok, err := completion.ResolvePosition(string(content), pos, protocol.PositionEncodingUTF16, c)
	if err != nil {
		return errors.Errorf("failed to resolve completion context: %w", err)
	}

	var items []protocol.CompletionItem
	if ok {
		items = completion.Assemble(resolved)
	}

	if err := json.NewEncoder(me.out).Encode(items); err != nil {
		return errors.Errorf("failed to encode completions: %w", err)
	}

	return nil
}
