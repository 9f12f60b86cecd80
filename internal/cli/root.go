package cli

import (
	"context"
	"log/slog"

	collectionapp "github.com/osvaldoandrade/contentschema/internal/app/collection"
	"github.com/osvaldoandrade/contentschema/internal/infra/schema"
	"github.com/osvaldoandrade/contentschema/internal/platform"
	"github.com/spf13/cobra"
)

type RootOptions struct {
	ConfigFile string
	JSONOutput bool
	Config     platform.Config
	Logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &RootOptions{}
	cmd := &cobra.Command{
		Use:           "contentschema",
		Short:         "Validate content collection frontmatter",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, source, err := platform.LoadConfig(opts.ConfigFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := platform.ConfigureLogger(cfg, cmd.Name(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.Config = cfg
			opts.Logger = logger
			if source.File != "" {
				logger.Debug("config loaded", "file", source.File)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "Path to a config file (default ./contentschema.yaml)")
	cmd.PersistentFlags().String("content", platform.DefaultContentDir, "Content collections directory")
	cmd.PersistentFlags().BoolVar(&opts.JSONOutput, "json", false, "Emit JSON output")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")

	cmd.AddCommand(
		newCollectionsCmd(opts),
		newSchemaCmd(opts),
		newValidateCmd(opts),
		newIndexCmd(opts),
	)

	return cmd
}

func newRegistry(ctx context.Context) (*collectionapp.Registry, error) {
	return collectionapp.NewRegistry(ctx, schema.JSONSchemaCompiler{})
}
