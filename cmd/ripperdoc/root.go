package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"ripperdoc/internal/config"
	"ripperdoc/internal/observability"
)

// Version is overridden at build time.
var Version = "dev"

type rootOptions struct {
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "ripperdoc",
		Short:         "Cyberware installation engine",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default ./ripperdoc.yaml)")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newServeCmd(opts),
		newCatalogCmd(opts),
		newEstimateCmd(opts),
		newInstallCmd(opts),
		newCharacterCmd(opts),
	)
	return root
}

// openApp wires the service for a command, logging to the command's error
// stream.
func (o *rootOptions) openApp(cmd *cobra.Command) (*app, error) {
	logger := observability.NewLogger(o.cfg.Logger, zapcore.AddSync(cmd.ErrOrStderr()))
	return newApp(cmd.Context(), o.cfg, logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
