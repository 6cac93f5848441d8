package main

import (
	"github.com/spf13/cobra"

	"github.com/sandevgo/docchat/internal/config"
	"github.com/sandevgo/docchat/internal/service/installer"
	"github.com/sandevgo/docchat/pkg/log"
)

var installCmd = &cobra.Command{
	Use:           "install",
	Short:         "Configure providers and write the runtime .env",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), nil)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting installation process")

		// run wizard (includes save step)
		if _, err := installer.RunWizard(); err != nil {
			return err
		}

		// Make the new values visible to anything run later in this process.
		envPath, err := config.LoadEnvFile()
		if err != nil {
			logger.Warn().Err(err).Str("path", envPath).Msg("failed to load .env file")
		}

		logger.Info().Msgf("initialized runtime directory at: %s", config.GetRuntimePath())
		logger.Info().Msg("Installation complete! Run 'docchat chat --file <document>' or 'docchat serve'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
