package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sandevgo/docchat/internal/config"
	"github.com/sandevgo/docchat/internal/transport/cli"
	"github.com/sandevgo/docchat/internal/transport/tui"
	"github.com/sandevgo/docchat/pkg/log"
)

var (
	chatID    string
	chatFile  string
	chatPlain bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a document in the terminal",
	Long:  `Opens an interactive chat. With --file the document is indexed first. --plain uses a line-based prompt instead of the full-screen view.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		runtimeDir, err := config.EnsureRuntimeDir()
		if err != nil {
			return err
		}

		// The terminal belongs to the chat, so logs go to a file.
		logFile, err := os.OpenFile(filepath.Join(runtimeDir, "docchat.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer logFile.Close()

		ctx, flushLog := setupLogger(ctx, logFile)
		defer flushLog()

		app, err := NewApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close(ctx)

		title := chatID
		if chatFile != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Indexing %s...\n", chatFile)
			res, err := app.ingest.IngestFile(ctx, chatFile, chatID)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", chatFile, err)
			}
			log.FromCtx(ctx).Info().Str("chat", chatID).Int("chunks", res.ChunkCount).Msg("document indexed")
			title = filepath.Base(chatFile)
		}

		sess, err := app.sessions.Get(ctx, chatID)
		if err != nil {
			return err
		}

		if chatPlain {
			rl, err := cli.NewReadLine(app.cfg.GetRuntimePath(), sess, app.pipeline, app.router)
			if err != nil {
				return err
			}
			defer rl.Shutdown(ctx)
			return rl.Start(ctx)
		}

		return tui.Run(ctx, tui.New(ctx, sess, app.pipeline, app.router, title))
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatID, "chat", "c", "default", "chat id, also the document namespace")
	chatCmd.Flags().StringVarP(&chatFile, "file", "f", "", "document to index before chatting")
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "line-based prompt instead of the full-screen view")
	rootCmd.AddCommand(chatCmd)
}
