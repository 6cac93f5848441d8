package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandevgo/docchat/pkg/log"
)

var ingestChatID string

var ingestCmd = &cobra.Command{
	Use:   "ingest <path-or-url>...",
	Short: "Index documents into a chat",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), nil)
		defer flushLog()

		app, err := NewApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close(ctx)

		for _, ref := range args {
			res, err := app.ingest.IngestFile(ctx, ref, ingestChatID)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", ref, err)
			}
			log.FromCtx(ctx).Info().Str("chat", ingestChatID).Str("source", ref).Int("chunks", res.ChunkCount).Msg("document indexed")
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks stored in chat %s\n", ref, res.ChunkCount, ingestChatID)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestChatID, "chat", "c", "default", "chat id whose index receives the documents")
	rootCmd.AddCommand(ingestCmd)
}
