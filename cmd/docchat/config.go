package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandevgo/docchat/internal/config"
	"github.com/sandevgo/docchat/internal/service/ui"
	"github.com/sandevgo/docchat/pkg/env"
)

var showSecrets bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long:  `Prints every non-default setting after merging the environment with <runtime>/.env. Secrets are masked unless --show-secrets is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sections := []struct {
			title string
			load  func() (any, error)
		}{
			{"APP", func() (any, error) { return config.Parse[config.AppConfig]() }},
			{"RAG", func() (any, error) { return config.Parse[config.RAGConfig]() }},
			{"EMBEDDING", func() (any, error) { return config.Parse[config.EmbeddingConfig]() }},
			{"VECTOR STORE", func() (any, error) { return config.Parse[config.VectorStoreConfig]() }},
			{"HTTP", func() (any, error) { return config.Parse[config.HTTPConfig]() }},
			{"TELEGRAM", func() (any, error) { return config.Parse[config.TelegramConfig]() }},
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", ui.DescStyle.Render("runtime:"), config.GetRuntimePath())
		for _, s := range sections {
			c, err := s.load()
			if err != nil {
				return fmt.Errorf("%s config: %w", s.title, err)
			}
			body, err := env.MarshalEnv(c, !showSecrets)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s\n%s", ui.TitleStyle.Render(s.title), body)
		}
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print secrets in full")
	rootCmd.AddCommand(configCmd)
}
