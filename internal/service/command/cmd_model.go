package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/docchat/internal/core"
)

// ModelSwitcher is the language model used for answers, switchable at runtime.
type ModelSwitcher interface {
	core.ModelLister
	GetProvider() string
	GetModel() string
	ChangeModel(ctx context.Context, target string) error
}

type ModelCommand struct {
	models    ModelSwitcher
	formatter *ResponseFormatter
}

func NewModelCommand(models ModelSwitcher) *ModelCommand {
	return &ModelCommand{
		models:    models,
		formatter: NewResponseFormatter(),
	}
}

func (c *ModelCommand) Name() string {
	return "model"
}

func (c *ModelCommand) Description() string {
	return "Show, list or change the answering model"
}

func (c *ModelCommand) Execute(ctx context.Context, chatID string, args []string) (string, error) {
	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Current Model"),
			c.formatter.Label("Provider", c.models.GetProvider()),
			c.formatter.Label("Model", c.models.GetModel()),
			c.formatter.Usage("/model [provider]/[model]\n/model list",
				"/model openai/gpt-4o-mini",
				"/model anthropic/claude-3-5-haiku-latest",
				"/model openrouter/openai/gpt-3.5-turbo",
			),
		), nil
	}

	if args[0] == "list" {
		return c.list(ctx)
	}

	if err := c.models.ChangeModel(ctx, args[0]); err != nil {
		return "", fmt.Errorf("failed to set model: %w", err)
	}

	return c.formatter.Success(fmt.Sprintf("Model changed to: `%s/%s`", c.models.GetProvider(), c.models.GetModel())), nil
}

const maxListedModels = 30

func (c *ModelCommand) list(ctx context.Context) (string, error) {
	models, err := c.models.Models(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list models: %w", err)
	}
	if len(models) == 0 {
		return c.formatter.Info("No models reported by " + c.models.GetProvider()), nil
	}

	items := make([]string, 0, min(len(models), maxListedModels))
	for _, m := range models[:min(len(models), maxListedModels)] {
		items = append(items, "`"+m.ID+"`")
	}
	out := c.formatter.Combine(
		c.formatter.Info(fmt.Sprintf("Models (%s)", c.models.GetProvider())),
		c.formatter.List(items),
	)
	if len(models) > maxListedModels {
		out += fmt.Sprintf("…and %d more\n", len(models)-maxListedModels)
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}
