package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/pkg/log"
)

// Router dispatches slash commands. Anything else is left for the chat turn.
type Router struct {
	commands  map[string]core.Command
	formatter *ResponseFormatter
}

func New(commands []core.Command) *Router {
	r := &Router{
		commands:  make(map[string]core.Command, len(commands)),
		formatter: NewResponseFormatter(),
	}
	for _, cmd := range commands {
		r.Register(cmd)
	}
	return r
}

// Register adds cmd, replacing any command with the same name.
func (r *Router) Register(cmd core.Command) {
	r.commands[cmd.Name()] = cmd
}

// Execute runs input when it is a slash command. The bool reports whether it was one.
func (r *Router) Execute(ctx context.Context, chatID, input string) (string, bool) {
	name, args, ok := parse(input)
	if !ok {
		return "", false
	}

	cmd, found := r.commands[name]
	if !found {
		return fmt.Sprintf("Unknown command: /%s. Try /help", name), true
	}

	result, err := cmd.Execute(ctx, chatID, args)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("chat_id", chatID).Str("command", name).Msg("command failed")
		return r.formatter.Error(name, err), true
	}
	return result, true
}

func (r *Router) ListCommands() []core.Command {
	res := make([]core.Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		res = append(res, cmd)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}

// parse splits "/name@bot arg1 arg2". Telegram appends the bot name in groups.
func parse(input string) (name string, args []string, ok bool) {
	fields := strings.Fields(input)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") || fields[0] == "/" {
		return "", nil, false
	}
	name, _, _ = strings.Cut(strings.TrimPrefix(fields[0], "/"), "@")
	return strings.ToLower(name), fields[1:], true
}
