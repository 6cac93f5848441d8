package command

import (
	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/session"
)

// NewRouter builds the chat command set. store and models may be nil, which
// disables /reset purge and /model respectively.
func NewRouter(
	sessions *session.Registry,
	store NamespaceDeleter,
	models ModelSwitcher,
) *Router {
	commands := []core.Command{
		NewResetCommand(sessions, store),
		NewSourcesCommand(sessions),
		NewHistoryCommand(sessions),
	}
	if models != nil {
		commands = append(commands, NewModelCommand(models))
	}

	r := New(commands)
	r.Register(NewHelpCommand(r))
	return r
}
