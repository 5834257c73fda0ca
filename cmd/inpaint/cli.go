package main

import (
	"sort"

	"github.com/ChizhovVadim/InpaintGAN/internal/domain"
)

type CommandHandler struct {
	items map[string]func(args []string) error
}

func NewCommandHandler() *CommandHandler {
	return &CommandHandler{
		items: make(map[string]func(args []string) error),
	}
}

func (ch *CommandHandler) Add(name string, handler func(args []string) error) {
	ch.items[name] = handler
}

func (ch *CommandHandler) Names() []string {
	var result []string
	for name := range ch.items {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Execute runs the command named by args[0] with the remaining args.
func (ch *CommandHandler) Execute(args []string) error {
	if len(args) == 0 {
		return domain.Configurationf("command expected, one of %v", ch.Names())
	}
	handler, found := ch.items[args[0]]
	if !found {
		return domain.Configurationf("command not found %v, expected one of %v", args[0], ch.Names())
	}
	return handler(args[1:])
}
