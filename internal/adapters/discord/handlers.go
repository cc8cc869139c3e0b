package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Handler is one of *SlashCommand, *ContextCommand, *ComponentHandler or *ModalHandler.
type Handler interface {
	handlerKey() string
}

// SlashCommand handles a chat input command and, optionally, its autocomplete.
type SlashCommand struct {
	Definition   *discordgo.ApplicationCommand
	Run          func(ctx context.Context, ic *ChatInputCommand) error
	Autocomplete func(ctx context.Context, ac *Autocomplete) error
}

func (c *SlashCommand) handlerKey() string {
	if c == nil {
		return ""
	}
	return definitionName(c.Definition)
}

// ContextCommand handles a user or message context-menu command. Exactly one of
// User or Message should be set, matching Definition.Type.
type ContextCommand struct {
	Definition *discordgo.ApplicationCommand
	User       func(ctx context.Context, ic *UserCommand) error
	Message    func(ctx context.Context, ic *MessageCommand) error
}

func (c *ContextCommand) handlerKey() string {
	if c == nil {
		return ""
	}
	return definitionName(c.Definition)
}

// ComponentHandler handles every component whose custom id starts with Prefix.
type ComponentHandler struct {
	Prefix string
	Run    func(ctx context.Context, ic *Component) error
}

func (c *ComponentHandler) handlerKey() string { return c.Prefix }

// ModalHandler handles every modal submission whose custom id starts with Prefix.
type ModalHandler struct {
	Prefix string
	Run    func(ctx context.Context, ic *ModalSubmit) error
}

func (m *ModalHandler) handlerKey() string { return m.Prefix }

func definitionName(d *discordgo.ApplicationCommand) string {
	if d == nil {
		return ""
	}
	return d.Name
}
