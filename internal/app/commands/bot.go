// Package commands es el bot de ejemplo: unos cuantos comandos, botones y un modal
// montados sobre el dispatcher de interacciones.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jose-valero/discord-interactions/internal/adapters/discord"
)

const (
	confirmPrefix  = "confirm"
	feedbackPrefix = "feedback"
)

type Bot struct {
	log          *slog.Logger
	clickLimiter *userLimiter
	adminRoleIDs []string
	maps         []*discordgo.ApplicationCommandOptionChoice
}

type Option func(*Bot)

func WithLogger(l *slog.Logger) Option { return func(b *Bot) { b.log = l } }

// WithAdminRoles: roles que además del bit de administrador pueden confirmar acciones.
func WithAdminRoles(ids ...string) Option { return func(b *Bot) { b.adminRoleIDs = ids } }

func WithClickWindow(d time.Duration) Option {
	return func(b *Bot) { b.clickLimiter = newUserLimiter(d) }
}

func New(opts ...Option) *Bot {
	b := &Bot{
		log:          slog.Default(),
		clickLimiter: newUserLimiter(time.Second),
		maps:         mapPool(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Handlers lista todo lo que el bot registra.
func (b *Bot) Handlers() []discord.Handler {
	return []discord.Handler{
		&discord.SlashCommand{Definition: pingDef, Run: b.ping},
		&discord.SlashCommand{Definition: echoDef, Run: b.echo},
		&discord.SlashCommand{Definition: searchDef, Run: b.search, Autocomplete: b.searchAutocomplete},
		&discord.SlashCommand{Definition: feedbackDef, Run: b.feedback},
		&discord.SlashCommand{Definition: confirmDef, Run: b.confirm},
		&discord.ContextCommand{Definition: userInfoDef, User: b.userInfo},
		&discord.ContextCommand{Definition: quoteDef, Message: b.quote},
		&discord.ComponentHandler{Prefix: confirmPrefix, Run: b.confirmClick},
		&discord.ModalHandler{Prefix: feedbackPrefix, Run: b.feedbackSubmit},
	}
}

// Register mete los handlers en reg y loguea los diagnósticos.
func (b *Bot) Register(reg *discord.Registry) error {
	diags := reg.Register(b.Handlers()...)
	for _, d := range diags {
		b.log.Warn("register", "diagnostic", d.String())
	}
	return diags.Err()
}

// ---------- slash ----------

func (b *Bot) ping(ctx context.Context, ic *discord.ChatInputCommand) error {
	return ic.ReplyEphemeral(ctx, "🏓 Pong!")
}

func (b *Bot) echo(ctx context.Context, ic *discord.ChatInputCommand) error {
	sub, err := ic.Options.Subcommand(true)
	if err != nil {
		return err
	}

	switch sub {
	case "text":
		msg, err := ic.Options.String("message", true)
		if err != nil {
			return err
		}
		times, err := ic.Options.Integer("times", false)
		if err != nil {
			return err
		}
		public, err := ic.Options.Boolean("public", false)
		if err != nil {
			return err
		}
		out := repeat(msg, times)
		if public {
			return ic.SendPublic(ctx, out)
		}
		return ic.Send(ctx, out)

	case "user":
		u, err := ic.Options.User("target", true)
		if err != nil {
			return err
		}
		m, err := ic.Options.Member("target", false)
		if err != nil {
			return err
		}
		name := u.Username
		if m != nil && m.Nick != "" {
			name = m.Nick
		}
		return ic.Send(ctx, fmt.Sprintf("👋 %s (%s)", u.Mention(), name))

	case "file":
		a, err := ic.Options.Attachment("file", true)
		if err != nil {
			return err
		}
		return ic.Send(ctx, fmt.Sprintf("📎 `%s` · %d bytes", a.Filename, a.Size))
	}
	return fmt.Errorf("echo: unknown subcommand %q", sub)
}

// repeat limita times a 1..5.
func repeat(msg string, times int64) string {
	if times < 1 {
		times = 1
	}
	if times > 5 {
		times = 5
	}
	parts := make([]string, times)
	for i := range parts {
		parts[i] = msg
	}
	return strings.Join(parts, "\n")
}

func (b *Bot) search(ctx context.Context, ic *discord.ChatInputCommand) error {
	name, err := ic.Options.String("map", true)
	if err != nil {
		return err
	}
	for _, c := range b.maps {
		if c.Value == name {
			return ic.Send(ctx, "🗺️ "+localizedName(c, ic.Locale))
		}
	}
	return ic.Send(ctx, fmt.Sprintf("⚠️ No conozco el mapa `%s`.", name))
}

func (b *Bot) searchAutocomplete(ctx context.Context, ac *discord.Autocomplete) error {
	f, err := ac.Filter()
	if err != nil {
		return err
	}
	got := f.AddChoices(b.maps...).Response()
	if len(got) > 25 {
		got = got[:25]
	}
	return ac.Respond(ctx, got)
}

func (b *Bot) feedback(ctx context.Context, ic *discord.ChatInputCommand) error {
	return ic.ShowModal(ctx, feedbackModal(ic.UserID()))
}

func (b *Bot) confirm(ctx context.Context, ic *discord.ChatInputCommand) error {
	action, err := ic.Options.String("action", true)
	if err != nil {
		return err
	}
	return ic.Reply(ctx, &discordgo.InteractionResponseData{
		Content:    fmt.Sprintf("¿Confirmas **%s**?", action),
		Components: confirmButtons(ic.UserID()),
	})
}

// ---------- context menus ----------

func (b *Bot) userInfo(ctx context.Context, ic *discord.UserCommand) error {
	u := ic.TargetUser
	if u == nil {
		return ic.Send(ctx, "⚠️ Discord no mandó el usuario.")
	}
	lines := []string{
		fmt.Sprintf("**%s** (`%s`)", u.Username, u.ID),
		fmt.Sprintf("Cuenta creada: <t:%d:R>", snowflakeTime(u.ID).Unix()),
	}
	if m := ic.TargetMember; m != nil && m.JoinedAt.Unix() > 0 {
		lines = append(lines, fmt.Sprintf("En el server desde: <t:%d:R>", m.JoinedAt.Unix()))
	}
	if u.Bot {
		lines = append(lines, "🤖 bot")
	}
	return ic.Send(ctx, strings.Join(lines, "\n"))
}

func (b *Bot) quote(ctx context.Context, ic *discord.MessageCommand) error {
	m := ic.TargetMessage
	if m == nil {
		return ic.Send(ctx, "⚠️ Discord no mandó el mensaje.")
	}
	author := "alguien"
	if m.Author != nil {
		author = m.Author.Mention()
	}
	content := m.Content
	if content == "" {
		content = "_(sin texto)_"
	}
	return ic.SendPublic(ctx, fmt.Sprintf("> %s\n- %s", strings.ReplaceAll(content, "\n", "\n> "), author))
}

// ---------- components ----------

// confirmClick: confirm/yes?<userID> o confirm/no?<userID>. Sólo quien lo pidió
// (o un admin) puede contestar.
func (b *Bot) confirmClick(ctx context.Context, ic *discord.Component) error {
	if !b.clickLimiter.Allow(ic.UserID()) {
		return ic.Send(ctx, "⏳ Espera un segundo…")
	}
	owner := ic.CustomID.FirstParam()
	if owner != ic.UserID() && !ic.IsAdmin(b.adminRoleIDs...) {
		return ic.Send(ctx, "🔒 Este botón no es tuyo.")
	}

	var msg string
	switch ic.CustomID.Component() {
	case "yes":
		msg = "✅ Confirmado."
	case "no":
		msg = "❌ Cancelado."
	default:
		return fmt.Errorf("confirm: unknown button %q", ic.CustomID.Raw)
	}
	empty := []discordgo.MessageComponent{}
	return ic.Update(ctx, &discordgo.InteractionResponseData{Content: msg, Components: empty})
}

// ---------- modals ----------

func (b *Bot) feedbackSubmit(ctx context.Context, ic *discord.ModalSubmit) error {
	topic, err := ic.Fields.TextInputValue("topic", true)
	if err != nil {
		return err
	}
	body, err := ic.Fields.TextInputValue("body", false)
	if err != nil {
		return err
	}
	b.log.Info("feedback received",
		"user_id", ic.UserID(),
		"guild_id", ic.GuildID,
		"topic", topic,
		"len", len(body),
	)
	return ic.Send(ctx, "🙏 Gracias, lo vemos.")
}
