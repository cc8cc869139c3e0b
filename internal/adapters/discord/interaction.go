package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Interaction is the closed set of variants the classifier can produce. Use a
// type switch over the concrete pointers; nothing outside this package can add one.
type Interaction interface {
	Kind() Kind
	base() *Base
}

// Base is the part every interaction carries: identity, actor and location.
type Base struct {
	ID             string
	ApplicationID  string
	Token          string
	Type           discordgo.InteractionType
	Version        int
	GuildID        string
	ChannelID      string
	Channel        *discordgo.Channel
	Member         *discordgo.Member
	Locale         discordgo.Locale
	GuildLocale    discordgo.Locale
	AppPermissions int64
	Entitlements   []*Entitlement

	user   *discordgo.User
	handle *Handle
}

func newBase(p *Payload, h *Handle) *Base {
	b := &Base{
		ID:             p.ID,
		ApplicationID:  p.ApplicationID,
		Token:          p.Token,
		Type:           p.Type,
		Version:        p.Version,
		GuildID:        p.GuildID,
		ChannelID:      p.ChannelID,
		Channel:        p.Channel,
		Member:         p.Member,
		Locale:         p.Locale,
		AppPermissions: p.AppPermissions,
		Entitlements:   p.Entitlements,
		user:           p.User,
		handle:         h,
	}
	if p.GuildLocale != nil {
		b.GuildLocale = *p.GuildLocale
	}
	if b.ChannelID == "" && p.Channel != nil {
		b.ChannelID = p.Channel.ID
	}
	return b
}

func (b *Base) base() *Base { return b }

// User is the actor: the member's user inside a guild, the plain user in DMs.
func (b *Base) User() *discordgo.User {
	if b.Member != nil && b.Member.User != nil {
		return b.Member.User
	}
	return b.user
}

func (b *Base) UserID() string {
	if u := b.User(); u != nil {
		return u.ID
	}
	return ""
}

func (b *Base) InGuild() bool { return b.GuildID != "" && b.Member != nil }

func (b *Base) InDM() bool { return !b.InGuild() }

// State reports where the interaction is in its response lifecycle.
func (b *Base) State() ResponseState { return b.handle.State() }

// AppEntitlements filters the entitlements down to this application's.
func (b *Base) AppEntitlements() []*Entitlement {
	var out []*Entitlement
	for _, e := range b.Entitlements {
		if e != nil && e.ApplicationID == b.ApplicationID {
			out = append(out, e)
		}
	}
	return out
}

func (b *Base) GuildHasPremium() bool {
	return b.hasActive(func(e *Entitlement) bool { return b.GuildID != "" && e.GuildID == b.GuildID })
}

func (b *Base) UserHasPremium() bool {
	uid := b.UserID()
	return b.hasActive(func(e *Entitlement) bool { return uid != "" && e.UserID == uid })
}

func (b *Base) hasActive(match func(*Entitlement) bool) bool {
	now := time.Now()
	for _, e := range b.AppEntitlements() {
		if e.Deleted || !match(e) {
			continue
		}
		if e.EndsAt == nil || e.EndsAt.After(now) {
			return true
		}
	}
	return false
}

// ---------- capacidades ----------

// Replier is embedded by every variant that can post a message response.
type Replier struct{ h *Handle }

// Reply sends the initial message. Ephemeral unless data says otherwise via
// ReplyPublic.
func (r Replier) Reply(ctx context.Context, data *discordgo.InteractionResponseData) error {
	if data == nil {
		data = &discordgo.InteractionResponseData{}
	}
	data.Flags |= discordgo.MessageFlagsEphemeral
	return r.h.reply(ctx, data)
}

func (r Replier) ReplyPublic(ctx context.Context, data *discordgo.InteractionResponseData) error {
	return r.h.reply(ctx, data)
}

func (r Replier) ReplyEphemeral(ctx context.Context, content string, embeds ...*discordgo.MessageEmbed) error {
	return r.Reply(ctx, &discordgo.InteractionResponseData{Content: content, Embeds: embeds})
}

// DeferReply acknowledges now and promises an EditReply later (trabajos > 3s).
func (r Replier) DeferReply(ctx context.Context, ephemeral bool) error {
	return r.h.deferReply(ctx, ephemeral)
}

func (r Replier) EditReply(ctx context.Context, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
	return r.h.editReply(ctx, edit)
}

func (r Replier) DeleteReply(ctx context.Context) error { return r.h.deleteReply(ctx) }

func (r Replier) FollowUp(ctx context.Context, params *discordgo.WebhookParams) (*discordgo.Message, error) {
	return r.h.followUp(ctx, params)
}

func (r Replier) EditMessage(ctx context.Context, messageID string, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
	return r.h.editMessage(ctx, messageID, edit)
}

func (r Replier) DeleteMessage(ctx context.Context, messageID string) error {
	return r.h.deleteMessage(ctx, messageID)
}

// Updater edits the message a component (or modal opened from one) lives on.
type Updater struct{ h *Handle }

func (u Updater) Update(ctx context.Context, data *discordgo.InteractionResponseData) error {
	return u.h.update(ctx, data)
}

func (u Updater) DeferUpdate(ctx context.Context) error { return u.h.deferUpdate(ctx) }

// ModalOpener answers with a modal. data needs CustomID, Title and Components.
type ModalOpener struct{ h *Handle }

func (m ModalOpener) ShowModal(ctx context.Context, data *discordgo.InteractionResponseData) error {
	return m.h.showModal(ctx, data)
}

// ChoiceResponder answers an autocomplete request.
type ChoiceResponder struct{ h *Handle }

func (c ChoiceResponder) Respond(ctx context.Context, choices []*discordgo.ApplicationCommandOptionChoice) error {
	return c.h.autocomplete(ctx, choices)
}

// ---------- variantes ----------

type Ping struct {
	*Base
}

func (*Ping) Kind() Kind { return KindPing }

// CommandInfo identifies the invoked application command.
type CommandInfo struct {
	ID       string
	Name     string
	Type     discordgo.ApplicationCommandType
	GuildID  string
	Resolved *Resolved
}

type ChatInputCommand struct {
	*Base
	Replier
	ModalOpener
	Command CommandInfo
	Options *OptionResolver
}

func (*ChatInputCommand) Kind() Kind { return KindChatInput }

type UserCommand struct {
	*Base
	Replier
	ModalOpener
	Command      CommandInfo
	TargetID     string
	TargetUser   *discordgo.User
	TargetMember *discordgo.Member
}

func (*UserCommand) Kind() Kind { return KindUserCommand }

type MessageCommand struct {
	*Base
	Replier
	ModalOpener
	Command       CommandInfo
	TargetID      string
	TargetMessage *discordgo.Message
}

func (*MessageCommand) Kind() Kind { return KindMessageCommand }

type Autocomplete struct {
	*Base
	ChoiceResponder
	Command CommandInfo
	Options *OptionResolver
}

func (*Autocomplete) Kind() Kind { return KindAutocomplete }

// Filter starts an AutocompleteFilter over the focused option's partial value
// and the actor's locale.
func (a *Autocomplete) Filter() (*AutocompleteFilter, error) {
	f, err := a.Options.Focused()
	if err != nil {
		return nil, err
	}
	return NewAutocompleteFilter(f.Value, a.Locale), nil
}

type Component struct {
	*Base
	Replier
	Updater
	ModalOpener
	CustomID      CustomID
	ComponentType discordgo.ComponentType
	Values        []string
	Resolved      *Resolved
	Message       *discordgo.Message
}

func (*Component) Kind() Kind { return KindComponent }

type ModalSubmit struct {
	*Base
	Replier
	Updater
	CustomID CustomID
	Fields   *ModalFieldResolver
	Message  *discordgo.Message
}

func (*ModalSubmit) Kind() Kind { return KindModalSubmit }
