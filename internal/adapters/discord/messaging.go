package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Send answers with whatever fits the current state: the initial ephemeral reply,
// the edit of a deferred reply, or a follow-up once something is already visible.
func (r Replier) Send(ctx context.Context, content string, embeds ...*discordgo.MessageEmbed) error {
	switch r.h.State() {
	case NotResponded:
		return r.ReplyEphemeral(ctx, content, embeds...)
	case Deferred:
		_, err := r.EditReply(ctx, &discordgo.WebhookEdit{Content: &content, Embeds: &embeds})
		return err
	default:
		_, err := r.FollowUp(ctx, &discordgo.WebhookParams{
			Content: content,
			Embeds:  embeds,
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		return err
	}
}

// SendPublic es Send pero visible para todos en el canal.
func (r Replier) SendPublic(ctx context.Context, content string, embeds ...*discordgo.MessageEmbed) error {
	switch r.h.State() {
	case NotResponded:
		return r.ReplyPublic(ctx, &discordgo.InteractionResponseData{Content: content, Embeds: embeds})
	case Deferred:
		_, err := r.EditReply(ctx, &discordgo.WebhookEdit{Content: &content, Embeds: &embeds})
		return err
	default:
		_, err := r.FollowUp(ctx, &discordgo.WebhookParams{Content: content, Embeds: embeds})
		return err
	}
}
