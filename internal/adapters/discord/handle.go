package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// DefaultRestTimeout bounds every call a Handle makes to Discord.
const DefaultRestTimeout = 5 * time.Second

// RestClient is the slice of *discordgo.Session the handle needs.
type RestClient interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionResponseDelete(interaction *discordgo.Interaction, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageEdit(interaction *discordgo.Interaction, messageID string, data *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageDelete(interaction *discordgo.Interaction, messageID string, options ...discordgo.RequestOption) error
}

type ResponseState int

const (
	NotResponded ResponseState = iota
	Deferred
	Replied
)

func (s ResponseState) String() string {
	switch s {
	case NotResponded:
		return "not_responded"
	case Deferred:
		return "deferred"
	case Replied:
		return "replied"
	}
	return fmt.Sprintf("ResponseState(%d)", int(s))
}

// Handle is the per-request link back to Discord. It owns the ResponseState and
// refuses calls that are not valid for it: a second initial response, or an
// edit/follow-up before anything was sent.
type Handle struct {
	rest        RestClient
	interaction *discordgo.Interaction
	timeout     time.Duration

	mu      sync.Mutex
	state   ResponseState
	initial *discordgo.InteractionResponse
}

func NewHandle(rest RestClient, id, appID, token string, typ discordgo.InteractionType, timeout time.Duration) *Handle {
	if timeout <= 0 {
		timeout = DefaultRestTimeout
	}
	return &Handle{
		rest:    rest,
		timeout: timeout,
		interaction: &discordgo.Interaction{
			ID:    id,
			AppID: appID,
			Token: token,
			Type:  typ,
		},
	}
}

func (h *Handle) State() ResponseState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Initial returns the initial response sent through this handle, if any.
func (h *Handle) Initial() *discordgo.InteractionResponse {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initial
}

// call runs one REST call under its own deadline. Session retries are off, so a
// deadline hit is final.
func (h *Handle) call(ctx context.Context, fn func(opts ...discordgo.RequestOption) error) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	err := fn(discordgo.WithContext(ctx))
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", ErrTimeout, h.timeout, err)
	}
	return err
}

// respond sends the initial callback and moves the state to next.
func (h *Handle) respond(ctx context.Context, resp *discordgo.InteractionResponse, next ResponseState) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != NotResponded {
		return fmt.Errorf("%w (%s)", ErrAlreadyResponded, h.state)
	}
	err := h.call(ctx, func(opts ...discordgo.RequestOption) error {
		return h.rest.InteractionRespond(h.interaction, resp, opts...)
	})
	if err != nil {
		return err
	}
	h.state = next
	h.initial = resp
	return nil
}

func (h *Handle) requireResponded() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == NotResponded {
		return ErrNotResponded
	}
	return nil
}

func (h *Handle) reply(ctx context.Context, data *discordgo.InteractionResponseData) error {
	return h.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, Replied)
}

func (h *Handle) deferReply(ctx context.Context, ephemeral bool) error {
	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	return h.respond(ctx, resp, Deferred)
}

func (h *Handle) update(ctx context.Context, data *discordgo.InteractionResponseData) error {
	return h.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	}, Replied)
}

func (h *Handle) deferUpdate(ctx context.Context) error {
	return h.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}, Deferred)
}

func (h *Handle) showModal(ctx context.Context, modal *discordgo.InteractionResponseData) error {
	return h.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: modal,
	}, Replied)
}

func (h *Handle) autocomplete(ctx context.Context, choices []*discordgo.ApplicationCommandOptionChoice) error {
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}
	return h.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	}, Replied)
}

func (h *Handle) editReply(ctx context.Context, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
	if err := h.requireResponded(); err != nil {
		return nil, err
	}
	var msg *discordgo.Message
	err := h.call(ctx, func(opts ...discordgo.RequestOption) error {
		var err error
		msg, err = h.rest.InteractionResponseEdit(h.interaction, edit, opts...)
		return err
	})
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.state = Replied
	h.mu.Unlock()
	return msg, nil
}

func (h *Handle) deleteReply(ctx context.Context) error {
	if err := h.requireResponded(); err != nil {
		return err
	}
	return h.call(ctx, func(opts ...discordgo.RequestOption) error {
		return h.rest.InteractionResponseDelete(h.interaction, opts...)
	})
}

func (h *Handle) followUp(ctx context.Context, params *discordgo.WebhookParams) (*discordgo.Message, error) {
	if err := h.requireResponded(); err != nil {
		return nil, err
	}
	var msg *discordgo.Message
	err := h.call(ctx, func(opts ...discordgo.RequestOption) error {
		var err error
		msg, err = h.rest.FollowupMessageCreate(h.interaction, true, params, opts...)
		return err
	})
	return msg, err
}

func (h *Handle) editMessage(ctx context.Context, messageID string, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
	if err := h.requireResponded(); err != nil {
		return nil, err
	}
	var msg *discordgo.Message
	err := h.call(ctx, func(opts ...discordgo.RequestOption) error {
		var err error
		msg, err = h.rest.FollowupMessageEdit(h.interaction, messageID, edit, opts...)
		return err
	})
	return msg, err
}

func (h *Handle) deleteMessage(ctx context.Context, messageID string) error {
	if err := h.requireResponded(); err != nil {
		return err
	}
	return h.call(ctx, func(opts ...discordgo.RequestOption) error {
		return h.rest.FollowupMessageDelete(h.interaction, messageID, opts...)
	})
}
