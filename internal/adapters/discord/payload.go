package discord

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Payload is the top level of an interaction webhook body. The variant specific
// part stays raw in Data until the classifier decides what it is.
type Payload struct {
	ID             string                    `json:"id"`
	ApplicationID  string                    `json:"application_id"`
	Type           discordgo.InteractionType `json:"type"`
	Token          string                    `json:"token"`
	Version        int                       `json:"version"`
	GuildID        string                    `json:"guild_id,omitempty"`
	ChannelID      string                    `json:"channel_id,omitempty"`
	Channel        *discordgo.Channel        `json:"channel,omitempty"`
	Member         *discordgo.Member         `json:"member,omitempty"`
	User           *discordgo.User           `json:"user,omitempty"`
	Locale         discordgo.Locale          `json:"locale,omitempty"`
	GuildLocale    *discordgo.Locale         `json:"guild_locale,omitempty"`
	AppPermissions int64                     `json:"app_permissions,string,omitempty"`
	Entitlements   []*Entitlement            `json:"entitlements,omitempty"`
	Message        json.RawMessage           `json:"message,omitempty"`
	Data           json.RawMessage           `json:"data,omitempty"`

	raw []byte
}

type Entitlement struct {
	ID            string     `json:"id"`
	SKUID         string     `json:"sku_id"`
	ApplicationID string     `json:"application_id"`
	UserID        string     `json:"user_id,omitempty"`
	GuildID       string     `json:"guild_id,omitempty"`
	Type          int        `json:"type"`
	Deleted       bool       `json:"deleted"`
	StartsAt      *time.Time `json:"starts_at,omitempty"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
}

// OptionNode is one entry of a command's option tree.
type OptionNode struct {
	Name    string                                 `json:"name"`
	Type    discordgo.ApplicationCommandOptionType `json:"type"`
	Value   json.RawMessage                        `json:"value,omitempty"`
	Options []*OptionNode                          `json:"options,omitempty"`
	Focused bool                                   `json:"focused,omitempty"`
}

// Resolved holds the entities Discord pre-fetched for the interaction, keyed by snowflake.
type Resolved struct {
	Users       map[string]*discordgo.User              `json:"users,omitempty"`
	Members     map[string]*discordgo.Member            `json:"members,omitempty"`
	Roles       map[string]*discordgo.Role              `json:"roles,omitempty"`
	Channels    map[string]*discordgo.Channel           `json:"channels,omitempty"`
	Attachments map[string]*discordgo.MessageAttachment `json:"attachments,omitempty"`
	Messages    map[string]json.RawMessage              `json:"messages,omitempty"`
}

// link completa los members con su user (Discord los manda separados).
func (r *Resolved) link() {
	if r == nil {
		return
	}
	for id, m := range r.Members {
		if m == nil {
			continue
		}
		if m.User == nil {
			m.User = r.Users[id]
		}
	}
}

// Message decodes a resolved message on demand.
func (r *Resolved) Message(id string) (*discordgo.Message, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: message %s", ErrResolutionFailure, id)
	}
	raw, ok := r.Messages[id]
	if !ok {
		return nil, fmt.Errorf("%w: message %s", ErrResolutionFailure, id)
	}
	var m discordgo.Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: message %s: %v", ErrMalformedPayload, id, err)
	}
	return &m, nil
}

type commandData struct {
	ID       string                           `json:"id"`
	Name     string                           `json:"name"`
	Type     discordgo.ApplicationCommandType `json:"type"`
	GuildID  string                           `json:"guild_id,omitempty"`
	TargetID string                           `json:"target_id,omitempty"`
	Resolved *Resolved                        `json:"resolved,omitempty"`
	Options  []*OptionNode                    `json:"options,omitempty"`
}

type componentData struct {
	CustomID      string                  `json:"custom_id"`
	ComponentType discordgo.ComponentType `json:"component_type"`
	Values        []string                `json:"values,omitempty"`
	Resolved      *Resolved               `json:"resolved,omitempty"`
}

type modalData struct {
	CustomID   string            `json:"custom_id"`
	Components []*ModalComponent `json:"components"`
	Resolved   *Resolved         `json:"resolved,omitempty"`
}

// ModalComponent is the loose shape of any node in a modal submission tree:
// layout nodes carry Components/Component, inputs carry CustomID plus Value or Values.
type ModalComponent struct {
	Type       discordgo.ComponentType `json:"type"`
	ID         int                     `json:"id,omitempty"`
	CustomID   string                  `json:"custom_id,omitempty"`
	Value      *string                 `json:"value,omitempty"`
	Values     []string                `json:"values,omitempty"`
	Component  *ModalComponent         `json:"component,omitempty"`
	Components []*ModalComponent       `json:"components,omitempty"`
}
