package discord

import (
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/tidwall/gjson"
)

// Kind is the classified variant of an interaction.
type Kind int

const (
	KindPing Kind = iota + 1
	KindChatInput
	KindUserCommand
	KindMessageCommand
	KindAutocomplete
	KindComponent
	KindModalSubmit
)

func (k Kind) String() string {
	switch k {
	case KindPing:
		return "ping"
	case KindChatInput:
		return "chat_input"
	case KindUserCommand:
		return "user_command"
	case KindMessageCommand:
		return "message_command"
	case KindAutocomplete:
		return "autocomplete"
	case KindComponent:
		return "component"
	case KindModalSubmit:
		return "modal_submit"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Classify maps the top-level type (and data.type for commands) to a Kind.
// Unknown combinations are an error, never a fallback variant.
func Classify(p *Payload) (Kind, error) {
	switch p.Type {
	case discordgo.InteractionPing:
		return KindPing, nil
	case discordgo.InteractionApplicationCommand:
		// sin data.type es CHAT_INPUT, igual que en las definiciones de comandos
		sub := gjson.GetBytes(p.Data, "type")
		if !sub.Exists() {
			return KindChatInput, nil
		}
		if sub.Type != gjson.Number {
			return 0, fmt.Errorf("%w: data.type %s", ErrUnsupportedInteractionType, sub.Raw)
		}
		switch discordgo.ApplicationCommandType(sub.Int()) {
		case discordgo.ChatApplicationCommand:
			return KindChatInput, nil
		case discordgo.UserApplicationCommand:
			return KindUserCommand, nil
		case discordgo.MessageApplicationCommand:
			return KindMessageCommand, nil
		}
		return 0, fmt.Errorf("%w: command type %d", ErrUnsupportedInteractionType, sub.Int())
	case discordgo.InteractionMessageComponent:
		return KindComponent, nil
	case discordgo.InteractionApplicationCommandAutocomplete:
		return KindAutocomplete, nil
	case discordgo.InteractionModalSubmit:
		return KindModalSubmit, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedInteractionType, int(p.Type))
}

// NewInteraction decodes the variant specific data of p into the variant kind
// names, wired to h for responses.
func NewInteraction(p *Payload, kind Kind, h *Handle) (Interaction, error) {
	b := newBase(p, h)

	switch kind {
	case KindPing:
		return &Ping{Base: b}, nil

	case KindChatInput, KindUserCommand, KindMessageCommand, KindAutocomplete:
		var d commandData
		if err := decodeData(p.Data, &d); err != nil {
			return nil, err
		}
		d.Resolved.link()
		info := CommandInfo{ID: d.ID, Name: d.Name, Type: d.Type, GuildID: d.GuildID, Resolved: d.Resolved}

		switch kind {
		case KindChatInput:
			return &ChatInputCommand{
				Base: b, Replier: Replier{h}, ModalOpener: ModalOpener{h},
				Command: info, Options: NewOptionResolver(d.Options, d.Resolved),
			}, nil
		case KindAutocomplete:
			return &Autocomplete{
				Base: b, ChoiceResponder: ChoiceResponder{h},
				Command: info, Options: NewOptionResolver(d.Options, d.Resolved),
			}, nil
		case KindUserCommand:
			uc := &UserCommand{
				Base: b, Replier: Replier{h}, ModalOpener: ModalOpener{h},
				Command: info, TargetID: d.TargetID,
			}
			if d.Resolved != nil {
				uc.TargetUser = d.Resolved.Users[d.TargetID]
				uc.TargetMember = d.Resolved.Members[d.TargetID]
			}
			return uc, nil
		default:
			var msg *discordgo.Message
			if d.Resolved != nil && d.Resolved.Messages[d.TargetID] != nil {
				m, err := d.Resolved.Message(d.TargetID)
				if err != nil {
					return nil, err
				}
				msg = m
			}
			return &MessageCommand{
				Base: b, Replier: Replier{h}, ModalOpener: ModalOpener{h},
				Command: info, TargetID: d.TargetID, TargetMessage: msg,
			}, nil
		}

	case KindComponent:
		var d componentData
		if err := decodeData(p.Data, &d); err != nil {
			return nil, err
		}
		d.Resolved.link()
		return &Component{
			Base: b, Replier: Replier{h}, Updater: Updater{h}, ModalOpener: ModalOpener{h},
			CustomID:      ParseCustomID(d.CustomID),
			ComponentType: d.ComponentType,
			Values:        d.Values,
			Resolved:      d.Resolved,
			Message:       decodeMessage(p.Message),
		}, nil

	case KindModalSubmit:
		var d modalData
		if err := decodeData(p.Data, &d); err != nil {
			return nil, err
		}
		d.Resolved.link()
		return &ModalSubmit{
			Base: b, Replier: Replier{h}, Updater: Updater{h},
			CustomID: ParseCustomID(d.CustomID),
			Fields:   NewModalFieldResolver(d.Components, d.Resolved),
			Message:  decodeMessage(p.Message),
		}, nil
	}
	return nil, fmt.Errorf("%w: kind %s", ErrUnsupportedInteractionType, kind)
}

func decodeData(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing data", ErrMalformedPayload)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: data: %v", ErrMalformedPayload, err)
	}
	return nil
}

// decodeMessage: sólo components y modals abiertos desde un mensaje lo traen.
// Es contexto extra; si discordgo no sabe leer algún componente nuevo, queda nil.
func decodeMessage(raw json.RawMessage) *discordgo.Message {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var m discordgo.Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return &m
}

// CustomIDOf returns the custom id carried by a component or modal payload,
// "" for other kinds. It reads the raw data, so it works even when the rest
// does not decode.
func CustomIDOf(p *Payload) string {
	return gjson.GetBytes(p.Data, "custom_id").String()
}

// CommandNameOf returns data.name for command and autocomplete payloads.
func CommandNameOf(p *Payload) string {
	return gjson.GetBytes(p.Data, "name").String()
}
