package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Component types discordgo v0.29 does not name yet.
const (
	ComponentLabel      discordgo.ComponentType = 18
	ComponentFileUpload discordgo.ComponentType = 19
)

// ModalField is one submitted input, flattened out of its layout containers.
type ModalField struct {
	CustomID string
	Type     discordgo.ComponentType
	Value    string
	Values   []string
}

type ModalFieldResolver struct {
	fields   map[string]*ModalField
	order    []string
	resolved *Resolved
}

func NewModalFieldResolver(components []*ModalComponent, resolved *Resolved) *ModalFieldResolver {
	r := &ModalFieldResolver{fields: map[string]*ModalField{}, resolved: resolved}
	r.walk(components)
	return r
}

// walk baja por action rows, labels y cualquier contenedor hasta llegar a los inputs.
func (r *ModalFieldResolver) walk(nodes []*ModalComponent) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.CustomID != "" && n.Type != discordgo.ActionsRowComponent && n.Type != ComponentLabel {
			f := &ModalField{CustomID: n.CustomID, Type: n.Type, Values: n.Values}
			if n.Value != nil {
				f.Value = *n.Value
			}
			if _, seen := r.fields[n.CustomID]; !seen {
				r.order = append(r.order, n.CustomID)
			}
			r.fields[n.CustomID] = f
		}
		if n.Component != nil {
			r.walk([]*ModalComponent{n.Component})
		}
		r.walk(n.Components)
	}
}

// Fields returns the submitted inputs in the order they appear in the modal.
func (r *ModalFieldResolver) Fields() []*ModalField {
	out := make([]*ModalField, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.fields[id])
	}
	return out
}

func (r *ModalFieldResolver) Has(customID string) bool {
	_, ok := r.fields[customID]
	return ok
}

func (r *ModalFieldResolver) Field(customID string, required bool) (*ModalField, error) {
	f, ok := r.fields[customID]
	if !ok {
		if required {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, customID)
		}
		return nil, nil
	}
	return f, nil
}

func (r *ModalFieldResolver) typed(customID string, required bool, allowed ...discordgo.ComponentType) (*ModalField, error) {
	f, err := r.Field(customID, required)
	if err != nil || f == nil {
		return nil, err
	}
	for _, t := range allowed {
		if f.Type == t {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: field %q is component type %d", ErrTypeMismatch, customID, f.Type)
}

func (r *ModalFieldResolver) TextInputValue(customID string, required bool) (string, error) {
	f, err := r.typed(customID, required, discordgo.TextInputComponent)
	if err != nil || f == nil {
		return "", err
	}
	return f.Value, nil
}

func (r *ModalFieldResolver) StringSelectValues(customID string, required bool) ([]string, error) {
	f, err := r.typed(customID, required, discordgo.SelectMenuComponent)
	if err != nil || f == nil {
		return nil, err
	}
	return f.Values, nil
}

func (r *ModalFieldResolver) SelectedUsers(customID string, required bool) ([]*discordgo.User, error) {
	f, err := r.typed(customID, required, discordgo.UserSelectMenuComponent, discordgo.MentionableSelectMenuComponent)
	if err != nil || f == nil {
		return nil, err
	}
	var out []*discordgo.User
	for _, id := range f.Values {
		u := r.user(id)
		if u == nil {
			// en un mentionable select los ids de roles no son users
			if f.Type == discordgo.MentionableSelectMenuComponent && r.role(id) != nil {
				continue
			}
			return nil, fmt.Errorf("%w: user %s in field %q", ErrResolutionFailure, id, customID)
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *ModalFieldResolver) SelectedRoles(customID string, required bool) ([]*discordgo.Role, error) {
	f, err := r.typed(customID, required, discordgo.RoleSelectMenuComponent, discordgo.MentionableSelectMenuComponent)
	if err != nil || f == nil {
		return nil, err
	}
	var out []*discordgo.Role
	for _, id := range f.Values {
		ro := r.role(id)
		if ro == nil {
			if f.Type == discordgo.MentionableSelectMenuComponent && r.user(id) != nil {
				continue
			}
			return nil, fmt.Errorf("%w: role %s in field %q", ErrResolutionFailure, id, customID)
		}
		out = append(out, ro)
	}
	return out, nil
}

func (r *ModalFieldResolver) SelectedChannels(customID string, required bool) ([]*discordgo.Channel, error) {
	f, err := r.typed(customID, required, discordgo.ChannelSelectMenuComponent)
	if err != nil || f == nil {
		return nil, err
	}
	out := make([]*discordgo.Channel, 0, len(f.Values))
	for _, id := range f.Values {
		var c *discordgo.Channel
		if r.resolved != nil {
			c = r.resolved.Channels[id]
		}
		if c == nil {
			return nil, fmt.Errorf("%w: channel %s in field %q", ErrResolutionFailure, id, customID)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *ModalFieldResolver) SelectedMentionables(customID string, required bool) ([]*Mentionable, error) {
	f, err := r.typed(customID, required, discordgo.MentionableSelectMenuComponent, discordgo.UserSelectMenuComponent, discordgo.RoleSelectMenuComponent)
	if err != nil || f == nil {
		return nil, err
	}
	out := make([]*Mentionable, 0, len(f.Values))
	for _, id := range f.Values {
		switch {
		case r.user(id) != nil:
			m := &Mentionable{User: r.user(id)}
			if r.resolved != nil {
				m.Member = r.resolved.Members[id]
			}
			out = append(out, m)
		case r.role(id) != nil:
			out = append(out, &Mentionable{Role: r.role(id)})
		default:
			return nil, fmt.Errorf("%w: mentionable %s in field %q", ErrResolutionFailure, id, customID)
		}
	}
	return out, nil
}

func (r *ModalFieldResolver) UploadedFiles(customID string, required bool) ([]*discordgo.MessageAttachment, error) {
	f, err := r.typed(customID, required, ComponentFileUpload)
	if err != nil || f == nil {
		return nil, err
	}
	out := make([]*discordgo.MessageAttachment, 0, len(f.Values))
	for _, id := range f.Values {
		var a *discordgo.MessageAttachment
		if r.resolved != nil {
			a = r.resolved.Attachments[id]
		}
		if a == nil {
			return nil, fmt.Errorf("%w: attachment %s in field %q", ErrResolutionFailure, id, customID)
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *ModalFieldResolver) user(id string) *discordgo.User {
	if r.resolved == nil {
		return nil
	}
	return r.resolved.Users[id]
}

func (r *ModalFieldResolver) role(id string) *discordgo.Role {
	if r.resolved == nil {
		return nil
	}
	return r.resolved.Roles[id]
}
