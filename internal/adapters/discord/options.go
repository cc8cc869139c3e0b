package discord

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// OptionResolver gives typed access to a command's options. Subcommand groups and
// subcommands are unwrapped once at construction; getters then look at the leaf
// options of the selected subcommand only.
type OptionResolver struct {
	group      string
	subcommand string
	options    []*OptionNode
	resolved   *Resolved
}

func NewOptionResolver(nodes []*OptionNode, resolved *Resolved) *OptionResolver {
	r := &OptionResolver{options: nodes, resolved: resolved}

	// group -> subcommand -> leaves, máximo dos niveles
	if len(r.options) > 0 && r.options[0] != nil && r.options[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup {
		r.group = r.options[0].Name
		r.options = r.options[0].Options
	}
	if len(r.options) > 0 && r.options[0] != nil && r.options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		r.subcommand = r.options[0].Name
		r.options = r.options[0].Options
	}
	return r
}

// Data returns the leaf options after subcommand unwrapping.
func (r *OptionResolver) Data() []*OptionNode { return r.options }

func (r *OptionResolver) Subcommand(required bool) (string, error) {
	if r.subcommand == "" && required {
		return "", fmt.Errorf("%w: subcommand", ErrMissingRequiredOption)
	}
	return r.subcommand, nil
}

func (r *OptionResolver) SubcommandGroup(required bool) (string, error) {
	if r.group == "" && required {
		return "", fmt.Errorf("%w: subcommand group", ErrMissingRequiredOption)
	}
	return r.group, nil
}

func (r *OptionResolver) Has(name string) bool {
	return r.find(name) != nil
}

func (r *OptionResolver) find(name string) *OptionNode {
	for _, o := range r.options {
		if o != nil && o.Name == name {
			return o
		}
	}
	return nil
}

// Get returns the raw option node. A nil node with a nil error means the option is
// absent and was not required.
func (r *OptionResolver) Get(name string, required bool) (*OptionNode, error) {
	o := r.find(name)
	if o == nil {
		if required {
			return nil, fmt.Errorf("%w: %q", ErrMissingRequiredOption, name)
		}
		return nil, nil
	}
	return o, nil
}

func (r *OptionResolver) typed(name string, required bool, allowed ...discordgo.ApplicationCommandOptionType) (*OptionNode, error) {
	o, err := r.Get(name, required)
	if err != nil || o == nil {
		return nil, err
	}
	for _, t := range allowed {
		if o.Type == t {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: %q is %s, want %s", ErrTypeMismatch, name, o.Type, allowed[0])
}

func decodeValue(o *OptionNode, dst any) error {
	if len(o.Value) == 0 {
		return fmt.Errorf("%w: %q has no value", ErrTypeMismatch, o.Name)
	}
	dec := json.NewDecoder(bytes.NewReader(o.Value))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrTypeMismatch, o.Name, err)
	}
	return nil
}

func (r *OptionResolver) String(name string, required bool) (string, error) {
	o, err := r.typed(name, required, discordgo.ApplicationCommandOptionString)
	if err != nil || o == nil {
		return "", err
	}
	var s string
	if err := decodeValue(o, &s); err != nil {
		return "", err
	}
	return s, nil
}

func (r *OptionResolver) Integer(name string, required bool) (int64, error) {
	o, err := r.typed(name, required, discordgo.ApplicationCommandOptionInteger)
	if err != nil || o == nil {
		return 0, err
	}
	var n json.Number
	if err := decodeValue(o, &n); err != nil {
		return 0, err
	}
	v, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrTypeMismatch, name, err)
	}
	return v, nil
}

func (r *OptionResolver) Number(name string, required bool) (float64, error) {
	o, err := r.typed(name, required, discordgo.ApplicationCommandOptionNumber)
	if err != nil || o == nil {
		return 0, err
	}
	var n json.Number
	if err := decodeValue(o, &n); err != nil {
		return 0, err
	}
	v, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrTypeMismatch, name, err)
	}
	return v, nil
}

func (r *OptionResolver) Boolean(name string, required bool) (bool, error) {
	o, err := r.typed(name, required, discordgo.ApplicationCommandOptionBoolean)
	if err != nil || o == nil {
		return false, err
	}
	var b bool
	if err := decodeValue(o, &b); err != nil {
		return false, err
	}
	return b, nil
}

// snowflake reads the id an entity-typed option carries.
func (r *OptionResolver) snowflake(name string, required bool, allowed ...discordgo.ApplicationCommandOptionType) (string, *OptionNode, error) {
	o, err := r.typed(name, required, allowed...)
	if err != nil || o == nil {
		return "", nil, err
	}
	var id string
	if err := decodeValue(o, &id); err != nil {
		return "", nil, err
	}
	return id, o, nil
}

func (r *OptionResolver) unresolved(kind, name, id string) error {
	return fmt.Errorf("%w: %s %s for option %q", ErrResolutionFailure, kind, id, name)
}

func (r *OptionResolver) User(name string, required bool) (*discordgo.User, error) {
	id, o, err := r.snowflake(name, required, discordgo.ApplicationCommandOptionUser, discordgo.ApplicationCommandOptionMentionable)
	if err != nil || o == nil {
		return nil, err
	}
	if r.resolved != nil {
		if u, ok := r.resolved.Users[id]; ok && u != nil {
			return u, nil
		}
	}
	return nil, r.unresolved("user", name, id)
}

// Member returns nil without error when Discord sent no member for the user,
// which is normal outside guilds or for users that left.
func (r *OptionResolver) Member(name string, required bool) (*discordgo.Member, error) {
	id, o, err := r.snowflake(name, required, discordgo.ApplicationCommandOptionUser, discordgo.ApplicationCommandOptionMentionable)
	if err != nil || o == nil {
		return nil, err
	}
	if r.resolved == nil {
		return nil, nil
	}
	return r.resolved.Members[id], nil
}

func (r *OptionResolver) Channel(name string, required bool) (*discordgo.Channel, error) {
	id, o, err := r.snowflake(name, required, discordgo.ApplicationCommandOptionChannel)
	if err != nil || o == nil {
		return nil, err
	}
	if r.resolved != nil {
		if c, ok := r.resolved.Channels[id]; ok && c != nil {
			return c, nil
		}
	}
	return nil, r.unresolved("channel", name, id)
}

func (r *OptionResolver) Role(name string, required bool) (*discordgo.Role, error) {
	id, o, err := r.snowflake(name, required, discordgo.ApplicationCommandOptionRole, discordgo.ApplicationCommandOptionMentionable)
	if err != nil || o == nil {
		return nil, err
	}
	if r.resolved != nil {
		if ro, ok := r.resolved.Roles[id]; ok && ro != nil {
			return ro, nil
		}
	}
	return nil, r.unresolved("role", name, id)
}

func (r *OptionResolver) Attachment(name string, required bool) (*discordgo.MessageAttachment, error) {
	id, o, err := r.snowflake(name, required, discordgo.ApplicationCommandOptionAttachment)
	if err != nil || o == nil {
		return nil, err
	}
	if r.resolved != nil {
		if a, ok := r.resolved.Attachments[id]; ok && a != nil {
			return a, nil
		}
	}
	return nil, r.unresolved("attachment", name, id)
}

// Mentionable is either a user (with its member when present) or a role.
type Mentionable struct {
	User   *discordgo.User
	Member *discordgo.Member
	Role   *discordgo.Role
}

func (r *OptionResolver) Mentionable(name string, required bool) (*Mentionable, error) {
	id, o, err := r.snowflake(name, required,
		discordgo.ApplicationCommandOptionMentionable,
		discordgo.ApplicationCommandOptionUser,
		discordgo.ApplicationCommandOptionRole,
	)
	if err != nil || o == nil {
		return nil, err
	}
	if r.resolved != nil {
		if u, ok := r.resolved.Users[id]; ok && u != nil {
			return &Mentionable{User: u, Member: r.resolved.Members[id]}, nil
		}
		if ro, ok := r.resolved.Roles[id]; ok && ro != nil {
			return &Mentionable{Role: ro}, nil
		}
	}
	return nil, r.unresolved("mentionable", name, id)
}

// FocusedOption is the option the user is typing in during autocomplete. Value
// is always the raw partial input, even for numeric options.
type FocusedOption struct {
	Name  string
	Type  discordgo.ApplicationCommandOptionType
	Value string
}

func (r *OptionResolver) Focused() (FocusedOption, error) {
	for _, o := range r.options {
		if o == nil || !o.Focused {
			continue
		}
		f := FocusedOption{Name: o.Name, Type: o.Type}
		var s string
		if err := json.Unmarshal(o.Value, &s); err == nil {
			f.Value = s
		} else {
			f.Value = string(bytes.TrimSpace(o.Value))
		}
		return f, nil
	}
	return FocusedOption{}, fmt.Errorf("%w: no focused option", ErrMissingRequiredOption)
}
