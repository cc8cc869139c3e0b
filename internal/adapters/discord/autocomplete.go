package discord

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ChoiceField names a part of a choice the filter can match against.
type ChoiceField string

const (
	ChoiceName              ChoiceField = "name"
	ChoiceValue             ChoiceField = "value"
	ChoiceNameLocalizations ChoiceField = "name_localizations"
)

// AutocompleteFilter narrows a list of choices down to the ones containing what
// the user typed so far. Matching is case-insensitive substring containment.
//
//	f := NewAutocompleteFilter(focused.Value, ic.Locale).
//		AddChoices(
//			&discordgo.ApplicationCommandOptionChoice{Name: "Choice One", Value: "choice_1"},
//			&discordgo.ApplicationCommandOptionChoice{Name: "Choice Two", Value: "choice_2"},
//		)
//	byName := f.Response(ChoiceName)
//	byAny := f.Response()
type AutocompleteFilter struct {
	value   string
	locale  discordgo.Locale
	choices []*discordgo.ApplicationCommandOptionChoice
}

// NewAutocompleteFilter takes the partial input (string or number) and the
// actor's locale, which may be empty.
func NewAutocompleteFilter(value any, locale discordgo.Locale) *AutocompleteFilter {
	return &AutocompleteFilter{value: lowerString(value), locale: locale}
}

func (f *AutocompleteFilter) Choices() []*discordgo.ApplicationCommandOptionChoice { return f.choices }

func (f *AutocompleteFilter) AddChoices(choices ...*discordgo.ApplicationCommandOptionChoice) *AutocompleteFilter {
	f.choices = append(f.choices, choices...)
	return f
}

func (f *AutocompleteFilter) SetChoices(choices ...*discordgo.ApplicationCommandOptionChoice) *AutocompleteFilter {
	f.choices = append([]*discordgo.ApplicationCommandOptionChoice(nil), choices...)
	return f
}

func (f *AutocompleteFilter) Clear() *AutocompleteFilter {
	f.choices = nil
	return f
}

// Response returns the choices that match. With no fields every field is tried.
// A localization only counts when the actor has a locale and the choice has a
// name for it; otherwise that criterion simply does not match.
func (f *AutocompleteFilter) Response(fields ...ChoiceField) []*discordgo.ApplicationCommandOptionChoice {
	if len(fields) == 0 {
		fields = []ChoiceField{ChoiceName, ChoiceValue, ChoiceNameLocalizations}
	}
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(f.choices))
	for _, c := range f.choices {
		if c != nil && f.matches(c, fields) {
			out = append(out, c)
		}
	}
	return out
}

func (f *AutocompleteFilter) matches(c *discordgo.ApplicationCommandOptionChoice, fields []ChoiceField) bool {
	for _, field := range fields {
		switch field {
		case ChoiceName:
			if strings.Contains(strings.ToLower(c.Name), f.value) {
				return true
			}
		case ChoiceValue:
			if strings.Contains(lowerString(c.Value), f.value) {
				return true
			}
		case ChoiceNameLocalizations:
			if f.locale == "" {
				continue
			}
			if name, ok := c.NameLocalizations[f.locale]; ok && strings.Contains(strings.ToLower(name), f.value) {
				return true
			}
		}
	}
	return false
}

func lowerString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.ToLower(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case nil:
		return ""
	default:
		return strings.ToLower(fmt.Sprint(x))
	}
}
