package discord

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type Severity int

const (
	SeverityWarn Severity = iota + 1
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warn"
}

// Diagnostic is a note about one handler passed to Register.
type Diagnostic struct {
	Severity Severity
	Key      string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %q: %s", d.Severity, d.Key, d.Message)
}

type Diagnostics []Diagnostic

// Err joins the error diagnostics, nil when there are none.
func (ds Diagnostics) Err() error {
	var errs []error
	for _, d := range ds {
		if d.Severity == SeverityError {
			errs = append(errs, errors.New(d.String()))
		}
	}
	return errors.Join(errs...)
}

// Registry holds the handlers. Commands (slash and context) share one name space;
// components and modals each have their own prefix space.
//
// It is filled once at startup and only read afterwards, so lookups take no lock.
type Registry struct {
	commands   map[string]Handler
	components map[string]*ComponentHandler
	modals     map[string]*ModalHandler
}

func NewRegistry() *Registry {
	return &Registry{
		commands:   map[string]Handler{},
		components: map[string]*ComponentHandler{},
		modals:     map[string]*ModalHandler{},
	}
}

func (r *Registry) Register(handlers ...Handler) Diagnostics {
	var diags Diagnostics
	for _, h := range handlers {
		if d, ok := r.register(h); ok {
			diags = append(diags, d)
		}
	}
	return diags
}

func (r *Registry) register(h Handler) (Diagnostic, bool) {
	reject := func(key, msg string) (Diagnostic, bool) {
		return Diagnostic{Severity: SeverityError, Key: key, Message: msg}, true
	}
	overwrite := func(key, what string) (Diagnostic, bool) {
		return Diagnostic{Severity: SeverityWarn, Key: key, Message: what + " already registered, overwritten"}, true
	}

	switch h := h.(type) {
	case *SlashCommand:
		key := h.handlerKey()
		switch {
		case key == "":
			return reject(key, "slash command without a definition name")
		case h.Run == nil:
			return reject(key, "slash command without Run")
		}
		if h.Definition.Type == 0 {
			h.Definition.Type = discordgo.ChatApplicationCommand
		}
		if h.Definition.Type != discordgo.ChatApplicationCommand {
			return reject(key, "slash command definition must be CHAT_INPUT")
		}
		_, dup := r.commands[key]
		r.commands[key] = h
		if dup {
			return overwrite(key, "command")
		}

	case *ContextCommand:
		key := h.handlerKey()
		if key == "" {
			return reject(key, "context command without a definition name")
		}
		switch h.Definition.Type {
		case discordgo.UserApplicationCommand:
			if h.User == nil {
				return reject(key, "user command without User func")
			}
		case discordgo.MessageApplicationCommand:
			if h.Message == nil {
				return reject(key, "message command without Message func")
			}
		default:
			return reject(key, "context command definition must be USER or MESSAGE")
		}
		_, dup := r.commands[key]
		r.commands[key] = h
		if dup {
			return overwrite(key, "command")
		}

	case *ComponentHandler:
		if h == nil {
			return reject("", "nil component handler")
		}
		if d, bad := validPrefix(h.Prefix, h.Run == nil); bad {
			return d, true
		}
		_, dup := r.components[h.Prefix]
		r.components[h.Prefix] = h
		if dup {
			return overwrite(h.Prefix, "component prefix")
		}

	case *ModalHandler:
		if h == nil {
			return reject("", "nil modal handler")
		}
		if d, bad := validPrefix(h.Prefix, h.Run == nil); bad {
			return d, true
		}
		_, dup := r.modals[h.Prefix]
		r.modals[h.Prefix] = h
		if dup {
			return overwrite(h.Prefix, "modal prefix")
		}

	default:
		return reject("", fmt.Sprintf("unknown handler type %T", h))
	}
	return Diagnostic{}, false
}

// validPrefix: el prefijo no puede estar vacío ni contener los separadores,
// si no ParsePrefix nunca lo devolvería.
func validPrefix(prefix string, noRun bool) (Diagnostic, bool) {
	switch {
	case prefix == "":
		return Diagnostic{Severity: SeverityError, Message: "empty prefix"}, true
	case strings.ContainsAny(prefix, "/?"):
		return Diagnostic{Severity: SeverityError, Key: prefix, Message: "prefix must not contain '/' or '?'"}, true
	case noRun:
		return Diagnostic{Severity: SeverityError, Key: prefix, Message: "handler without Run"}, true
	}
	return Diagnostic{}, false
}

// ResolveCommand returns the slash or context command registered under name.
func (r *Registry) ResolveCommand(name string) (Handler, bool) {
	h, ok := r.commands[name]
	return h, ok
}

// ResolveComponent routes by ParsePrefix(customID), exact match only.
func (r *Registry) ResolveComponent(customID string) (*ComponentHandler, bool) {
	h, ok := r.components[ParsePrefix(customID)]
	return h, ok
}

func (r *Registry) ResolveModal(customID string) (*ModalHandler, bool) {
	h, ok := r.modals[ParsePrefix(customID)]
	return h, ok
}

// Commands returns the command definitions sorted by name, ready for a bulk overwrite.
func (r *Registry) Commands() []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(r.commands))
	for _, h := range r.commands {
		switch h := h.(type) {
		case *SlashCommand:
			out = append(out, h.Definition)
		case *ContextCommand:
			out = append(out, h.Definition)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) CommandCount() int   { return len(r.commands) }
func (r *Registry) ComponentCount() int { return len(r.components) }
func (r *Registry) ModalCount() int     { return len(r.modals) }
