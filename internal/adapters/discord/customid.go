package discord

import "strings"

// ParsePrefix returns the routing prefix of a custom id: everything before the
// first '/' or '?', or the whole id when neither appears.
//
//	ParsePrefix("btn/confirm?1") == "btn"
//	ParsePrefix("simple")        == "simple"
func ParsePrefix(customID string) string {
	if i := strings.IndexAny(customID, "/?"); i >= 0 {
		return customID[:i]
	}
	return customID
}

// CustomID is a parsed "prefix/component/more?param1/param2" identifier.
type CustomID struct {
	Raw    string
	Path   []string
	Params []string
}

func ParseCustomID(customID string) CustomID {
	path, query, _ := strings.Cut(customID, "?")
	id := CustomID{Raw: customID, Path: strings.Split(path, "/")}
	if query != "" {
		id.Params = strings.Split(query, "/")
	}
	return id
}

func (c CustomID) Prefix() string { return ParsePrefix(c.Raw) }

// Component is the second path item, "" when the id has a single segment.
func (c CustomID) Component() string {
	if len(c.Path) < 2 {
		return ""
	}
	return c.Path[1]
}

func (c CustomID) LastPathItem() string { return c.Path[len(c.Path)-1] }

func (c CustomID) FirstParam() string {
	if len(c.Params) == 0 {
		return ""
	}
	return c.Params[0]
}

func (c CustomID) LastParam() string {
	if len(c.Params) == 0 {
		return ""
	}
	return c.Params[len(c.Params)-1]
}
