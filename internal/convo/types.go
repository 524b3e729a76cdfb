// Package convo models the subset of the conversational webhook protocol
// the task intents consume: fulfillment requests carrying an intent
// handler name, session parameters, and a user credential, and responses
// composed of simple prompts plus list/collection content.
//
// The full protocol is owned by the conversational platform; only the
// shapes this service reads and writes are modeled here.
package convo

import "strings"

// Request is an inbound fulfillment event.
type Request struct {
	Handler Handler `json:"handler"`
	Intent  Intent  `json:"intent"`
	Session Session `json:"session"`
	User    User    `json:"user"`

	// Credential is the raw bearer credential from the request's
	// authorization header. Set by the transport layer, never part of
	// the JSON body.
	Credential string `json:"-"`
}

// Handler names the fulfillment handler the platform matched.
type Handler struct {
	Name string `json:"name"`
}

// Intent describes the matched intent and its captured parameters.
type Intent struct {
	Name   string                 `json:"name"`
	Params map[string]IntentParam `json:"params"`
}

// IntentParam is one captured intent parameter.
type IntentParam struct {
	Original string `json:"original"`
	Resolved string `json:"resolved"`
}

// Session carries conversation-scoped state.
type Session struct {
	ID            string                 `json:"id"`
	Params        map[string]interface{} `json:"params,omitempty"`
	TypeOverrides []TypeOverride         `json:"typeOverrides,omitempty"`
}

// User carries user-scoped state from the platform.
type User struct {
	Params               map[string]interface{} `json:"params,omitempty"`
	AccountLinkingStatus string                 `json:"accountLinkingStatus,omitempty"`
}

// ResolvedParam returns the resolved value of an intent parameter,
// trimmed, or "" when the parameter was not captured.
func (r *Request) ResolvedParam(name string) string {
	if r == nil || r.Intent.Params == nil {
		return ""
	}
	return strings.TrimSpace(r.Intent.Params[name].Resolved)
}

// Response is the fulfillment result handed back to the platform.
type Response struct {
	Session *Session `json:"session,omitempty"`
	Prompt  Prompt   `json:"prompt"`
}

// Prompt is the renderable content of a response.
type Prompt struct {
	Override    bool     `json:"override"`
	FirstSimple *Simple  `json:"firstSimple,omitempty"`
	Content     *Content `json:"content,omitempty"`
}

// Simple is a spoken/displayed text prompt.
type Simple struct {
	Speech string `json:"speech,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Content wraps the rich rendering alternatives. At most one is set.
type Content struct {
	List       *List       `json:"list,omitempty"`
	Collection *Collection `json:"collection,omitempty"`
}

// List is a vertical list of keyed items.
type List struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Items    []Item `json:"items"`
}

// Collection is a horizontal carousel of keyed items.
type Collection struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Items    []Item `json:"items"`
}

// Item references a type-override entry by key.
type Item struct {
	Key string `json:"key"`
}

// TypeOverride replaces a session type's entries with display data for
// the items a list or collection references.
type TypeOverride struct {
	Name    string      `json:"name"`
	Mode    string      `json:"typeOverrideMode"`
	Synonym SynonymType `json:"synonym"`
}

// TypeReplaceMode fully replaces the session type's entries.
const TypeReplaceMode = "TYPE_REPLACE"

// SynonymType holds the entries of an overridden type.
type SynonymType struct {
	Entries []Entry `json:"entries"`
}

// Entry is one selectable option with its display data.
type Entry struct {
	Name     string        `json:"name"`
	Synonyms []string      `json:"synonyms,omitempty"`
	Display  *EntryDisplay `json:"display,omitempty"`
}

// EntryDisplay is the visual rendering of an entry.
type EntryDisplay struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       *Image `json:"image,omitempty"`
}

// Image references an external image asset.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}
