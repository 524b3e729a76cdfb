// Package projection transforms stored task records into the keyed
// display entries the conversational list and collection renderings
// consume.
//
// Every function here is a pure transformation: no I/O, no mutation of
// the input records, deterministic output for identical input.
package projection

import (
	"fmt"

	"github.com/fyrsmithlabs/taskvoice/internal/convo"
	"github.com/fyrsmithlabs/taskvoice/internal/tasks"
)

// DefaultTitleLimit is the display constraint for list and collection
// item titles.
const DefaultTitleLimit = 80

// Item is one display-ready task projection. Ephemeral: recomputed on
// each render, never persisted.
type Item struct {
	// Key is the stable selection key, derived from the record id.
	Key string

	// Title is the record content, truncated to the display limit.
	Title string

	// Description is secondary display text.
	Description string

	// Image is an optional image reference.
	Image *convo.Image
}

// Options controls the projection.
type Options struct {
	// TitleLimit caps item titles in runes. Zero means DefaultTitleLimit.
	TitleLimit int

	// DefaultImage is attached to every item when set. The projector
	// itself never requires an image.
	DefaultImage *convo.Image
}

// Project maps task records to display items, preserving input order.
// An empty input yields an empty (non-nil) slice.
func Project(records []tasks.Task, opts Options) []Item {
	limit := opts.TitleLimit
	if limit <= 0 {
		limit = DefaultTitleLimit
	}

	items := make([]Item, 0, len(records))
	for _, record := range records {
		items = append(items, Item{
			Key:         "task_" + record.ID,
			Title:       truncate(record.Content, limit),
			Description: fmt.Sprintf("Added %s", record.CreatedAt.Format("Jan 2, 2006")),
			Image:       opts.DefaultImage,
		})
	}
	return items
}

// Entries builds the type-override entries a list or collection needs
// for its item keys.
func Entries(items []Item) []convo.Entry {
	entries := make([]convo.Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, convo.Entry{
			Name:     item.Key,
			Synonyms: []string{item.Title},
			Display: &convo.EntryDisplay{
				Title:       item.Title,
				Description: item.Description,
				Image:       item.Image,
			},
		})
	}
	return entries
}

// Keys extracts the keyed item references for list/collection content.
func Keys(items []Item) []convo.Item {
	keys := make([]convo.Item, 0, len(items))
	for _, item := range items {
		keys = append(keys, convo.Item{Key: item.Key})
	}
	return keys
}

// truncate shortens s to limit runes, appending an ellipsis when
// anything was cut. Rune-safe: multi-byte content never splits.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}
