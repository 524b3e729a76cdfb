// Package tasks owns persistence of user-authored task records.
//
// A task record belongs to exactly one owner, identified by the derived
// user key from pkg/auth. The store partitions every lookup by owner;
// records of different owners are never visible to each other. The
// collection is append-only in this service: no update or delete.
package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxContentLen is the maximum task content length in runes. It matches
// the display constraint of the conversational UI's simple prompt.
const MaxContentLen = 640

var (
	// ErrEmptyContent is returned when the task content is empty or
	// whitespace-only.
	ErrEmptyContent = errors.New("task content cannot be empty")

	// ErrContentTooLong is returned when the task content exceeds
	// MaxContentLen runes.
	ErrContentTooLong = fmt.Errorf("task content exceeds %d characters", MaxContentLen)

	// ErrUnavailable is returned when the store backend cannot be
	// reached. The failure is transient; the caller may retry the whole
	// request.
	ErrUnavailable = errors.New("task store unavailable")
)

// Task is one persisted task record.
//
// ID, Owner, and CreatedAt are assigned at creation and never change.
type Task struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// NormalizeContent trims the raw task text and validates it.
//
// Returns ErrEmptyContent for empty or whitespace-only input and
// ErrContentTooLong for input over MaxContentLen runes.
func NormalizeContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxContentLen {
		return "", ErrContentTooLong
	}
	return content, nil
}
