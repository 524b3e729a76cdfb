package fulfill

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/taskvoice/internal/convo"
	"github.com/fyrsmithlabs/taskvoice/internal/tasks"
	"github.com/fyrsmithlabs/taskvoice/pkg/auth"
)

// User-visible failure messages. Every failure kind maps to a spoken
// response so the conversation is never left unanswered.
const (
	msgUnauthenticated  = "I couldn't verify your account. Please link your account and try again."
	msgEmptyContent     = "I didn't catch the task. What should I add to your list?"
	msgTransientFailure = "I can't reach your task list right now. Please try again in a moment."
	msgPermanentFailure = "Something went wrong while handling your tasks. Please try again later."
)

var msgContentTooLong = fmt.Sprintf(
	"That task is a bit too long for me. Could you keep it under %d characters?", tasks.MaxContentLen)

// errorResponse maps a failure to its conversational reply.
//
// Authentication failures prompt re-linking, validation failures ask the
// user to correct the input, and transient store failures invite a retry;
// the handler itself never retries.
func errorResponse(err error) *convo.Response {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredential):
		return convo.SimpleResponse(msgUnauthenticated)

	case errors.Is(err, tasks.ErrEmptyContent):
		return convo.SimpleResponse(msgEmptyContent)

	case errors.Is(err, tasks.ErrContentTooLong):
		return convo.SimpleResponse(msgContentTooLong)

	case errors.Is(err, tasks.ErrUnavailable):
		return convo.SimpleResponse(msgTransientFailure)

	default:
		return convo.SimpleResponse(msgPermanentFailure)
	}
}
