// Package fulfill orchestrates the task intents: it decodes the caller
// identity, validates the requested task content, persists it through the
// task store, and projects the stored collection into the structures the
// conversational UI renders.
//
// A request moves through Received, Authenticated, Validated, Persisted,
// and Rendered in that order, exiting at the first failure. Failures
// still produce a conversational response; the handler never leaves a
// request unanswered and never retries store operations itself.
package fulfill

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/taskvoice/internal/convo"
	"github.com/fyrsmithlabs/taskvoice/internal/logging"
	"github.com/fyrsmithlabs/taskvoice/internal/projection"
	"github.com/fyrsmithlabs/taskvoice/internal/tasks"
	"github.com/fyrsmithlabs/taskvoice/pkg/auth"
)

// Handler names registered with the conversational platform.
const (
	HandlerAddTask   = "add_task"
	HandlerListTasks = "list_tasks"
)

// taskParam is the intent parameter carrying the spoken task text.
const taskParam = "task"

// taskOptionType is the session type overridden with task display data.
const taskOptionType = "task_option"

// minListItems is the platform's minimum item count for list rendering;
// smaller collections fall back to a plain text enumeration.
const minListItems = 2

// Service fulfills the task intents.
type Service struct {
	decoder  *auth.Decoder
	store    tasks.Store
	logger   *logging.Logger
	projOpts projection.Options
}

// NewService creates the fulfillment service.
func NewService(decoder *auth.Decoder, store tasks.Store, logger *logging.Logger) (*Service, error) {
	if decoder == nil {
		return nil, errors.New("decoder is required")
	}
	if store == nil {
		return nil, errors.New("store is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &Service{
		decoder: decoder,
		store:   store,
		logger:  logger.Named("fulfill"),
	}, nil
}

// Register attaches the intent handlers to the fulfillment app.
func (s *Service) Register(app *convo.App) {
	app.Handle(HandlerAddTask, s.HandleAddTask)
	app.Handle(HandlerListTasks, s.HandleListTasks)
}

// HandleAddTask persists one task and renders the updated collection.
func (s *Service) HandleAddTask(ctx context.Context, req *convo.Request) (*convo.Response, error) {
	userKey, err := s.decoder.Decode(ctx, req.Credential)
	if err != nil {
		s.logger.Warn(ctx, "authentication failed", zap.Error(err))
		return errorResponse(err), nil
	}
	ctx = logging.WithUserKey(ctx, userKey)

	content, err := tasks.NormalizeContent(req.ResolvedParam(taskParam))
	if err != nil {
		s.logger.Debug(ctx, "task content rejected", zap.Error(err))
		return errorResponse(err), nil
	}

	task, err := s.store.CreateTask(ctx, userKey, content)
	if err != nil {
		s.logger.Error(ctx, "creating task failed", zap.Error(err))
		return errorResponse(err), nil
	}

	s.logger.Info(ctx, "task created", zap.String("task.id", task.ID))

	// Read-after-write: the store guarantees the new record is visible
	// on the same connection, so the rendered view always includes it.
	records, err := s.store.ListTasks(ctx, userKey)
	if err != nil {
		s.logger.Error(ctx, "listing tasks after create failed", zap.Error(err))
		return errorResponse(err), nil
	}

	confirmation := fmt.Sprintf("I've added %q to your tasks.", task.Content)
	return s.render(req, records, confirmation), nil
}

// HandleListTasks renders the caller's current task collection.
func (s *Service) HandleListTasks(ctx context.Context, req *convo.Request) (*convo.Response, error) {
	userKey, err := s.decoder.Decode(ctx, req.Credential)
	if err != nil {
		s.logger.Warn(ctx, "authentication failed", zap.Error(err))
		return errorResponse(err), nil
	}
	ctx = logging.WithUserKey(ctx, userKey)

	records, err := s.store.ListTasks(ctx, userKey)
	if err != nil {
		s.logger.Error(ctx, "listing tasks failed", zap.Error(err))
		return errorResponse(err), nil
	}

	if len(records) == 0 {
		return convo.SimpleResponse("You don't have any tasks yet. Say \"add a task\" to create one."), nil
	}

	intro := fmt.Sprintf("You have %s.", countPhrase(len(records)))
	return s.render(req, records, intro), nil
}

// render projects the records and composes the response. Collections
// below the platform's list minimum fall back to plain text.
func (s *Service) render(req *convo.Request, records []tasks.Task, intro string) *convo.Response {
	items := projection.Project(records, s.projOpts)

	if len(items) < minListItems {
		if len(items) == 0 {
			return convo.SimpleResponse(intro)
		}
		text := fmt.Sprintf("%s Your only task is %q.", intro, items[0].Title)
		return convo.SimpleResponse(text)
	}

	return &convo.Response{
		Session: &convo.Session{
			ID: req.Session.ID,
			TypeOverrides: []convo.TypeOverride{{
				Name:    taskOptionType,
				Mode:    convo.TypeReplaceMode,
				Synonym: convo.SynonymType{Entries: projection.Entries(items)},
			}},
		},
		Prompt: convo.Prompt{
			FirstSimple: &convo.Simple{Speech: intro, Text: intro},
			Content: &convo.Content{
				List: &convo.List{
					Title: "Your tasks",
					Items: projection.Keys(items),
				},
			},
		},
	}
}

func countPhrase(n int) string {
	if n == 1 {
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", n)
}
