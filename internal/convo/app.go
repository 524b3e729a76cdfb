package convo

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/taskvoice/internal/logging"
)

// ErrUnknownHandler is returned when a fulfillment request names a
// handler no one registered.
var ErrUnknownHandler = errors.New("unknown fulfillment handler")

// HandlerFunc fulfills one intent. Implementations must always return a
// response for domain failures (the conversation must never go
// unanswered); a non-nil error is reserved for protocol-level problems
// the transport reports directly.
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

// App routes fulfillment requests to intent handlers by handler name.
type App struct {
	logger   *logging.Logger
	handlers map[string]HandlerFunc
}

// NewApp creates an empty fulfillment app.
func NewApp(logger *logging.Logger) (*App, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &App{
		logger:   logger.Named("convo"),
		handlers: make(map[string]HandlerFunc),
	}, nil
}

// Handle registers fn for the given handler name. Registering the same
// name twice is a programming error and panics at startup.
func (a *App) Handle(name string, fn HandlerFunc) {
	if name == "" {
		panic("convo: handler name cannot be empty")
	}
	if fn == nil {
		panic("convo: handler func cannot be nil")
	}
	if _, exists := a.handlers[name]; exists {
		panic(fmt.Sprintf("convo: handler %q registered twice", name))
	}
	a.handlers[name] = fn
}

// Dispatch routes the request to its registered handler.
//
// Returns ErrUnknownHandler when the request names an unregistered
// handler; the transport converts that into a protocol error.
func (a *App) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("request is required")
	}

	name := req.Handler.Name
	fn, ok := a.handlers[name]
	if !ok {
		a.logger.Warn(ctx, "no handler registered", zap.String("handler", name))
		return nil, fmt.Errorf("%w: %q", ErrUnknownHandler, name)
	}

	a.logger.Debug(ctx, "dispatching fulfillment",
		zap.String("handler", name),
		zap.String("intent", req.Intent.Name))

	return fn(ctx, req)
}

// SimpleResponse builds a response with a single spoken/displayed text
// prompt.
func SimpleResponse(text string) *Response {
	return &Response{
		Prompt: Prompt{
			FirstSimple: &Simple{
				Speech: text,
				Text:   text,
			},
		},
	}
}
