package convo

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/taskvoice/internal/logging"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(logging.NewTestLogger().Logger)
	require.NoError(t, err)
	return app
}

func TestNewApp_RequiresLogger(t *testing.T) {
	_, err := NewApp(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger is required")
}

func TestDispatch_RoutesByHandlerName(t *testing.T) {
	app := newTestApp(t)

	var gotIntent string
	app.Handle("add_task", func(_ context.Context, req *Request) (*Response, error) {
		gotIntent = req.Intent.Name
		return SimpleResponse("done"), nil
	})

	resp, err := app.Dispatch(context.Background(), &Request{
		Handler: Handler{Name: "add_task"},
		Intent:  Intent{Name: "AddTaskIntent"},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Prompt.FirstSimple)
	assert.Equal(t, "done", resp.Prompt.FirstSimple.Text)
	assert.Equal(t, "AddTaskIntent", gotIntent)
}

func TestDispatch_UnknownHandler(t *testing.T) {
	app := newTestApp(t)

	_, err := app.Dispatch(context.Background(), &Request{
		Handler: Handler{Name: "never_registered"},
	})
	assert.ErrorIs(t, err, ErrUnknownHandler)
}

func TestDispatch_NilRequest(t *testing.T) {
	app := newTestApp(t)

	_, err := app.Dispatch(context.Background(), nil)
	assert.Error(t, err)
}

func TestHandle_DuplicateRegistrationPanics(t *testing.T) {
	app := newTestApp(t)
	fn := func(context.Context, *Request) (*Response, error) { return SimpleResponse("x"), nil }

	app.Handle("add_task", fn)
	assert.Panics(t, func() { app.Handle("add_task", fn) })
	assert.Panics(t, func() { app.Handle("", fn) })
	assert.Panics(t, func() { app.Handle("list_tasks", nil) })
}

func TestResolvedParam(t *testing.T) {
	req := &Request{
		Intent: Intent{
			Params: map[string]IntentParam{
				"task": {Original: "Buy Milk", Resolved: "  buy milk  "},
			},
		},
	}

	assert.Equal(t, "buy milk", req.ResolvedParam("task"))
	assert.Equal(t, "", req.ResolvedParam("missing"))
	assert.Equal(t, "", (&Request{}).ResolvedParam("task"))
}

func TestRequest_DecodesPlatformPayload(t *testing.T) {
	payload := `{
		"handler": {"name": "add_task"},
		"intent": {
			"name": "AddTaskIntent",
			"params": {"task": {"original": "Buy milk", "resolved": "buy milk"}}
		},
		"session": {"id": "sessions/abc123", "params": {"count": 2}},
		"user": {"accountLinkingStatus": "LINKED"}
	}`

	var req Request
	require.NoError(t, json.Unmarshal([]byte(payload), &req))

	assert.Equal(t, "add_task", req.Handler.Name)
	assert.Equal(t, "buy milk", req.ResolvedParam("task"))
	assert.Equal(t, "sessions/abc123", req.Session.ID)
	assert.Equal(t, "LINKED", req.User.AccountLinkingStatus)
	assert.Empty(t, req.Credential, "credential never comes from the body")
}

func TestResponse_SerializesListContent(t *testing.T) {
	resp := &Response{
		Session: &Session{
			ID: "sessions/abc123",
			TypeOverrides: []TypeOverride{{
				Name: "task_option",
				Mode: TypeReplaceMode,
				Synonym: SynonymType{Entries: []Entry{{
					Name:    "task_1",
					Display: &EntryDisplay{Title: "buy milk"},
				}}},
			}},
		},
		Prompt: Prompt{
			FirstSimple: &Simple{Speech: "Here are your tasks.", Text: "Here are your tasks."},
			Content: &Content{
				List: &List{
					Title: "Your tasks",
					Items: []Item{{Key: "task_1"}},
				},
			},
		},
	}

	out, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.Contains(t, string(out), `"typeOverrideMode":"TYPE_REPLACE"`)
	assert.Contains(t, string(out), `"key":"task_1"`)
	assert.NotContains(t, string(out), `"collection"`)
}
