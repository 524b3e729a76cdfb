package fulfill

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/taskvoice/internal/convo"
	"github.com/fyrsmithlabs/taskvoice/internal/logging"
	"github.com/fyrsmithlabs/taskvoice/internal/tasks"
	"github.com/fyrsmithlabs/taskvoice/pkg/auth"
)

// credentialFor builds an unsigned credential the static verifier
// resolves to the given subject.
func credentialFor(subject string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	claims := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"sub":%q}`, subject)))
	return header + "." + claims + ".unsigned"
}

// countingStore wraps a Store and records whether it was touched.
type countingStore struct {
	tasks.Store
	calls int
}

func (c *countingStore) CreateTask(ctx context.Context, owner, content string) (*tasks.Task, error) {
	c.calls++
	return c.Store.CreateTask(ctx, owner, content)
}

func (c *countingStore) ListTasks(ctx context.Context, owner string) ([]tasks.Task, error) {
	c.calls++
	return c.Store.ListTasks(ctx, owner)
}

func newTestService(t *testing.T, store tasks.Store) *Service {
	t.Helper()

	decoder, err := auth.NewDecoder(auth.StaticVerifier{})
	require.NoError(t, err)

	svc, err := NewService(decoder, store, logging.NewTestLogger().Logger)
	require.NoError(t, err)
	return svc
}

func newMemoryService(t *testing.T) (*Service, *tasks.MemoryStore) {
	t.Helper()
	store := tasks.NewMemoryStore(nil)
	require.NoError(t, store.Connect(context.Background()))
	return newTestService(t, store), store
}

func addTaskRequest(credential, content string) *convo.Request {
	return &convo.Request{
		Handler:    convo.Handler{Name: HandlerAddTask},
		Intent:     convo.Intent{Name: "AddTaskIntent", Params: map[string]convo.IntentParam{taskParam: {Resolved: content}}},
		Session:    convo.Session{ID: "sessions/test"},
		Credential: credential,
	}
}

func listTasksRequest(credential string) *convo.Request {
	return &convo.Request{
		Handler:    convo.Handler{Name: HandlerListTasks},
		Session:    convo.Session{ID: "sessions/test"},
		Credential: credential,
	}
}

func TestNewService_Validation(t *testing.T) {
	decoder, err := auth.NewDecoder(auth.StaticVerifier{})
	require.NoError(t, err)
	store := tasks.NewMemoryStore(nil)
	logger := logging.NewTestLogger().Logger

	_, err = NewService(nil, store, logger)
	assert.ErrorContains(t, err, "decoder is required")

	_, err = NewService(decoder, nil, logger)
	assert.ErrorContains(t, err, "store is required")

	_, err = NewService(decoder, store, nil)
	assert.ErrorContains(t, err, "logger is required")
}

func TestHandleAddTask_Success(t *testing.T) {
	svc, store := newMemoryService(t)

	resp, err := svc.HandleAddTask(context.Background(), addTaskRequest(credentialFor("U1"), "buy milk"))
	require.NoError(t, err)
	require.NotNil(t, resp.Prompt.FirstSimple)
	assert.Contains(t, resp.Prompt.FirstSimple.Text, `"buy milk"`)

	owner, err := auth.DeriveUserKey("U1")
	require.NoError(t, err)

	stored, err := store.ListTasks(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "buy milk", stored[0].Content)
	assert.Equal(t, owner, stored[0].Owner)
	assert.NotEmpty(t, stored[0].ID)
}

func TestHandleAddTask_RendersUpdatedCollection(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()
	credential := credentialFor("U1")

	_, err := svc.HandleAddTask(ctx, addTaskRequest(credential, "buy milk"))
	require.NoError(t, err)

	resp, err := svc.HandleAddTask(ctx, addTaskRequest(credential, "walk the dog"))
	require.NoError(t, err)

	// Two tasks now: the response renders the list with both entries,
	// including the one created by this very request.
	require.NotNil(t, resp.Prompt.Content)
	require.NotNil(t, resp.Prompt.Content.List)
	assert.Len(t, resp.Prompt.Content.List.Items, 2)

	require.NotNil(t, resp.Session)
	require.Len(t, resp.Session.TypeOverrides, 1)
	override := resp.Session.TypeOverrides[0]
	assert.Equal(t, taskOptionType, override.Name)
	assert.Equal(t, convo.TypeReplaceMode, override.Mode)
	require.Len(t, override.Synonym.Entries, 2)
	assert.Equal(t, "buy milk", override.Synonym.Entries[0].Display.Title)
	assert.Equal(t, "walk the dog", override.Synonym.Entries[1].Display.Title)
}

func TestHandleAddTask_SingleTaskFallsBackToText(t *testing.T) {
	svc, _ := newMemoryService(t)

	resp, err := svc.HandleAddTask(context.Background(), addTaskRequest(credentialFor("U1"), "buy milk"))
	require.NoError(t, err)

	assert.Nil(t, resp.Prompt.Content, "one task is below the list minimum")
	assert.Contains(t, resp.Prompt.FirstSimple.Text, `"buy milk"`)
}

func TestHandleAddTask_AuthFailureSkipsStore(t *testing.T) {
	backing := tasks.NewMemoryStore(nil)
	require.NoError(t, backing.Connect(context.Background()))
	counting := &countingStore{Store: backing}
	svc := newTestService(t, counting)

	tests := []struct {
		name       string
		credential string
	}{
		{name: "missing credential", credential: ""},
		{name: "malformed credential", credential: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.HandleAddTask(context.Background(), addTaskRequest(tt.credential, "buy milk"))
			require.NoError(t, err, "failures must still produce a response")
			require.NotNil(t, resp.Prompt.FirstSimple)
			assert.Equal(t, msgUnauthenticated, resp.Prompt.FirstSimple.Text)
		})
	}

	assert.Zero(t, counting.calls, "store must not be touched on auth failure")
}

func TestHandleAddTask_ValidationFailure(t *testing.T) {
	svc, store := newMemoryService(t)

	for _, content := range []string{"", "   "} {
		resp, err := svc.HandleAddTask(context.Background(), addTaskRequest(credentialFor("U1"), content))
		require.NoError(t, err)
		assert.Equal(t, msgEmptyContent, resp.Prompt.FirstSimple.Text, "content %q", content)
	}

	owner, err := auth.DeriveUserKey("U1")
	require.NoError(t, err)
	stored, err := store.ListTasks(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, stored, "nothing may be persisted on validation failure")
}

func TestHandleAddTask_OversizedContent(t *testing.T) {
	svc, _ := newMemoryService(t)

	resp, err := svc.HandleAddTask(context.Background(),
		addTaskRequest(credentialFor("U1"), strings.Repeat("a", tasks.MaxContentLen+1)))
	require.NoError(t, err)
	assert.Equal(t, msgContentTooLong, resp.Prompt.FirstSimple.Text)
}

func TestHandleAddTask_StoreUnavailable(t *testing.T) {
	// A store that never connected reports ErrUnavailable.
	svc := newTestService(t, tasks.NewMemoryStore(nil))

	resp, err := svc.HandleAddTask(context.Background(), addTaskRequest(credentialFor("U1"), "buy milk"))
	require.NoError(t, err)
	assert.Equal(t, msgTransientFailure, resp.Prompt.FirstSimple.Text)
}

func TestHandleListTasks_Empty(t *testing.T) {
	svc, _ := newMemoryService(t)

	resp, err := svc.HandleListTasks(context.Background(), listTasksRequest(credentialFor("U1")))
	require.NoError(t, err)
	assert.Contains(t, resp.Prompt.FirstSimple.Text, "don't have any tasks")
	assert.Nil(t, resp.Prompt.Content)
}

func TestHandleListTasks_RendersCollection(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()
	credential := credentialFor("U1")

	for _, content := range []string{"buy milk", "walk the dog", "call the plumber"} {
		_, err := svc.HandleAddTask(ctx, addTaskRequest(credential, content))
		require.NoError(t, err)
	}

	resp, err := svc.HandleListTasks(ctx, listTasksRequest(credential))
	require.NoError(t, err)

	assert.Contains(t, resp.Prompt.FirstSimple.Text, "3 tasks")
	require.NotNil(t, resp.Prompt.Content)
	require.NotNil(t, resp.Prompt.Content.List)
	require.Len(t, resp.Prompt.Content.List.Items, 3)

	entries := resp.Session.TypeOverrides[0].Synonym.Entries
	require.Len(t, entries, 3)
	assert.Equal(t, "buy milk", entries[0].Display.Title)
	assert.Equal(t, "call the plumber", entries[2].Display.Title)
}

func TestHandleListTasks_OwnerIsolation(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()

	_, err := svc.HandleAddTask(ctx, addTaskRequest(credentialFor("U1"), "u1's secret task"))
	require.NoError(t, err)

	resp, err := svc.HandleListTasks(ctx, listTasksRequest(credentialFor("U2")))
	require.NoError(t, err)
	assert.Contains(t, resp.Prompt.FirstSimple.Text, "don't have any tasks")
}

func TestHandlers_RegisterOnApp(t *testing.T) {
	svc, _ := newMemoryService(t)

	app, err := convo.NewApp(logging.NewTestLogger().Logger)
	require.NoError(t, err)
	svc.Register(app)

	resp, err := app.Dispatch(context.Background(), listTasksRequest(credentialFor("U1")))
	require.NoError(t, err)
	assert.NotNil(t, resp.Prompt.FirstSimple)
}
