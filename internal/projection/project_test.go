package projection

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/taskvoice/internal/convo"
	"github.com/fyrsmithlabs/taskvoice/internal/tasks"
)

func sampleRecords() []tasks.Task {
	created := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	return []tasks.Task{
		{ID: "id-1", Owner: "owner-1", Content: "buy milk", CreatedAt: created},
		{ID: "id-2", Owner: "owner-1", Content: "walk the dog", CreatedAt: created.Add(time.Minute)},
		{ID: "id-3", Owner: "owner-1", Content: "call the plumber", CreatedAt: created.Add(2 * time.Minute)},
	}
}

func TestProject_MapsRecordsInOrder(t *testing.T) {
	items := Project(sampleRecords(), Options{})

	require.Len(t, items, 3)
	assert.Equal(t, "task_id-1", items[0].Key)
	assert.Equal(t, "buy milk", items[0].Title)
	assert.Equal(t, "Added Mar 5, 2024", items[0].Description)
	assert.Nil(t, items[0].Image)
	assert.Equal(t, "task_id-2", items[1].Key)
	assert.Equal(t, "walk the dog", items[1].Title)
	assert.Equal(t, "task_id-3", items[2].Key)
}

func TestProject_EmptyInput(t *testing.T) {
	items := Project(nil, Options{})
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestProject_Deterministic(t *testing.T) {
	records := sampleRecords()

	first := Project(records, Options{})
	second := Project(records, Options{})

	assert.Equal(t, first, second)
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	original := records[0].Content

	_ = Project(records, Options{TitleLimit: 3})

	assert.Equal(t, original, records[0].Content)
}

func TestProject_TruncatesLongTitles(t *testing.T) {
	records := []tasks.Task{{ID: "id-1", Content: strings.Repeat("a", 100)}}

	items := Project(records, Options{})

	require.Len(t, items, 1)
	title := []rune(items[0].Title)
	assert.Len(t, title, DefaultTitleLimit)
	assert.Equal(t, '…', title[len(title)-1])
}

func TestProject_TruncationIsRuneSafe(t *testing.T) {
	records := []tasks.Task{{ID: "id-1", Content: strings.Repeat("ü", 100)}}

	items := Project(records, Options{TitleLimit: 10})

	title := []rune(items[0].Title)
	require.Len(t, title, 10)
	assert.Equal(t, strings.Repeat("ü", 9)+"…", items[0].Title)
}

func TestProject_CustomLimitAndImage(t *testing.T) {
	img := &convo.Image{URL: "https://example.com/task.png", Alt: "Task"}
	records := sampleRecords()

	items := Project(records, Options{TitleLimit: 5, DefaultImage: img})

	assert.Equal(t, "buy …", items[0].Title)
	assert.Equal(t, img, items[0].Image)
}

func TestEntries(t *testing.T) {
	items := Project(sampleRecords(), Options{})

	entries := Entries(items)

	require.Len(t, entries, 3)
	assert.Equal(t, "task_id-1", entries[0].Name)
	assert.Equal(t, []string{"buy milk"}, entries[0].Synonyms)
	require.NotNil(t, entries[0].Display)
	assert.Equal(t, "buy milk", entries[0].Display.Title)
	assert.Equal(t, "Added Mar 5, 2024", entries[0].Display.Description)
}

func TestKeys(t *testing.T) {
	items := Project(sampleRecords(), Options{})

	keys := Keys(items)

	require.Len(t, keys, 3)
	assert.Equal(t, convo.Item{Key: "task_id-1"}, keys[0])
	assert.Equal(t, convo.Item{Key: "task_id-3"}, keys[2])
}

func TestKeys_Empty(t *testing.T) {
	assert.Empty(t, Keys(nil))
	assert.Empty(t, Entries(nil))
}
