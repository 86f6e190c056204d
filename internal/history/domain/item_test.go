package domain_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/felixgeelhaar/lingua/internal/history/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func item(id string, offset time.Duration) domain.Item {
	return domain.Item{ID: id, Original: "hello " + id, Tone: "neutral", Timestamp: base.Add(offset)}
}

func TestNewItem(t *testing.T) {
	details := domain.Details{
		Original:    "Hello",
		Translation: "Hallo",
		SourceLang:  "en",
		TargetLang:  "de",
		Engine:      "openai",
	}

	got := domain.NewItem("id-1", details, base)

	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, "Hello", got.Original)
	assert.Equal(t, "Hallo", got.Translation)
	assert.Equal(t, "en", got.SourceLang)
	assert.Equal(t, "de", got.TargetLang)
	assert.Equal(t, "openai", got.Engine)
	assert.Equal(t, "neutral", got.Tone)
	assert.Equal(t, base, got.Timestamp)
	assert.False(t, got.Synced)

	details.Tone = "formal"
	assert.Equal(t, "formal", domain.NewItem("id-2", details, base).Tone)
}

func TestPrepend(t *testing.T) {
	var items []domain.Item
	for i := 0; i < 8; i++ {
		items = domain.Prepend(items, item(fmt.Sprintf("%d", i), time.Duration(i)*time.Minute), 5)
	}

	require.Len(t, items, 5)
	assert.Equal(t, []string{"7", "6", "5", "4", "3"}, ids(items))
}

func TestPrepend_Unlimited(t *testing.T) {
	var items []domain.Item
	for i := 0; i < 20; i++ {
		items = domain.Prepend(items, item(fmt.Sprintf("%d", i), 0), -1)
	}
	assert.Len(t, items, 20)
	assert.Equal(t, "19", items[0].ID)
}

func TestEnqueue_Dedup(t *testing.T) {
	queue := domain.Enqueue(nil, item("a", 0))
	queue = domain.Enqueue(queue, item("b", 0))
	queue = domain.Enqueue(queue, item("a", time.Hour))

	assert.Equal(t, []string{"a", "b"}, ids(queue))
}

func TestMerge(t *testing.T) {
	local := []domain.Item{item("c", 3*time.Minute), item("a", time.Minute)}
	local[0].Translation = "local wins"

	remoteC := item("c", 3*time.Minute)
	remoteC.Translation = "remote"
	remote := []domain.Item{remoteC, item("b", 2*time.Minute), item("d", 4*time.Minute), {ID: ""}}
	remote[2].Tone = ""

	merged, added := domain.Merge(local, remote)

	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"d", "c", "b", "a"}, ids(merged))
	assert.Equal(t, "local wins", merged[1].Translation)
	assert.Equal(t, "neutral", merged[0].Tone)
}

func TestMerge_Idempotent(t *testing.T) {
	local := []domain.Item{item("a", 0)}
	remote := []domain.Item{item("b", time.Minute)}

	once, _ := domain.Merge(local, remote)
	twice, added := domain.Merge(once, remote)

	assert.Equal(t, 0, added)
	assert.Equal(t, ids(once), ids(twice))
}

func ids(items []domain.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
