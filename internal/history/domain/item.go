package domain

import (
	"sort"
	"strings"
	"time"

	featuresDomain "github.com/felixgeelhaar/lingua/internal/features/domain"
)

// Item is a recorded translation.
type Item struct {
	ID          string    `json:"id"`
	Original    string    `json:"original"`
	Translation string    `json:"translation"`
	SourceLang  string    `json:"sourceLang"`
	TargetLang  string    `json:"targetLang"`
	Engine      string    `json:"engine"`
	Tone        string    `json:"tone"`
	Timestamp   time.Time `json:"timestamp"`
	Synced      bool      `json:"synced"`
}

// Details is the caller-supplied part of an Item.
type Details struct {
	Original    string `json:"original" validate:"required"`
	Translation string `json:"translation" validate:"required"`
	SourceLang  string `json:"sourceLang" validate:"required"`
	TargetLang  string `json:"targetLang" validate:"required"`
	Engine      string `json:"engine" validate:"required"`
	Tone        string `json:"tone,omitempty"`
}

// NewItem builds an unsynced item, defaulting the tone.
func NewItem(id string, details Details, now time.Time) Item {
	tone := strings.TrimSpace(details.Tone)
	if tone == "" {
		tone = featuresDomain.DefaultTone
	}
	return Item{
		ID:          id,
		Original:    details.Original,
		Translation: details.Translation,
		SourceLang:  details.SourceLang,
		TargetLang:  details.TargetLang,
		Engine:      details.Engine,
		Tone:        tone,
		Timestamp:   now,
		Synced:      false,
	}
}

// Session carries the trust context a history operation runs under.
type Session struct {
	Premium    bool
	LicenseKey string
}

// Prepend inserts item at the front and truncates to limit when limit >= 0.
// The oldest entries are the ones dropped.
func Prepend(items []Item, item Item, limit int) []Item {
	out := make([]Item, 0, len(items)+1)
	out = append(out, item)
	out = append(out, items...)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Enqueue appends item to the queue unless an item with the same id is queued.
func Enqueue(queue []Item, item Item) []Item {
	for _, q := range queue {
		if q.ID == item.ID {
			return queue
		}
	}
	return append(queue, item)
}

// Merge appends remote items whose id is not present locally and sorts the
// result newest first. Local items are never replaced.
func Merge(local, remote []Item) ([]Item, int) {
	seen := make(map[string]struct{}, len(local))
	out := make([]Item, 0, len(local)+len(remote))
	for _, item := range local {
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}

	added := 0
	for _, item := range remote {
		if item.ID == "" {
			continue
		}
		if _, ok := seen[item.ID]; ok {
			continue
		}
		if item.Tone == "" {
			item.Tone = featuresDomain.DefaultTone
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
		added++
	}

	SortNewestFirst(out)
	return out, added
}

// SortNewestFirst orders items by timestamp descending. Ties keep their order.
func SortNewestFirst(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
}
