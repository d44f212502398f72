package m3u

import (
	"context"

	"github.com/abdougueye/diiokko-tv-sub000/internal/models"
)

// categoryAssigner lazily creates one category per (content kind, group name)
// pair for the duration of a single refresh run. The first entity referencing
// a pair creates the category through the sink and all later entities reuse
// the returned identifier. State is run-scoped so concurrent refreshes of
// different playlists stay isolated.
type categoryAssigner struct {
	playlistID int64
	sink       Sink

	byKey     map[string]int64
	nextOrder int

	groupSeen map[string]struct{}
	groups    []string
}

func newCategoryAssigner(playlistID int64, sink Sink) *categoryAssigner {
	return &categoryAssigner{
		playlistID: playlistID,
		sink:       sink,
		byKey:      make(map[string]int64),
		groupSeen:  make(map[string]struct{}),
	}
}

// assign returns the category identifier for (kind, group), creating the
// category on first sight with a monotonically increasing display position.
func (a *categoryAssigner) assign(ctx context.Context, kind models.ContentKind, group string) (*int64, error) {
	if _, ok := a.groupSeen[group]; !ok {
		a.groupSeen[group] = struct{}{}
		a.groups = append(a.groups, group)
	}

	key := string(kind) + "\x00" + group
	if id, ok := a.byKey[key]; ok {
		return &id, nil
	}
	a.nextOrder++
	id, err := a.sink.CategoryFound(ctx, &models.Category{
		PlaylistID: a.playlistID,
		Kind:       kind,
		Name:       group,
		Position:   a.nextOrder,
	})
	if err != nil {
		return nil, err
	}
	a.byKey[key] = id
	return &id, nil
}

// groupNames returns distinct group names in first-seen order.
func (a *categoryAssigner) groupNames() []string {
	return a.groups
}
