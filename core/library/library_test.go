package library

import (
	"context"
	"errors"
	"testing"

	"soundcrate/model"
)

type fakeLister struct {
	tracks []*model.Track
	err    error
	calls  int
}

func (f *fakeLister) List(ctx context.Context, userID int64) ([]*model.Track, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tracks, nil
}

type fakeSink struct {
	pushes  [][]model.Track
	indexes []int
}

func (f *fakeSink) SetPlaylist(tracks []model.Track, startIndex int) {
	copied := make([]model.Track, len(tracks))
	copy(copied, tracks)
	f.pushes = append(f.pushes, copied)
	f.indexes = append(f.indexes, startIndex)
}

func tracksWithIDs(ids ...int64) []*model.Track {
	out := make([]*model.Track, 0, len(ids))
	for _, id := range ids {
		out = append(out, &model.Track{ID: id, UserID: 7, Title: "t"})
	}
	return out
}

func TestRefreshRequiresSession(t *testing.T) {
	l := NewLibrary(&fakeLister{}, &fakeSink{})
	if err := l.Refresh(context.Background()); err == nil {
		t.Fatal("expected error without a session")
	}
}

func TestRefreshPushesOnFirstResult(t *testing.T) {
	lister := &fakeLister{tracks: tracksWithIDs(1, 2)}
	sink := &fakeSink{}
	l := NewLibrary(lister, sink)

	if err := l.HandleSessionChange(context.Background(), &model.User{ID: 7}); err != nil {
		t.Fatalf("HandleSessionChange: %v", err)
	}
	if len(sink.pushes) != 1 {
		t.Fatalf("pushes = %d, want 1", len(sink.pushes))
	}
	if len(sink.pushes[0]) != 2 || sink.indexes[0] != 0 {
		t.Errorf("push = %d tracks at index %d", len(sink.pushes[0]), sink.indexes[0])
	}
}

func TestPushOnChangeSkipsIdenticalSequences(t *testing.T) {
	lister := &fakeLister{tracks: tracksWithIDs(1, 2)}
	sink := &fakeSink{}
	l := NewLibrary(lister, sink)
	l.HandleSessionChange(context.Background(), &model.User{ID: 7})

	if err := l.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(sink.pushes) != 1 {
		t.Errorf("pushes = %d, want 1 (unchanged list must not push)", len(sink.pushes))
	}

	lister.tracks = tracksWithIDs(1, 2, 3)
	if err := l.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(sink.pushes) != 2 {
		t.Errorf("pushes = %d, want 2 after the list changed", len(sink.pushes))
	}
}

func TestPushAlwaysPushesEveryRefresh(t *testing.T) {
	lister := &fakeLister{tracks: tracksWithIDs(1, 2)}
	sink := &fakeSink{}
	l := NewLibrary(lister, sink, WithPolicy(PushAlways))
	l.HandleSessionChange(context.Background(), &model.User{ID: 7})

	l.Refresh(context.Background())
	l.Refresh(context.Background())
	if len(sink.pushes) != 3 {
		t.Errorf("pushes = %d, want 3", len(sink.pushes))
	}
}

func TestLogoutClearsListAndPlaylist(t *testing.T) {
	lister := &fakeLister{tracks: tracksWithIDs(1)}
	sink := &fakeSink{}
	l := NewLibrary(lister, sink)
	l.HandleSessionChange(context.Background(), &model.User{ID: 7})

	if err := l.HandleSessionChange(context.Background(), nil); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got := l.Tracks(); len(got) != 0 {
		t.Errorf("tracks after logout = %d, want 0", len(got))
	}
	last := sink.pushes[len(sink.pushes)-1]
	if len(last) != 0 || sink.indexes[len(sink.indexes)-1] != -1 {
		t.Error("engine playlist not cleared on logout")
	}

	if err := l.Refresh(context.Background()); err == nil {
		t.Error("refresh after logout should fail")
	}
}

func TestRefreshSurfacesListerError(t *testing.T) {
	lister := &fakeLister{err: errors.New("db down")}
	sink := &fakeSink{}
	l := NewLibrary(lister, sink)

	if err := l.HandleSessionChange(context.Background(), &model.User{ID: 7}); err == nil {
		t.Fatal("expected error from failing lister")
	}
	if len(sink.pushes) != 0 {
		t.Error("push happened despite lister failure")
	}
}
