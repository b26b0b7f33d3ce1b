package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"soundcrate/model"
)

func newMockRepo(t *testing.T) (TrackRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return NewMySQLTrackRepository(db), mock, func() { db.Close() }
}

func TestCreateTrack(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	duration := 184
	track := &model.Track{
		UserID:   42,
		Title:    "Title",
		Artist:   "Artist",
		Filename: "Artist - Title.mp3",
		FilePath: "42/1700000000000_Artist - Title.mp3",
		Duration: &duration,
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tracks`)).
		WithArgs(track.UserID, track.Title, sqlmock.AnyArg(), track.Filename,
			track.FilePath, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.CreateTrack(track)
	if err != nil {
		t.Fatalf("CreateTrack: %v", err)
	}
	if id != 7 {
		t.Errorf("CreateTrack id = %d, want 7", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetTracksByUserID(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "title", "artist", "filename", "file_path", "duration", "created_at",
	}).
		AddRow(2, 42, "Second", "Artist", "Artist - Second.mp3", "42/2_Artist - Second.mp3", 200, now).
		AddRow(1, 42, "First", nil, "first.mp3", "42/1_first.mp3", nil, now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, title, artist, filename, file_path, duration, created_at FROM tracks WHERE user_id = ?`)).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	tracks, err := repo.GetTracksByUserID(42)
	if err != nil {
		t.Fatalf("GetTracksByUserID: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(tracks))
	}

	if tracks[0].Artist != "Artist" {
		t.Errorf("tracks[0].Artist = %q, want %q", tracks[0].Artist, "Artist")
	}
	if tracks[0].Duration == nil || *tracks[0].Duration != 200 {
		t.Errorf("tracks[0].Duration = %v, want 200", tracks[0].Duration)
	}
	if tracks[1].Artist != "" {
		t.Errorf("NULL artist should scan to empty string, got %q", tracks[1].Artist)
	}
	if tracks[1].Duration != nil {
		t.Errorf("NULL duration should scan to nil, got %v", *tracks[1].Duration)
	}
}

func TestGetTrackByIDNotFound(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, title, artist, filename, file_path, duration, created_at FROM tracks WHERE id = ?`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "title", "artist", "filename", "file_path", "duration", "created_at",
		}))

	track, err := repo.GetTrackByID(99)
	if err != nil {
		t.Fatalf("GetTrackByID: %v", err)
	}
	if track != nil {
		t.Errorf("expected nil track for missing row, got %+v", track)
	}
}

func TestCountTracksByUserID(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM tracks WHERE user_id = ?`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))

	count, err := repo.CountTracksByUserID(42)
	if err != nil {
		t.Fatalf("CountTracksByUserID: %v", err)
	}
	if count != 10 {
		t.Errorf("count = %d, want 10", count)
	}
}

func TestDeleteTracksByUserID(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tracks WHERE user_id = ?`)).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.DeleteTracksByUserID(42); err != nil {
		t.Fatalf("DeleteTracksByUserID: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
