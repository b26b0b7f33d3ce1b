package repository

import (
	"database/sql"
	"fmt"
	"time"

	"soundcrate/model"
)

// TrackRepository defines the interface for track record operations.
type TrackRepository interface {
	CreateTrack(track *model.Track) (int64, error)
	GetTrackByID(id int64) (*model.Track, error)
	GetTracksByUserID(userID int64) ([]*model.Track, error)
	CountTracksByUserID(userID int64) (int, error)
	GetFilePathsByUserID(userID int64) ([]string, error)
	DeleteTrack(id int64) error
	DeleteTracksByUserID(userID int64) error
}

// mysqlTrackRepository implements TrackRepository for MySQL.
type mysqlTrackRepository struct {
	DB *sql.DB
}

// NewMySQLTrackRepository creates a new instance of mysqlTrackRepository.
func NewMySQLTrackRepository(db *sql.DB) TrackRepository {
	return &mysqlTrackRepository{DB: db}
}

const trackColumns = `id, user_id, title, artist, filename, file_path, duration, created_at`

func scanTrack(row interface{ Scan(...interface{}) error }) (*model.Track, error) {
	track := &model.Track{}
	var artist sql.NullString
	var duration sql.NullInt64
	err := row.Scan(&track.ID, &track.UserID, &track.Title, &artist, &track.Filename,
		&track.FilePath, &duration, &track.CreatedAt)
	if err != nil {
		return nil, err
	}
	if artist.Valid {
		track.Artist = artist.String
	}
	if duration.Valid {
		d := int(duration.Int64)
		track.Duration = &d
	}
	return track, nil
}

// CreateTrack adds a new track record to the database.
func (r *mysqlTrackRepository) CreateTrack(track *model.Track) (int64, error) {
	query := `INSERT INTO tracks (user_id, title, artist, filename, file_path, duration, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`

	var artist sql.NullString
	if track.Artist != "" {
		artist = sql.NullString{String: track.Artist, Valid: true}
	}
	var duration sql.NullInt64
	if track.Duration != nil {
		duration = sql.NullInt64{Int64: int64(*track.Duration), Valid: true}
	}

	res, err := r.DB.Exec(query, track.UserID, track.Title, artist, track.Filename,
		track.FilePath, duration, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateTrack: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateTrack: %w", err)
	}
	return id, nil
}

// GetTrackByID retrieves a track by its ID. Returns (nil, nil) when absent.
func (r *mysqlTrackRepository) GetTrackByID(id int64) (*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = ?`
	track, err := scanTrack(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan track by ID %d: %w", id, err)
	}
	return track, nil
}

// GetTracksByUserID retrieves all of a user's tracks, newest first.
func (r *mysqlTrackRepository) GetTracksByUserID(userID int64) ([]*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks for user ID %d: %w", userID, err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track in GetTracksByUserID: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetTracksByUserID: %w", err)
	}

	return tracks, nil
}

// CountTracksByUserID returns the number of tracks a user owns. The upload
// workflow uses this for quota enforcement before any storage write.
func (r *mysqlTrackRepository) CountTracksByUserID(userID int64) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM tracks WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tracks for user ID %d: %w", userID, err)
	}
	return count, nil
}

// GetFilePathsByUserID returns the storage keys of all of a user's tracks.
func (r *mysqlTrackRepository) GetFilePathsByUserID(userID int64) ([]string, error) {
	rows, err := r.DB.Query(`SELECT file_path FROM tracks WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query file paths for user ID %d: %w", userID, err)
	}
	defer rows.Close()

	paths := make([]string, 0)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan file path: %w", err)
		}
		paths = append(paths, path)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetFilePathsByUserID: %w", err)
	}

	return paths, nil
}

// DeleteTrack removes a track record.
func (r *mysqlTrackRepository) DeleteTrack(id int64) error {
	_, err := r.DB.Exec(`DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteTrack for ID %d: %w", id, err)
	}
	return nil
}

// DeleteTracksByUserID removes all of a user's track records.
func (r *mysqlTrackRepository) DeleteTracksByUserID(userID int64) error {
	_, err := r.DB.Exec(`DELETE FROM tracks WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteTracksByUserID for user %d: %w", userID, err)
	}
	return nil
}
