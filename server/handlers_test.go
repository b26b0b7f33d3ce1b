package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"soundcrate/config"
	"soundcrate/core/auth"
	"soundcrate/core/track"
	"soundcrate/model"
)

type stubTrackRepo struct{}

func (stubTrackRepo) CreateTrack(t *model.Track) (int64, error)           { return 1, nil }
func (stubTrackRepo) GetTrackByID(id int64) (*model.Track, error)         { return nil, nil }
func (stubTrackRepo) GetTracksByUserID(id int64) ([]*model.Track, error)  { return nil, nil }
func (stubTrackRepo) CountTracksByUserID(id int64) (int, error)           { return 0, nil }
func (stubTrackRepo) GetFilePathsByUserID(id int64) ([]string, error)     { return nil, nil }
func (stubTrackRepo) DeleteTrack(id int64) error                          { return nil }
func (stubTrackRepo) DeleteTracksByUserID(id int64) error                 { return nil }

type stubUserRepo struct {
	deleted []int64
}

func (s *stubUserRepo) CreateUser(u *model.User) (int64, error)           { return 1, nil }
func (s *stubUserRepo) GetUserByID(id int64) (*model.User, error)         { return nil, nil }
func (s *stubUserRepo) GetUserByEmail(email string) (*model.User, error)  { return nil, nil }
func (s *stubUserRepo) DeleteUser(id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubStore struct{}

func (stubStore) Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) error {
	return nil
}
func (stubStore) Remove(ctx context.Context, paths []string) error { return nil }
func (stubStore) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + path, nil
}
func (stubStore) PublicURL(path string) string { return "" }

func newTestHandler(users *stubUserRepo) *APIHandler {
	svc := track.NewService(stubTrackRepo{}, users, stubStore{}, nil, nil, 7<<20, 10, time.Hour)
	return NewAPIHandler(svc, users, nil, nil, &config.Config{MaxTrackBytes: 7 << 20})
}

func issueToken(t *testing.T, userID int64) string {
	t.Helper()
	auth.Configure("test-secret", time.Hour)
	token, err := auth.GenerateToken(userID, fmt.Sprintf("user%d@example.com", userID))
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func TestAuthMiddlewareRejectsMissingAndMalformedTokens(t *testing.T) {
	h := newTestHandler(&stubUserRepo{})
	protected := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/tracks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestAuthMiddlewarePassesUserIDToHandler(t *testing.T) {
	h := newTestHandler(&stubUserRepo{})
	token := issueToken(t, 42)

	var gotID int64
	protected := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("GetUserIDFromContext: %v", err)
		}
		gotID = id
	})

	req := httptest.NewRequest(http.MethodGet, "/api/tracks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protected(httptest.NewRecorder(), req)

	if gotID != 42 {
		t.Errorf("userID = %d, want 42", gotID)
	}
}

func deleteAccountRequestWithToken(t *testing.T, token string, body interface{}) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodDelete, "/api/account", bytes.NewReader(payload))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestDeleteAccountStatusCodes(t *testing.T) {
	users := &stubUserRepo{}
	h := newTestHandler(users)
	token := issueToken(t, 42)
	protected := h.AuthMiddleware(h.DeleteAccountHandler)

	t.Run("unauthenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected(rec, deleteAccountRequestWithToken(t, "", map[string]int64{"userId": 42}))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("missing user id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected(rec, deleteAccountRequestWithToken(t, token, map[string]string{}))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("mismatched user id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected(rec, deleteAccountRequestWithToken(t, token, map[string]int64{"userId": 7}))
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
		if len(users.deleted) != 0 {
			t.Error("user deleted despite id mismatch")
		}
	})

	t.Run("own account", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected(rec, deleteAccountRequestWithToken(t, token, map[string]int64{"userId": 42}))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if len(users.deleted) != 1 || users.deleted[0] != 42 {
			t.Errorf("deleted = %v, want [42]", users.deleted)
		}
	})
}
