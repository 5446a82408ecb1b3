package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/roamchat/roam/internal/db"
	"github.com/roamchat/roam/internal/metrics"
	"github.com/roamchat/roam/internal/models"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

type fakeStore struct {
	createErr error
	listErr   error
	updateErr error
	titleErr  error
	deleteErr error

	sessions []models.Session
	calls    []string
}

func (f *fakeStore) CreateSession(ctx context.Context, title string) (*models.Session, error) {
	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Session{ID: surrealmodels.NewRecordID("session", "r1"), Title: title}, nil
}

func (f *fakeStore) ListSessions(ctx context.Context) ([]models.Session, error) {
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sessions, nil
}

func (f *fakeStore) UpdateMessages(ctx context.Context, id string, messages []models.Message) (*models.Session, error) {
	f.calls = append(f.calls, "update")
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &models.Session{Messages: messages}, nil
}

func (f *fakeStore) UpdateTitle(ctx context.Context, id, title string) (*models.Session, error) {
	f.calls = append(f.calls, "title")
	if f.titleErr != nil {
		return nil, f.titleErr
	}
	return &models.Session{Title: title}, nil
}

func (f *fakeStore) DeleteSession(ctx context.Context, id string) error {
	f.calls = append(f.calls, "delete")
	return f.deleteErr
}

type fakeAuth struct {
	user *models.User
}

func (f *fakeAuth) User() (*models.User, bool) {
	return f.user, f.user != nil
}

func signedIn() *fakeAuth {
	return &fakeAuth{user: &models.User{
		ID:    surrealmodels.NewRecordID("user", "u1"),
		Email: "u1@example.com",
	}}
}

func TestUpdateMessagesUnauthenticated(t *testing.T) {
	store := &fakeStore{}
	s := New(store, &fakeAuth{}, nil, nil)

	err := s.UpdateMessages(context.Background(), "s1", nil)
	if !errors.Is(err, db.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
	if len(store.calls) != 0 {
		t.Errorf("store must not be touched without auth, got calls %v", store.calls)
	}
}

func TestListSessionsUnauthenticated(t *testing.T) {
	store := &fakeStore{}
	s := New(store, &fakeAuth{}, nil, nil)

	got := s.ListSessions(context.Background())
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
	if len(store.calls) != 0 {
		t.Errorf("store must not be touched without auth, got calls %v", store.calls)
	}
}

func TestListSessionsDegradesOnFailure(t *testing.T) {
	store := &fakeStore{listErr: errors.New("network down")}
	s := New(store, signedIn(), nil, nil)

	got := s.ListSessions(context.Background())
	if got == nil || len(got) != 0 {
		t.Errorf("read failure must degrade to empty, got %v", got)
	}
}

func TestUpdateMessagesPropagatesFailure(t *testing.T) {
	store := &fakeStore{updateErr: errors.New("network down")}
	s := New(store, signedIn(), nil, nil)

	err := s.UpdateMessages(context.Background(), "s1", []models.Message{
		models.NewMessage(models.SenderUser, "hi"),
	})
	if err == nil {
		t.Error("write failure must propagate")
	}
}

func TestCreateSessionSwallowsFailure(t *testing.T) {
	t.Run("failure", func(t *testing.T) {
		store := &fakeStore{createErr: errors.New("server error")}
		s := New(store, signedIn(), nil, nil)

		if got := s.CreateSession(context.Background(), "Chat 1"); got != nil {
			t.Errorf("expected nil on failure, got %v", got)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		store := &fakeStore{}
		s := New(store, &fakeAuth{}, nil, nil)

		if got := s.CreateSession(context.Background(), "Chat 1"); got != nil {
			t.Errorf("expected nil without auth, got %v", got)
		}
	})

	t.Run("success", func(t *testing.T) {
		store := &fakeStore{}
		s := New(store, signedIn(), nil, nil)

		got := s.CreateSession(context.Background(), "Chat 1")
		if got == nil || got.Title != "Chat 1" {
			t.Errorf("expected created session, got %v", got)
		}
	})
}

func TestUpdateTitleReportsBool(t *testing.T) {
	store := &fakeStore{titleErr: errors.New("server error")}
	s := New(store, signedIn(), nil, nil)

	if s.UpdateTitle(context.Background(), "s1", "New") {
		t.Error("expected false on failure")
	}

	store.titleErr = nil
	if !s.UpdateTitle(context.Background(), "s1", "New") {
		t.Error("expected true on success")
	}
}

func TestMetricsRecorded(t *testing.T) {
	collector := metrics.NewCollector()
	store := &fakeStore{}
	s := New(store, signedIn(), nil, collector)

	s.ListSessions(context.Background())
	_ = s.UpdateMessages(context.Background(), "s1", nil)

	snap := collector.Snapshot()
	if snap.SyncPull == nil || snap.SyncPull.Count != 1 {
		t.Error("expected one recorded pull")
	}
	if snap.SyncPush == nil || snap.SyncPush.Count != 1 {
		t.Error("expected one recorded push")
	}
}
