package service

import (
	"context"
	"errors"
	"testing"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/roamchat/roam/internal/llm"
	"github.com/roamchat/roam/internal/models"
	"github.com/roamchat/roam/internal/session"
)

type fakeCompleter struct {
	reply   string
	err     error
	calls   int
	history []models.Message
	block   chan struct{}
}

func (f *fakeCompleter) Complete(_ context.Context, history []models.Message) (string, error) {
	f.calls++
	f.history = history
	if f.block != nil {
		<-f.block
	}
	return f.reply, f.err
}

type fakeRemote struct {
	sessions   []models.Session
	created    *models.Session
	pushErr    error
	pushes     int
	pushed     []models.Message
	titleOK    bool
	titles     map[string]string
	deleteOK   bool
	deletedIDs []string
}

func (f *fakeRemote) CreateSession(context.Context, string) *models.Session { return f.created }
func (f *fakeRemote) ListSessions(context.Context) []models.Session        { return f.sessions }

func (f *fakeRemote) UpdateMessages(_ context.Context, _ string, messages []models.Message) error {
	f.pushes++
	f.pushed = messages
	return f.pushErr
}

func (f *fakeRemote) UpdateTitle(_ context.Context, id, title string) bool {
	if f.titles == nil {
		f.titles = map[string]string{}
	}
	f.titles[id] = title
	return f.titleOK
}

func (f *fakeRemote) DeleteSession(_ context.Context, id string) bool {
	f.deletedIDs = append(f.deletedIDs, id)
	return f.deleteOK
}

func newTestChat(completer Completer, remote RemoteSync) (*Chat, *session.Store) {
	store := session.NewStore()
	return NewChat(store, completer, remote, nil), store
}

func TestOpenAddsGreetingOnce(t *testing.T) {
	chat, store := newTestChat(&fakeCompleter{}, &fakeRemote{})

	msgs := chat.Open(context.Background(), "s1")
	if len(msgs) != 1 {
		t.Fatalf("expected greeting only, got %d messages", len(msgs))
	}
	if msgs[0].Sender != models.SenderAssistant || msgs[0].Text != welcomeText {
		t.Errorf("unexpected greeting: %+v", msgs[0])
	}

	msgs = chat.Open(context.Background(), "s1")
	if len(msgs) != 1 {
		t.Errorf("reopening duplicated the greeting, got %d messages", len(msgs))
	}
	if id, ok := store.Current(); !ok || id != "s1" {
		t.Errorf("expected s1 selected, got %q (ok=%v)", id, ok)
	}
}

func TestSendAppendsUserAndReply(t *testing.T) {
	completer := &fakeCompleter{reply: "Pack light."}
	chat, _ := newTestChat(completer, &fakeRemote{})
	chat.Open(context.Background(), "s1")

	msgs, err := chat.Send(context.Background(), "s1", "  What should I pack?  ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected greeting + user + reply, got %d messages", len(msgs))
	}
	if msgs[1].Sender != models.SenderUser || msgs[1].Text != "What should I pack?" {
		t.Errorf("user message not trimmed and appended: %+v", msgs[1])
	}
	if msgs[2].Sender != models.SenderAssistant || msgs[2].Text != "Pack light." {
		t.Errorf("reply not appended: %+v", msgs[2])
	}
	if len(completer.history) != 2 {
		t.Errorf("completion should see history up to the user message, saw %d", len(completer.history))
	}
}

func TestSendIgnoresBlankInput(t *testing.T) {
	completer := &fakeCompleter{reply: "hi"}
	chat, _ := newTestChat(completer, &fakeRemote{})
	chat.Open(context.Background(), "s1")

	msgs, err := chat.Send(context.Background(), "s1", "   \n\t ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(msgs) != 1 {
		t.Errorf("blank input must not add messages, got %d", len(msgs))
	}
	if completer.calls != 0 {
		t.Errorf("blank input must not reach the completion client")
	}
}

func TestSendFallbackOnCompletionFailure(t *testing.T) {
	completer := &fakeCompleter{err: llm.ErrCompletionFailed}
	chat, _ := newTestChat(completer, &fakeRemote{})
	chat.Open(context.Background(), "s1")

	msgs, err := chat.Send(context.Background(), "s1", "hello")
	if err != nil {
		t.Fatalf("a failed completion must not fail the turn: %v", err)
	}
	last := msgs[len(msgs)-1]
	if last.Sender != models.SenderAssistant || last.Text != fallbackText {
		t.Errorf("expected fallback message, got %+v", last)
	}
	if completer.calls != 1 {
		t.Errorf("expected exactly one completion attempt, got %d", completer.calls)
	}
}

func TestSendBusyGuard(t *testing.T) {
	completer := &fakeCompleter{reply: "ok", block: make(chan struct{})}
	chat, _ := newTestChat(completer, &fakeRemote{})
	chat.Open(context.Background(), "s1")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := chat.Send(context.Background(), "s1", "first"); err != nil {
			t.Errorf("first Send: %v", err)
		}
	}()

	deadline := time.After(2 * time.Second)
	for !chat.Busy("s1") {
		select {
		case <-deadline:
			t.Fatal("first Send never became busy")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := chat.Send(context.Background(), "s1", "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	close(completer.block)
	<-done
	if chat.Busy("s1") {
		t.Error("session still busy after turn completed")
	}
	if completer.calls != 1 {
		t.Errorf("second Send must not reach the completion client, saw %d calls", completer.calls)
	}
}

func TestSendPushesRemoteWhenBacked(t *testing.T) {
	remote := &fakeRemote{
		created: &models.Session{
			ID:    surrealmodels.NewRecordID("session", "abc"),
			Title: "Chat 1",
		},
	}
	completer := &fakeCompleter{reply: "sure"}
	chat, _ := newTestChat(completer, remote)

	id := chat.NewChat(context.Background())
	if id != "abc" {
		t.Fatalf("expected remote record ID adopted, got %q", id)
	}
	chat.Open(context.Background(), id)

	if _, err := chat.Send(context.Background(), id, "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if remote.pushes != 1 {
		t.Fatalf("expected one remote push, got %d", remote.pushes)
	}
	if len(remote.pushed) != 3 {
		t.Errorf("push must carry the full message list, got %d", len(remote.pushed))
	}
}

func TestSendPushFailureSurfacedMessagesKept(t *testing.T) {
	remote := &fakeRemote{
		created: &models.Session{ID: surrealmodels.NewRecordID("session", "abc")},
		pushErr: errors.New("connection reset"),
	}
	chat, store := newTestChat(&fakeCompleter{reply: "sure"}, remote)
	id := chat.NewChat(context.Background())

	msgs, err := chat.Send(context.Background(), id, "hi")
	if err == nil {
		t.Fatal("expected push failure to surface")
	}
	if len(msgs) != 2 {
		t.Errorf("messages must survive a failed push, got %d", len(msgs))
	}
	if got := store.Messages(id); len(got) != 2 {
		t.Errorf("store lost messages after failed push, got %d", len(got))
	}
}

func TestSendLocalOnlySessionNeverPushes(t *testing.T) {
	remote := &fakeRemote{pushErr: errors.New("must not be called")}
	chat, _ := newTestChat(&fakeCompleter{reply: "sure"}, remote)

	id := chat.NewChat(context.Background())
	if _, err := chat.Send(context.Background(), id, "hi"); err != nil {
		t.Fatalf("local-only Send: %v", err)
	}
	if remote.pushes != 0 {
		t.Errorf("local-only sessions must not be pushed, saw %d pushes", remote.pushes)
	}
}

func TestLoadRemoteHydratesStore(t *testing.T) {
	now := time.Now()
	remote := &fakeRemote{
		sessions: []models.Session{
			{
				ID:        surrealmodels.NewRecordID("session", "r1"),
				Title:     "Lisbon trip",
				Messages:  []models.Message{models.NewMessage(models.SenderUser, "hi")},
				CreatedAt: now,
				UpdatedAt: now,
			},
			{ID: surrealmodels.NewRecordID("session", "r2"), Title: "Chat 2"},
		},
	}
	chat, store := newTestChat(&fakeCompleter{}, remote)

	if n := chat.LoadRemote(context.Background()); n != 2 {
		t.Fatalf("expected 2 sessions hydrated, got %d", n)
	}
	got, ok := store.Get("r1")
	if !ok {
		t.Fatal("session r1 not in store")
	}
	if got.Title != "Lisbon trip" || len(got.Messages) != 1 {
		t.Errorf("hydrated session lost state: %+v", got)
	}

	// Hydrating again must not clobber local state.
	if n := chat.LoadRemote(context.Background()); n != 0 {
		t.Errorf("rehydrate inserted %d duplicates", n)
	}
}

func TestRenameMirrorsRemote(t *testing.T) {
	remote := &fakeRemote{
		created: &models.Session{ID: surrealmodels.NewRecordID("session", "abc")},
		titleOK: true,
	}
	chat, store := newTestChat(&fakeCompleter{}, remote)
	id := chat.NewChat(context.Background())

	if err := chat.Rename(context.Background(), id, "  Tokyo  "); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	got, _ := store.Get(id)
	if got.Title != "Tokyo" {
		t.Errorf("title = %q, want Tokyo", got.Title)
	}
	if remote.titles[id] != "Tokyo" {
		t.Errorf("remote title = %q, want Tokyo", remote.titles[id])
	}

	if err := chat.Rename(context.Background(), id, "   "); err != nil {
		t.Fatalf("blank rename: %v", err)
	}
	got, _ = store.Get(id)
	if got.Title != "Tokyo" {
		t.Errorf("blank rename changed title to %q", got.Title)
	}
}

func TestDeleteMirrorsRemote(t *testing.T) {
	remote := &fakeRemote{
		created:  &models.Session{ID: surrealmodels.NewRecordID("session", "abc")},
		deleteOK: true,
	}
	chat, store := newTestChat(&fakeCompleter{}, remote)
	id := chat.NewChat(context.Background())

	if err := chat.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.Get(id); ok {
		t.Error("session still in store after delete")
	}
	if len(remote.deletedIDs) != 1 || remote.deletedIDs[0] != id {
		t.Errorf("remote delete not mirrored: %v", remote.deletedIDs)
	}

	if err := chat.Delete(context.Background(), id); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("double delete: want ErrNotFound, got %v", err)
	}
}
