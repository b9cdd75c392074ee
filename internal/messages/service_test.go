package messages

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/skillbazaar/backend/pkg/db/models"
	pkgerrors "github.com/skillbazaar/backend/pkg/errors"
	"github.com/skillbazaar/backend/pkg/pagination"
)

type stubMessagesRepo struct {
	users map[uuid.UUID]bool
	rows  []models.Message
}

func newStubMessagesRepo() *stubMessagesRepo {
	return &stubMessagesRepo{users: map[uuid.UUID]bool{}}
}

func (s *stubMessagesRepo) Create(ctx context.Context, message *models.Message) error {
	s.rows = append(s.rows, *message)
	return nil
}

func (s *stubMessagesRepo) ListConversation(ctx context.Context, userID, otherID uuid.UUID, params pagination.Params) ([]models.Message, string, error) {
	var out []models.Message
	for _, row := range s.rows {
		between := (row.SenderID == userID && row.RecipientID == otherID) ||
			(row.SenderID == otherID && row.RecipientID == userID)
		if between {
			out = append(out, row)
		}
	}
	return out, "", nil
}

func (s *stubMessagesRepo) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.users[id], nil
}

func assertMessageCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if appErr.Code() != want {
		t.Fatalf("expected code %s, got %s", want, appErr.Code())
	}
}

func TestSendStoresTrimmedMessage(t *testing.T) {
	repo := newStubMessagesRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	senderID := uuid.New()
	recipientID := uuid.New()
	repo.users[recipientID] = true

	view, err := svc.Send(context.Background(), senderID, SendInput{
		RecipientID: recipientID,
		Body:        "  hello there  ",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if view.Body != "hello there" {
		t.Fatalf("body must be trimmed, got %q", view.Body)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected one stored message, got %d", len(repo.rows))
	}
	if repo.rows[0].SenderID != senderID || repo.rows[0].RecipientID != recipientID {
		t.Fatal("stored message has wrong endpoints")
	}
}

func TestSendRejectsEmptyBody(t *testing.T) {
	repo := newStubMessagesRepo()
	svc, _ := NewService(repo)

	recipientID := uuid.New()
	repo.users[recipientID] = true

	for _, body := range []string{"", "   ", "\n\t"} {
		_, err := svc.Send(context.Background(), uuid.New(), SendInput{RecipientID: recipientID, Body: body})
		assertMessageCode(t, err, pkgerrors.CodeValidation)
	}
	if len(repo.rows) != 0 {
		t.Fatal("no message may be stored for an empty body")
	}
}

func TestSendRejectsSelfSend(t *testing.T) {
	repo := newStubMessagesRepo()
	svc, _ := NewService(repo)

	senderID := uuid.New()
	repo.users[senderID] = true

	_, err := svc.Send(context.Background(), senderID, SendInput{RecipientID: senderID, Body: "hi"})
	assertMessageCode(t, err, pkgerrors.CodeValidation)
}

func TestSendUnknownRecipientIsNotFound(t *testing.T) {
	repo := newStubMessagesRepo()
	svc, _ := NewService(repo)

	_, err := svc.Send(context.Background(), uuid.New(), SendInput{RecipientID: uuid.New(), Body: "hi"})
	assertMessageCode(t, err, pkgerrors.CodeNotFound)
}

func TestConversationReturnsBothDirections(t *testing.T) {
	repo := newStubMessagesRepo()
	svc, _ := NewService(repo)

	alice := uuid.New()
	bob := uuid.New()
	stranger := uuid.New()
	repo.rows = []models.Message{
		{ID: uuid.New(), SenderID: alice, RecipientID: bob, Body: "hi bob"},
		{ID: uuid.New(), SenderID: bob, RecipientID: alice, Body: "hi alice"},
		{ID: uuid.New(), SenderID: stranger, RecipientID: bob, Body: "unrelated"},
	}

	conv, err := svc.Conversation(context.Background(), alice, bob, pagination.Params{})
	if err != nil {
		t.Fatalf("Conversation returned error: %v", err)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
	}
}
