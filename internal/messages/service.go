package messages

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/skillbazaar/backend/pkg/db/models"
	pkgerrors "github.com/skillbazaar/backend/pkg/errors"
	"github.com/skillbazaar/backend/pkg/pagination"
)

const maxBodyLength = 5000

// Service exposes direct messaging operations.
type Service interface {
	Send(ctx context.Context, senderID uuid.UUID, input SendInput) (*View, error)
	Conversation(ctx context.Context, userID, otherID uuid.UUID, params pagination.Params) (*Conversation, error)
}

type service struct {
	repo Repository
}

// NewService builds the messages service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("messages repository required")
	}
	return &service{repo: repo}, nil
}

// Send stores a direct message after checking the recipient exists.
func (s *service) Send(ctx context.Context, senderID uuid.UUID, input SendInput) (*View, error) {
	if senderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.RecipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if input.RecipientID == senderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot message yourself")
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body required")
	}
	if len(body) > maxBodyLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body too long")
	}

	exists, err := s.repo.UserExists(ctx, input.RecipientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check recipient")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipient not found")
	}

	message := &models.Message{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: input.RecipientID,
		Body:        body,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
	}

	view := toView(*message)
	return &view, nil
}

// Conversation returns the messages between the caller and another user,
// newest first.
func (s *service) Conversation(ctx context.Context, userID, otherID uuid.UUID, params pagination.Params) (*Conversation, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if otherID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	rows, nextCursor, err := s.repo.ListConversation(ctx, userID, otherID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list conversation")
	}

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row))
	}
	return &Conversation{Messages: views, NextCursor: nextCursor}, nil
}
