package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/skillbazaar/backend/pkg/errors"
	"github.com/skillbazaar/backend/pkg/pagination"
)

// Service exposes the per-user notification feed.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, params pagination.Params, input ListInput) (*List, error)
	MarkRead(ctx context.Context, actorUserID, notificationID uuid.UUID) (*View, error)
	MarkAllRead(ctx context.Context, actorUserID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, actorUserID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
}

// NewService builds a notifications service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params, input ListInput) (*List, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	rows, nextCursor, err := s.repo.ListByUser(ctx, userID, params, input.UnreadOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	list := &List{Notifications: make([]View, 0, len(rows)), NextCursor: nextCursor}
	for i := range rows {
		list.Notifications = append(list.Notifications, toView(&rows[i]))
	}
	return list, nil
}

func (s *service) MarkRead(ctx context.Context, actorUserID, notificationID uuid.UUID) (*View, error) {
	if actorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if notificationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	notification, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification")
	}
	if notification.UserID != actorUserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "notification belongs to another user")
	}

	if !notification.Read() {
		if err := s.repo.MarkRead(ctx, notification.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
		}
		refreshed, err := s.repo.FindByID(ctx, notification.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload notification")
		}
		notification = refreshed
	}

	view := toView(notification)
	return &view, nil
}

func (s *service) MarkAllRead(ctx context.Context, actorUserID uuid.UUID) (int64, error) {
	if actorUserID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	count, err := s.repo.MarkAllRead(ctx, actorUserID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all read")
	}
	return count, nil
}

func (s *service) UnreadCount(ctx context.Context, actorUserID uuid.UUID) (int64, error) {
	if actorUserID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	count, err := s.repo.UnreadCount(ctx, actorUserID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread")
	}
	return count, nil
}
