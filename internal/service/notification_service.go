package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationPage is one cursor page, newest first. NextCursor is nil on the last page.
type NotificationPage struct {
	Items      []domain.Notification `json:"notifications"`
	NextCursor *primitive.ObjectID   `json:"nextCursor,omitempty"`
}

type NotificationService interface {
	List(ctx context.Context, userID primitive.ObjectID, cursor *primitive.ObjectID, limit int64) (*NotificationPage, error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	now  func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo, now: time.Now}
}

func (s *notificationService) List(ctx context.Context, userID primitive.ObjectID, cursor *primitive.ObjectID, limit int64) (*NotificationPage, error) {
	limit = NewPage(1, limit).Size

	// One extra row tells whether another page exists
	items, err := s.repo.ListByUser(ctx, userID, cursor, limit+1)
	if err != nil {
		return nil, unavailable("list notifications", err)
	}

	page := &NotificationPage{Items: items}
	if int64(len(items)) > limit {
		page.Items = items[:limit]
		next := page.Items[limit-1].ID
		page.NextCursor = &next
	}
	if page.Items == nil {
		page.Items = []domain.Notification{}
	}
	return page, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, unavailable("count unread", err)
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	err := s.repo.MarkRead(ctx, notificationID, userID, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return unavailable("mark read", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, unavailable("mark all read", err)
	}
	return n, nil
}
