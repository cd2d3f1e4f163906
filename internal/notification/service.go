package notification

import (
	"fmt"
	"sort"
	"time"

	"edunova-server/internal/models"
	"edunova-server/internal/store"

	"go.uber.org/zap"
)

// Pusher delivers a payload to a connected user, if any. Implemented by the
// websocket hub; nil means store-only notifications.
type Pusher interface {
	SendToUser(userID string, payload interface{})
}

type Service struct {
	store  *store.Store
	pusher Pusher
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewService(st *store.Store, pusher Pusher, log *zap.SugaredLogger) *Service {
	return &Service{store: st, pusher: pusher, log: log, now: time.Now}
}

// Notify stores a notification and pushes it to the user's live connection
// when one exists. Satisfies the Notifier interfaces of the course and quiz
// services.
func (s *Service) Notify(userID, title, message string, typ models.NotificationType) {
	n := models.Notification{
		ID:        store.NewID("notification"),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		Read:      false,
		CreatedAt: s.now(),
	}
	s.store.InsertNotification(n)
	if s.pusher != nil {
		s.pusher.SendToUser(userID, n)
	}
}

// ForUser lists a user's notifications, newest first.
func (s *Service) ForUser(userID string) []models.Notification {
	out := s.store.Notifications(func(n models.Notification) bool { return n.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// MarkRead marks one of the user's notifications read. Another user's
// notification id reads as absent.
func (s *Service) MarkRead(userID, id string) (models.Notification, error) {
	matches := s.store.Notifications(func(n models.Notification) bool { return n.ID == id })
	if len(matches) == 0 || matches[0].UserID != userID {
		return models.Notification{}, fmt.Errorf("notification %s: %w", id, store.ErrNotFound)
	}
	return s.store.UpdateNotification(id, func(n *models.Notification) { n.Read = true })
}

// MarkAllRead marks every unread notification of a user and reports how many
// were affected.
func (s *Service) MarkAllRead(userID string) int {
	return s.store.UpdateNotifications(
		func(n models.Notification) bool { return n.UserID == userID && !n.Read },
		func(n *models.Notification) { n.Read = true },
	)
}
