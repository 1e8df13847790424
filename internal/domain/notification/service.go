package notification

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/stagelink/stagelink-api/internal/domain/contract"
)

// RealtimePublisher pushes freshly created notifications to connected clients.
type RealtimePublisher interface {
	NotifyNew(ctx context.Context, userID uuid.UUID, notification *NotificationResponse, unreadCount int) error
}

// Service handles notification logic
type Service struct {
	repo      Repository
	publisher RealtimePublisher
}

// NewService creates notification service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetRealtimePublisher wires the realtime fan-out. Optional; without it
// notifications are persisted and picked up on the next poll.
func (s *Service) SetRealtimePublisher(p RealtimePublisher) {
	s.publisher = p
}

// Create creates a notification and pushes it to the user's live connections.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, notifType Type, title, body string, data *NotificationData) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if body != "" {
		n.Body = sql.NullString{String: body, Valid: true}
	}
	n.SetData(data)

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		unread, err := s.repo.CountUnreadByUser(ctx, userID)
		if err != nil {
			unread = 0
		}
		if err := s.publisher.NotifyNew(ctx, userID, NotificationResponseFromEntity(n), unread); err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("Realtime notification publish failed")
		}
	}

	return n, nil
}

// List returns notifications for user
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

// MarkAsRead marks a notification as read. Only the owner may do so;
// foreign notifications look like missing ones.
func (s *Service) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil || n.UserID != userID {
		return ErrNotificationNotFound
	}
	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// --- Contract event helpers (wired into the contract service) ---

// NotifyContractCreated notifies the other party about a new proposal.
func (s *Service) NotifyContractCreated(ctx context.Context, recipientID, contractID uuid.UUID) error {
	_, err := s.Create(ctx, recipientID, TypeContractCreated,
		"New booking proposal",
		"You have received a new booking proposal",
		&NotificationData{ContractID: &contractID},
	)
	return err
}

// NotifyContractStatusChanged notifies the other party about a transition.
func (s *Service) NotifyContractStatusChanged(ctx context.Context, recipientID, contractID uuid.UUID, status contract.Status) error {
	var (
		notifType Type
		title     string
		body      string
	)

	switch status {
	case contract.StatusAccepted:
		notifType = TypeContractAccepted
		title = "Proposal accepted"
		body = "Your booking proposal has been accepted"
	case contract.StatusRejected:
		notifType = TypeContractRejected
		title = "Proposal rejected"
		body = "The booking proposal has been rejected"
	case contract.StatusCancelled:
		notifType = TypeContractCancelled
		title = "Proposal cancelled"
		body = "The proposer has withdrawn the booking proposal"
	case contract.StatusCompleted:
		notifType = TypeContractCompleted
		title = "Booking completed"
		body = "The booking has been marked as completed"
	default:
		return nil
	}

	_, err := s.Create(ctx, recipientID, notifType, title, body,
		&NotificationData{ContractID: &contractID},
	)
	return err
}

// NotifySlotReleased tells the artist a previously booked slot opened up.
func (s *Service) NotifySlotReleased(ctx context.Context, artistID, slotID uuid.UUID) error {
	_, err := s.Create(ctx, artistID, TypeSlotReleased,
		"Slot released",
		"A previously booked slot in your schedule is available again",
		&NotificationData{SlotID: &slotID},
	)
	return err
}
