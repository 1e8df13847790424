package contract

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/stagelink/stagelink-api/internal/domain/schedule"
	"github.com/stagelink/stagelink-api/internal/domain/user"
)

// NotificationService delivers contract events to the other party.
// Wired after construction to break the init cycle with the notification domain.
type NotificationService interface {
	NotifyContractCreated(ctx context.Context, recipientID, contractID uuid.UUID) error
	NotifyContractStatusChanged(ctx context.Context, recipientID, contractID uuid.UUID, status Status) error
	NotifySlotReleased(ctx context.Context, artistID, slotID uuid.UUID) error
}

type Service struct {
	repo          Repository
	userRepo      user.Repository
	scheduleRepo  schedule.Repository
	scheduleCache *schedule.Cache
	notifications NotificationService
}

func NewService(repo Repository, userRepo user.Repository, scheduleRepo schedule.Repository, scheduleCache *schedule.Cache) *Service {
	return &Service{
		repo:          repo,
		userRepo:      userRepo,
		scheduleRepo:  scheduleRepo,
		scheduleCache: scheduleCache,
	}
}

func (s *Service) SetNotificationService(ns NotificationService) {
	s.notifications = ns
}

// Create opens a pending contract between the acting user and the counterparty.
// The proposer may be either side; the pair must be one artist and one venue.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, actorRole user.Role, req *CreateContractRequest) (*Contract, error) {
	counterparty, err := s.userRepo.GetByID(ctx, req.CounterpartyID)
	if err != nil {
		return nil, err
	}
	if counterparty == nil {
		return nil, ErrCounterpartyNotFound
	}

	var artistID, venueID uuid.UUID
	switch {
	case actorRole == user.RoleArtist && counterparty.Role == user.RoleVenue:
		artistID, venueID = actorID, counterparty.ID
	case actorRole == user.RoleVenue && counterparty.Role == user.RoleArtist:
		artistID, venueID = counterparty.ID, actorID
	default:
		return nil, ErrSameRoleParties
	}

	eventDate, err := time.ParseInLocation(EventDateLayout, req.EventDate, time.UTC)
	if err != nil {
		return nil, ErrEventDateInPast
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if eventDate.Before(today) {
		return nil, ErrEventDateInPast
	}

	if req.FinalPrice <= 0 {
		return nil, ErrInvalidPrice
	}

	var slotID uuid.NullUUID
	if req.SlotID != nil {
		slot, err := s.scheduleRepo.GetSlotByID(ctx, *req.SlotID)
		if err != nil {
			return nil, err
		}
		if slot == nil {
			return nil, ErrSlotNotFound
		}
		sched, err := s.scheduleRepo.GetByArtistID(ctx, artistID)
		if err != nil {
			return nil, err
		}
		if sched == nil || sched.ID != slot.ScheduleID {
			return nil, ErrSlotNotOwnedByArtist
		}
		if slot.IsBooked {
			return nil, ErrSlotConflict
		}
		slotID = uuid.NullUUID{UUID: slot.ID, Valid: true}
	}

	c := &Contract{
		ArtistID:   artistID,
		VenueID:    venueID,
		CreatedBy:  actorID,
		EventDate:  eventDate,
		FinalPrice: req.FinalPrice,
		Tags:       pq.StringArray(req.Tags),
		SlotID:     slotID,
		Status:     StatusPending,
	}
	if req.Details != "" {
		c.Details = sql.NullString{String: req.Details, Valid: true}
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	if s.notifications != nil {
		recipient := c.Recipient()
		go func() {
			if err := s.notifications.NotifyContractCreated(context.Background(), recipient, c.ID); err != nil {
				log.Warn().Err(err).Str("contract_id", c.ID.String()).Msg("failed to send contract created notification")
			}
		}()
	}

	return c, nil
}

// Get returns a contract visible to the acting user. Contracts of other
// parties are indistinguishable from missing ones.
func (s *Service) Get(ctx context.Context, actorID, id uuid.UUID) (*Contract, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.IsParty(actorID) {
		return nil, ErrContractNotFound
	}
	return c, nil
}

// List returns the acting user's contracts, newest first.
func (s *Service) List(ctx context.Context, actorID uuid.UUID, filter ListFilter) ([]*Contract, int, error) {
	return s.repo.ListByUser(ctx, actorID, filter)
}

// UpdateStatus drives one edge of the state machine. Acceptance binds the
// linked slot and status update in a single transaction; if the slot was
// taken by a competing contract the transaction rolls back and the contract
// stays pending. Terminal statuses release the booking this contract holds.
func (s *Service) UpdateStatus(ctx context.Context, actorID, id uuid.UUID, target Status) (*Contract, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.IsParty(actorID) {
		return nil, ErrContractNotFound
	}

	if !c.CanTransitionTo(target) {
		return nil, ErrInvalidStatusTransition
	}
	if !c.ActorMayTransition(target, actorID) {
		return nil, ErrActorNotAllowed
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	released := false
	if c.SlotID.Valid {
		switch target {
		case StatusAccepted:
			if err := s.scheduleRepo.BindSlotTx(ctx, tx, c.SlotID.UUID, c.ID); err != nil {
				if errors.Is(err, schedule.ErrSlotBindConflict) {
					return nil, ErrSlotConflict
				}
				return nil, err
			}
		case StatusRejected, StatusCancelled, StatusCompleted:
			// Only this contract's own booking is freed. A pending loser
			// still references the slot the winner holds; closing the loser
			// must not unbook the winner.
			released, err = s.scheduleRepo.ReleaseSlotTx(ctx, tx, c.SlotID.UUID, c.ID)
			if err != nil {
				return nil, err
			}
		}
	}

	if err := s.repo.UpdateStatusTx(ctx, tx, c.ID, c.Status, target); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if c.SlotID.Valid {
		s.scheduleCache.Invalidate(ctx, c.ArtistID)
	}

	updated, err := s.repo.GetByID(ctx, c.ID)
	if err != nil || updated == nil {
		// transition committed; fall back to the in-memory view
		c.Status = target
		updated = c
	}

	if s.notifications != nil {
		recipient := c.ArtistID
		if actorID == c.ArtistID {
			recipient = c.VenueID
		}
		contractID := c.ID
		go func() {
			if err := s.notifications.NotifyContractStatusChanged(context.Background(), recipient, contractID, target); err != nil {
				log.Warn().Err(err).Str("contract_id", contractID.String()).Msg("failed to send contract status notification")
			}
		}()

		if released {
			artistID, slotID := c.ArtistID, c.SlotID.UUID
			go func() {
				if err := s.notifications.NotifySlotReleased(context.Background(), artistID, slotID); err != nil {
					log.Warn().Err(err).Str("slot_id", slotID.String()).Msg("failed to send slot released notification")
				}
			}()
		}
	}

	return updated, nil
}

// Delete removes a contract that never took effect. Accepted and completed
// contracts are part of the booking record and cannot be deleted.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil || !c.IsParty(actorID) {
		return ErrContractNotFound
	}
	if !c.IsDeletable() {
		return ErrNotDeletable
	}
	return s.repo.Delete(ctx, c.ID)
}
