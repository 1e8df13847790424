package contract

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Status represents contract status (matches contract_status enum)
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCancelled || s == StatusCompleted
}

// Tag represents a contract add-on (matches contract_tag enum)
type Tag string

const (
	TagTransport Tag = "transport"
	TagEffects   Tag = "effects"
	TagLodging   Tag = "lodging"
	TagMeals     Tag = "meals"
	TagEquipment Tag = "equipment"
	TagCrew      Tag = "crew"
)

// ValidTags returns the canonical add-on set.
func ValidTags() []Tag {
	return []Tag{TagTransport, TagEffects, TagLodging, TagMeals, TagEquipment, TagCrew}
}

// Actor identifies which side of a contract may drive a transition.
type Actor int

const (
	ActorProposer Actor = iota
	ActorRecipient
	ActorEither
)

// transitions is the full state machine: every (from, to) edge with the actor
// allowed to drive it. Accepted contracts only move forward to completed;
// they cannot be rejected or cancelled.
var transitions = map[Status]map[Status]Actor{
	StatusPending: {
		StatusAccepted:  ActorRecipient,
		StatusRejected:  ActorEither,
		StatusCancelled: ActorProposer,
	},
	StatusAccepted: {
		StatusCompleted: ActorEither,
	},
}

// Contract represents one booking proposal between one artist and one venue
// for one event date (matches contracts table).
type Contract struct {
	ID        uuid.UUID `db:"id"`
	ArtistID  uuid.UUID `db:"artist_id"`
	VenueID   uuid.UUID `db:"venue_id"`
	CreatedBy uuid.UUID `db:"created_by"` // proposer

	EventDate  time.Time      `db:"event_date"`
	FinalPrice float64        `db:"final_price"`
	Details    sql.NullString `db:"details"`
	Tags       pq.StringArray `db:"tags"`

	// Optional slot consumed on acceptance
	SlotID uuid.NullUUID `db:"slot_id"`

	Status     Status       `db:"status"`
	AcceptedAt sql.NullTime `db:"accepted_at"`
	ClosedAt   sql.NullTime `db:"closed_at"` // set on any terminal status

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsParty reports whether userID is the artist or the venue on this contract.
func (c *Contract) IsParty(userID uuid.UUID) bool {
	return userID == c.ArtistID || userID == c.VenueID
}

// Recipient returns the party who did not create the proposal.
func (c *Contract) Recipient() uuid.UUID {
	if c.CreatedBy == c.ArtistID {
		return c.VenueID
	}
	return c.ArtistID
}

// CanTransitionTo reports whether the edge exists, ignoring the actor.
func (c *Contract) CanTransitionTo(target Status) bool {
	allowed, ok := transitions[c.Status]
	if !ok {
		return false
	}
	_, ok = allowed[target]
	return ok
}

// ActorMayTransition reports whether the acting user may drive the edge.
// The edge must exist and the user must be the permitted party.
func (c *Contract) ActorMayTransition(target Status, actingUserID uuid.UUID) bool {
	allowed, ok := transitions[c.Status]
	if !ok {
		return false
	}
	actor, ok := allowed[target]
	if !ok {
		return false
	}
	switch actor {
	case ActorProposer:
		return actingUserID == c.CreatedBy
	case ActorRecipient:
		return actingUserID == c.Recipient()
	default:
		return c.IsParty(actingUserID)
	}
}

// IsDeletable reports whether the contract may be hard-deleted.
func (c *Contract) IsDeletable() bool {
	return c.Status == StatusPending || c.Status == StatusRejected
}
