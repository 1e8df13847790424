package contract

import (
	"time"

	"github.com/google/uuid"
)

// EventDateLayout is the wire format for contract event dates.
const EventDateLayout = "2006-01-02"

type CreateContractRequest struct {
	CounterpartyID uuid.UUID  `json:"counterparty_id" validate:"required"`
	EventDate      string     `json:"event_date" validate:"required,datetime=2006-01-02"`
	FinalPrice     float64    `json:"final_price" validate:"required,gt=0"`
	Details        string     `json:"details" validate:"omitempty,max=2000"`
	Tags           []string   `json:"tags" validate:"omitempty,max=6,unique,dive,contract_tag"`
	SlotID         *uuid.UUID `json:"slot_id"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=accepted rejected cancelled completed"`
}

type ContractResponse struct {
	ID         uuid.UUID  `json:"id"`
	ArtistID   uuid.UUID  `json:"artist_id"`
	VenueID    uuid.UUID  `json:"venue_id"`
	CreatedBy  uuid.UUID  `json:"created_by"`
	EventDate  string     `json:"event_date"`
	FinalPrice float64    `json:"final_price"`
	Details    string     `json:"details,omitempty"`
	Tags       []string   `json:"tags"`
	SlotID     *uuid.UUID `json:"slot_id,omitempty"`
	Status     Status     `json:"status"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func FromEntity(c *Contract) *ContractResponse {
	resp := &ContractResponse{
		ID:         c.ID,
		ArtistID:   c.ArtistID,
		VenueID:    c.VenueID,
		CreatedBy:  c.CreatedBy,
		EventDate:  c.EventDate.Format(EventDateLayout),
		FinalPrice: c.FinalPrice,
		Tags:       []string(c.Tags),
		Status:     c.Status,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if c.Details.Valid {
		resp.Details = c.Details.String
	}
	if c.SlotID.Valid {
		id := c.SlotID.UUID
		resp.SlotID = &id
	}
	if c.AcceptedAt.Valid {
		t := c.AcceptedAt.Time
		resp.AcceptedAt = &t
	}
	if c.ClosedAt.Valid {
		t := c.ClosedAt.Time
		resp.ClosedAt = &t
	}
	return resp
}

func FromEntities(contracts []*Contract) []*ContractResponse {
	responses := make([]*ContractResponse, len(contracts))
	for i, c := range contracts {
		responses[i] = FromEntity(c)
	}
	return responses
}
