package notification

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type represents notification type
type Type string

const (
	TypeContractCreated   Type = "contract_created"   // Recipient: new proposal
	TypeContractAccepted  Type = "contract_accepted"  // Proposer: counterparty accepted
	TypeContractRejected  Type = "contract_rejected"  // Other party: proposal rejected
	TypeContractCancelled Type = "contract_cancelled" // Recipient: proposer withdrew
	TypeContractCompleted Type = "contract_completed" // Other party: event marked done
	TypeSlotReleased      Type = "slot_released"      // Artist: a booked slot opened up
)

// Notification represents a user notification
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Type      Type            `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Body      sql.NullString  `db:"body" json:"body,omitempty"`
	Data      json.RawMessage `db:"data" json:"data,omitempty"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	ReadAt    sql.NullTime    `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// NotificationData for linking to entities
type NotificationData struct {
	ContractID *uuid.UUID `json:"contract_id,omitempty"`
	SlotID     *uuid.UUID `json:"slot_id,omitempty"`
}

// SetData encodes data to JSON
func (n *Notification) SetData(data *NotificationData) {
	if data != nil {
		n.Data, _ = json.Marshal(data)
	}
}

// GetData decodes data from JSON
func (n *Notification) GetData() *NotificationData {
	if n.Data == nil {
		return &NotificationData{}
	}
	var data NotificationData
	_ = json.Unmarshal(n.Data, &data)
	return &data
}
