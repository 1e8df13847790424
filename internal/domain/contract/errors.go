package contract

import "errors"

var (
	ErrContractNotFound        = errors.New("contract not found")
	ErrCounterpartyNotFound    = errors.New("counterparty not found")
	ErrSameRoleParties         = errors.New("contract requires one artist and one venue")
	ErrEventDateInPast         = errors.New("event date must not be in the past")
	ErrInvalidPrice            = errors.New("final price must be positive")
	ErrSlotNotFound            = errors.New("slot not found")
	ErrSlotNotOwnedByArtist    = errors.New("slot does not belong to the contract artist")
	ErrInvalidStatusTransition = errors.New("invalid contract status transition")
	ErrActorNotAllowed         = errors.New("acting user may not perform this transition")
	ErrSlotConflict            = errors.New("slot is already booked by another contract")
	ErrNotDeletable            = errors.New("only pending or rejected contracts can be deleted")
)
