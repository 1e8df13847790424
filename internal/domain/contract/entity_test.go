package contract

import (
	"testing"

	"github.com/google/uuid"
)

func TestStatusIsTerminal(t *testing.T) {
	terminal := []Status{StatusRejected, StatusCancelled, StatusCompleted}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusAccepted} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestCanTransitionTo(t *testing.T) {
	all := []Status{StatusPending, StatusAccepted, StatusRejected, StatusCancelled, StatusCompleted}

	allowed := map[Status]map[Status]bool{
		StatusPending: {
			StatusAccepted:  true,
			StatusRejected:  true,
			StatusCancelled: true,
		},
		StatusAccepted: {
			StatusCompleted: true,
		},
	}

	for _, from := range all {
		for _, to := range all {
			c := &Contract{Status: from}
			want := allowed[from][to]
			if got := c.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestActorMayTransition(t *testing.T) {
	artist := uuid.New()
	venue := uuid.New()
	outsider := uuid.New()

	// Venue proposed, artist is the recipient
	pending := &Contract{
		ArtistID:  artist,
		VenueID:   venue,
		CreatedBy: venue,
		Status:    StatusPending,
	}

	tests := []struct {
		name   string
		c      *Contract
		target Status
		actor  uuid.UUID
		want   bool
	}{
		{"recipient accepts", pending, StatusAccepted, artist, true},
		{"proposer cannot accept own proposal", pending, StatusAccepted, venue, false},
		{"proposer cancels", pending, StatusCancelled, venue, true},
		{"recipient cannot cancel", pending, StatusCancelled, artist, false},
		{"recipient rejects", pending, StatusRejected, artist, true},
		{"proposer rejects", pending, StatusRejected, venue, true},
		{"outsider rejected everywhere", pending, StatusAccepted, outsider, false},
		{"no edge pending to completed", pending, StatusCompleted, artist, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.ActorMayTransition(tt.target, tt.actor); got != tt.want {
				t.Errorf("ActorMayTransition(%s, actor) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}

	accepted := &Contract{ArtistID: artist, VenueID: venue, CreatedBy: venue, Status: StatusAccepted}
	if !accepted.ActorMayTransition(StatusCompleted, artist) {
		t.Error("artist should be able to complete")
	}
	if !accepted.ActorMayTransition(StatusCompleted, venue) {
		t.Error("venue should be able to complete")
	}
	if accepted.ActorMayTransition(StatusCancelled, venue) {
		t.Error("accepted contracts cannot be cancelled")
	}
	if accepted.ActorMayTransition(StatusRejected, artist) {
		t.Error("accepted contracts cannot be rejected")
	}
}

func TestRecipient(t *testing.T) {
	artist := uuid.New()
	venue := uuid.New()

	byVenue := &Contract{ArtistID: artist, VenueID: venue, CreatedBy: venue}
	if byVenue.Recipient() != artist {
		t.Error("artist should be the recipient of a venue proposal")
	}

	byArtist := &Contract{ArtistID: artist, VenueID: venue, CreatedBy: artist}
	if byArtist.Recipient() != venue {
		t.Error("venue should be the recipient of an artist proposal")
	}
}

func TestIsDeletable(t *testing.T) {
	deletable := map[Status]bool{
		StatusPending:   true,
		StatusRejected:  true,
		StatusAccepted:  false,
		StatusCancelled: false,
		StatusCompleted: false,
	}
	for status, want := range deletable {
		c := &Contract{Status: status}
		if got := c.IsDeletable(); got != want {
			t.Errorf("IsDeletable(%s) = %v, want %v", status, got, want)
		}
	}
}
