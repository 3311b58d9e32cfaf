package domain

import (
	"context"
	"time"
)

// InvitationStatus is the lifecycle state of an invitation. Pending is the
// only state that may transition; accepted and declined are terminal.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// ParseInvitationResponse maps a string to one of the terminal statuses a
// respondent may choose.
func ParseInvitationResponse(s string) (InvitationStatus, bool) {
	switch InvitationStatus(s) {
	case InvitationAccepted, InvitationDeclined:
		return InvitationStatus(s), true
	}
	return "", false
}

// Invitation represents an email invited to an event. The token is the sole
// credential for the public accept/decline flow.
// swagger:model Invitation
type Invitation struct {
	ID           string           `json:"id"`
	EventID      string           `json:"event_id"`
	InviterID    string           `json:"inviter_id"`
	InviteeEmail string           `json:"invitee_email"`
	Token        string           `json:"token"`
	Status       InvitationStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
}

// InvitationRepository defines storage operations for event invitations.
type InvitationRepository interface {
	// Create inserts a new invitation. Returns ErrAlreadyInvited when the
	// (event_id, invitee_email) pair already exists.
	Create(ctx context.Context, inv *Invitation) error
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*Invitation, error)
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	ListByEventID(ctx context.Context, eventID, search string, params PaginationParams) ([]*Invitation, int, error)
	// UpdateStatus transitions a pending invitation to the given status.
	// Returns ErrAlreadyResponded when the invitation is no longer pending.
	UpdateStatus(ctx context.Context, id string, status InvitationStatus) (*Invitation, error)
}

// InvitationWithEvent bundles an invitation with its event for the token
// redemption flow.
type InvitationWithEvent struct {
	Invitation *Invitation `json:"invitation"`
	Event      *Event      `json:"event"`
}

// InvitationService defines the invitation lifecycle.
type InvitationService interface {
	// Invite issues an invitation for the event. Returns (inv, created, err):
	// created is false when the email was already invited, in which case inv
	// is the existing invitation (same token).
	Invite(ctx context.Context, eventID, inviterID, inviteeEmail string) (*Invitation, bool, error)
	ListForEvent(ctx context.Context, eventID, callerID, search string, params PaginationParams) ([]*Invitation, int, error)
	GetByToken(ctx context.Context, token string) (*InvitationWithEvent, error)
	// Respond moves a pending invitation to accepted or declined.
	Respond(ctx context.Context, invitationID string, status InvitationStatus) (*Invitation, error)
}
