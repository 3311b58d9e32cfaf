package domain

import (
	"context"
	"time"
)

// EventStatus is the scheduling state of an event.
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventAttending EventStatus = "attending"
	EventMaybe     EventStatus = "maybe"
	EventDeclined  EventStatus = "declined"
)

// ParseEventStatus maps a string to an EventStatus.
func ParseEventStatus(s string) (EventStatus, bool) {
	switch EventStatus(s) {
	case EventUpcoming, EventAttending, EventMaybe, EventDeclined:
		return EventStatus(s), true
	}
	return "", false
}

// Event represents a scheduled event owned by its creator.
// swagger:model Event
type Event struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"owner_id"`
	Title       string      `json:"title"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     time.Time   `json:"end_time"`
	Location    *string     `json:"location"`
	Description *string     `json:"description"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(ownerID, title string, startTime, endTime time.Time, location, description *string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		OwnerID:     ownerID,
		Title:       title,
		StartTime:   startTime,
		EndTime:     endTime,
		Location:    location,
		Description: description,
		Status:      EventUpcoming,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// EventFilter narrows the visible-event query. Search matches title or
// location case-insensitively; From/To bound start_time.
type EventFilter struct {
	Search string
	From   *time.Time
	To     *time.Time
}

// EventUpdate holds the optional fields for a partial event update.
type EventUpdate struct {
	Title       *string
	StartTime   *time.Time
	EndTime     *time.Time
	Location    *string
	Description *string
	Status      *EventStatus
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// ListVisible returns events owned by ownerID or with an accepted
	// invitation for inviteeEmail, ascending by start_time.
	ListVisible(ctx context.Context, ownerID, inviteeEmail string, filter EventFilter) ([]*Event, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines event CRUD with the visibility rules applied.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	// GetEvent returns the event when the caller owns it or holds an
	// accepted invitation for it.
	GetEvent(ctx context.Context, eventID, userID string) (*Event, error)
	ListVisibleEvents(ctx context.Context, userID string, filter EventFilter) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, userID string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, userID string) error
}
