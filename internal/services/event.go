package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"libraryplanner/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	invitationRepo domain.InvitationRepository
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repositories.
func NewEventService(eventRepo domain.EventRepository, invitationRepo domain.InvitationRepository, userRepo domain.UserRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OwnerID == "" {
		return domain.ErrForbidden
	}
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return domain.ErrInvalidInput
	}
	if !event.EndTime.After(event.StartTime) {
		return domain.ErrInvalidInput
	}
	if event.Status == "" {
		event.Status = domain.EventUpcoming
	}

	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// canSee reports whether the user owns the event or holds an accepted
// invitation matching their lowercased email.
func (s *eventService) canSee(ctx context.Context, event *domain.Event, userID string) (bool, error) {
	if domain.CanManageEvent(event.OwnerID, userID) {
		return true, nil
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get user: %w", err)
	}
	inv, err := s.invitationRepo.GetByEventAndEmail(ctx, event.ID, strings.ToLower(user.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get invitation: %w", err)
	}
	return inv.Status == domain.InvitationAccepted, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	ok, err := s.canSee(ctx, event, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *eventService) ListVisibleEvents(ctx context.Context, userID string, filter domain.EventFilter) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return []*domain.Event{}, nil
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return []*domain.Event{}, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	filter.Search = strings.TrimSpace(filter.Search)
	events, err := s.eventRepo.ListVisible(ctx, userID, strings.ToLower(user.Email), filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, userID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !domain.CanManageEvent(event.OwnerID, userID) {
		return nil, domain.ErrForbidden
	}

	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, domain.ErrInvalidInput
	}

	// Validate end > start against the effective values after the update.
	newStart := event.StartTime
	if upd.StartTime != nil {
		newStart = *upd.StartTime
	}
	newEnd := event.EndTime
	if upd.EndTime != nil {
		newEnd = *upd.EndTime
	}
	if !newEnd.After(newStart) {
		return nil, domain.ErrInvalidInput
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !domain.CanManageEvent(event.OwnerID, userID) {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
