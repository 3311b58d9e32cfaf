package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"libraryplanner/internal/domain"
)

type invitationService struct {
	invitationRepo domain.InvitationRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	appBaseURL     string
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewInvitationService creates an InvitationService with the given
// repositories. emailService may be nil to disable invitation emails.
func NewInvitationService(
	invitationRepo domain.InvitationRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	appBaseURL string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		appBaseURL:     appBaseURL,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// generateToken returns a 32-character opaque hex token. UUIDv4 stripped of
// dashes: crypto-random and unguessable, usable directly in a URL path.
func generateToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *invitationService) Invite(ctx context.Context, eventID, inviterID, inviteeEmail string) (*domain.Invitation, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email := strings.TrimSpace(strings.ToLower(inviteeEmail))
	if !emailRegexp.MatchString(email) {
		return nil, false, domain.ErrInvalidInput
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("get event: %w", err)
	}
	if !domain.CanInvite(event.OwnerID, inviterID) {
		return nil, false, domain.ErrForbidden
	}

	inviter, err := s.userRepo.GetByID(ctx, inviterID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, false, domain.ErrForbidden
		}
		return nil, false, fmt.Errorf("get inviter: %w", err)
	}
	if strings.ToLower(inviter.Email) == email {
		return nil, false, domain.ErrInvalidInput
	}

	inv := &domain.Invitation{
		EventID:      eventID,
		InviterID:    inviterID,
		InviteeEmail: email,
		Token:        generateToken(),
		Status:       domain.InvitationPending,
		CreatedAt:    time.Now(),
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrAlreadyInvited) {
			// Recoverable: surface the existing invitation (same token)
			// instead of failing.
			existing, err := s.invitationRepo.GetByEventAndEmail(ctx, eventID, email)
			if err != nil {
				return nil, false, fmt.Errorf("get existing invitation: %w", err)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create invitation: %w", err)
	}

	s.sendInvitationEmail(ctx, inv, event, inviter)

	return inv, true, nil
}

// sendInvitationEmail sends the invite link to the invitee. Best effort: a
// mail failure is logged and does not fail the invitation.
func (s *invitationService) sendInvitationEmail(ctx context.Context, inv *domain.Invitation, event *domain.Event, inviter *domain.User) {
	if s.emailService == nil {
		return
	}
	inviterName := strings.TrimSpace(inviter.Name)
	if inviterName == "" {
		inviterName = inviter.Email
	}
	data := &domain.InvitationEmailData{
		Email:       inv.InviteeEmail,
		InviterName: inviterName,
		EventTitle:  event.Title,
		WhenText:    fmt.Sprintf("%s to %s", event.StartTime.Format(time.RFC1123), event.EndTime.Format(time.RFC1123)),
		InviteURL:   fmt.Sprintf("%s/invite/%s", strings.TrimSuffix(s.appBaseURL, "/"), inv.Token),
	}
	if err := s.emailService.SendInvitation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "invitation email failed", "event_id", inv.EventID, "email", inv.InviteeEmail, "err", err)
	}
}

func (s *invitationService) ListForEvent(ctx context.Context, eventID, callerID, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	if !domain.CanManageEvent(event.OwnerID, callerID) {
		return nil, 0, domain.ErrForbidden
	}

	invs, total, err := s.invitationRepo.ListByEventID(ctx, eventID, strings.TrimSpace(search), params)
	if err != nil {
		return nil, 0, fmt.Errorf("list invitations: %w", err)
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, total, nil
}

func (s *invitationService) GetByToken(ctx context.Context, token string) (*domain.InvitationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrNotFound
	}
	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation by token: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, inv.EventID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &domain.InvitationWithEvent{Invitation: inv, Event: event}, nil
}

func (s *invitationService) Respond(ctx context.Context, invitationID string, status domain.InvitationStatus) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if status != domain.InvitationAccepted && status != domain.InvitationDeclined {
		return nil, domain.ErrInvalidInput
	}
	updated, err := s.invitationRepo.UpdateStatus(ctx, invitationID, status)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyResponded) {
			return nil, domain.ErrAlreadyResponded
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update invitation status: %w", err)
	}
	return updated, nil
}
