package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"libraryplanner/internal/delivery/http/helpers"
	"libraryplanner/internal/delivery/http/middleware"
	"libraryplanner/internal/domain"
)

type EventController struct {
	Logger      *slog.Logger
	Events      domain.EventService
	Invitations domain.InvitationService
}

func NewEventController(logger *slog.Logger, events domain.EventService, invitations domain.InvitationService) *EventController {
	return &EventController{
		Logger:      logger,
		Events:      events,
		Invitations: invitations,
	}
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string  `json:"title"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
}

// Validate implements helpers.Validator.
func (e CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, "title is required")
	}
	start, err := time.Parse(time.RFC3339, e.StartTime)
	if err != nil {
		errs = append(errs, "start_time must be an RFC 3339 timestamp")
	}
	end, err := time.Parse(time.RFC3339, e.EndTime)
	if err != nil {
		errs = append(errs, "end_time must be an RFC 3339 timestamp")
	} else if !start.IsZero() && !end.After(start) {
		errs = append(errs, "end_time must be after start_time")
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}.
// All fields are optional; absent fields are left unchanged.
type UpdateEventRequest struct {
	Title       *string `json:"title"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Validate implements helpers.Validator.
func (e UpdateEventRequest) Validate() []string {
	var errs []string
	if e.Title != nil && strings.TrimSpace(*e.Title) == "" {
		errs = append(errs, "title must not be empty")
	}
	if e.StartTime != nil {
		if _, err := time.Parse(time.RFC3339, *e.StartTime); err != nil {
			errs = append(errs, "start_time must be an RFC 3339 timestamp")
		}
	}
	if e.EndTime != nil {
		if _, err := time.Parse(time.RFC3339, *e.EndTime); err != nil {
			errs = append(errs, "end_time must be an RFC 3339 timestamp")
		}
	}
	if e.Status != nil {
		if _, ok := domain.ParseEventStatus(*e.Status); !ok {
			errs = append(errs, "status must be one of \"upcoming\", \"attending\", \"maybe\", \"declined\"")
		}
	}
	return errs
}

// InviteRequest is the request body for POST /events/{eventID}/invitations.
type InviteRequest struct {
	Email string `json:"email"`
}

// Validate implements helpers.Validator.
func (i InviteRequest) Validate() []string {
	email := strings.TrimSpace(strings.ToLower(i.Email))
	if email == "" {
		return []string{"email is required"}
	}
	if !emailRegexp.MatchString(email) {
		return []string{"invalid email format"}
	}
	return nil
}

// InviteResponse is the response body for POST /events/{eventID}/invitations.
type InviteResponse struct {
	Invitation     *domain.Invitation `json:"invitation"`
	AlreadyInvited bool               `json:"already_invited"`
}

// InvitationListResponse is the response body for GET /events/{eventID}/invitations.
type InvitationListResponse struct {
	Invitations []*domain.Invitation   `json:"invitations"`
	Pagination  helpers.PaginationMeta `json:"pagination"`
}

// eventIDFromPath extracts and validates the eventID path value. Writes a 400
// and returns false on failure.
func eventIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", false
	}
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return "", false
	}
	return eventID, true
}

// CreateEvent godoc
// @Summary Create an event
// @Description Create a new event owned by the authenticated user. end_time must be after start_time; status starts as "upcoming".
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	start, _ := time.Parse(time.RFC3339, req.StartTime)
	end, _ := time.Parse(time.RFC3339, req.EndTime)

	event := &domain.Event{
		OwnerID:     userID,
		Title:       strings.TrimSpace(req.Title),
		StartTime:   start,
		EndTime:     end,
		Location:    req.Location,
		Description: req.Description,
	}
	if err := c.Events.CreateEvent(r.Context(), event); err != nil {
		c.writeServiceError(w, r, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List visible events
// @Description Lists events the authenticated user owns or holds an accepted invitation for, ascending by start time. Optional search matches title or location; from/to bound the start time.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring to match against title or location"
// @Param from query string false "Earliest start_time (RFC 3339)"
// @Param to query string false "Latest start_time (RFC 3339)"
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	filter := domain.EventFilter{Search: strings.TrimSpace(r.URL.Query().Get("search"))}
	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "from must be an RFC 3339 timestamp")
			return
		}
		filter.From = &t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "to must be an RFC 3339 timestamp")
			return
		}
		filter.To = &t
	}

	events, err := c.Events.ListVisibleEvents(r.Context(), userID, filter)
	if err != nil {
		c.writeServiceError(w, r, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event
// @Description Returns the event when the authenticated user owns it or holds an accepted invitation for it.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Events.GetEvent(r.Context(), eventID, userID)
	if err != nil {
		c.writeServiceError(w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partially update an event. Owner only. end_time must remain after start_time after the update is applied.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	upd := domain.EventUpdate{
		Title:       req.Title,
		Location:    req.Location,
		Description: req.Description,
	}
	if req.StartTime != nil {
		t, _ := time.Parse(time.RFC3339, *req.StartTime)
		upd.StartTime = &t
	}
	if req.EndTime != nil {
		t, _ := time.Parse(time.RFC3339, *req.EndTime)
		upd.EndTime = &t
	}
	if req.Status != nil {
		status, _ := domain.ParseEventStatus(*req.Status)
		upd.Status = &status
	}

	event, err := c.Events.UpdateEvent(r.Context(), eventID, userID, upd)
	if err != nil {
		c.writeServiceError(w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Delete an event and its invitations. Owner only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "No content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Events.DeleteEvent(r.Context(), eventID, userID); err != nil {
		c.writeServiceError(w, r, err, "event not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Invite godoc
// @Summary Invite an email to an event
// @Description Issues an invitation for the event. Owner only. Idempotent per (event, email): returns 201 with a new invitation or 200 with the existing one and already_invited set.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body InviteRequest true "Invitee email"
// @Success 200 {object} helpers.APIResponse "data contains the existing invitation, already_invited true"
// @Success 201 {object} helpers.APIResponse "data contains the new invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [post]
func (c *EventController) Invite(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req InviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	inv, created, err := c.Invitations.Invite(r.Context(), eventID, userID, req.Email)
	if err != nil {
		c.writeServiceError(w, r, err, "event not found")
		return
	}
	if created {
		helpers.WriteJSONSuccess(w, http.StatusCreated, InviteResponse{Invitation: inv, AlreadyInvited: false})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, InviteResponse{Invitation: inv, AlreadyInvited: true})
}

// ListInvitations godoc
// @Summary List an event's invitations
// @Description Lists invitations for the event, newest first. Owner only. Optional search matches the invitee email.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param search query string false "Substring to match against invitee email"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains invitations and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [get]
func (c *EventController) ListInvitations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	invitations, total, err := c.Invitations.ListForEvent(r.Context(), eventID, userID, search, params)
	if err != nil {
		c.writeServiceError(w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, InvitationListResponse{
		Invitations: invitations,
		Pagination:  helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// writeServiceError maps sentinel errors to HTTP responses and logs anything unexpected.
func (c *EventController) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if notFoundMsg == "" {
			notFoundMsg = "not found"
		}
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "insufficient permissions")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
