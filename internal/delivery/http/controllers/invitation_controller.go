package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"libraryplanner/internal/delivery/http/helpers"
	"libraryplanner/internal/domain"
)

// tokenRegex matches an invitation token (32 lowercase hex characters).
var tokenRegex = regexp.MustCompile(`^[0-9a-f]{32}$`)

type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{
		Logger:  logger,
		Service: svc,
	}
}

// RespondRequest is the request body for POST /invitations/{invitationID}/respond.
type RespondRequest struct {
	Status string `json:"status"`
}

// Validate implements helpers.Validator.
func (r RespondRequest) Validate() []string {
	if _, ok := domain.ParseInvitationResponse(strings.TrimSpace(strings.ToLower(r.Status))); !ok {
		return []string{"status must be \"accepted\" or \"declined\""}
	}
	return nil
}

// GetByToken godoc
// @Summary Look up an invitation by token
// @Description Returns the invitation and its event for the given token. The token is the sole lookup credential.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param token path string true "Invitation token (32 hex characters)"
// @Success 200 {object} helpers.APIResponse "data contains invitation and event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invites/{token} [get]
func (c *InvitationController) GetByToken(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing token")
		return
	}
	if !tokenRegex.MatchString(token) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid token")
		return
	}

	result, err := c.Service.GetByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "invitation not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// Respond godoc
// @Summary Respond to an invitation
// @Description Moves a pending invitation to accepted or declined. Responses are one-shot: a second response fails with 409 regardless of the value sent.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Param body body RespondRequest true "Response: accepted or declined"
// @Success 200 {object} helpers.APIResponse "data contains the updated invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID}/respond [post]
func (c *InvitationController) Respond(w http.ResponseWriter, r *http.Request) {
	invitationID := r.PathValue("invitationID")
	if invitationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing invitationID")
		return
	}
	if !uuidRegex.MatchString(invitationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid invitationID")
		return
	}
	var req RespondRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	status, _ := domain.ParseInvitationResponse(strings.TrimSpace(strings.ToLower(req.Status)))

	inv, err := c.Service.Respond(r.Context(), invitationID, status)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyResponded) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "invitation has already been responded to")
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "invitation not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}
