package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"libraryplanner/internal/delivery/http/helpers"
	"libraryplanner/internal/domain"
)

type AIController struct {
	Logger    *slog.Logger
	Extractor domain.TextExtractor
}

func NewAIController(logger *slog.Logger, extractor domain.TextExtractor) *AIController {
	return &AIController{
		Logger:    logger,
		Extractor: extractor,
	}
}

// ExtractEventRequest is the request body for POST /ai/extract-event.
type ExtractEventRequest struct {
	Text string `json:"text"`
}

// Validate implements helpers.Validator.
func (e ExtractEventRequest) Validate() []string {
	if len(strings.TrimSpace(e.Text)) < 5 {
		return []string{"text must be at least 5 characters"}
	}
	return nil
}

// BookMetadataRequest is the request body for POST /ai/book-metadata.
type BookMetadataRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Validate implements helpers.Validator.
func (b BookMetadataRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(b.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(b.Author) == "" {
		errs = append(errs, "author is required")
	}
	return errs
}

// ExtractEvent godoc
// @Summary Extract event fields from free text
// @Description Parses a natural-language description into structured event fields. Relative dates are resolved against the current time; end_time defaults to one hour after start_time.
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ExtractEventRequest true "Free-text event description"
// @Success 200 {object} helpers.APIResponse "data contains the extracted event fields"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /ai/extract-event [post]
func (c *AIController) ExtractEvent(w http.ResponseWriter, r *http.Request) {
	var req ExtractEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Extractor.ExtractEvent(r.Context(), strings.TrimSpace(req.Text), time.Now())
	if err != nil {
		c.Logger.WarnContext(r.Context(), "event extraction failed", "err", err)
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not extract an event from the given text")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// BookMetadata godoc
// @Summary Generate book summary and tags
// @Description Generates a short summary (3-5 sentences) and 5-8 tags for the given title and author.
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BookMetadataRequest true "Book title and author"
// @Success 200 {object} helpers.APIResponse "data contains summary and tags"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /ai/book-metadata [post]
func (c *AIController) BookMetadata(w http.ResponseWriter, r *http.Request) {
	var req BookMetadataRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Extractor.GenerateBookMetadata(r.Context(), strings.TrimSpace(req.Title), strings.TrimSpace(req.Author))
	if err != nil {
		c.Logger.WarnContext(r.Context(), "book metadata generation failed", "err", err)
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not generate metadata for the given book")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
