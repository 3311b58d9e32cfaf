package domain

import (
	"context"
	"time"
)

// EventExtraction is the structured result of extracting an event from free
// text. EndTime defaults to one hour after StartTime when the text does not
// state an end.
type EventExtraction struct {
	Title       string    `json:"title"`
	Location    *string   `json:"location"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description *string   `json:"description"`
}

// BookMetadata is the generated summary and tags for a book.
type BookMetadata struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// TextExtractor converts unstructured text into structured records using an
// external text-generation service. Each call either returns a fully
// validated result or an error, never a partial one.
type TextExtractor interface {
	// ExtractEvent parses event fields out of free text, anchored at now.
	ExtractEvent(ctx context.Context, text string, now time.Time) (*EventExtraction, error)
	// GenerateBookMetadata produces a short summary and tags for a book.
	GenerateBookMetadata(ctx context.Context, title, author string) (*BookMetadata, error)
}
