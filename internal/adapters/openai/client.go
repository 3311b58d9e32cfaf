package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"libraryplanner/internal/domain"
)

// Config holds the chat-completion client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

type extractor struct {
	client  *http.Client
	apiKey  string
	baseURL string
	model   string
}

// NewExtractor returns a TextExtractor backed by an OpenAI-compatible
// chat-completions API.
func NewExtractor(client *http.Client, cfg Config) domain.TextExtractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &extractor{
		client:  client,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Temperature    float64       `json:"temperature"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete runs one chat completion and returns the raw message content.
func (e *extractor) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	reqBody := chatRequest{
		Model:       e.model,
		Temperature: temperature,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call completion api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion api returned status: %d", resp.StatusCode)
	}

	var data chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(data.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}
	return data.Choices[0].Message.Content, nil
}

// eventWire is the JSON shape the model is asked to return for event extraction.
type eventWire struct {
	Title       string  `json:"title"`
	Location    *string `json:"location"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Description *string `json:"description"`
}

const extractEventSystem = "Extract structured event data in JSON format."

func (e *extractor) ExtractEvent(ctx context.Context, text string, now time.Time) (*domain.EventExtraction, error) {
	prompt := fmt.Sprintf(`
Extract event information from this text:

%q

Return ONLY JSON with:
title: string
location: string or null
start_time: ISO datetime string
end_time: ISO datetime string (assume 1 hour if not specified)
description: string or null

Current date: %s
`, text, now.Format(time.RFC3339))

	raw, err := e.complete(ctx, extractEventSystem, prompt, 0.1)
	if err != nil {
		return nil, err
	}

	var wire eventWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("failed to parse extraction result: %w", err)
	}
	if strings.TrimSpace(wire.Title) == "" {
		return nil, fmt.Errorf("extraction result missing title")
	}
	start, err := parseISOTime(wire.StartTime)
	if err != nil {
		return nil, fmt.Errorf("extraction result has invalid start_time: %w", err)
	}
	end := start.Add(time.Hour)
	if strings.TrimSpace(wire.EndTime) != "" {
		end, err = parseISOTime(wire.EndTime)
		if err != nil {
			return nil, fmt.Errorf("extraction result has invalid end_time: %w", err)
		}
		if !end.After(start) {
			end = start.Add(time.Hour)
		}
	}

	return &domain.EventExtraction{
		Title:       strings.TrimSpace(wire.Title),
		Location:    wire.Location,
		StartTime:   start,
		EndTime:     end,
		Description: wire.Description,
	}, nil
}

// bookWire is the JSON shape the model is asked to return for book metadata.
type bookWire struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

const bookMetadataSystem = "You generate concise book metadata in JSON."

func (e *extractor) GenerateBookMetadata(ctx context.Context, title, author string) (*domain.BookMetadata, error) {
	prompt := fmt.Sprintf(`
Generate a short book summary and relevant tags.

Title: %s
Author: %s

Return ONLY valid JSON with keys:
summary: string (3-5 sentences)
tags: array of 5-8 short tags
`, title, author)

	raw, err := e.complete(ctx, bookMetadataSystem, prompt, 0.3)
	if err != nil {
		return nil, err
	}

	var wire bookWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("failed to parse metadata result: %w", err)
	}
	if strings.TrimSpace(wire.Summary) == "" {
		return nil, fmt.Errorf("metadata result missing summary")
	}
	tags := make([]string, 0, len(wire.Tags))
	for _, t := range wire.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("metadata result missing tags")
	}

	return &domain.BookMetadata{
		Summary: strings.TrimSpace(wire.Summary),
		Tags:    tags,
	}, nil
}

// parseISOTime accepts RFC3339 and a few common ISO variants models emit.
func parseISOTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
