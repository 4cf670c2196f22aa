package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/strahinja/dandi-api/internal/github"
	"github.com/strahinja/dandi-api/pkg/dto"
)

// summarizing a large README through the LLM can be slow
const summarizeTimeout = 60 * time.Second

type SummarizerHandler struct {
	githubClient ReadmeFetcherInterface
	summarizer   SummarizerInterface
}

func NewSummarizerHandler(githubClient ReadmeFetcherInterface, summarizer SummarizerInterface) *SummarizerHandler {
	return &SummarizerHandler{githubClient: githubClient, summarizer: summarizer}
}

// Summarize fetches the README of the requested repository and returns an
// LLM-generated summary. Requests reach this handler already metered by the
// api key middleware.
func (h *SummarizerHandler) Summarize(c *drift.Context) {
	var req dto.SummarizeRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.GitHubURL == "" {
		c.BadRequest("githubUrl is required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), summarizeTimeout)
	defer cancel()

	readme, err := h.githubClient.GetReadme(ctx, req.GitHubURL)
	if err != nil {
		writeReadmeError(c, err)
		return
	}

	summary, err := h.summarizer.Summarize(ctx, readme.Content)
	if err != nil {
		c.InternalServerError("failed to summarize repository")
		return
	}

	_ = c.JSON(200, dto.SummarizeResponse{
		GitHubURL: req.GitHubURL,
		Summary:   summary.Summary,
		CoolFacts: summary.CoolFacts,
	})
}

func writeReadmeError(c *drift.Context, err error) {
	var upstreamErr *github.UpstreamError
	switch {
	case errors.Is(err, github.ErrInvalidRepoURL):
		c.BadRequest("invalid github url format")
	case errors.Is(err, github.ErrReadmeNotFound):
		c.NotFound("readme not found in repository")
	case errors.As(err, &upstreamErr):
		_ = c.JSON(502, map[string]string{"error": "failed to fetch readme from github"})
	default:
		c.InternalServerError("failed to fetch readme")
	}
}
