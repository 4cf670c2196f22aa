package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/strahinja/dandi-api/internal/github"
	"github.com/strahinja/dandi-api/internal/llm"
	"github.com/strahinja/dandi-api/internal/middleware"
	"github.com/strahinja/dandi-api/internal/models"
	"github.com/strahinja/dandi-api/pkg/dto"
	"github.com/strahinja/dandi-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupSummarizerTest(t *testing.T) (*testutil.MockReadmeFetcher, *testutil.MockSummarizer, *testutil.MockKeyAuthorizer, http.Handler) {
	t.Helper()
	mockFetcher := new(testutil.MockReadmeFetcher)
	mockSummarizer := new(testutil.MockSummarizer)
	mockAuthorizer := new(testutil.MockKeyAuthorizer)
	handler := NewSummarizerHandler(mockFetcher, mockSummarizer)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.APIKeyAuth(mockAuthorizer))
	app.Post("/github-summarizer", handler.Summarize)

	return mockFetcher, mockSummarizer, mockAuthorizer, app
}

func summarizeRequest(t *testing.T, app http.Handler, apiKey, githubURL string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(dto.SummarizeRequest{GitHubURL: githubURL})
	req := httptest.NewRequest(http.MethodPost, "/github-summarizer", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func admittedKey() *models.APIKey {
	return &models.APIKey{
		KeyValue:   "dandi-dev-abcdefghijklmnopqrstuvwxyz12",
		UsageCount: 1,
		RateLimit:  100,
	}
}

func TestSummarizerHandler_Success(t *testing.T) {
	mockFetcher, mockSummarizer, mockAuthorizer, app := setupSummarizerTest(t)

	key := admittedKey()
	mockAuthorizer.On("AuthorizeAndMeter", mock.Anything, key.KeyValue).Return(key, nil)
	mockFetcher.On("GetReadme", mock.Anything, "https://github.com/golang/go").
		Return(&github.Readme{Content: "# Go\nThe Go programming language."}, nil)
	mockSummarizer.On("Summarize", mock.Anything, mock.Anything).Return(&llm.Summary{
		Summary:   "The Go programming language repository.",
		CoolFacts: []string{"Started at Google in 2007"},
	}, nil)

	rec := summarizeRequest(t, app, key.KeyValue, "https://github.com/golang/go")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "100", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "99", rec.Header().Get("X-RateLimit-Remaining"))

	var response dto.SummarizeResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/golang/go", response.GitHubURL)
	assert.Equal(t, "The Go programming language repository.", response.Summary)
	require.Len(t, response.CoolFacts, 1)

	mockFetcher.AssertExpectations(t)
	mockSummarizer.AssertExpectations(t)
	mockAuthorizer.AssertExpectations(t)
}

func TestSummarizerHandler_MissingURL(t *testing.T) {
	_, _, mockAuthorizer, app := setupSummarizerTest(t)

	key := admittedKey()
	mockAuthorizer.On("AuthorizeAndMeter", mock.Anything, key.KeyValue).Return(key, nil)

	rec := summarizeRequest(t, app, key.KeyValue, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "githubUrl is required")
}

func TestSummarizerHandler_InvalidRepoURL(t *testing.T) {
	mockFetcher, _, mockAuthorizer, app := setupSummarizerTest(t)

	key := admittedKey()
	mockAuthorizer.On("AuthorizeAndMeter", mock.Anything, key.KeyValue).Return(key, nil)
	mockFetcher.On("GetReadme", mock.Anything, "https://example.com/not-github").
		Return(nil, github.ErrInvalidRepoURL)

	rec := summarizeRequest(t, app, key.KeyValue, "https://example.com/not-github")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid github url format")
}

func TestSummarizerHandler_ReadmeNotFound(t *testing.T) {
	mockFetcher, _, mockAuthorizer, app := setupSummarizerTest(t)

	key := admittedKey()
	mockAuthorizer.On("AuthorizeAndMeter", mock.Anything, key.KeyValue).Return(key, nil)
	mockFetcher.On("GetReadme", mock.Anything, "https://github.com/someone/empty").
		Return(nil, github.ErrReadmeNotFound)

	rec := summarizeRequest(t, app, key.KeyValue, "https://github.com/someone/empty")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "readme not found")
}

func TestSummarizerHandler_GitHubUpstreamError(t *testing.T) {
	mockFetcher, _, mockAuthorizer, app := setupSummarizerTest(t)

	key := admittedKey()
	mockAuthorizer.On("AuthorizeAndMeter", mock.Anything, key.KeyValue).Return(key, nil)
	mockFetcher.On("GetReadme", mock.Anything, "https://github.com/golang/go").
		Return(nil, &github.UpstreamError{StatusCode: http.StatusForbidden})

	rec := summarizeRequest(t, app, key.KeyValue, "https://github.com/golang/go")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to fetch readme")
}

func TestSummarizerHandler_SummarizerError(t *testing.T) {
	mockFetcher, mockSummarizer, mockAuthorizer, app := setupSummarizerTest(t)

	key := admittedKey()
	mockAuthorizer.On("AuthorizeAndMeter", mock.Anything, key.KeyValue).Return(key, nil)
	mockFetcher.On("GetReadme", mock.Anything, "https://github.com/golang/go").
		Return(&github.Readme{Content: "# Go"}, nil)
	mockSummarizer.On("Summarize", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	rec := summarizeRequest(t, app, key.KeyValue, "https://github.com/golang/go")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to summarize")
}
