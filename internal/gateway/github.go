// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/github-social-card/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching repository metadata.
type Fetcher interface {
	FetchRepository(ctx context.Context, owner, repo string) (*domain.Repository, error)
}

// GitHubGateway fetches repository metadata from the GitHub REST API.
type GitHubGateway struct {
	restClient *github.Client
	logger     *log.Logger
}

// newHTTPClient builds the transport shared by the REST and GraphQL gateways.
// Secondary rate limits are detected and logged but never waited out, so the
// caller sees the limit as an error instead of a stalled request.
// An empty token sends anonymous requests.
func newHTTPClient(token string, logger *log.Logger) (*http.Client, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(0, func(cb *github_ratelimit.CallbackContext) {
		path := ""
		if cb.Request != nil {
			path = cb.Request.URL.Path
		}
		if cb.SleepUntil != nil {
			logger.Printf("Secondary rate limit hit on %s, reset at %s", path, cb.SleepUntil.Format("15:04:05"))
			return
		}
		logger.Printf("Secondary rate limit hit on %s", path)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	if token == "" {
		return &http.Client{Transport: rateLimitWaiter}, nil
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}, nil
}

// NewGitHubGateway creates a REST gateway. apiURL overrides the public API
// endpoint for GitHub Enterprise installations and may be empty.
func NewGitHubGateway(token, apiURL string, logger *log.Logger) (*GitHubGateway, error) {
	httpClient, err := newHTTPClient(token, logger)
	if err != nil {
		return nil, err
	}
	restClient := github.NewClient(httpClient)
	if apiURL != "" {
		restClient, err = restClient.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid API URL %q: %w", apiURL, err)
		}
	}
	return &GitHubGateway{
		restClient: restClient,
		logger:     logger,
	}, nil
}

// FetchRepository gets a single repository. The body is decoded twice: into
// github.Repository for the typed fields and into a number-preserving map for
// the open-ended attributes.
func (g *GitHubGateway) FetchRepository(ctx context.Context, owner, repo string) (*domain.Repository, error) {
	g.logger.Printf("Fetching repository %s/%s using REST API...", owner, repo)
	path := fmt.Sprintf("repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	req, err := g.restClient.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %w", domain.ErrMetadataFetch, err)
	}

	var body bytes.Buffer
	if _, err := g.restClient.Do(ctx, req, &body); err != nil {
		return nil, classifyRESTError(err)
	}

	var typed github.Repository
	if err := json.Unmarshal(body.Bytes(), &typed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode repository: %w", domain.ErrMetadataFetch, err)
	}
	dec := json.NewDecoder(bytes.NewReader(body.Bytes()))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode repository attributes: %w", domain.ErrMetadataFetch, err)
	}

	g.logger.Println("Completed fetching repository metadata.")
	return &domain.Repository{
		Owner:       typed.GetOwner().GetLogin(),
		Name:        typed.GetName(),
		Description: typed.Description,
		AvatarURL:   typed.GetOwner().GetAvatarURL(),
		Attributes:  domain.AttributesFromJSON(raw),
	}, nil
}

func classifyRESTError(err error) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse
	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return fmt.Errorf("%w: %w: %w", domain.ErrMetadataFetch, domain.ErrRateLimited, err)
	case errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w: %w", domain.ErrMetadataFetch, domain.ErrRepositoryNotFound, err)
	default:
		return fmt.Errorf("%w: failed to get repository with REST API: %w", domain.ErrMetadataFetch, err)
	}
}
