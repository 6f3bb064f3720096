package gateway

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/shurcooL/githubv4"

	"github.com/naka-gawa/github-social-card/internal/domain"
)

// GraphQLGateway fetches repository metadata from the GitHub GraphQL API.
// The GraphQL API rejects anonymous callers, so it needs a token.
type GraphQLGateway struct {
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// repositoryQuery selects the fields a card can show. Attribute names are
// translated to their REST spelling so templates work with either gateway.
type repositoryQuery struct {
	Repository struct {
		Name        string
		Description *string
		Owner       struct {
			Login     string
			AvatarURL string `graphql:"avatarUrl"`
		}
		StargazerCount   int
		ForkCount        int
		Watchers         struct{ TotalCount int }
		Issues           struct{ TotalCount int } `graphql:"issues(states: OPEN)"`
		PrimaryLanguage  *struct{ Name string }
		DefaultBranchRef *struct{ Name string }
		HomepageURL      *string `graphql:"homepageUrl"`
		IsArchived       bool
		IsFork           bool
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGraphQLGateway creates a GraphQL gateway. apiURL points at a GitHub
// Enterprise installation and may be empty for github.com; see graphqlEndpoint.
func NewGraphQLGateway(token, apiURL string, logger *log.Logger) (*GraphQLGateway, error) {
	if token == "" {
		return nil, fmt.Errorf("the GraphQL source requires GITHUB_TOKEN to be set")
	}
	httpClient, err := newHTTPClient(token, logger)
	if err != nil {
		return nil, err
	}
	client := githubv4.NewClient(httpClient)
	if apiURL != "" {
		endpoint, err := graphqlEndpoint(apiURL)
		if err != nil {
			return nil, err
		}
		client = githubv4.NewEnterpriseClient(endpoint, httpClient)
	}
	return &GraphQLGateway{
		graphqlClient: client,
		logger:        logger,
	}, nil
}

// graphqlEndpoint accepts the same --api-url as the REST gateway. A URL that
// already ends in /graphql is used as is; anything else is reduced to its
// host and given the Enterprise GraphQL path /api/graphql.
func graphqlEndpoint(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid API URL %q", apiURL)
	}
	if strings.HasSuffix(strings.TrimSuffix(u.Path, "/"), "/graphql") {
		u.Path = strings.TrimSuffix(u.Path, "/")
		return u.String(), nil
	}
	return u.Scheme + "://" + u.Host + "/api/graphql", nil
}

func (g *GraphQLGateway) FetchRepository(ctx context.Context, owner, repo string) (*domain.Repository, error) {
	g.logger.Printf("Fetching repository %s/%s using GraphQL API...", owner, repo)
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
	}
	var q repositoryQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, classifyGraphQLError(err)
	}

	r := q.Repository
	attrs := domain.Attributes{
		"name":              domain.StringAttribute(r.Name),
		"full_name":         domain.StringAttribute(r.Owner.Login + "/" + r.Name),
		"stargazers_count":  domain.IntAttribute(r.StargazerCount),
		"watchers_count":    domain.IntAttribute(r.StargazerCount),
		"subscribers_count": domain.IntAttribute(r.Watchers.TotalCount),
		"forks_count":       domain.IntAttribute(r.ForkCount),
		"open_issues_count": domain.IntAttribute(r.Issues.TotalCount),
		"archived":          domain.BoolAttribute(r.IsArchived),
		"fork":              domain.BoolAttribute(r.IsFork),
		"description":       optionalString(r.Description),
		"homepage":          optionalString(r.HomepageURL),
		"language":          domain.NullAttribute(),
	}
	if r.PrimaryLanguage != nil {
		attrs["language"] = domain.StringAttribute(r.PrimaryLanguage.Name)
	}
	if r.DefaultBranchRef != nil {
		attrs["default_branch"] = domain.StringAttribute(r.DefaultBranchRef.Name)
	}

	g.logger.Println("Completed fetching repository metadata.")
	return &domain.Repository{
		Owner:       r.Owner.Login,
		Name:        r.Name,
		Description: r.Description,
		AvatarURL:   r.Owner.AvatarURL,
		Attributes:  attrs,
	}, nil
}

func optionalString(s *string) domain.Attribute {
	if s == nil {
		return domain.NullAttribute()
	}
	return domain.StringAttribute(*s)
}

// classifyGraphQLError maps GraphQL failures onto the domain errors. The
// client only exposes messages, so matching is textual.
func classifyGraphQLError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Could not resolve to a Repository"):
		return fmt.Errorf("%w: %w: %w", domain.ErrMetadataFetch, domain.ErrRepositoryNotFound, err)
	case strings.Contains(strings.ToLower(msg), "rate limit"), strings.Contains(msg, "429 Too Many Requests"):
		return fmt.Errorf("%w: %w: %w", domain.ErrMetadataFetch, domain.ErrRateLimited, err)
	default:
		return fmt.Errorf("%w: failed to execute GraphQL query for repository: %w", domain.ErrMetadataFetch, err)
	}
}
