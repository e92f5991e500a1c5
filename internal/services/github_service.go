package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/alimgiray/crewledger/internal/models"
	"github.com/google/go-github/v57/github"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// GitHubProfile is the public part of a worker's GitHub account
type GitHubProfile struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatarUrl"`
	HTMLURL     string `json:"htmlUrl"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	PublicRepos int    `json:"publicRepos"`
	Followers   int    `json:"followers"`
}

type GitHubService struct {
	client *github.Client
	gate   *AccessGate
}

// NewGitHubService builds an API client, authenticated when token is set
func NewGitHubService(token string, gate *AccessGate) *GitHubService {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	return &GitHubService{
		client: github.NewClient(httpClient),
		gate:   gate,
	}
}

var githubLoginPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9]|-[A-Za-z0-9]){0,38}$`)

// ParseGitHubUsername extracts the login from a profile link such as
// https://github.com/octocat, github.com/octocat/ or a bare "octocat"
func ParseGitHubUsername(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", models.MissingField("githubLink")
	}

	candidate := strings.TrimPrefix(link, "@")
	if strings.Contains(link, "/") {
		raw := link
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return "", models.NewValidationError("githubLink", "Invalid GitHub link")
		}
		host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
		if host != "github.com" {
			return "", models.NewValidationError("githubLink", "githubLink is not a github.com profile")
		}
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(segments) != 1 {
			return "", models.NewValidationError("githubLink", "githubLink is not a github.com profile")
		}
		candidate = segments[0]
	}

	if !githubLoginPattern.MatchString(candidate) {
		return "", models.NewValidationError("githubLink", "Invalid GitHub username %q", candidate)
	}
	return candidate, nil
}

// WorkerProfile fetches the public GitHub profile of one of owner's workers
func (s *GitHubService) WorkerProfile(ctx context.Context, workerID string, owner uuid.UUID) (*GitHubProfile, error) {
	worker, err := s.gate.Worker(ctx, workerID, owner)
	if err != nil {
		return nil, err
	}

	login, err := ParseGitHubUsername(worker.GitHubLink)
	if err != nil {
		return nil, err
	}

	user, resp, err := s.client.Users.Get(ctx, login)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, &models.NotFoundError{Entity: "GitHub user " + login}
		}
		return nil, fmt.Errorf("fetch GitHub user %s: %w", login, err)
	}

	return &GitHubProfile{
		Login:       user.GetLogin(),
		Name:        user.GetName(),
		AvatarURL:   user.GetAvatarURL(),
		HTMLURL:     user.GetHTMLURL(),
		Company:     user.GetCompany(),
		Location:    user.GetLocation(),
		PublicRepos: user.GetPublicRepos(),
		Followers:   user.GetFollowers(),
	}, nil
}
