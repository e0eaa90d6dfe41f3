package identity

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/go-github/v57/github"
	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/maxbolgarin/docmeta/internal/model/interfaces"
	"github.com/maxbolgarin/errm"
	"golang.org/x/oauth2"
)

var _ interfaces.UserDirectory = (*GitHubDirectory)(nil)

const (
	githubBaseURL = "https://github.com"
	githubHost    = "github.com"
)

// GitHubDirectory finds users through the GitHub search API
type GitHubDirectory struct {
	client *github.Client
	host   string
}

// NewGitHubDirectory creates a GitHub directory, the token is optional
func NewGitHubDirectory(cfg Config) (*GitHubDirectory, error) {
	var tc *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.Token},
		)
		tc = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(tc)
	host := githubHost

	// GitHub Enterprise
	if cfg.BaseURL != "" && cfg.BaseURL != githubBaseURL {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, errm.Wrap(err, "failed to create GitHub Enterprise client")
		}
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, errm.Wrap(err, "failed to parse base url")
		}
		host = u.Host
	}

	return &GitHubDirectory{client: client, host: host}, nil
}

func (d *GitHubDirectory) FindByEmail(ctx context.Context, email string) (*model.DirectoryUser, error) {
	result, _, err := d.client.Search.Users(ctx, email+" in:email", &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return nil, errm.Wrap(err, "failed to search users")
	}
	if len(result.Users) == 0 {
		return nil, nil
	}

	user := result.Users[0]
	return &model.DirectoryUser{
		Username:   user.GetLogin(),
		AvatarURL:  user.GetAvatarURL(),
		ProfileURL: user.GetHTMLURL(),
	}, nil
}

func (d *GitHubDirectory) Host() string {
	return d.host
}
