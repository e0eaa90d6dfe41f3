package identity

import (
	"context"
	"net/url"
	"strings"

	"github.com/maxbolgarin/docmeta/internal/model"
	"github.com/maxbolgarin/docmeta/internal/model/interfaces"
	"github.com/maxbolgarin/errm"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

var _ interfaces.UserDirectory = (*GitLabDirectory)(nil)

const gitlabBaseURL = "https://gitlab.com"

// GitLabDirectory finds users through the GitLab users API.
// Searching by email requires a token on most instances.
type GitLabDirectory struct {
	client *gitlab.Client
	host   string
}

func NewGitLabDirectory(cfg Config) (*GitLabDirectory, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = gitlabBaseURL
	}

	client, err := gitlab.NewClient(cfg.Token, gitlab.WithBaseURL(baseURL))
	if err != nil {
		return nil, errm.Wrap(err, "failed to create GitLab client")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errm.Wrap(err, "failed to parse base url")
	}

	return &GitLabDirectory{client: client, host: u.Host}, nil
}

func (d *GitLabDirectory) FindByEmail(ctx context.Context, email string) (*model.DirectoryUser, error) {
	search := email
	opts := &gitlab.ListUsersOptions{
		ListOptions: gitlab.ListOptions{PerPage: 1},
		Search:      &search,
	}

	users, _, err := d.client.Users.ListUsers(opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, errm.Wrap(err, "failed to list users")
	}
	if len(users) == 0 {
		return nil, nil
	}

	user := users[0]
	profile := user.WebURL
	if profile == "" {
		profile = ProfileURL(d.host, user.Username)
	}
	return &model.DirectoryUser{
		Username:   user.Username,
		AvatarURL:  user.AvatarURL,
		ProfileURL: strings.TrimSuffix(profile, "/"),
	}, nil
}

func (d *GitLabDirectory) Host() string {
	return d.host
}
