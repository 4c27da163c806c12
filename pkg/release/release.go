// Package release resolves Task versions against the go-task/task GitHub
// releases and builds download URLs for its assets.
package release

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/pkg/errors"

	"github.com/go-task/setup-task/pkg/platform"
)

const (
	// Owner and Repo locate the upstream project on GitHub.
	Owner = "go-task"
	Repo  = "task"

	// ToolName is the identity used for tool-cache keys and the installed
	// binary name.
	ToolName = "task"
)

// Base URLs are variables so they can be overridden in tests.
var (
	downloadBaseURL  = "https://github.com"
	githubAPIBaseURL = ""
)

// Registry looks up the most recently published release tag of the upstream
// project.
type Registry interface {
	LatestTag(ctx context.Context) (string, error)
}

// GitHubRegistry implements Registry against the GitHub releases API.
type GitHubRegistry struct {
	client *github.Client
}

// NewGitHubRegistry creates a registry client. The token is optional; when
// set it is used to authenticate the release lookup.
func NewGitHubRegistry(token string) *GitHubRegistry {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if githubAPIBaseURL != "" {
		if u, err := url.Parse(githubAPIBaseURL + "/"); err == nil {
			client.BaseURL = u
		}
	}
	return &GitHubRegistry{client: client}
}

// LatestTag returns the tag name of the latest go-task/task release.
func (r *GitHubRegistry) LatestTag(ctx context.Context) (string, error) {
	rel, _, err := r.client.Repositories.GetLatestRelease(ctx, Owner, Repo)
	if err != nil {
		return "", errors.Wrapf(err, "failed to fetch latest release of %s/%s", Owner, Repo)
	}
	if rel.GetTagName() == "" {
		return "", fmt.Errorf("no tag_name on latest release of %s/%s", Owner, Repo)
	}
	return rel.GetTagName(), nil
}

// Resolve normalizes the requested version. The literal "latest"
// (case-insensitive) is resolved through the registry; anything else is
// returned as-is with one leading "v" stripped. No shape validation is
// performed beyond that: a malformed version surfaces later as a download
// 404.
func Resolve(ctx context.Context, reg Registry, requested string) (string, error) {
	if strings.EqualFold(requested, "latest") {
		tag, err := reg.LatestTag(ctx)
		if err != nil {
			return "", errors.Wrap(err, "failed to resolve latest version")
		}
		return strings.TrimPrefix(tag, "v"), nil
	}
	return strings.TrimPrefix(requested, "v"), nil
}

// DownloadURL builds the release asset URL for a resolved version and
// platform. Pure string construction; whether the asset exists is only
// discovered at download time.
func DownloadURL(version string, p platform.Platform) string {
	return fmt.Sprintf("%s/%s/%s/releases/download/v%s/task_%s_%s.%s",
		downloadBaseURL, Owner, Repo, version, p.OS, p.Arch, p.Ext)
}
