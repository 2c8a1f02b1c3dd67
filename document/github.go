package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/bitrise-io/docs-ai-assistant/logger"
	"github.com/google/go-github/v48/github"
	"golang.org/x/oauth2"
)

// GitHubStore keeps each entity as a JSON file in a GitHub repository.
// Every create and patch is a commit on the configured branch.
type GitHubStore struct {
	client     *github.Client
	apiToken   string
	timeout    int
	baseURL    string
	owner      string
	repo       string
	branch     string
	dir        string
	httpClient *http.Client
	now        func() time.Time
}

// NewGitHubStore creates a new GitHub backed store
func NewGitHubStore(opts ...Option) (*GitHubStore, error) {
	gh := &GitHubStore{
		timeout: 60, // Default timeout
		branch:  "main",
		dir:     "docs",
		now:     time.Now,
	}

	// Apply options
	for _, opt := range opts {
		switch opt.Type {
		case APITokenOption:
			if token, ok := opt.Value.(string); ok {
				gh.apiToken = token
			}
		case TimeoutOption:
			if timeout, ok := opt.Value.(int); ok && timeout > 0 {
				gh.timeout = timeout
			}
		case BaseURLOption:
			if baseURL, ok := opt.Value.(string); ok {
				gh.baseURL = baseURL
			}
		case OwnerOption:
			if owner, ok := opt.Value.(string); ok {
				gh.owner = owner
			}
		case RepoOption:
			if repo, ok := opt.Value.(string); ok {
				gh.repo = repo
			}
		case BranchOption:
			if branch, ok := opt.Value.(string); ok && branch != "" {
				gh.branch = branch
			}
		case PathOption:
			if dir, ok := opt.Value.(string); ok {
				gh.dir = strings.Trim(dir, "/")
			}
		case HTTPClientOption:
			if client, ok := opt.Value.(*http.Client); ok {
				gh.httpClient = client
			}
		}
	}

	// Validate required options
	if gh.apiToken == "" {
		return nil, fmt.Errorf("API token is required for GitHub")
	}
	if gh.owner == "" || gh.repo == "" {
		return nil, fmt.Errorf("repository owner and name are required for GitHub")
	}

	// Create GitHub client
	ctx := context.Background()
	if gh.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, gh.httpClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: gh.apiToken})
	tc := oauth2.NewClient(ctx, ts)
	gh.client = github.NewClient(tc)

	if gh.baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(gh.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL: %w", err)
		}
		gh.client.BaseURL = u
	}

	return gh, nil
}

func (gh *GitHubStore) filePath(id string) string {
	return path.Join(gh.dir, id+".json")
}

func (gh *GitHubStore) getFile(ctx context.Context, id string) (Entity, string, error) {
	// IDs become file names, never paths.
	if id == "" || strings.ContainsAny(id, "/\\") || strings.HasPrefix(id, ".") {
		return Entity{}, "", ErrNotFound
	}

	file, _, resp, err := gh.client.Repositories.GetContents(
		ctx,
		gh.owner,
		gh.repo,
		gh.filePath(id),
		&github.RepositoryContentGetOptions{Ref: gh.branch},
	)
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return Entity{}, "", ErrNotFound
	}
	if err != nil {
		return Entity{}, "", fmt.Errorf("failed to get entity file: %w", err)
	}
	if file == nil {
		return Entity{}, "", fmt.Errorf("entity path %s is a directory", gh.filePath(id))
	}

	content, err := file.GetContent()
	if err != nil {
		return Entity{}, "", fmt.Errorf("failed to decode entity file: %w", err)
	}

	var e Entity
	if err := json.Unmarshal([]byte(content), &e); err != nil {
		return Entity{}, "", fmt.Errorf("failed to parse entity file: %w", err)
	}
	return e, file.GetSHA(), nil
}

func (gh *GitHubStore) Get(ctx context.Context, id string) (Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(gh.timeout)*time.Second)
	defer cancel()

	e, _, err := gh.getFile(ctx, id)
	return e, err
}

func (gh *GitHubStore) Create(ctx context.Context, kind Kind, fields FieldSet) (Entity, error) {
	e, err := NewEntity(kind, fields, gh.now())
	if err != nil {
		return Entity{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(gh.timeout)*time.Second)
	defer cancel()

	data, err := encodeEntity(e)
	if err != nil {
		return Entity{}, err
	}

	_, _, err = gh.client.Repositories.CreateFile(
		ctx,
		gh.owner,
		gh.repo,
		gh.filePath(e.ID),
		&github.RepositoryContentFileOptions{
			Message: github.String(fmt.Sprintf("docs: create %s %s", e.Kind, e.ID)),
			Content: data,
			Branch:  github.String(gh.branch),
		},
	)
	if err != nil {
		return Entity{}, fmt.Errorf("failed to commit new entity: %w", err)
	}

	logger.Debugf("Created %s %s in %s/%s", e.Kind, e.ID, gh.owner, gh.repo)
	return e, nil
}

func (gh *GitHubStore) Patch(ctx context.Context, id string, fields FieldSet) (Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(gh.timeout)*time.Second)
	defer cancel()

	current, sha, err := gh.getFile(ctx, id)
	if err != nil {
		return Entity{}, err
	}

	patched, err := ApplyPatch(current, fields, gh.now())
	if err != nil {
		return Entity{}, err
	}

	data, err := encodeEntity(patched)
	if err != nil {
		return Entity{}, err
	}

	_, resp, err := gh.client.Repositories.UpdateFile(
		ctx,
		gh.owner,
		gh.repo,
		gh.filePath(id),
		&github.RepositoryContentFileOptions{
			Message: github.String(fmt.Sprintf("docs: update %s %s", patched.Kind, id)),
			Content: data,
			SHA:     github.String(sha),
			Branch:  github.String(gh.branch),
		},
	)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return Entity{}, fmt.Errorf("entity %s changed concurrently: %w", id, err)
		}
		return Entity{}, fmt.Errorf("failed to commit entity update: %w", err)
	}

	return patched, nil
}

func encodeEntity(e Entity) ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode entity: %w", err)
	}
	return append(data, '\n'), nil
}

// IsNotFound reports whether err means the entity does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
