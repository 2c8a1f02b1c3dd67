package document

import "net/http"

// OptionType defines the type of option for remote stores
type OptionType string

// Available option types
const (
	APITokenOption   OptionType = "api_token"
	TimeoutOption    OptionType = "timeout"
	BaseURLOption    OptionType = "base_url"
	OwnerOption      OptionType = "owner"
	RepoOption       OptionType = "repo"
	BranchOption     OptionType = "branch"
	PathOption       OptionType = "path"
	HTTPClientOption OptionType = "http_client"
)

// Option represents a generic configuration option for a remote store
type Option struct {
	Type  OptionType
	Value any
}

// WithAPIToken creates an option to set the API token
func WithAPIToken(token string) Option {
	return Option{
		Type:  APITokenOption,
		Value: token,
	}
}

// WithTimeout creates an option to set the API timeout in seconds
func WithTimeout(timeout int) Option {
	return Option{
		Type:  TimeoutOption,
		Value: timeout,
	}
}

// WithBaseURL creates an option to set the base URL for GitHub Enterprise
func WithBaseURL(baseURL string) Option {
	return Option{
		Type:  BaseURLOption,
		Value: baseURL,
	}
}

// WithOwner sets the owner of the repository holding the entity files
func WithOwner(owner string) Option {
	return Option{
		Type:  OwnerOption,
		Value: owner,
	}
}

// WithRepo sets the name of the repository holding the entity files
func WithRepo(repo string) Option {
	return Option{
		Type:  RepoOption,
		Value: repo,
	}
}

// WithBranch sets the branch entity files are read from and committed to
func WithBranch(branch string) Option {
	return Option{
		Type:  BranchOption,
		Value: branch,
	}
}

// WithPath sets the directory of entity files inside the repository
func WithPath(path string) Option {
	return Option{
		Type:  PathOption,
		Value: path,
	}
}

// WithHTTPClient sets the transport underneath the OAuth2 client
func WithHTTPClient(client *http.Client) Option {
	return Option{
		Type:  HTTPClientOption,
		Value: client,
	}
}
