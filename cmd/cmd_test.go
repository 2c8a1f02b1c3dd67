package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bitrise-io/docs-ai-assistant/common"
	"github.com/bitrise-io/docs-ai-assistant/document"
	"github.com/bitrise-io/docs-ai-assistant/llm"
	"github.com/bitrise-io/docs-ai-assistant/suggestion"
	"github.com/bitrise-io/docs-ai-assistant/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionIsNotEmpty(t *testing.T) {
	if version.Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--log-level", "error"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute())
	assert.Equal(t, "Docs AI Assistant v"+version.Version+"\n", out.String())
}

func TestParseFieldFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.md")
	require.NoError(t, os.WriteFile(path, []byte("1. Open\n2. Pay\n"), 0o600))

	fields, err := parseFieldFlags([]string{"name=Checkout", "main_flow=@" + path, "description=a=b"})
	require.NoError(t, err)
	assert.Equal(t, document.FieldSet{
		document.FieldName:        "Checkout",
		document.FieldMainFlow:    "1. Open\n2. Pay\n",
		document.FieldDescription: "a=b",
	}, fields)

	_, err = parseFieldFlags([]string{"title"})
	assert.Error(t, err)

	_, err = parseFieldFlags([]string{"content=@" + filepath.Join(t.TempDir(), "missing.md")})
	assert.Error(t, err)
}

func TestNewDocumentStore(t *testing.T) {
	ctx := context.Background()

	store, closeFn, err := newDocumentStore(ctx, common.StoreSettings{Driver: common.StoreDriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &document.MemoryStore{}, store)
	assert.NoError(t, closeFn())

	dsn := filepath.Join(t.TempDir(), "docs.db")
	store, closeFn, err = newDocumentStore(ctx, common.StoreSettings{Driver: common.StoreDriverSQLite, DSN: dsn})
	require.NoError(t, err)
	assert.IsType(t, &document.SQLStore{}, store)
	assert.NoError(t, closeFn())

	defaults := common.WithDefaultSettings().Store
	defaults.DSN = filepath.Join(t.TempDir(), "default.db")
	store, closeFn, err = newDocumentStore(ctx, defaults)
	require.NoError(t, err)
	assert.IsType(t, &document.SQLStore{}, store, "one-shot commands must persist by default")
	assert.NoError(t, closeFn())

	store, closeFn, err = newDocumentStore(ctx, common.StoreSettings{DSN: filepath.Join(t.TempDir(), "unset.db")})
	require.NoError(t, err)
	assert.IsType(t, &document.SQLStore{}, store)
	assert.NoError(t, closeFn())

	_, _, err = newDocumentStore(ctx, common.StoreSettings{Driver: common.StoreDriverPostgres})
	assert.Error(t, err)

	_, _, err = newDocumentStore(ctx, common.StoreSettings{Driver: "dynamo"})
	assert.Error(t, err)

	t.Setenv("GITHUB_TOKEN", "")
	_, _, err = newDocumentStore(ctx, common.StoreSettings{Driver: common.StoreDriverGitHub})
	assert.Error(t, err)

	t.Setenv("GITHUB_TOKEN", "token")
	store, _, err = newDocumentStore(ctx, common.StoreSettings{
		Driver: common.StoreDriverGitHub,
		GitHub: common.GitHubStoreSettings{Owner: "acme", Repo: "handbook", Branch: "main", Path: "docs"},
	})
	require.NoError(t, err)
	assert.IsType(t, &document.GitHubStore{}, store)
}

func TestNewLLMClient(t *testing.T) {
	s := common.WithDefaultSettings()

	t.Setenv("LLM_API_KEY", "")
	_, err := newLLMClient(s)
	assert.Error(t, err)

	s.LLM.Provider = llm.ProviderOpenAICompatible
	s.LLM.BaseURL = "http://localhost:11434/v1/"
	s.LLM.Model = "llama3"
	client, err := newLLMClient(s)
	require.NoError(t, err)
	assert.IsType(t, &llm.CompatibleModel{}, client)

	t.Setenv("LLM_API_KEY", "key")
	s.LLM.Provider = llm.ProviderAnthropic
	s.LLM.Model = "claude-3.7-sonnet"
	client, err = newLLMClient(s)
	require.NoError(t, err)
	assert.IsType(t, &llm.AnthropicModel{}, client)
}

type cannedLLM struct {
	answer string
}

func (c cannedLLM) Prompt(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{Content: c.answer}, nil
}

func newSuggestFixture(t *testing.T, answer string) (*document.MemoryStore, *suggestion.Presenter, string) {
	t.Helper()
	store := document.NewMemoryStore()
	e, err := store.Create(context.Background(), document.KindEpic, document.FieldSet{
		document.FieldTitle:       "Billing",
		document.FieldDescription: "Line1\nLine2\nLine3",
	})
	require.NoError(t, err)

	unit := suggestion.Unit{DocumentID: e.ID, Field: document.FieldDescription}
	return store, suggestion.New(unit, cannedLLM{answer: answer}, store, "system"), e.ID
}

func TestRunSuggestAccept(t *testing.T) {
	store, p, id := newSuggestFixture(t, "Line1\nLine2 improved\nLine3")

	var out bytes.Buffer
	err := runSuggest(context.Background(), strings.NewReader("y\n"), &out, store, p, suggestOptions{prompt: "improve"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "+ Line2 improved")
	assert.Contains(t, out.String(), "- Line2")
	assert.Contains(t, out.String(), "Updated description of "+id)

	e, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Line1\nLine2 improved\nLine3", e.Fields[document.FieldDescription])
}

func TestRunSuggestReject(t *testing.T) {
	store, p, id := newSuggestFixture(t, "Line1\nLine2 improved\nLine3")
	before, err := store.Get(context.Background(), id)
	require.NoError(t, err)

	var out bytes.Buffer
	err = runSuggest(context.Background(), strings.NewReader("n\n"), &out, store, p, suggestOptions{prompt: "improve"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Suggestion discarded.")

	after, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, suggestion.StateIdle, p.Snapshot().State)
}

func TestRunSuggestYesSkipsQuestion(t *testing.T) {
	store, p, id := newSuggestFixture(t, "Line1\nLine2\nLine3\nLine4")

	var out bytes.Buffer
	err := runSuggest(context.Background(), strings.NewReader(""), &out, store, p, suggestOptions{prompt: "extend", yes: true})
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "[y/N]")

	e, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Line1\nLine2\nLine3\nLine4", e.Fields[document.FieldDescription])
}

func TestRunSuggestNoChanges(t *testing.T) {
	store, p, _ := newSuggestFixture(t, "Line1\nLine2\nLine3")

	var out bytes.Buffer
	err := runSuggest(context.Background(), strings.NewReader(""), &out, store, p, suggestOptions{prompt: "check"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No changes suggested")
	assert.Equal(t, suggestion.StateIdle, p.Snapshot().State)
}

func TestRunSuggestUnknownField(t *testing.T) {
	store, _, id := newSuggestFixture(t, "x")
	p := suggestion.New(suggestion.Unit{DocumentID: id, Field: document.FieldMainFlow}, cannedLLM{answer: "x"}, store, "")

	err := runSuggest(context.Background(), strings.NewReader(""), &bytes.Buffer{}, store, p, suggestOptions{prompt: "fix"})
	var fieldErr *document.FieldError
	assert.ErrorAs(t, err, &fieldErr)
}
