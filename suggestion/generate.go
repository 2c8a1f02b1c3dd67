package suggestion

import (
	"context"

	"github.com/bitrise-io/docs-ai-assistant/diff"
	"github.com/bitrise-io/docs-ai-assistant/llm"
	"github.com/bitrise-io/docs-ai-assistant/logger"
	"github.com/bitrise-io/docs-ai-assistant/prompt"
)

// Generate runs compose, completion and diff for one request. It holds no state.
//
// Errors are *prompt.InvalidInputError before any provider call, then
// *llm.RateLimitError or *llm.UpstreamError. A diff failure is reported as an
// *llm.UpstreamError wrapping the *diff.ComputationError.
func Generate(ctx context.Context, client llm.LLM, systemPrompt string, req EditRequest) (GenerationResult, error) {
	userPrompt, err := prompt.Compose(req.Prompt, req.SelectedText, req.FullText)
	if err != nil {
		return GenerationResult{}, err
	}

	resp, err := client.Prompt(ctx, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		return GenerationResult{}, err
	}

	res, err := diff.Compute(req.FullText, resp.Content)
	if err != nil {
		logger.Errorf("diff computation failed: %v", err)
		return GenerationResult{}, &llm.UpstreamError{Provider: "diff", Err: err}
	}

	return GenerationResult{
		NewFullText:    resp.Content,
		ChangedPortion: res.ChangedPortion,
		Segments:       res.Segments,
	}, nil
}
