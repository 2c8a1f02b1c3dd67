package prompt

import (
	"fmt"

	"github.com/bitrise-io/docs-ai-assistant/common"
)

func GetSystemPrompt(settings common.Settings) string {
	basePrompt := getTone(settings) + `
- Write clear, concise product documentation: epics, user stories, use cases, functional requirements and knowledge-base articles.
- Keep the author's voice and terminology unless asked otherwise.
- Never invent requirements, numbers or names that are not implied by the document.
- Return plain markdown, the full document only.`
	if settings.Language != "" && settings.Language != "en-US" {
		basePrompt += fmt.Sprintf("\n- Use %s language.", settings.Language)
	}

	return basePrompt
}

func getTone(settings common.Settings) string {
	if settings.Tone != "" {
		return settings.Tone
	}
	return "You are Doc Bot, an editor assisting product teams with their documentation."
}
