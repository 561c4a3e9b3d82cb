package generator

import "strings"

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System string
	User   string
	// Domains the user message asks descriptions for, in prompt order.
	Domains []string
}

const descriptionInstruction = "Generate one concise SEO description (1-2 sentences) for each domain below. Return as JSON key-value pairs: "

// BuildDescriptionPrompt asks for one description per domain as a flat
// JSON object keyed by domain.
func BuildDescriptionPrompt(domains []string) Prompt {
	return Prompt{
		User:    descriptionInstruction + strings.Join(domains, ", "),
		Domains: domains,
	}
}
