package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common lingua workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("translate_text").
		Description("Translate text with the best provider and tone available on the current plan.").
		Argument("text", "Text to translate", true).
		Argument("target_lang", "Target language code, e.g. de or fr", true).
		Argument("tone", "Preferred tone (neutral, formal, casual, academic, business, creative)", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			text := args["text"]
			if text == "" {
				text = "[Please provide the text to translate]"
			}
			target := args["target_lang"]
			if target == "" {
				target = "[target language]"
			}
			tone := args["tone"]
			if tone == "" {
				tone = "neutral"
			}

			return &mcp.PromptResult{
				Description: "Translation Assistant",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Translate the following text into %s with a %s tone:

%s

Before translating:
1. Read the lingua://features resource to see which providers and tones this plan includes
2. If the %s tone is not available, use access.check to confirm and fall back to neutral
3. Use the translate tool with an available provider

Return the translation and mention which provider and tone were used.`, target, tone, text, tone),
						},
					},
				},
			}, nil
		})

	srv.Prompt("plan_review").
		Description("Review the current license, its expiry and what upgrading would unlock.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Plan Review",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Review my lingua plan. Please:

1. Read lingua://trust for the current plan and trust state
2. Read lingua://features and list the providers and tones I cannot use yet
3. If the license expires within a week or is running on the offline grace period, say so clearly

Summarize what I have today and what premium would add, including unlimited history and cloud sync.`,
						},
					},
				},
			}, nil
		})

	srv.Prompt("history_recap").
		Description("Summarize recent translations and their sync state.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "History Recap",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Recap my recent translations using the lingua://history resource.

Group them by language pair, note which provider was used most, and tell me how many are still waiting for cloud sync.
If I am on a premium plan and items are pending, offer to run history.sync.`,
						},
					},
				},
			}, nil
		})

	return nil
}
