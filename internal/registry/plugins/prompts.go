package plugins

import (
	"fmt"

	"github.com/Strob0t/toolgate/internal/domain/gateway"
	"github.com/Strob0t/toolgate/internal/registry"
)

func init() {
	registry.RegisterPrompt("prompt.review_pr", newReviewPR)
	registry.RegisterPrompt("prompt.tool_usage", newToolUsage)
}

const reviewPRTemplate = `You are a senior software engineer performing a code review.

## Diff to review:
` + "```%s\n%s\n```" + `

## Instructions:
1. Identify bugs, security issues, and performance problems.
2. Check for adherence to coding standards and best practices.
3. Suggest concrete improvements with code examples where appropriate.
4. Note any missing error handling or edge cases.
5. Comment on code readability and maintainability.

Provide your review as a structured list of findings, each with:
- **Severity**: critical / warning / suggestion
- **Location**: file and line if identifiable
- **Issue**: description
- **Fix**: recommended change
`

type reviewPRPrompt struct {
	manifest gateway.PluginManifest
}

func newReviewPR(_ registry.Dependencies) (registry.PromptPlugin, error) {
	return &reviewPRPrompt{
		manifest: gateway.NewManifest("prompt.review_pr", "Review PR", "Code review prompt: provide a diff and language to get structured feedback."),
	}, nil
}

func (p *reviewPRPrompt) Manifest() gateway.PluginManifest { return p.manifest }
func (p *reviewPRPrompt) PromptName() string               { return "review_pr" }

func (p *reviewPRPrompt) Arguments() []registry.PromptArgument {
	return []registry.PromptArgument{
		{Name: "diff", Description: "The code diff to review", Required: true},
		{Name: "language", Description: "Programming language (e.g. python, typescript)", Required: false},
	}
}

func (p *reviewPRPrompt) Render(args map[string]string) (string, error) {
	return fmt.Sprintf(reviewPRTemplate, args["language"], args["diff"]), nil
}

const toolUsageTemplate = `## Safe Tool Usage Guidelines

You are using tools provided by an MCP server with security policies enforced per-agent.

### General Rules:
1. **Least privilege**: Only call tools you need. Don't explore tools outside your task scope.
2. **Input validation**: Always validate and sanitize inputs before passing to tools.
3. **Error handling**: Handle tool errors gracefully — do not retry failed calls in a tight loop.
4. **Rate awareness**: Be mindful of rate limits. Batch operations when possible.

### LLM Query (%s) Guidelines:
1. Keep prompts concise. Avoid pasting entire repositories or large codebases.
2. Use the appropriate model for the task (smaller models for simple tasks).
3. Set %s to the minimum needed — it affects budget consumption.
4. Never include secrets, API keys, or credentials in prompts.

### Network-Aware Tools:
1. Only configured egress hosts are reachable — check your %s resource.
2. Timeouts are enforced per-agent. Long-running queries may be terminated.

### Budget Awareness:
1. LLM usage is tracked per-agent with daily cost limits.
2. Check %s to see your daily cost limit.
3. Prefer cheaper models when the task doesn't require advanced reasoning.

%s`

type toolUsagePrompt struct {
	manifest gateway.PluginManifest
}

func newToolUsage(_ registry.Dependencies) (registry.PromptPlugin, error) {
	return &toolUsagePrompt{
		manifest: gateway.NewManifest("prompt.tool_usage", "Tool Usage", "Guidelines for safe and efficient tool usage on this MCP server."),
	}, nil
}

func (p *toolUsagePrompt) Manifest() gateway.PluginManifest { return p.manifest }
func (p *toolUsagePrompt) PromptName() string               { return "tool_usage" }

func (p *toolUsagePrompt) Arguments() []registry.PromptArgument {
	return []registry.PromptArgument{
		{Name: "context", Description: "Additional context or task-specific notes", Required: false},
	}
}

func (p *toolUsagePrompt) Render(args map[string]string) (string, error) {
	return fmt.Sprintf(toolUsageTemplate, "`llm.query`", "`max_tokens`", "`about://policies`", "`about://policies`", args["context"]), nil
}
