package agents

import (
	"context"
	"embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed prompts
var promptFiles embed.FS

// LoadPrompt loads a prompt template from the embedded markdown files.
func LoadPrompt(path string) (string, error) {
	content, err := promptFiles.ReadFile(fmt.Sprintf("prompts/%s.md", path))
	if err != nil {
		return "", fmt.Errorf("failed to load prompt %s: %w", path, err)
	}
	return string(content), nil
}

// RenderPrompt loads a prompt template and fills its {variable} placeholders.
func RenderPrompt(ctx context.Context, path string, vars map[string]any) (string, error) {
	content, err := LoadPrompt(path)
	if err != nil {
		return "", err
	}
	tpl := prompt.FromMessages(schema.FString, schema.SystemMessage(content))
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", path, err)
	}
	return msgs[0].Content, nil
}
