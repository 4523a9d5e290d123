package prompt

import (
	"bytes"
	"fmt"
	"text/template"
)

// RenderUserPrompt executes t's user-prompt template against ctx, adapted
// from the teacher's pkg/core/prompt.RenderUserPrompt.
func RenderUserPrompt(t *Template, ctx *ExecutionContext) (string, error) {
	if t.UserPromptTmpl == "" {
		return "", nil
	}
	tmpl, err := template.New(t.ID).Parse(t.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("prompt: parse template %s: %w", t.ID, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx.Variables); err != nil {
		return "", fmt.Errorf("prompt: execute template %s: %w", t.ID, err)
	}
	return buf.String(), nil
}
