package gemini

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

const (
	vocabularyPrompt = "vocabulary.tmpl"
	storyPrompt      = "story.tmpl"
)

type promptData struct {
	Text         string
	MinTargets   int
	MaxTargets   int
	MinQuestions int
	MaxQuestions int
}

func renderPrompt(name string, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %s: %w", name, err)
	}
	return buf.String(), nil
}
