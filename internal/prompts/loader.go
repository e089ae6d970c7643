// Package prompts holds the embedded language-model prompts. Each JSON file maps
// a key to a text/template; placeholders look like {{.Style}}.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/template"
)

//go:embed *.json
var promptFiles embed.FS

// FeedbackFile holds the writing-feedback prompts.
const FeedbackFile = "feedback.json"

// Keys of FeedbackFile.
const (
	KeySystem   = "system"
	KeyAnalyze  = "analyze-document"
	stylePrefix = "style-"
)

type promptSet struct {
	raw       map[string]string
	templates map[string]*template.Template
}

var (
	mu    sync.Mutex
	cache = map[string]*promptSet{}
)

func load(filename string) (*promptSet, error) {
	mu.Lock()
	defer mu.Unlock()
	if set, ok := cache[filename]; ok {
		return set, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	set := &promptSet{templates: map[string]*template.Template{}}
	if err := json.Unmarshal(data, &set.raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}
	for key, text := range set.raw {
		tmpl, err := template.New(key).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("prompt %s/%s: %w", filename, key, err)
		}
		set.templates[key] = tmpl
	}

	cache[filename] = set
	return set, nil
}

// Get returns the unrendered text of a prompt.
func Get(filename, key string) (string, error) {
	set, err := load(filename)
	if err != nil {
		return "", err
	}
	text, ok := set.raw[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return text, nil
}

// Render fills a prompt's placeholders from data. A placeholder without a value
// is an error.
func Render(filename, key string, data map[string]string) (string, error) {
	set, err := load(filename)
	if err != nil {
		return "", err
	}
	tmpl, ok := set.templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("prompt %s/%s: %w", filename, key, err)
	}
	return b.String(), nil
}

// StyleGuidance returns the editing guidance for a writing style name.
func StyleGuidance(style string) (string, error) {
	return Get(FeedbackFile, stylePrefix+strings.ToLower(strings.TrimSpace(style)))
}

// Keys lists the prompt keys of a file, sorted.
func Keys(filename string) ([]string, error) {
	set, err := load(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(set.raw))
	for k := range set.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// ClearCache drops parsed prompt files.
func ClearCache() {
	mu.Lock()
	cache = map[string]*promptSet{}
	mu.Unlock()
}
