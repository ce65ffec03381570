// Package generate runs LLM generation tasks: each task sends a prompt and
// project context to a provider and writes the code block it returns.
package generate

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultPause is the delay between provider calls.
const DefaultPause = time.Second

// TaskFile is the YAML document read by `yega tasks`.
type TaskFile struct {
	// System replaces the default system prompt.
	System string `yaml:"system,omitempty"`
	// Brief is a context document path relative to the backend directory.
	Brief     string `yaml:"brief,omitempty"`
	Pause     string `yaml:"pause,omitempty"`
	MaxTokens int    `yaml:"max-tokens,omitempty"`
	Tasks     []Task `yaml:"tasks"`
}

// Task is one file to generate.
type Task struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Prompt      string `yaml:"prompt"`
	// Output is relative to the backend directory.
	Output string `yaml:"output"`
	// Language selects the fenced block to extract, default javascript.
	Language string `yaml:"language,omitempty"`
	// Context lists files or directories, relative to the backend directory,
	// whose .js and .ts sources are sent with the prompt.
	Context []string `yaml:"context,omitempty"`
}

// Label is the name shown in logs.
func (t Task) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Output
}

// LoadTaskFile reads and validates a task file.
func LoadTaskFile(fs afero.Fs, path string) (*TaskFile, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}
	var tf TaskFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing task file: %w", err)
	}
	if len(tf.Tasks) == 0 {
		return nil, fmt.Errorf("task file %s has no tasks", path)
	}
	for i, t := range tf.Tasks {
		if t.Prompt == "" || t.Output == "" {
			return nil, fmt.Errorf("task %d (%s): prompt and output are required", i, t.Label())
		}
	}
	if _, err := tf.PauseDuration(); err != nil {
		return nil, err
	}
	return &tf, nil
}

// PauseDuration parses Pause, defaulting to DefaultPause.
func (tf *TaskFile) PauseDuration() (time.Duration, error) {
	if tf.Pause == "" {
		return DefaultPause, nil
	}
	d, err := time.ParseDuration(tf.Pause)
	if err != nil {
		return 0, fmt.Errorf("parsing pause %q: %w", tf.Pause, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("pause %q is negative", tf.Pause)
	}
	return d, nil
}
