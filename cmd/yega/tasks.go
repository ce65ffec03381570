package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/yega/scaffold/internal/brief"
	"github.com/yega/scaffold/internal/generate"
	"github.com/yega/scaffold/internal/provider"
)

func (a *app) tasksCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "tasks <file.yaml>",
		Short: "Run a file of LLM generation tasks against the backend",
		Long: `Run each task of a YAML task file in order: send its prompt, with the
backend brief and the requested context files, to the configured provider and
write the returned code block to the task output.

Outputs whose inputs did not change since the last run are skipped unless
--force is given. A failed task is reported and the run continues.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := generate.LoadTaskFile(a.fs, args[0])
			if err != nil {
				return err
			}
			r, err := a.runner(tf.Brief)
			if err != nil {
				return err
			}
			r.Force = force
			r.System = tf.System
			r.MaxTokens = tf.MaxTokens
			if tf.Pause != "" {
				if r.Pause, err = tf.PauseDuration(); err != nil {
					return err
				}
			}
			sum, err := r.Run(cmd.Context(), tf.Tasks)
			if sum != nil {
				writeSummary(a.out, sum)
			}
			if err != nil {
				return err
			}
			return sum.Err()
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "regenerate outputs even when the lockfile reports them up to date")
	return cmd
}

// runner builds a Runner for the backend directory. briefPath is relative to
// the backend directory and defaults to the standard brief file. Provider
// settings declared in the brief override the config file and environment.
func (a *app) runner(briefPath string) (*generate.Runner, error) {
	dir := a.backendDir()
	if briefPath == "" {
		briefPath = brief.FileName
	}
	b, err := brief.Load(a.fs, filepath.Join(dir, briefPath))
	if err != nil {
		return nil, err
	}
	store, err := a.store()
	if err != nil {
		return nil, err
	}
	res, err := store.Resolve(&a.providerFlags, b.Overrides())
	if err != nil {
		return nil, err
	}
	p, err := provider.New(res)
	if err != nil {
		return nil, err
	}
	pause := generate.DefaultPause
	if b.Frontmatter.Pause != "" {
		if pause, err = time.ParseDuration(b.Frontmatter.Pause); err != nil {
			return nil, fmt.Errorf("parsing brief pause: %w", err)
		}
	}
	return &generate.Runner{
		Provider: p,
		Fs:       a.fs,
		Dir:      dir,
		Brief:    b.Context(),
		Pause:    pause,
	}, nil
}

func writeSummary(w io.Writer, sum *generate.Summary) {
	for _, r := range sum.Results {
		line := fmt.Sprintf("  %-10s %s", r.Status, r.Output)
		if r.Err != nil {
			line += ": " + r.Err.Error()
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\n%d generated, %d up to date, %d failed (run %s)\n",
		sum.Count(generate.Generated), sum.Count(generate.Skipped), sum.Count(generate.Failed), sum.RunID)
}
