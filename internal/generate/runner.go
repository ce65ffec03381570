package generate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/yega/scaffold/internal/cache"
	"github.com/yega/scaffold/internal/provider"
)

// sourceExts are the files included when a task's context names a directory.
var sourceExts = map[string]bool{".js": true, ".ts": true}

// Runner executes tasks one after the other against a single provider.
type Runner struct {
	Provider provider.Provider
	Fs       afero.Fs
	// Dir is the backend directory; task outputs and context paths are
	// relative to it and the lockfile lives in it.
	Dir string
	// System is the system prompt, SystemPrompt when empty.
	System string
	// Brief is appended to the system prompt.
	Brief     string
	Pause     time.Duration
	MaxTokens int
	// Force regenerates outputs the lockfile reports as up to date.
	Force bool
	Now   func() time.Time
}

// Status is the outcome of one task.
type Status int

const (
	Generated Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Generated:
		return "generated"
	case Skipped:
		return "up to date"
	default:
		return "failed"
	}
}

// Result reports one task.
type Result struct {
	Task      string
	Output    string
	Status    Status
	Err       error
	TokensIn  int
	TokensOut int
}

// Summary collects the results of a run in task order.
type Summary struct {
	RunID   string
	Results []Result
}

// Count returns how many tasks ended with s.
func (s *Summary) Count(st Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == st {
			n++
		}
	}
	return n
}

// Err combines the task failures.
func (s *Summary) Err() error {
	var errs []error
	for _, r := range s.Results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Task, r.Err))
		}
	}
	return errors.Join(errs...)
}

// Run executes tasks sequentially, pausing between provider calls. A failed
// task is recorded and the run continues with the next one. Run only returns
// an error when the lockfile cannot be read or written or ctx is done; the
// partial summary is returned either way.
func (r *Runner) Run(ctx context.Context, tasks []Task) (*Summary, error) {
	lock, err := cache.Load(r.Fs, r.Dir)
	if err != nil {
		return nil, err
	}
	sum := &Summary{RunID: cache.NewRunID()}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	system := systemMessage(r.System, r.Brief)

	called := false
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return sum, r.saveLock(lock, err)
		}
		out := filepath.Join(r.Dir, t.Output)
		res := Result{Task: t.Label(), Output: out}

		files, err := r.readContext(t.Context)
		if err != nil {
			res.Status, res.Err = Failed, err
			slog.Error("reading task context", "task", t.Label(), "err", err)
			sum.Results = append(sum.Results, res)
			continue
		}
		user := userMessage(t.Prompt, files)
		hash := cache.HashInput(r.Provider.Name(), system, user, t.Language)
		if !r.Force && lock.IsUpToDate(r.Fs, out, hash) {
			slog.Info("output up to date", "task", t.Label(), "output", out)
			res.Status = Skipped
			sum.Results = append(sum.Results, res)
			continue
		}

		if called && r.Pause > 0 {
			select {
			case <-ctx.Done():
				return sum, r.saveLock(lock, ctx.Err())
			case <-time.After(r.Pause):
			}
		}
		called = true

		slog.Info("generating", "task", t.Label(), "output", out)
		resp, err := r.Provider.Generate(ctx, provider.GenerateRequest{
			SystemPrompt: system,
			UserMessage:  user,
			MaxTokens:    r.MaxTokens,
		})
		if err != nil {
			res.Status, res.Err = Failed, err
			slog.Error("generation failed, continuing with next task", "task", t.Label(), "err", err)
			sum.Results = append(sum.Results, res)
			continue
		}
		code := strings.TrimSpace(ExtractCode(resp.Content, t.Language)) + "\n"
		if err := r.write(out, code); err != nil {
			res.Status, res.Err = Failed, err
			slog.Error("writing output", "task", t.Label(), "err", err)
			sum.Results = append(sum.Results, res)
			continue
		}
		lock.Record(out, hash, code, resp.Model, sum.RunID, now())
		res.Status = Generated
		res.TokensIn, res.TokensOut = resp.TokensIn, resp.TokensOut
		slog.Debug("tokens", "task", t.Label(), "in", resp.TokensIn, "out", resp.TokensOut)
		sum.Results = append(sum.Results, res)
	}
	return sum, r.saveLock(lock, nil)
}

func (r *Runner) saveLock(lock *cache.LockFile, cause error) error {
	if err := lock.Save(r.Fs, r.Dir); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (r *Runner) write(path, content string) error {
	if err := r.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(r.Fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// readContext renders the named files, and the sources under the named
// directories, as fenced blocks. Missing paths are skipped.
func (r *Runner) readContext(paths []string) (string, error) {
	var b strings.Builder
	add := func(path string) error {
		data, err := afero.ReadFile(r.Fs, path)
		if err != nil {
			return fmt.Errorf("reading context %s: %w", path, err)
		}
		rel, err := filepath.Rel(r.Dir, path)
		if err != nil {
			rel = path
		}
		fmt.Fprintf(&b, "\nArchivo: %s\n```js\n%s\n```\n", rel, strings.TrimRight(string(data), "\n"))
		return nil
	}
	for _, p := range paths {
		full := filepath.Join(r.Dir, p)
		fi, err := r.Fs.Stat(full)
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("context path not found", "path", full)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("reading context %s: %w", full, err)
		}
		if !fi.IsDir() {
			if err := add(full); err != nil {
				return "", err
			}
			continue
		}
		err = afero.Walk(r.Fs, full, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || !sourceExts[filepath.Ext(path)] {
				return nil
			}
			return add(path)
		})
		if err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
