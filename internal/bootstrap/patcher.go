package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
)

// Result describes one Patch call. When Updated is false and Manual is set,
// the caller should show Manual to the user.
type Result struct {
	Path    string
	Updated bool
	Backup  string
	Outcome Outcome
	Manual  string
	Err     error
}

// Patcher edits an entry file in place. Calls on the same path must not run
// concurrently.
type Patcher struct {
	Fs afero.Fs
}

// Patch registers plan in the file at path. It never fails: a missing file,
// an unplaceable statement or an I/O error leave the file as it was and
// yield manual instructions instead.
func (p *Patcher) Patch(path string, plan Plan) Result {
	res := Result{Path: path}
	manual := func(err error) Result {
		res.Err = err
		res.Manual = plan.Manual(filepath.Base(path))
		return res
	}

	data, err := afero.ReadFile(p.Fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("bootstrap file not found", "path", path)
		return manual(nil)
	}
	if err != nil {
		slog.Error("reading bootstrap file", "path", path, "err", err)
		return manual(fmt.Errorf("reading %s: %w", path, err))
	}

	content, out := Apply(string(data), plan)
	res.Outcome = out
	if !out.Complete() {
		slog.Warn("no registration or anchor line found", "path", path, "import", out.Import, "mount", out.Mount)
		return manual(nil)
	}
	if !out.Changed() {
		slog.Debug("bootstrap file already registers route", "path", path)
		return res
	}

	backup := path + ".backup"
	if err := afero.WriteFile(p.Fs, backup, data, 0o644); err != nil {
		slog.Error("writing backup", "path", backup, "err", err)
		return manual(fmt.Errorf("writing backup: %w", err))
	}
	if err := p.replace(path, []byte(content)); err != nil {
		slog.Error("updating bootstrap file", "path", path, "err", err)
		return manual(err)
	}
	res.Updated = true
	res.Backup = backup
	return res
}

// replace writes data next to path and renames it over the original.
func (p *Patcher) replace(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if fi, err := p.Fs.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	tmp, err := afero.TempFile(p.Fs, filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		p.Fs.Remove(name)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		p.Fs.Remove(name)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := p.Fs.Chmod(name, mode); err != nil {
		p.Fs.Remove(name)
		return fmt.Errorf("setting mode: %w", err)
	}
	if err := p.Fs.Rename(name, path); err != nil {
		p.Fs.Remove(name)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
