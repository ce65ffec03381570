// Package scaffold writes the model, controller and route modules for an
// endpoint into a backend tree and registers the router in server.js.
package scaffold

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/yega/scaffold/internal/bootstrap"
	"github.com/yega/scaffold/internal/endpoint"
	"github.com/yega/scaffold/internal/naming"
	"github.com/yega/scaffold/internal/synth"
)

// ServerFile is the bootstrap file patched after generation.
const ServerFile = "server.js"

// Generator writes endpoint artifacts under BackendDir.
type Generator struct {
	Fs         afero.Fs
	BackendDir string
	// Changelog prepends an entry to BackendDir/CHANGELOG.md.
	Changelog bool
	// Now is used for changelog dates. Defaults to time.Now.
	Now func() time.Time
}

// Report is the user-visible result of one Generate call.
type Report struct {
	Endpoint  string
	Files     []string
	Routes    []string
	Bootstrap bootstrap.Result
	// Errors holds per-artifact failures. They do not stop the other
	// artifacts from being written.
	Errors []error
}

// Err combines the per-artifact failures.
func (r *Report) Err() error { return errors.Join(r.Errors...) }

// Artifact is one generated file, relative to the backend directory.
type Artifact struct {
	Path    string
	Content string
}

// Artifacts renders the three modules for cfg without touching disk.
func Artifacts(cfg *endpoint.Config, names naming.Set) []Artifact {
	return []Artifact{
		{filepath.Join("models", names.Model()+".js"), synth.Model(cfg, names)},
		{filepath.Join("controllers", names.Controller()+".js"), synth.Controller(cfg, names)},
		{filepath.Join("routes", names.RouteFile()+".js"), synth.Routes(cfg, names)},
	}
}

// Routes lists the exposed routes as "METHOD /api/prefix/path".
func Routes(cfg *endpoint.Config, names naming.Set) []string {
	var out []string
	for _, r := range synth.RouteTable(cfg, names) {
		path := names.APIPrefix()
		if r.Path != "/" {
			path += r.Path
		}
		out = append(out, r.Method+" "+path)
	}
	return out
}

// Generate validates cfg, writes its artifacts and patches server.js. An
// invalid config is the only error returned; nothing is written then.
func (g *Generator) Generate(cfg *endpoint.Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	names := naming.New(cfg.Name)
	rep := &Report{Endpoint: cfg.Name}
	slog.Info("generating endpoint", "name", cfg.Name, "dir", g.BackendDir)

	for _, a := range Artifacts(cfg, names) {
		path := filepath.Join(g.BackendDir, a.Path)
		if err := g.write(path, a.Content); err != nil {
			slog.Error("writing artifact", "path", path, "err", err)
			rep.Errors = append(rep.Errors, err)
			continue
		}
		slog.Debug("wrote artifact", "path", path)
		rep.Files = append(rep.Files, path)
	}
	rep.Routes = Routes(cfg, names)

	p := &bootstrap.Patcher{Fs: g.Fs}
	rep.Bootstrap = p.Patch(filepath.Join(g.BackendDir, ServerFile), bootstrap.PlanFor(names, cfg.Auth))

	if g.Changelog {
		now := time.Now
		if g.Now != nil {
			now = g.Now
		}
		if err := appendChangelog(g.Fs, filepath.Join(g.BackendDir, "CHANGELOG.md"), rep, now()); err != nil {
			rep.Errors = append(rep.Errors, err)
		}
	}
	return rep, nil
}

func (g *Generator) write(path, content string) error {
	if err := g.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(g.Fs, path, []byte(strings.TrimSpace(content)+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Write prints the report for a terminal.
func (r *Report) Write(w io.Writer) {
	fmt.Fprintf(w, "Endpoint %s\n\nFiles:\n", r.Endpoint)
	for _, f := range r.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	fmt.Fprintln(w, "\nRoutes:")
	for _, route := range r.Routes {
		fmt.Fprintf(w, "  %s\n", route)
	}
	fmt.Fprintln(w)
	switch {
	case r.Bootstrap.Manual != "":
		fmt.Fprint(w, r.Bootstrap.Manual)
	case r.Bootstrap.Updated:
		fmt.Fprintf(w, "Registered in %s (backup: %s)\n", r.Bootstrap.Path, r.Bootstrap.Backup)
	default:
		fmt.Fprintf(w, "%s already registers these routes\n", r.Bootstrap.Path)
	}
	for _, err := range r.Errors {
		fmt.Fprintf(w, "error: %v\n", err)
	}
}
