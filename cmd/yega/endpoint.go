package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/yega/scaffold/internal/bootstrap"
	"github.com/yega/scaffold/internal/endpoint"
	"github.com/yega/scaffold/internal/generate"
	"github.com/yega/scaffold/internal/naming"
	"github.com/yega/scaffold/internal/scaffold"
)

type endpointOpts struct {
	example   string
	file      string
	ai        bool
	watch     bool
	changelog bool
}

func (a *app) endpointCmd() *cobra.Command {
	var o endpointOpts
	cmd := &cobra.Command{
		Use:   "endpoint [name]",
		Short: "Generate the model, controller and routes of an endpoint",
		Long: `Generate the model, controller and routes of an endpoint and register the
routes in server.js.

The endpoint comes from --file (YAML), --example (a built-in configuration) or,
when only a name is given, a basic CRUD configuration. A name given together
with --file or --example renames the configuration.

When server.js cannot be patched the two registration lines are printed for
manual insertion and the command still exits 0. It exits 1 when the
configuration is invalid or a module could not be generated or written.`,
		Example: `  yega endpoint producto
  yega endpoint --example categoria
  yega endpoint --file cupon.yaml --watch
  yega endpoint --example promocion --ai`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.file != "" && o.example != "" {
				return errors.New("--file and --example are mutually exclusive")
			}
			if o.watch && o.file == "" {
				return errors.New("--watch requires --file")
			}
			if len(args) == 0 && o.file == "" && o.example == "" {
				return errors.New("an endpoint name, --file or --example is required")
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			if err := a.runEndpoint(cmd.Context(), &o, name); err != nil {
				return err
			}
			if o.watch {
				return a.watchEndpoint(cmd.Context(), &o, name)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.example, "example", "", "use a built-in configuration (see `yega examples`)")
	f.StringVarP(&o.file, "file", "f", "", "read the endpoint configuration from a YAML file")
	f.BoolVar(&o.ai, "ai", false, "generate the modules with the configured LLM provider")
	f.BoolVarP(&o.watch, "watch", "w", false, "regenerate whenever the --file configuration changes")
	f.BoolVar(&o.changelog, "changelog", false, "prepend an entry to CHANGELOG.md in the backend directory")
	return cmd
}

func (a *app) loadEndpoint(o *endpointOpts, name string) (*endpoint.Config, error) {
	var cfg *endpoint.Config
	var err error
	switch {
	case o.file != "":
		cfg, err = endpoint.Load(a.fs, o.file)
	case o.example != "":
		cfg, err = endpoint.Preset(o.example)
	default:
		cfg = endpoint.Basic(name)
	}
	if err != nil {
		return nil, err
	}
	if name != "" {
		cfg.Name = name
	}
	return cfg, nil
}

func (a *app) runEndpoint(ctx context.Context, o *endpointOpts, name string) error {
	cfg, err := a.loadEndpoint(o, name)
	if err != nil {
		return err
	}
	if o.ai {
		return a.runEndpointAI(ctx, cfg)
	}
	g := &scaffold.Generator{Fs: a.fs, BackendDir: a.backendDir(), Changelog: o.changelog}
	rep, err := g.Generate(cfg)
	if err != nil {
		return err
	}
	rep.Write(a.out)
	warnManual(rep.Bootstrap)
	return rep.Err()
}

// warnManual logs why server.js could not be patched. The manual steps are
// already in the report, so the run still succeeds.
func warnManual(res bootstrap.Result) {
	if res.Err != nil {
		slog.Warn("server.js left unchanged, register the routes manually", "path", res.Path, "err", res.Err)
	}
}

// runEndpointAI asks the provider for the three modules, then registers the
// routes the same way the template scaffold does.
func (a *app) runEndpointAI(ctx context.Context, cfg *endpoint.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	names := naming.New(cfg.Name)
	r, err := a.runner("")
	if err != nil {
		return err
	}
	sum, err := r.Run(ctx, generate.EndpointTasks(cfg, names))
	if sum != nil {
		writeSummary(a.out, sum)
	}
	if err != nil {
		return err
	}
	if sum.Count(generate.Failed) > 0 {
		return sum.Err()
	}
	p := &bootstrap.Patcher{Fs: a.fs}
	res := p.Patch(filepath.Join(a.backendDir(), scaffold.ServerFile), bootstrap.PlanFor(names, cfg.Auth))
	switch {
	case res.Manual != "":
		fmt.Fprint(a.out, res.Manual)
	case res.Updated:
		fmt.Fprintf(a.out, "Registered in %s (backup: %s)\n", res.Path, res.Backup)
	}
	warnManual(res)
	return nil
}

// watchEndpoint regenerates on every change to the configuration file until
// ctx is done. The directory is watched because editors often replace files
// instead of writing them in place.
func (a *app) watchEndpoint(ctx context.Context, o *endpointOpts, name string) error {
	path, err := filepath.Abs(o.file)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	slog.Info("watching endpoint configuration", "file", path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			slog.Info("configuration changed, regenerating", "file", path)
			if err := a.runEndpoint(ctx, o, name); err != nil {
				slog.Error("regeneration failed", "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("error watching configuration", "err", err)
		}
	}
}
