package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yega/scaffold/internal/config"
)

// app carries the state shared by every command.
type app struct {
	fs  afero.Fs
	v   *viper.Viper
	out io.Writer
	// store opens the provider settings file.
	store func() (*config.Store, error)
	// provider flags; empty values fall through to the other sources.
	providerFlags config.Config
}

func newApp() *app {
	return &app{
		fs:    afero.NewOsFs(),
		v:     viper.New(),
		out:   os.Stdout,
		store: config.DefaultStore,
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yega",
		Short: "Scaffold Express/Mongoose endpoints for the YEGA backend",
		Long: `yega generates the model, controller and route modules of a REST endpoint
and registers the routes in server.js.

Global flags can also be set through environment variables prefixed with
"YEGA_", e.g. YEGA_BACKEND_DIR=../backend. Flags take precedence.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	cmd.SetOut(a.out)

	pf := cmd.PersistentFlags()
	pf.String("backend-dir", "./backend", "backend directory containing server.js")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("env-file", "", "load environment variables from this file (default .env when present)")
	pf.StringVar(&a.providerFlags.Provider, "provider", "", "LLM provider: anthropic, openai or blackbox")
	pf.StringVar(&a.providerFlags.Model, "model", "", "LLM model")
	pf.StringVar(&a.providerFlags.APIKey, "api-key", "", "LLM API key")
	pf.StringVar(&a.providerFlags.BaseURL, "base-url", "", "LLM API base URL")

	for _, name := range []string{"backend-dir", "log-level", "env-file"} {
		_ = a.v.BindPFlag(name, pf.Lookup(name))
	}
	a.v.SetEnvPrefix(strings.TrimSuffix(config.EnvPrefix, "_"))
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	cmd.AddCommand(
		a.endpointCmd(),
		a.tasksCmd(),
		a.configCmd(),
		a.examplesCmd(),
		a.briefCmd(),
	)
	return cmd
}

// setup loads the env file and installs the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if path := a.v.GetString("env-file"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return initLogging(a.v.GetString("log-level"))
}

func (a *app) backendDir() string { return a.v.GetString("backend-dir") }
