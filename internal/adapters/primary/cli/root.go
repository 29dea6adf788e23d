// Package cli is the command-line entry point: it parses arguments, runs the
// environment checks and dispatches to subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"zzz-cli/internal/adapters/secondary/npm"
	"zzz-cli/internal/config"
	"zzz-cli/internal/core/domain"
	"zzz-cli/internal/core/services"
	"zzz-cli/internal/logger"
	"zzz-cli/internal/privilege"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitEnvironment  = 3
)

// Options overrides process-level inputs. Zero values mean the real
// process: os.Stdout/os.Stderr, config.Load, runtime.Version and a
// privilege.Dropper for the current process.
type Options struct {
	Stdout         io.Writer
	Stderr         io.Writer
	Source         *config.Source
	RuntimeVersion string
	Privileges     services.PrivilegeDropper
}

// app is the state shared between the root command's pre-run and the
// subcommands.
type app struct {
	opts     Options
	cfg      *config.Config
	log      *logger.Logger
	resolver *services.VersionResolver
	updates  *services.UpdateChecker

	debug     bool
	registry  string
	logFormat string
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, opts Options) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	a := &app{opts: opts}
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(opts.Stdout)
	cmd.SetErr(opts.Stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	if a.log != nil {
		a.log.Error(err.Error())
	} else {
		fmt.Fprintf(opts.Stderr, "Error: %v\n", err)
	}
	return exitCodeFromError(err)
}

func exitCodeFromError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, domain.ErrInvalidArgs), errors.Is(err, domain.ErrInvalidVersion):
		return ExitInvalidArgs
	case errors.Is(err, domain.ErrUserHomeNotFound),
		errors.Is(err, domain.ErrRuntimeTooOld),
		errors.Is(err, domain.ErrPrivilegeDrop):
		return ExitEnvironment
	default:
		return ExitGeneralError
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zzz-cli",
		Short: "zzz-cli scaffolding toolkit",
		Long:  "Checks the local environment, keeps itself up to date and dispatches to subcommands.",
		Args:  unknownCommand,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			if err := a.setup(); err != nil {
				return err
			}
			// check-update does its own lookup and reports the result.
			return a.preflight(cmd.Context(), cmd.Name() != "check-update")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", domain.ErrInvalidArgs, err)
	})

	cmd.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&a.registry, "registry", "", "Package registry base URL")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log output format: text or json")

	cmd.AddCommand(a.versionCmd())
	cmd.AddCommand(a.checkUpdateCmd())
	cmd.AddCommand(a.versionsCmd())
	cmd.AddCommand(a.envCmd())

	return cmd
}

// setup resolves configuration, applies flags over it and wires services.
func (a *app) setup() error {
	var (
		cfg *config.Config
		err error
	)
	if a.opts.Source != nil {
		cfg, err = config.LoadFrom(*a.opts.Source)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if a.debug {
		cfg.Logger.Level = "verbose"
	}
	if a.registry != "" {
		cfg.Registry.URL = a.registry
	}
	switch a.logFormat {
	case "":
	case "text", "json":
		cfg.Logger.Format = a.logFormat
	default:
		return fmt.Errorf("%w: log-format must be 'text' or 'json'", domain.ErrInvalidArgs)
	}

	a.cfg = cfg
	a.log = logger.New(cfg.Logger, a.opts.Stderr)

	registry := npm.NewClient(&cfg.Registry, a.log.RunID(), a.log.WithPrefix("registry"))
	a.resolver = services.NewVersionResolver(registry)
	a.updates = services.NewUpdateChecker(a.resolver, cfg.Registry.URL)
	return nil
}

func (a *app) preflight(ctx context.Context, checkUpdate bool) error {
	privileges := a.opts.Privileges
	if privileges == nil {
		privileges = privilege.New(a.log.WithPrefix("privilege"))
	}
	runtimeVersion := a.opts.RuntimeVersion
	if runtimeVersion == "" {
		runtimeVersion = runtime.Version()
	}

	var updates *services.UpdateChecker
	if checkUpdate && a.cfg.Update.Enabled {
		updates = a.updates
	}

	return services.NewPreflight(services.PreflightOptions{
		Package:        currentPackage(),
		RuntimeVersion: runtimeVersion,
		LowestRuntime:  config.LowestRuntimeVersion,
		Home:           a.cfg.Home,
		CLIHomePath:    a.cfg.CLIHomePath,
		Privileges:     privileges,
		Updates:        updates,
		Logger:         a.log,
	}).Run(ctx)
}

func currentPackage() domain.Package {
	return domain.Package{Name: config.PackageName, Version: config.Version}
}
