package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"zzz-cli/internal/adapters/secondary/npm"
	"zzz-cli/internal/config"
	"zzz-cli/internal/core/domain"
)

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the zzz-cli version",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.Version)
			return err
		},
	}
}

// updateResult is the --json shape of check-update.
type updateResult struct {
	UpdateAvailable bool                 `json:"update_available"`
	CurrentVersion  string               `json:"current_version"`
	Notice          *domain.UpdateNotice `json:"notice,omitempty"`
}

func (a *app) checkUpdateCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check-update",
		Short: "Check the registry for a newer compatible zzz-cli release",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg := currentPackage()
			notice, err := a.updates.Check(cmd.Context(), pkg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, updateResult{
					UpdateAvailable: notice != nil,
					CurrentVersion:  pkg.Version,
					Notice:          notice,
				})
			}
			if notice == nil {
				fmt.Fprintf(out, "%s %s is up to date\n", pkg.Name, pkg.Version)
				return nil
			}
			fmt.Fprintln(out, notice.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func (a *app) versionsCmd() *cobra.Command {
	var (
		base       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "versions <package>",
		Short: "List published versions of a package, newest first",
		Long:  "List published versions of a package, newest first. With --base only versions compatible with ^base are shown.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%w: versions takes exactly one package name", domain.ErrInvalidArgs)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			versions, err := a.resolver.ListVersions(cmd.Context(), args[0], a.cfg.Registry.URL, base)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, versions)
			}
			for _, v := range versions {
				fmt.Fprintln(out, v)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "Only list versions compatible with ^base")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func (a *app) envCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the resolved configuration",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := a.cfg.Registry.URL
			if registry == "" {
				registry = npm.DefaultRegistry(false)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "HOME\t%s\n", a.cfg.Home)
			fmt.Fprintf(w, "CLI_HOME\t%s\n", a.cfg.CLIHome)
			fmt.Fprintf(w, "CLI_HOME_PATH\t%s\n", a.cfg.CLIHomePath)
			fmt.Fprintf(w, "DOTENV\t%s\n", a.cfg.DotenvPath)
			fmt.Fprintf(w, "REGISTRY_URL\t%s\n", registry)
			fmt.Fprintf(w, "REGISTRY_TIMEOUT\t%s\n", a.cfg.Registry.Timeout)
			fmt.Fprintf(w, "LOG_LEVEL\t%s\n", a.cfg.Logger.Level)
			fmt.Fprintf(w, "LOGGER_FORMAT\t%s\n", a.cfg.Logger.Format)
			fmt.Fprintf(w, "CHECK_UPDATE\t%s\n", strconv.FormatBool(a.cfg.Update.Enabled))
			return w.Flush()
		},
	}
}

// noArgs rejects positional arguments as invalid usage.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %s takes no arguments, got %q", domain.ErrInvalidArgs, cmd.CommandPath(), args[0])
	}
	return nil
}

// unknownCommand stands in for cobra's own check on the root command so an
// unrecognised subcommand exits as invalid usage.
func unknownCommand(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: unknown command %q for %q", domain.ErrInvalidArgs, args[0], cmd.CommandPath())
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
