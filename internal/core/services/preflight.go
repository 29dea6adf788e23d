package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"zzz-cli/internal/core/domain"
	"zzz-cli/internal/logger"
	"zzz-cli/internal/semver"
)

// PrivilegeDropper gives up root privileges when the process has them.
type PrivilegeDropper interface {
	Drop() error
}

// PreflightOptions wires a Preflight. Updates may be nil to skip the
// update check; Stat defaults to os.Stat.
type PreflightOptions struct {
	Package        domain.Package
	RuntimeVersion string
	LowestRuntime  string
	Home           string
	CLIHomePath    string
	Privileges     PrivilegeDropper
	Updates        *UpdateChecker
	Logger         *logger.Logger
	Stat           func(name string) (os.FileInfo, error)
}

// Preflight runs the environment checks every invocation goes through
// before a subcommand is dispatched.
type Preflight struct {
	opts PreflightOptions
}

// NewPreflight creates a new Preflight
func NewPreflight(opts PreflightOptions) *Preflight {
	if opts.Stat == nil {
		opts.Stat = os.Stat
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &Preflight{opts: opts}
}

// Run executes the checks in order and stops at the first failure. The
// update check never fails the run.
func (p *Preflight) Run(ctx context.Context) error {
	p.CheckPackageVersion()

	if err := p.CheckRuntimeVersion(); err != nil {
		return err
	}
	if err := p.CheckRoot(); err != nil {
		return err
	}
	if err := p.CheckUserHome(); err != nil {
		return err
	}
	p.CheckEnv()
	p.CheckGlobalUpdate(ctx)
	return nil
}

func (p *Preflight) CheckPackageVersion() {
	p.opts.Logger.Success("version", p.opts.Package.Version)
}

// CheckRuntimeVersion fails when the running Go runtime is older than the
// lowest supported one. Development builds without a release version pass.
func (p *Preflight) CheckRuntimeVersion() error {
	current := strings.TrimPrefix(p.opts.RuntimeVersion, "go")
	cv, err := semver.ParseLenient(current)
	if err != nil {
		p.opts.Logger.WithPrefix("runtime").Debugf("skipping runtime check for %q", p.opts.RuntimeVersion)
		return nil
	}
	lv, err := semver.ParseVersion(p.opts.LowestRuntime)
	if err != nil {
		return fmt.Errorf("lowest runtime version: %w", err)
	}
	if semver.Compare(cv, lv) < 0 {
		return fmt.Errorf("%w: %s requires go v%s or newer, running %s",
			domain.ErrRuntimeTooOld, p.opts.Package.Name, p.opts.LowestRuntime, current)
	}
	return nil
}

func (p *Preflight) CheckRoot() error {
	if p.opts.Privileges == nil {
		return nil
	}
	if err := p.opts.Privileges.Drop(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPrivilegeDrop, err)
	}
	return nil
}

func (p *Preflight) CheckUserHome() error {
	if p.opts.Home == "" {
		return domain.ErrUserHomeNotFound
	}
	if _, err := p.opts.Stat(p.opts.Home); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrUserHomeNotFound, p.opts.Home)
	}
	return nil
}

func (p *Preflight) CheckEnv() {
	p.opts.Logger.WithPrefix("env").Debugf("cli home path %s", p.opts.CLIHomePath)
}

// CheckGlobalUpdate logs a warning when a newer compatible release is
// published. Lookup failures are logged and otherwise ignored.
func (p *Preflight) CheckGlobalUpdate(ctx context.Context) *domain.UpdateNotice {
	if p.opts.Updates == nil {
		return nil
	}

	notice, err := p.opts.Updates.Check(ctx, p.opts.Package)
	if err != nil {
		p.opts.Logger.WithPrefix("update").WithError(err).Warn("could not check for a newer version")
		return nil
	}
	if notice == nil {
		return nil
	}

	p.opts.Logger.WithPrefix("update").WithFields(log.Fields{
		"current": notice.CurrentVersion,
		"latest":  notice.LatestVersion,
		"command": notice.UpgradeCommand,
	}).Warn(notice.String())
	return notice
}
