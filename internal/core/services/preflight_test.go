package services

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"zzz-cli/internal/config"
	"zzz-cli/internal/core/domain"
	"zzz-cli/internal/logger"
	"zzz-cli/internal/testutil"
)

func newTestPreflight(t *testing.T, buf *bytes.Buffer, mutate func(*PreflightOptions)) (*Preflight, *testutil.MockRegistryClient, *testutil.MockPrivilegeDropper) {
	t.Helper()
	registry := new(testutil.MockRegistryClient)
	privileges := new(testutil.MockPrivilegeDropper)

	opts := PreflightOptions{
		Package:        domain.Package{Name: "@zzz-cli/core", Version: "1.0.3"},
		RuntimeVersion: "go1.24.9",
		LowestRuntime:  "1.22.0",
		Home:           t.TempDir(),
		CLIHomePath:    "/home/u/.zzz-cli",
		Privileges:     privileges,
		Updates:        NewUpdateChecker(NewVersionResolver(registry), ""),
		Logger:         logger.New(config.LoggerConfig{Level: "verbose"}, buf),
	}
	if mutate != nil {
		mutate(&opts)
	}
	return NewPreflight(opts), registry, privileges
}

func TestPreflight_Run(t *testing.T) {
	var buf bytes.Buffer
	p, registry, privileges := newTestPreflight(t, &buf, nil)

	privileges.On("Drop").Return(nil)
	registry.On("FetchVersions", mock.Anything, "@zzz-cli/core", "").Return([]string{"1.0.3", "1.2.0"}, nil)

	err := p.Run(context.Background())
	assert.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "status=success")
	assert.Contains(t, out, "cli home path /home/u/.zzz-cli")
	assert.Contains(t, out, "latest version: 1.2.0")
	privileges.AssertExpectations(t)
	registry.AssertExpectations(t)
}

func TestPreflight_Run_UpdateFailureIsNotFatal(t *testing.T) {
	var buf bytes.Buffer
	p, registry, privileges := newTestPreflight(t, &buf, nil)

	privileges.On("Drop").Return(nil)
	registry.On("FetchVersions", mock.Anything, "@zzz-cli/core", "").Return(nil, domain.ErrRegistryRequest)

	err := p.Run(context.Background())
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "could not check for a newer version")
}

func TestPreflight_Run_UpdatesDisabled(t *testing.T) {
	var buf bytes.Buffer
	p, registry, privileges := newTestPreflight(t, &buf, func(o *PreflightOptions) {
		o.Updates = nil
	})

	privileges.On("Drop").Return(nil)

	assert.NoError(t, p.Run(context.Background()))
	registry.AssertNotCalled(t, "FetchVersions", mock.Anything, mock.Anything, mock.Anything)
}

func TestPreflight_Run_StopsAtFirstFailure(t *testing.T) {
	var buf bytes.Buffer
	p, registry, privileges := newTestPreflight(t, &buf, func(o *PreflightOptions) {
		o.RuntimeVersion = "go1.20.1"
	})

	err := p.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrRuntimeTooOld)
	privileges.AssertNotCalled(t, "Drop")
	registry.AssertNotCalled(t, "FetchVersions", mock.Anything, mock.Anything, mock.Anything)
}

func TestPreflight_CheckRuntimeVersion(t *testing.T) {
	tests := []struct {
		name    string
		runtime string
		wantErr bool
	}{
		{"newer", "go1.24.9", false},
		{"equal", "go1.22.0", false},
		{"minor only", "go1.22", false},
		{"older", "go1.21.13", true},
		{"devel build", "devel go1.25-abcdef", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := newTestPreflight(t, &bytes.Buffer{}, func(o *PreflightOptions) {
				o.RuntimeVersion = tt.runtime
			})
			err := p.CheckRuntimeVersion()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrRuntimeTooOld)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPreflight_CheckRoot(t *testing.T) {
	p, _, privileges := newTestPreflight(t, &bytes.Buffer{}, nil)
	privileges.On("Drop").Return(errors.New("operation not permitted"))

	err := p.CheckRoot()
	assert.ErrorIs(t, err, domain.ErrPrivilegeDrop)
	assert.Contains(t, err.Error(), "operation not permitted")
}

func TestPreflight_CheckRoot_NoDropper(t *testing.T) {
	p, _, _ := newTestPreflight(t, &bytes.Buffer{}, func(o *PreflightOptions) {
		o.Privileges = nil
	})
	assert.NoError(t, p.CheckRoot())
}

func TestPreflight_CheckUserHome(t *testing.T) {
	p, _, _ := newTestPreflight(t, &bytes.Buffer{}, nil)
	assert.NoError(t, p.CheckUserHome())

	p, _, _ = newTestPreflight(t, &bytes.Buffer{}, func(o *PreflightOptions) {
		o.Home = ""
	})
	assert.ErrorIs(t, p.CheckUserHome(), domain.ErrUserHomeNotFound)

	p, _, _ = newTestPreflight(t, &bytes.Buffer{}, func(o *PreflightOptions) {
		o.Home = "/definitely/not/here"
		o.Stat = func(string) (os.FileInfo, error) { return nil, fs.ErrNotExist }
	})
	assert.ErrorIs(t, p.CheckUserHome(), domain.ErrUserHomeNotFound)
}

func TestPreflight_CheckGlobalUpdate_UpToDate(t *testing.T) {
	var buf bytes.Buffer
	p, registry, _ := newTestPreflight(t, &buf, nil)
	registry.On("FetchVersions", mock.Anything, "@zzz-cli/core", "").Return([]string{"1.0.3"}, nil)

	assert.Nil(t, p.CheckGlobalUpdate(context.Background()))
	assert.NotContains(t, buf.String(), "level=warning")
}
