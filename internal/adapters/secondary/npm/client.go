package npm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"zzz-cli/internal/config"
	"zzz-cli/internal/core/domain"
	ports "zzz-cli/internal/core/ports/output"
)

const (
	mirrorRegistry   = "https://registry.npmmirror.com/"
	originalRegistry = "https://registry.npmjs.org"

	headerRequestID = "X-Request-ID"
)

// DefaultRegistry returns the mirror registry, or the public npm registry
// when original is true.
func DefaultRegistry(original bool) string {
	if original {
		return originalRegistry
	}
	return mirrorRegistry
}

// packument is the subset of the registry package document we read.
// Version metadata is kept opaque.
type packument struct {
	Versions map[string]json.RawMessage `json:"versions"`
}

type npmClient struct {
	client    *http.Client
	requestID string
	logger    *log.Entry
}

// NewClient creates a registry client adapter. requestID is sent with every
// request so registry-side logs can be matched to a CLI run.
func NewClient(cfg *config.RegistryConfig, requestID string, logger *log.Entry) ports.RegistryClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		quiet := log.New()
		quiet.SetOutput(io.Discard)
		logger = log.NewEntry(quiet)
	}

	return &npmClient{
		client: &http.Client{
			Timeout: timeout,
		},
		requestID: requestID,
		logger:    logger,
	}
}

// MetadataURL joins registry and packageName. Scoped names keep their "@"
// and "/" so "@scope/pkg" maps to "<registry>/@scope/pkg".
func MetadataURL(registry, packageName string) (string, error) {
	if registry == "" {
		registry = DefaultRegistry(false)
	}
	base, err := url.Parse(registry)
	if err != nil {
		return "", fmt.Errorf("parse registry url %q: %w", registry, err)
	}
	return base.JoinPath(strings.Split(packageName, "/")...).String(), nil
}

func (c *npmClient) FetchVersions(ctx context.Context, packageName, registryURL string) ([]string, error) {
	if packageName == "" {
		return []string{}, nil
	}

	reqURL, err := MetadataURL(registryURL, packageName)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.requestID != "" {
		req.Header.Set(headerRequestID, c.requestID)
	}

	entry := c.logger.WithFields(log.Fields{
		"package": packageName,
		"url":     reqURL,
	})
	entry.Debug("fetching package metadata")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRegistryRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		entry.WithField("status", resp.StatusCode).Debug("registry returned non-200, assuming no versions")
		return []string{}, nil
	}

	var doc packument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		entry.WithError(err).Debug("malformed package metadata, assuming no versions")
		return []string{}, nil
	}

	versions := make([]string, 0, len(doc.Versions))
	for v := range doc.Versions {
		versions = append(versions, v)
	}
	return versions, nil
}
