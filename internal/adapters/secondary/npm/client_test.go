package npm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zzz-cli/internal/config"
	"zzz-cli/internal/core/domain"
)

// setupRegistry serves a fake registry. Package documents are keyed by the
// full package name, scoped names included.
func setupRegistry(t *testing.T, docs map[string]string) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var seen []*http.Request
	r := gin.New()
	r.GET("/*name", func(c *gin.Context) {
		seen = append(seen, c.Request.Clone(context.Background()))
		name := c.Param("name")[1:]
		body, ok := docs[name]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.Data(http.StatusOK, "application/json", []byte(body))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newTestClient() *npmClient {
	return NewClient(&config.RegistryConfig{Timeout: 2 * time.Second}, "run-123", nil).(*npmClient)
}

func TestFetchVersions(t *testing.T) {
	srv, seen := setupRegistry(t, map[string]string{
		"@zzz-cli/core": `{"name":"@zzz-cli/core","versions":{"1.0.0":{"name":"@zzz-cli/core"},"1.1.0":{},"2.0.0-beta.1":null}}`,
	})

	versions, err := newTestClient().FetchVersions(context.Background(), "@zzz-cli/core", srv.URL)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1.0.0", "1.1.0", "2.0.0-beta.1"}, versions)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, "/@zzz-cli/core", req.URL.Path)
	assert.Equal(t, "run-123", req.Header.Get("X-Request-ID"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
}

func TestFetchVersions_EmptyName(t *testing.T) {
	srv, seen := setupRegistry(t, nil)

	versions, err := newTestClient().FetchVersions(context.Background(), "", srv.URL)
	require.NoError(t, err)
	assert.Empty(t, versions)
	assert.Empty(t, *seen)
}

func TestFetchVersions_NotFound(t *testing.T) {
	srv, _ := setupRegistry(t, nil)

	versions, err := newTestClient().FetchVersions(context.Background(), "missing", srv.URL)
	require.NoError(t, err)
	assert.NotNil(t, versions)
	assert.Empty(t, versions)
}

func TestFetchVersions_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"array", `["1.0.0"]`},
		{"versions wrong type", `{"versions":["1.0.0"]}`},
		{"no versions", `{"name":"pkg"}`},
		{"null", `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := setupRegistry(t, map[string]string{"pkg": tt.body})

			versions, err := newTestClient().FetchVersions(context.Background(), "pkg", srv.URL)
			require.NoError(t, err)
			assert.Empty(t, versions)
		})
	}
}

func TestFetchVersions_TransportError(t *testing.T) {
	srv, _ := setupRegistry(t, nil)
	url := srv.URL
	srv.Close()

	_, err := newTestClient().FetchVersions(context.Background(), "pkg", url)
	assert.ErrorIs(t, err, domain.ErrRegistryRequest)
}

func TestMetadataURL(t *testing.T) {
	tests := []struct {
		registry string
		name     string
		want     string
	}{
		{"https://registry.npmjs.org", "lodash", "https://registry.npmjs.org/lodash"},
		{"https://registry.npmmirror.com/", "@zzz-cli/core", "https://registry.npmmirror.com/@zzz-cli/core"},
		{"", "lodash", "https://registry.npmmirror.com/lodash"},
		{"http://localhost:4873/npm/", "pkg", "http://localhost:4873/npm/pkg"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := MetadataURL(tt.registry, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultRegistry(t *testing.T) {
	assert.Equal(t, "https://registry.npmmirror.com/", DefaultRegistry(false))
	assert.Equal(t, "https://registry.npmjs.org", DefaultRegistry(true))
}
