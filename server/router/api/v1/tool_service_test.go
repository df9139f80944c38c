package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akari2600/macos-fonts-mcp/internal/artifact"
	"github.com/akari2600/macos-fonts-mcp/internal/cache"
	apperr "github.com/akari2600/macos-fonts-mcp/internal/errors"
	"github.com/akari2600/macos-fonts-mcp/internal/profile"
	"github.com/akari2600/macos-fonts-mcp/internal/publish"
	"github.com/akari2600/macos-fonts-mcp/plugin/fonts"
)

// fakeObjectStore accepts every upload and reports every probe missing.
type fakeObjectStore struct {
	puts int
}

func (f *fakeObjectStore) StatObject(ctx context.Context, bucket, key string) (publish.ObjectInfo, error) {
	return publish.ObjectInfo{}, apperr.NotFound("remote object not found")
}

func (f *fakeObjectStore) PutObject(ctx context.Context, bucket, key, filePath string, opts publish.PutOptions) error {
	f.puts++
	return nil
}

func newTestService(t *testing.T, lib fonts.Library) (*ToolService, *echo.Echo, *fakeObjectStore) {
	t.Helper()
	p := &profile.Profile{Mode: "dev", Data: t.TempDir()}
	p.FromEnv()
	require.NoError(t, p.Validate())

	store := &fakeObjectStore{}
	svc := NewToolService(
		p,
		lib,
		cache.New(p.CacheTTL),
		artifact.NewManager(artifact.Config{Dir: p.OutDir}),
		publish.NewPipeline(store, p.UploadMaxRetries, p.UploadConcurrency),
	)

	e := echo.New()
	svc.Register(e.Group("/api/v1"))
	return svc, e, store
}

func testLibrary() *fonts.MockLibrary {
	return &fonts.MockLibrary{
		Families: map[string][]fonts.Face{
			"Helvetica": {
				{PostScriptName: "Helvetica", Family: "Helvetica", Path: "/fonts/Helvetica.ttc", Format: "ttc"},
				{PostScriptName: "Helvetica-Bold", Family: "Helvetica", Subfamily: "Bold", Path: "/fonts/Helvetica.ttc", Format: "ttc"},
			},
			"Courier": {
				{PostScriptName: "Courier", Family: "Courier", Path: "/fonts/Courier.ttc", Format: "ttc"},
			},
		},
	}
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestListFamilies(t *testing.T) {
	lib := testLibrary()
	_, e, _ := newTestService(t, lib)

	rec := doRequest(e, http.MethodGet, "/api/v1/tools/families", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var families []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &families))
	assert.Equal(t, []string{"Courier", "Helvetica"}, families)
}

func TestListFamiliesMemoized(t *testing.T) {
	lib := testLibrary()
	_, e, _ := newTestService(t, lib)

	doRequest(e, http.MethodGet, "/api/v1/tools/families", "")
	doRequest(e, http.MethodGet, "/api/v1/tools/families", "")

	assert.Equal(t, int32(1), lib.ListCalls.Load(), "second request must hit the cache")
}

func TestFamiliesResourceMirror(t *testing.T) {
	lib := testLibrary()
	_, e, _ := newTestService(t, lib)

	rec := doRequest(e, http.MethodGet, "/api/v1/fonts/families", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFacesForFamily(t *testing.T) {
	lib := testLibrary()
	_, e, _ := newTestService(t, lib)

	rec := doRequest(e, http.MethodGet, "/api/v1/tools/families/Helvetica/faces", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var faces []fonts.Face
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &faces))
	require.Len(t, faces, 2)
	// Faces come back enriched.
	assert.Equal(t, "1.0", faces[0].Version)
}

func TestFacesForUnknownFamily(t *testing.T) {
	lib := testLibrary()
	_, e, _ := newTestService(t, lib)

	rec := doRequest(e, http.MethodGet, "/api/v1/tools/families/Nope/faces", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Code)
}

func TestFontOverview(t *testing.T) {
	lib := testLibrary()
	_, e, _ := newTestService(t, lib)

	rec := doRequest(e, http.MethodGet, "/api/v1/tools/fonts/Helvetica-Bold/overview", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var overview fonts.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	assert.Equal(t, "Helvetica-Bold", overview.Face.PostScriptName)
	assert.Equal(t, "Bold", overview.Face.Subfamily)
}

func TestPublishFont(t *testing.T) {
	lib := testLibrary()
	lib.Convert = func(ctx context.Context, sourcePath string, opts fonts.ConvertOptions, destPath string) (fonts.ConvertOutput, error) {
		if err := os.WriteFile(destPath, []byte("woff2-bytes"), 0o644); err != nil {
			return fonts.ConvertOutput{}, err
		}
		return fonts.ConvertOutput{Path: destPath, SizeBytes: int64(len("woff2-bytes"))}, nil
	}
	svc, e, store := newTestService(t, lib)

	body := `{"postScriptName":"Helvetica-Bold","bucket":"fonts","prefix":"woff2"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/tools/fonts/publish", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result publish.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, store.puts)
	assert.Contains(t, result.URL, "https://fonts.s3.amazonaws.com/woff2/")
	// CSS names the real family, not the artifact file.
	assert.Contains(t, result.CSS, `font-family:"Helvetica"`)
	assert.Contains(t, result.SampleHTML, "font-size:48px")

	// The artifact landed in the managed output directory.
	entries, err := os.ReadDir(svc.Lifecycle.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Helvetica-Bold.woff2", entries[0].Name())
}

func TestPublishFontValidation(t *testing.T) {
	lib := testLibrary()
	_, e, _ := newTestService(t, lib)

	rec := doRequest(e, http.MethodPost, "/api/v1/tools/fonts/publish", `{"postScriptName":"Helvetica"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/v1/tools/fonts/publish", `{"bucket":"fonts"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishFontUnknownFace(t *testing.T) {
	lib := testLibrary()
	_, e, _ := newTestService(t, lib)

	rec := doRequest(e, http.MethodPost, "/api/v1/tools/fonts/publish", `{"postScriptName":"Nope","bucket":"fonts"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublishFontDefaults(t *testing.T) {
	lib := testLibrary()
	lib.Convert = func(ctx context.Context, sourcePath string, opts fonts.ConvertOptions, destPath string) (fonts.ConvertOutput, error) {
		require.NoError(t, os.WriteFile(destPath, []byte("x"), 0o644))
		return fonts.ConvertOutput{Path: destPath, SizeBytes: 1}, nil
	}
	recorded := publish.PutOptions{}
	svc, e, _ := newTestService(t, lib)
	svc.Publisher = publish.NewPipeline(putRecorder{&recorded}, 3, 1)

	rec := doRequest(e, http.MethodPost, "/api/v1/tools/fonts/publish", `{"postScriptName":"Courier","bucket":"fonts"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.True(t, recorded.PublicRead, "public defaults to true")
	assert.Equal(t, "public, max-age=31536000, immutable", recorded.CacheControl)
}

func TestPublishFontExplicitZeroCacheSeconds(t *testing.T) {
	lib := testLibrary()
	lib.Convert = func(ctx context.Context, sourcePath string, opts fonts.ConvertOptions, destPath string) (fonts.ConvertOutput, error) {
		require.NoError(t, os.WriteFile(destPath, []byte("x"), 0o644))
		return fonts.ConvertOutput{Path: destPath, SizeBytes: 1}, nil
	}
	recorded := publish.PutOptions{}
	svc, e, _ := newTestService(t, lib)
	svc.Publisher = publish.NewPipeline(putRecorder{&recorded}, 3, 1)

	body := `{"postScriptName":"Courier","bucket":"fonts","cacheSeconds":0}`
	rec := doRequest(e, http.MethodPost, "/api/v1/tools/fonts/publish", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// An explicit zero is honored, not replaced with the default.
	assert.Equal(t, "public, max-age=0, immutable", recorded.CacheControl)
}

// putRecorder records the PutOptions of the last upload.
type putRecorder struct {
	opts *publish.PutOptions
}

func (r putRecorder) StatObject(ctx context.Context, bucket, key string) (publish.ObjectInfo, error) {
	return publish.ObjectInfo{}, apperr.NotFound("remote object not found")
}

func (r putRecorder) PutObject(ctx context.Context, bucket, key, filePath string, opts publish.PutOptions) error {
	*r.opts = opts
	return nil
}

func TestStatsEndpoint(t *testing.T) {
	lib := testLibrary()
	_, e, _ := newTestService(t, lib)

	doRequest(e, http.MethodGet, "/api/v1/tools/families", "")
	doRequest(e, http.MethodGet, "/api/v1/tools/families/Nope/faces", "")

	rec := doRequest(e, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot struct {
		RequestTotal  int64 `json:"requestTotal"`
		RequestFailed int64 `json:"requestFailed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, int64(2), snapshot.RequestTotal)
	assert.Equal(t, int64(1), snapshot.RequestFailed)
}

func TestCacheExpiryReinvokesProvider(t *testing.T) {
	lib := testLibrary()
	svc, e, _ := newTestService(t, lib)
	svc.Cache.Clear()
	svc.listFamiliesOp.TTL = 50 * time.Millisecond

	doRequest(e, http.MethodGet, "/api/v1/tools/families", "")
	time.Sleep(100 * time.Millisecond)
	doRequest(e, http.MethodGet, "/api/v1/tools/families", "")

	assert.Equal(t, int32(2), lib.ListCalls.Load())
}
