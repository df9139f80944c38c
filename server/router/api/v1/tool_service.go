// Package v1 exposes the font tools as JSON endpoints.
package v1

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/akari2600/macos-fonts-mcp/internal/artifact"
	"github.com/akari2600/macos-fonts-mcp/internal/cache"
	apperr "github.com/akari2600/macos-fonts-mcp/internal/errors"
	"github.com/akari2600/macos-fonts-mcp/internal/observability"
	"github.com/akari2600/macos-fonts-mcp/internal/profile"
	"github.com/akari2600/macos-fonts-mcp/internal/publish"
	"github.com/akari2600/macos-fonts-mcp/plugin/fonts"
	"github.com/akari2600/macos-fonts-mcp/server/middleware"
)

// ToolService handles the tool-call endpoints. All collaborator lookups go
// through the memoizing cache; publish calls go through the pipeline.
type ToolService struct {
	Profile   *profile.Profile
	Library   fonts.Library
	Cache     *cache.Cache
	Lifecycle *artifact.Manager
	Publisher *publish.Pipeline
	Metrics   *observability.Metrics

	listFamiliesOp cache.Operation
	facesOp        cache.Operation
	overviewOp     cache.Operation
	logger         *slog.Logger
}

// NewToolService creates the tool service with memoization bound to the
// profile's default TTL.
func NewToolService(p *profile.Profile, library fonts.Library, c *cache.Cache, lifecycle *artifact.Manager, publisher *publish.Pipeline) *ToolService {
	return &ToolService{
		Profile:   p,
		Library:   library,
		Cache:     c,
		Lifecycle: lifecycle,
		Publisher: publisher,
		Metrics:   observability.NewMetrics(),

		listFamiliesOp: cache.Operation{Name: "list_families", TTL: p.CacheTTL},
		facesOp:        cache.Operation{Name: "faces_for_family", TTL: p.CacheTTL},
		overviewOp:     cache.Operation{Name: "font_overview", TTL: p.CacheTTL},
		logger:         slog.Default(),
	}
}

// Register mounts the tool endpoints on the API group.
func (s *ToolService) Register(g *echo.Group) {
	g.GET("/tools/families", s.listFamilies)
	g.GET("/tools/families/:family/faces", s.facesForFamily)
	g.GET("/tools/fonts/:postScriptName/overview", s.fontOverview)
	g.POST("/tools/fonts/publish", s.publishFont, middleware.PublishLimiter().Middleware())

	// Resource mirror of the families tool.
	g.GET("/fonts/families", s.listFamilies)

	g.GET("/stats", s.stats)
}

func (s *ToolService) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Metrics.Snapshot())
}

// errorResponse is the structured failure surfaced to tool callers.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps the coded taxonomy onto HTTP statuses.
func (s *ToolService) writeError(c echo.Context, err error) error {
	code := apperr.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case apperr.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperr.ErrCodeInvalidArgument:
		status = http.StatusBadRequest
	case apperr.ErrCodeTransientTransport, apperr.ErrCodePublishFailed:
		status = http.StatusBadGateway
	case apperr.ErrCodeUnavailable:
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("tool call failed", "path", c.Path(), "error", err)
	}
	return c.JSON(status, errorResponse{Code: string(code), Message: err.Error()})
}

// fail records the failure against the tool and writes the error response.
func (s *ToolService) fail(c echo.Context, tool string, err error) error {
	s.Metrics.RecordFailure(tool)
	return s.writeError(c, err)
}

func (s *ToolService) listFamilies(c echo.Context) error {
	ctx := c.Request().Context()
	s.Metrics.RecordCall("list_families")
	s.logger.Info("listing font families")

	families, err := cache.Do(ctx, s.Cache, s.listFamiliesOp, s.listFamiliesOp.Key(), s.Library.ListFamilies)
	if err != nil {
		return s.fail(c, "list_families", err)
	}
	return c.JSON(http.StatusOK, families)
}

func (s *ToolService) facesForFamily(c echo.Context) error {
	ctx := c.Request().Context()
	family := c.Param("family")
	s.Metrics.RecordCall("faces_for_family")
	if family == "" {
		return s.fail(c, "faces_for_family", apperr.InvalidArgument("family is required"))
	}
	s.logger.Info("getting faces for family", "family", family)

	key := s.facesOp.Key(family)
	faces, err := cache.Do(ctx, s.Cache, s.facesOp, key, func(ctx context.Context) ([]fonts.Face, error) {
		faces, err := s.Library.FacesForFamily(ctx, family)
		if err != nil {
			return nil, err
		}
		enriched := make([]fonts.Face, 0, len(faces))
		for _, face := range faces {
			ef, err := s.Library.EnrichMetadata(ctx, face)
			if err != nil {
				return nil, err
			}
			enriched = append(enriched, ef)
		}
		return enriched, nil
	})
	if err != nil {
		return s.fail(c, "faces_for_family", err)
	}
	return c.JSON(http.StatusOK, faces)
}

func (s *ToolService) fontOverview(c echo.Context) error {
	ctx := c.Request().Context()
	name := c.Param("postScriptName")
	s.Metrics.RecordCall("font_overview")
	if name == "" {
		return s.fail(c, "font_overview", apperr.InvalidArgument("postScriptName is required"))
	}
	s.logger.Info("getting overview for font", "postScriptName", name)

	key := s.overviewOp.Key(name)
	overview, err := cache.Do(ctx, s.Cache, s.overviewOp, key, func(ctx context.Context) (fonts.Overview, error) {
		face, err := fonts.FaceByPostScript(ctx, s.Library, s.Library, name)
		if err != nil {
			return fonts.Overview{}, err
		}
		return fonts.Overview{Face: face}, nil
	})
	if err != nil {
		return s.fail(c, "font_overview", err)
	}
	return c.JSON(http.StatusOK, overview)
}

// publishFontRequest is the body of the one-step convert-and-publish tool.
type publishFontRequest struct {
	PostScriptName string                `json:"postScriptName"`
	Bucket         string                `json:"bucket"`
	Prefix         string                `json:"prefix,omitempty"`
	Region         string                `json:"region,omitempty"`
	Public         *bool                 `json:"public,omitempty"`
	CacheSeconds   *int                  `json:"cacheSeconds,omitempty"`
	Overwrite      bool                  `json:"overwrite,omitempty"`
	Convert        *fonts.ConvertOptions `json:"convert,omitempty"`
}

func (s *ToolService) publishFont(c echo.Context) error {
	ctx := c.Request().Context()

	s.Metrics.RecordCall("publish_font")

	var req publishFontRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, "publish_font", apperr.InvalidArgument("malformed request body"))
	}
	if req.PostScriptName == "" {
		return s.fail(c, "publish_font", apperr.InvalidArgument("postScriptName is required"))
	}

	target := publish.Target{
		Bucket:       req.Bucket,
		Prefix:       req.Prefix,
		Region:       req.Region,
		Public:       req.Public == nil || *req.Public,
		CacheSeconds: 31536000,
		Overwrite:    req.Overwrite,
	}
	// An explicit zero is a valid caller choice; only an omitted field
	// takes the one-year default.
	if req.CacheSeconds != nil {
		target.CacheSeconds = *req.CacheSeconds
	}
	if err := target.Validate(); err != nil {
		return s.fail(c, "publish_font", err)
	}

	s.logger.Info("publishing font", "postScriptName", req.PostScriptName, "bucket", target.Bucket)

	face, err := fonts.FaceByPostScript(ctx, s.Library, s.Library, req.PostScriptName)
	if err != nil {
		return s.fail(c, "publish_font", err)
	}

	var opts fonts.ConvertOptions
	if req.Convert != nil {
		opts = *req.Convert
	}
	destPath, err := artifact.AllocatePath(s.Lifecycle.Dir(), req.PostScriptName, opts.SuffixHint, "woff2")
	if err != nil {
		return s.fail(c, "publish_font", err)
	}
	out, err := s.Library.ConvertToArtifact(ctx, face.Path, opts, destPath)
	if err != nil {
		return s.fail(c, "publish_font", err)
	}

	result, err := s.Publisher.Publish(ctx, out.Path, target)
	if err != nil {
		return s.fail(c, "publish_font", err)
	}

	// The pipeline names the font after the artifact file; prefer the real
	// family name when the face carries one.
	if face.Family != "" {
		result.CSS = publish.FontFaceCSS(face.Family, result.URL, "", "")
		result.SampleHTML = publish.SampleHTML(face.Family, result.CSS)
	}

	return c.JSON(http.StatusOK, result)
}
