package fonts

import (
	"context"
	"sort"
	"sync/atomic"

	apperr "github.com/akari2600/macos-fonts-mcp/internal/errors"
)

// MockLibrary is an in-memory Library implementation for tests and local
// development without a platform font provider.
type MockLibrary struct {
	Families map[string][]Face
	Convert  func(ctx context.Context, sourcePath string, opts ConvertOptions, destPath string) (ConvertOutput, error)

	ListCalls    atomic.Int32
	FacesCalls   atomic.Int32
	EnrichCalls  atomic.Int32
	ConvertCalls atomic.Int32
}

var _ Library = (*MockLibrary)(nil)

func (m *MockLibrary) ListFamilies(ctx context.Context) ([]string, error) {
	m.ListCalls.Add(1)
	families := make([]string, 0, len(m.Families))
	for name := range m.Families {
		families = append(families, name)
	}
	sort.Strings(families)
	return families, nil
}

func (m *MockLibrary) FacesForFamily(ctx context.Context, family string) ([]Face, error) {
	m.FacesCalls.Add(1)
	faces, ok := m.Families[family]
	if !ok {
		return nil, apperr.NotFound("font family not found: %s", family)
	}
	return faces, nil
}

func (m *MockLibrary) EnrichMetadata(ctx context.Context, face Face) (Face, error) {
	m.EnrichCalls.Add(1)
	if face.Version == "" {
		face.Version = "1.0"
	}
	return face, nil
}

func (m *MockLibrary) ConvertToArtifact(ctx context.Context, sourcePath string, opts ConvertOptions, destPath string) (ConvertOutput, error) {
	m.ConvertCalls.Add(1)
	if m.Convert != nil {
		return m.Convert(ctx, sourcePath, opts, destPath)
	}
	return ConvertOutput{}, apperr.Unavailable("font conversion is not configured")
}

// UnavailableLibrary is the Library used when no platform provider is
// wired in; every call fails with a coded unavailable error.
type UnavailableLibrary struct{}

var _ Library = UnavailableLibrary{}

func (UnavailableLibrary) ListFamilies(context.Context) ([]string, error) {
	return nil, apperr.Unavailable("font enumeration is not available on this platform")
}

func (UnavailableLibrary) FacesForFamily(context.Context, string) ([]Face, error) {
	return nil, apperr.Unavailable("font enumeration is not available on this platform")
}

func (UnavailableLibrary) EnrichMetadata(context.Context, Face) (Face, error) {
	return Face{}, apperr.Unavailable("font metadata is not available on this platform")
}

func (UnavailableLibrary) ConvertToArtifact(context.Context, string, ConvertOptions, string) (ConvertOutput, error) {
	return ConvertOutput{}, apperr.Unavailable("font conversion is not available on this platform")
}
