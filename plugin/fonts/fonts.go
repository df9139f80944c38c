// Package fonts defines the interface to the platform font collaborator.
// Enumeration, binary table parsing, and WOFF2 encoding live behind these
// interfaces; the server only memoizes and schedules around them.
package fonts

import (
	"context"

	apperr "github.com/akari2600/macos-fonts-mcp/internal/errors"
)

// Axis describes one variation axis of a variable font.
type Axis struct {
	Tag     string  `json:"tag"`
	Name    string  `json:"name"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
}

// Face describes a single installed font face. Enrichment fills the
// metadata fields the platform enumeration leaves empty.
type Face struct {
	PostScriptName string   `json:"postScriptName"`
	Family         string   `json:"family"`
	Subfamily      string   `json:"subfamily,omitempty"`
	Path           string   `json:"path"`
	Format         string   `json:"format"`
	Index          int      `json:"index,omitempty"`
	IsVariable     bool     `json:"isVariable"`
	Axes           []Axis   `json:"axes,omitempty"`
	Version        string   `json:"version,omitempty"`
	GlyphCount     int      `json:"glyphCount,omitempty"`
	Tables         []string `json:"tables,omitempty"`
	ColorFormats   []string `json:"colorFormats,omitempty"`
	License        string   `json:"license,omitempty"`
	Copyright      string   `json:"copyright,omitempty"`
	FSType         int      `json:"fsType,omitempty"`
}

// Overview is a Font Book style summary of one face.
type Overview struct {
	Face             Face                `json:"face"`
	OpenTypeFeatures map[string][]string `json:"opentypeFeatures,omitempty"`
	Samples          map[string]string   `json:"samples,omitempty"`
}

// ConvertOptions controls the WOFF2 conversion performed by the
// collaborator.
type ConvertOptions struct {
	SubsetMode   string             `json:"subsetMode,omitempty"` // "text", "unicodes", "ranges"
	Text         string             `json:"text,omitempty"`
	Unicodes     []string           `json:"unicodes,omitempty"`
	Ranges       []string           `json:"ranges,omitempty"`
	DropHints    bool               `json:"dropHints,omitempty"`
	RetainLayout bool               `json:"retainLayout,omitempty"`
	TargetAxes   map[string]float64 `json:"targetAxes,omitempty"`
	SuffixHint   string             `json:"suffixHint,omitempty"`
}

// ConvertOutput describes one generated artifact.
type ConvertOutput struct {
	Path        string `json:"path"`
	SizeBytes   int64  `json:"sizeBytes"`
	ContentHash string `json:"contentHash"`
}

// Provider enumerates installed fonts.
type Provider interface {
	ListFamilies(ctx context.Context) ([]string, error)
	FacesForFamily(ctx context.Context, family string) ([]Face, error)
}

// Enricher fills face metadata from the font binary.
type Enricher interface {
	EnrichMetadata(ctx context.Context, face Face) (Face, error)
}

// Converter produces a WOFF2 artifact from a source font file, writing it
// to the destination path the caller allocated in the output directory.
type Converter interface {
	ConvertToArtifact(ctx context.Context, sourcePath string, opts ConvertOptions, destPath string) (ConvertOutput, error)
}

// Library is the full collaborator surface the server consumes.
type Library interface {
	Provider
	Enricher
	Converter
}

// FaceByPostScript scans every family for the face with the given
// PostScript name and returns it enriched.
func FaceByPostScript(ctx context.Context, p Provider, e Enricher, name string) (Face, error) {
	families, err := p.ListFamilies(ctx)
	if err != nil {
		return Face{}, err
	}
	for _, family := range families {
		faces, err := p.FacesForFamily(ctx, family)
		if err != nil {
			return Face{}, err
		}
		for _, face := range faces {
			if face.PostScriptName == name {
				return e.EnrichMetadata(ctx, face)
			}
		}
	}
	return Face{}, apperr.NotFound("postscript name not found: %s", name)
}
