package publish

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFontFaceCSS(t *testing.T) {
	css := FontFaceCSS("Helvetica", "https://b.s3.amazonaws.com/k", "", "")

	assert.Contains(t, css, `font-family:"Helvetica"`)
	assert.Contains(t, css, `src:url("https://b.s3.amazonaws.com/k") format("woff2")`)
	assert.Contains(t, css, "font-display:swap")
	assert.NotContains(t, css, "font-weight")
	assert.NotContains(t, css, "font-style")
}

func TestFontFaceCSSWithWeightAndStyle(t *testing.T) {
	css := FontFaceCSS("Helvetica", "https://u", "700", "italic")

	assert.Contains(t, css, "font-weight:700;")
	assert.Contains(t, css, "font-style:italic;")
}

func TestSampleHTML(t *testing.T) {
	css := FontFaceCSS("Helvetica", "https://u", "", "")
	html := SampleHTML("Helvetica", css)

	assert.Contains(t, html, css)
	assert.Contains(t, html, "font-size:48px")
	assert.Contains(t, html, "Sphinx of black quartz, judge my vow. 12345")
}
