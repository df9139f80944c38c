package publish

import "fmt"

// sampleText is the pangram rendered in published sample markup.
const sampleText = "Sphinx of black quartz, judge my vow. 12345"

// FontFaceCSS builds a single @font-face rule for the published URL.
// Weight and style are emitted only when supplied.
func FontFaceCSS(family, url, weight, style string) string {
	css := fmt.Sprintf(`@font-face{font-family:%q;src:url(%q) format("woff2");font-display:swap;`, family, url)
	if weight != "" {
		css += fmt.Sprintf("font-weight:%s;", weight)
	}
	if style != "" {
		css += fmt.Sprintf("font-style:%s;", style)
	}
	return css + "}"
}

// SampleHTML builds a one-line document exercising the published font at a
// 48px demonstration size.
func SampleHTML(family, css string) string {
	return fmt.Sprintf(`<!doctype html><meta charset="utf-8"><style>%s</style><p style="font-family:%s;font-size:48px">%s</p>`,
		css, family, sampleText)
}
