package imagefetch

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ogImagePattern = regexp.MustCompile(`(?i)<meta\s+property=["']og:image["']\s+content=["']([^"']+)["']`)

// ExtractOGImage returns the content of the first og:image meta tag in body, or "".
// The property-then-content form is matched with a regular expression; other
// attribute orders are picked up by a DOM scan.
func ExtractOGImage(body []byte) string {
	if m := ogImagePattern.FindSubmatch(body); m != nil {
		return strings.TrimSpace(string(m[1]))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	var ref string
	doc.Find(`meta[property="og:image"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content, ok := s.Attr("content")
		content = strings.TrimSpace(content)
		if !ok || content == "" {
			return true
		}
		ref = content
		return false
	})
	return ref
}
