// Package htmltext turns feed description HTML into plain display text.
package htmltext

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Elements whose boundaries must not glue neighbouring words together.
const blockSelector = "p, br, div, li, ul, ol, h1, h2, h3, h4, h5, h6, blockquote, tr, td, figcaption"

// Text returns the visible text of an HTML fragment with whitespace
// collapsed. Entities are decoded; scripts, styles and images are dropped.
func Text(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	if !strings.ContainsAny(fragment, "<&") {
		return collapse(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapse(fragment)
	}

	doc.Find("script, style, noscript, img, iframe").Remove()
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.BeforeHtml(" ")
		s.AfterHtml(" ")
	})

	return collapse(doc.Text())
}

// Truncate cuts s to at most n runes. n <= 0 returns s unchanged.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
