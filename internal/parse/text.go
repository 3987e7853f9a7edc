// Package parse extracts typed course and section fields from the portal's
// semi-structured HTML. Detail pages are PeopleSoft-rendered label/value
// soup, so most extraction is label-anchored regex over the page text;
// goquery pulls structured fragments and an html.Node walk reduces pages
// to line-oriented text.
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var whitespaceRe = regexp.MustCompile(`[ \t\x{00a0}]+`)

// labelRes caches the label patterns built by labelValue and intValue. The
// label set is small and fixed, but the lookups run once per section, so
// compiling on every call adds up across a full catalog.
var labelRes sync.Map // pattern string -> *regexp.Regexp

func labelRe(pattern string) *regexp.Regexp {
	if re, ok := labelRes.Load(pattern); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(pattern)
	labelRes.Store(pattern, re)
	return re
}

// PageText reduces an HTML document to its visible text, one line per block
// element, so label-anchored patterns can match "Label: value" rows that the
// portal renders in adjacent table cells.
func PageText(rawHTML string) string {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "br":
				sb.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlock(n.Data) {
			sb.WriteByte('\n')
		}
	}
	walk(root)

	lines := strings.Split(sb.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRe.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "tr", "td", "th", "li", "table", "ul", "ol",
		"h1", "h2", "h3", "h4", "h5", "h6", "label", "span":
		return true
	}
	return false
}

// DescriptionHTML pulls the course description fragment, keeping its markup
// for the markdown writer. PeopleSoft renders long-edit fields in
// span.PSLONGEDITBOX.
func DescriptionHTML(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	for _, sel := range []string{"span.PSLONGEDITBOX", "div[class*='description']", "td[class*='description']"} {
		if frag := doc.Find(sel).First(); frag.Length() > 0 {
			if h, err := frag.Html(); err == nil && len(strings.TrimSpace(frag.Text())) > 50 {
				return strings.TrimSpace(h)
			}
		}
	}
	return ""
}

// labelValue returns the first single-line value following any of the given
// label patterns, e.g. labelValue(text, "Instruction Mode", "Delivery Mode").
// Labels are matched case-insensitively at a line start.
func labelValue(text string, labels ...string) string {
	for _, label := range labels {
		re := labelRe(`(?im)^(?:` + label + `)[:\s]+([^\n]+)`)
		if m := re.FindStringSubmatch(text); m != nil {
			v := strings.TrimSpace(m[1])
			if v != "" {
				return squash(v)
			}
		}
	}
	return ""
}

// intValue extracts a labelled integer, returning -1 when absent so callers
// can distinguish "not present" from a real zero.
func intValue(text string, labels ...string) int {
	for _, label := range labels {
		re := labelRe(`(?im)^(?:` + label + `)[:\s]+(\d+)`)
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return -1
}

// squash collapses internal whitespace runs into single spaces.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
