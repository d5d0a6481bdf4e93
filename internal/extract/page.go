package extract

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// boilerplate lists elements that never carry article text
const boilerplate = "script, style, noscript, header, footer, nav, form, aside"

// Site narrows paragraph extraction for a family of pages
type Site struct {
	Name    string
	Hosts   []string // Host suffixes the site serves
	Content string   // Article container; the whole document when empty or unmatched
	Remove  string   // Extra selectors dropped before reading paragraphs
}

// Generic applies to every page without a more specific site
var Generic = Site{Name: "generic"}

var sites = []Site{
	{
		Name:    "wikipedia",
		Hosts:   []string{"wikipedia.org"},
		Content: "#mw-content-text",
		// Citation markers and edit links would otherwise leak into sentences
		Remove: "sup.reference, .mw-editsection, .infobox, .navbox, .reflist, .hatnote, table",
	},
}

// SiteFor returns the site matching rawURL's host, or Generic
func SiteFor(rawURL string) Site {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Generic
	}
	host := strings.ToLower(u.Hostname())
	for _, s := range sites {
		for _, suffix := range s.Hosts {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return s
			}
		}
	}
	return Generic
}

// PageText returns the paragraph text of an HTML document, one paragraph
// per line. Boilerplate elements are removed first; empty paragraphs are skipped.
func PageText(r io.Reader) (string, error) {
	return Generic.PageText(r)
}

// PageTextFor is PageText with the extraction rules of the site serving rawURL
func PageTextFor(r io.Reader, rawURL string) (string, error) {
	return SiteFor(rawURL).PageText(r)
}

// PageText extracts paragraph text using the site's rules
func (s Site) PageText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", eris.Wrap(err, "extract: parse html")
	}

	doc.Find(boilerplate).Remove()
	if s.Remove != "" {
		doc.Find(s.Remove).Remove()
	}

	root := doc.Selection
	if s.Content != "" {
		if content := doc.Find(s.Content); content.Length() > 0 {
			root = content
		}
	}

	var paragraphs []string
	root.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := normalizeWhitespace(p.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return strings.Join(paragraphs, "\n"), nil
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
