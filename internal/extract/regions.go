package extract

import (
	"strings"

	"github.com/medwatch/claimscan/internal/model"
	"golang.org/x/net/html"
)

// RegionExtractor turns raw HTML into analyzable text regions. Structural
// regions (navigation, header, footer, menus) are flagged so downstream
// learning can record menu_text exclusions for spans inside them.
type RegionExtractor struct{}

// NewRegionExtractor creates a new region extractor
func NewRegionExtractor() *RegionExtractor {
	return &RegionExtractor{}
}

// menuTags are elements whose subtree counts as a structural region
var menuTags = map[string]bool{
	"nav":    true,
	"header": true,
	"footer": true,
	"aside":  true,
	"menu":   true,
}

// Extract parses HTML and returns one body region plus one region per
// structural block, each labeled with the source URL.
func (e *RegionExtractor) Extract(htmlContent, sourceLabel string) ([]model.Document, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	var body strings.Builder
	var menus []string

	var walk func(n *html.Node, inMenu bool)
	walk = func(n *html.Node, inMenu bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
			if !inMenu && isMenuNode(n) {
				var menu strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					collectText(c, &menu)
				}
				if text := strings.TrimSpace(menu.String()); text != "" {
					menus = append(menus, text)
				}
				return
			}
		}

		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				body.WriteString(text)
				body.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inMenu)
		}
	}
	walk(doc, false)

	var regions []model.Document
	if text := strings.TrimSpace(body.String()); text != "" {
		regions = append(regions, model.Document{
			Text:        text,
			SourceLabel: sourceLabel,
		})
	}
	for _, menu := range menus {
		regions = append(regions, model.Document{
			Text:         menu,
			SourceLabel:  sourceLabel,
			IsMenuRegion: true,
		})
	}

	return regions, nil
}

// isMenuNode reports whether an element starts a structural region, by tag
// or by common menu/nav class and role markers
func isMenuNode(n *html.Node) bool {
	if menuTags[n.Data] {
		return true
	}
	for _, attr := range n.Attr {
		switch attr.Key {
		case "role":
			if attr.Val == "navigation" || attr.Val == "menu" || attr.Val == "menubar" {
				return true
			}
		case "class", "id":
			val := strings.ToLower(attr.Val)
			if strings.Contains(val, "navbar") || strings.Contains(val, "nav-menu") ||
				strings.Contains(val, "main-menu") || strings.Contains(val, "breadcrumb") {
				return true
			}
		}
	}
	return false
}

// collectText gathers visible text from a subtree
func collectText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "iframe":
			return
		}
	}
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			buf.WriteString(text)
			buf.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, buf)
	}
}
