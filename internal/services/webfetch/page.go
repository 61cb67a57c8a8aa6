package webfetch

import (
	"strings"

	"golang.org/x/net/html"

	"macrowatch/internal/textutil"
)

// Page is the structural summary of a parsed HTML document: document title,
// meta tags by name/property, paragraph text in document order, and links.
type Page struct {
	Title      string
	Meta       map[string]string
	Paragraphs []string
	Links      []Link
}

// Link is one anchor extracted from a page.
type Link struct {
	Href string
	Text string
}

// ParsePage walks markup once and collects the structure the rest of the
// system needs. Parsing never fails; unparseable input yields an empty Page.
func ParsePage(markup string) Page {
	page := Page{Meta: map[string]string{}}
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return page
	}
	walk(root, &page)
	return page
}

func walk(node *html.Node, page *Page) {
	if node.Type == html.ElementNode {
		switch node.Data {
		case "script", "style", "noscript", "template":
			return
		case "title":
			if page.Title == "" {
				page.Title = textutil.NormalizeSpace(nodeText(node))
			}
		case "meta":
			key := attr(node, "property")
			if key == "" {
				key = attr(node, "name")
			}
			if key != "" {
				if content := strings.TrimSpace(attr(node, "content")); content != "" {
					if _, exists := page.Meta[key]; !exists {
						page.Meta[key] = content
					}
				}
			}
		case "p":
			if text := textutil.NormalizeSpace(nodeText(node)); text != "" {
				page.Paragraphs = append(page.Paragraphs, text)
			}
			return
		case "a":
			if href := strings.TrimSpace(attr(node, "href")); href != "" {
				page.Links = append(page.Links, Link{
					Href: href,
					Text: textutil.NormalizeSpace(nodeText(node)),
				})
			}
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walk(child, page)
	}
}

func nodeText(node *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(node)
	return b.String()
}

func attr(node *html.Node, name string) string {
	for _, a := range node.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
