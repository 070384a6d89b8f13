package metadata

import (
	"strings"

	"golang.org/x/net/html"
)

// Author-bearing meta tags, in priority order.
var authorMetaKeys = []string{
	"name:author",
	"property:article:author",
	"property:og:article:author",
	"name:twitter:creator",
}

// Elements whose class marks them as a byline, tried when no meta tag helps.
var authorClasses = map[string]bool{
	"author":      true,
	"byline":      true,
	"author-name": true,
	"post-author": true,
}

// Lead-in phrases stripped from byline text.
var authorPrefixes = []string{"By ", "by ", "Written by ", "Author: "}

// extractArticle walks the document once and resolves title and author by
// preference: og:title over <title>, author meta tags over byline elements.
func extractArticle(body []byte) (title, author *string) {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, nil
	}

	var ogTitle, docTitle, classAuthor string
	metaAuthors := map[string]string{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				name := attr(n, "name")
				property := attr(n, "property")
				content := strings.TrimSpace(attr(n, "content"))
				if content != "" {
					if property == "og:title" && ogTitle == "" {
						ogTitle = content
					}
					if name != "" {
						keep(metaAuthors, "name:"+name, content)
					}
					if property != "" {
						keep(metaAuthors, "property:"+property, content)
					}
				}
			case "title":
				if docTitle == "" {
					docTitle = strings.TrimSpace(nodeText(n))
				}
			case "script", "style":
				return
			default:
				if classAuthor == "" && hasAuthorClass(n) {
					if text := strings.TrimSpace(nodeText(n)); text != "" {
						classAuthor = text
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if ogTitle != "" {
		title = &ogTitle
	} else if docTitle != "" {
		title = &docTitle
	}

	for _, key := range authorMetaKeys {
		if value := metaAuthors[key]; value != "" {
			author = &value
			return title, author
		}
	}
	if classAuthor != "" {
		for _, prefix := range authorPrefixes {
			if strings.HasPrefix(classAuthor, prefix) {
				classAuthor = classAuthor[len(prefix):]
				break
			}
		}
		author = &classAuthor
	}
	return title, author
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func keep(m map[string]string, key, value string) {
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}

func hasAuthorClass(n *html.Node) bool {
	for _, class := range strings.Fields(attr(n, "class")) {
		if authorClasses[class] {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if val := strings.TrimSpace(n.Data); val != "" {
				if builder.Len() > 0 {
					builder.WriteString(" ")
				}
				builder.WriteString(val)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return builder.String()
}
