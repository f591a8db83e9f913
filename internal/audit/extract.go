package audit

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// anchor is one <a href> occurrence in document order.
type anchor struct {
	href string
	text string
}

// document holds everything the scanner needs from one HTML file.
type document struct {
	title   string
	anchors []anchor
}

// extractDocument tokenizes HTML and collects anchors and the page title.
// An anchor opens only when its href attribute is present and non-empty; a
// new <a> while one is open resets accumulation to the most recent anchor.
// The first complete <title> wins.
func extractDocument(r io.Reader) (*document, error) {
	doc := &document{}
	z := html.NewTokenizer(r)

	var (
		inAnchor  bool
		href      string
		textParts []string

		inTitle    bool
		titleDone  bool
		titleParts []string
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}
			return doc, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "a":
				h := attrValue(tok, "href")
				if h == "" {
					continue
				}
				if tok.Type == html.SelfClosingTagToken {
					doc.anchors = append(doc.anchors, anchor{href: h})
					inAnchor = false
					continue
				}
				inAnchor = true
				href = h
				textParts = textParts[:0]
			case "title":
				if tok.Type != html.SelfClosingTagToken && !titleDone {
					inTitle = true
					titleParts = titleParts[:0]
				}
			}

		case html.TextToken:
			if !inAnchor && !inTitle {
				continue
			}
			text := string(z.Text())
			if inAnchor {
				textParts = append(textParts, text)
			}
			if inTitle {
				titleParts = append(titleParts, text)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "a":
				if inAnchor {
					doc.anchors = append(doc.anchors, anchor{
						href: href,
						text: normalizeText(strings.Join(textParts, " ")),
					})
					inAnchor = false
				}
			case "title":
				if inTitle {
					doc.title = normalizeText(strings.Join(titleParts, " "))
					inTitle = false
					titleDone = true
				}
			}
		}
	}
}

func attrValue(tok html.Token, name string) string {
	for _, attr := range tok.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// normalizeText collapses whitespace runs to single spaces and trims.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
