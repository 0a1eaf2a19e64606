package collector

import (
	"fmt"
	"strings"

	"github.com/Cast4nha/scrapper-sub000/src/config"
	"github.com/Cast4nha/scrapper-sub000/src/domain"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Elements that start a new line in rendered text. Everything else is inline.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"li": true, "main": true, "nav": true, "ol": true, "p": true,
	"section": true, "table": true, "tbody": true, "td": true, "th": true,
	"thead": true, "tr": true, "ul": true,
}

var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
}

// PageFromHTML turns a rendered ticket page into the engine's input: one
// block per row element, the summary element texts and the page text.
func PageFromHTML(code, raw string, sel config.Collector) (*domain.Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ticket page %s: %w", code, err)
	}

	blocks := []domain.Block{}
	if sel.Row != "" {
		doc.Find(sel.Row).Each(func(i int, s *goquery.Selection) {
			blocks = append(blocks, domain.NewBlock(i, RenderedText(s)))
		})
	}

	summary := make(map[string]string, len(sel.Summary))
	for key, css := range sel.Summary {
		if css == "" {
			continue
		}
		if v := strings.TrimSpace(RenderedText(doc.Find(css).First())); v != "" {
			summary[key] = strings.ReplaceAll(v, "\n", " ")
		}
	}

	return &domain.Page{
		Code:    code,
		Blocks:  blocks,
		Text:    RenderedText(doc.Find("body")),
		HTML:    raw,
		Summary: summary,
	}, nil
}

// RenderedText approximates innerText: block elements break lines, inline
// elements are joined with single spaces.
func RenderedText(s *goquery.Selection) string {
	w := &textWriter{}
	for _, n := range s.Nodes {
		w.walk(n)
	}
	w.flush()

	return strings.Join(w.lines, "\n")
}

type textWriter struct {
	lines []string
	cur   strings.Builder
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if skippedElements[n.Data] {
			return
		}
	}

	isBlock := n.Type == html.ElementNode && blockElements[n.Data]
	if isBlock {
		w.flush()
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}

	if isBlock {
		w.flush()
	}
}

func (w *textWriter) text(s string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return
	}

	if w.cur.Len() > 0 {
		w.cur.WriteByte(' ')
	}
	w.cur.WriteString(strings.Join(fields, " "))
}

func (w *textWriter) flush() {
	if w.cur.Len() > 0 {
		w.lines = append(w.lines, w.cur.String())
		w.cur.Reset()
	}
}
