package core

import (
	"html"
	"regexp"
	"strings"

	"github.com/Cast4nha/scrapper-sub000/src/domain"

	"github.com/sirupsen/logrus"
)

var (
	scriptRegex     = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleRegex      = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	commentRegex    = regexp.MustCompile(`(?s)<!--.*?-->`)
	textNodeRegex   = regexp.MustCompile(`>([^<>]+)<`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// HtmlRegexScan reads text nodes straight out of the raw page HTML.
type HtmlRegexScan struct {
	ex  *Extractor
	log *logrus.Entry
}

func NewHtmlRegexScan(ex *Extractor, log *logrus.Entry) *HtmlRegexScan {
	return &HtmlRegexScan{
		ex:  ex,
		log: log.WithField("strategy", HtmlRegexScanName),
	}
}

func (s *HtmlRegexScan) Name() string {
	return HtmlRegexScanName
}

func (s *HtmlRegexScan) Scan(page *domain.Page, seen *Deduplicator) []domain.Game {
	nodes := s.textNodes(page.HTML)
	if len(nodes) == 0 {
		return []domain.Game{}
	}

	steps := segmentLines(s.ex, nodes)
	s.log.WithFields(logrus.Fields{
		"nodes":    len(nodes),
		"segments": len(steps),
	}).Debug("html text nodes segmented")

	return aggregate(s.ex, steps, seen, s.log)
}

// textNodes returns the visible text nodes in document order. Team names
// rendered as three nodes ("Home", "x", "Away") are joined into one line.
func (s *HtmlRegexScan) textNodes(raw string) []string {
	if raw == "" {
		return nil
	}

	raw = scriptRegex.ReplaceAllString(raw, "")
	raw = styleRegex.ReplaceAllString(raw, "")
	raw = commentRegex.ReplaceAllString(raw, "")

	var nodes []string
	for _, m := range textNodeRegex.FindAllStringSubmatch(raw, -1) {
		text := html.UnescapeString(m[1])
		text = strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
		if text != "" {
			nodes = append(nodes, text)
		}
	}

	joined := make([]string, 0, len(nodes))
	for i := 0; i < len(nodes); i++ {
		if s.ex.isSeparator(nodes[i]) && len(joined) > 0 && i+1 < len(nodes) {
			prev := joined[len(joined)-1]
			joined[len(joined)-1] = prev + " " + nodes[i] + " " + nodes[i+1]
			i++
			continue
		}
		joined = append(joined, nodes[i])
	}

	return joined
}
