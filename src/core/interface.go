package core

import (
	"github.com/Cast4nha/scrapper-sub000/src/domain"
)

const (
	StructuredScanName = "structured_scan"
	TextRegexScanName  = "text_regex_scan"
	HtmlRegexScanName  = "html_regex_scan"
)

// Strategy is one way of reading games out of a page. Strategies share the
// deduplicator of the extraction call they run in.
type Strategy interface {
	Name() string
	Scan(page *domain.Page, seen *Deduplicator) []domain.Game
}
