package core

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Cast4nha/scrapper-sub000/src/config"
	"github.com/Cast4nha/scrapper-sub000/src/domain"

	"github.com/shopspring/decimal"
)

var (
	countRegex     = regexp.MustCompile(`\d+`)
	totalOddsRegex = regexp.MustCompile(`\d+[.,]\d+`)
	currencyRegex  = regexp.MustCompile(`(?:R\$|US\$|\$|€|£)\s*\d[\d.,]*`)
	amountRegex    = regexp.MustCompile(`\d[\d.,]*`)
)

// SummaryExtractor fills the ticket-level fields. Every field falls back to a
// default, so a ticket is always complete even when the summary is unreadable.
type SummaryExtractor struct {
	games     *regexp.Regexp
	totalOdds *regexp.Regexp
	prize     *regexp.Regexp
	bettor    *regexp.Regexp
	stake     *regexp.Regexp
	defaults  config.SummaryDefaults
}

func NewSummaryExtractor(cfg config.Extraction) *SummaryExtractor {
	return &SummaryExtractor{
		games:     labelRegex(cfg.SummaryLabels.Games),
		totalOdds: labelRegex(cfg.SummaryLabels.TotalOdds),
		prize:     labelRegex(cfg.SummaryLabels.PossiblePrize),
		bettor:    labelRegex(cfg.SummaryLabels.BettorName),
		stake:     labelRegex(cfg.SummaryLabels.Stake),
		defaults:  cfg.Defaults,
	}
}

// labelRegex matches "<label>[:] value" and captures the value. The label must
// be followed by a separator so "Aposta" does not match "Apostador".
func labelRegex(labels []string) *regexp.Regexp {
	alts := longestFirst(labels)
	if len(alts) == 0 {
		return nil
	}

	quoted := make([]string, len(alts))
	for i, l := range alts {
		quoted[i] = regexp.QuoteMeta(l)
	}

	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + strings.Join(quoted, "|") + `)(?:\s*[:\-]\s*|\s+|$)(.*)$`)
}

// Fill sets the summary fields of t. Games must already be set.
func (s *SummaryExtractor) Fill(t *domain.Ticket, page *domain.Page) {
	lines := domain.SplitLines(page.Text)

	t.TotalGames = len(t.Games)
	if raw := s.read(page, lines, domain.SummaryGames, s.games); raw != "" {
		if n, err := strconv.Atoi(countRegex.FindString(raw)); err == nil {
			t.TotalGames = n
		}
	}

	t.TotalOdds = computedTotalOdds(t.Games)
	if raw := s.read(page, lines, domain.SummaryTotalOdds, s.totalOdds); raw != "" {
		if odds := totalOddsRegex.FindString(raw); odds != "" {
			t.TotalOdds = strings.ReplaceAll(odds, ",", ".")
		}
	}

	t.PossiblePrize = s.defaults.PossiblePrize
	if amount := currencyAmount(s.read(page, lines, domain.SummaryPossiblePrize, s.prize)); amount != "" {
		t.PossiblePrize = amount
	}

	t.Stake = s.defaults.Stake
	if amount := currencyAmount(s.read(page, lines, domain.SummaryStake, s.stake)); amount != "" {
		t.Stake = amount
	}

	t.BettorName = s.defaults.BettorName
	if name := strings.TrimSpace(s.read(page, lines, domain.SummaryBettorName, s.bettor)); hasLetter(name) {
		t.BettorName = name
	}
}

// read prefers the value the collector took from the summary element and
// falls back to a labelled line of the page text. A label alone on its line
// takes its value from the next line.
func (s *SummaryExtractor) read(page *domain.Page, lines []string, key string, label *regexp.Regexp) string {
	if v := strings.TrimSpace(page.Summary[key]); v != "" {
		return v
	}
	if label == nil {
		return ""
	}

	for i, l := range lines {
		m := label.FindStringSubmatch(l)
		if m == nil {
			continue
		}

		if v := strings.TrimSpace(m[1]); v != "" {
			return v
		}
		if i+1 < len(lines) {
			return lines[i+1]
		}
	}

	return ""
}

func currencyAmount(raw string) string {
	if raw == "" {
		return ""
	}
	if m := currencyRegex.FindString(raw); m != "" {
		return strings.TrimSpace(m)
	}
	return amountRegex.FindString(raw)
}

// computedTotalOdds multiplies the odds of every selection.
func computedTotalOdds(games []domain.Game) string {
	total := decimal.NewFromInt(1)
	n := 0
	for _, g := range games {
		for _, sel := range g.Selections {
			total = total.Mul(sel.Odds)
			n++
		}
	}

	if n == 0 {
		return decimal.Zero.StringFixed(2)
	}
	return total.StringFixed(2)
}
