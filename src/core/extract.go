package core

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Cast4nha/scrapper-sub000/src/config"
	"github.com/Cast4nha/scrapper-sub000/src/domain"

	"github.com/shopspring/decimal"
)

const maxNameLength = 60

var (
	oddsTokenRegex = regexp.MustCompile(`\d+\.\d+`)
	oddsLineRegex  = regexp.MustCompile(`^\d+\.\d+$`)
	kickoffRegex   = regexp.MustCompile(`\b(\d{2}/\d{2})\s+(\d{2}:\d{2})\b`)
)

// Extractor pulls single fields out of a block. It keeps no state besides
// the compiled keyword tables, so one Extractor is safe for concurrent use.
type Extractor struct {
	league     *keywordMatcher
	wager      *keywordMatcher
	summary    *keywordMatcher
	separators []string
	teamRegex  *regexp.Regexp
}

func NewExtractor(cfg config.Extraction) *Extractor {
	seps := make([]string, 0, len(cfg.TeamSeparators))
	quoted := make([]string, 0, len(cfg.TeamSeparators))
	for _, s := range cfg.TeamSeparators {
		if s = strings.TrimSpace(s); s != "" {
			seps = append(seps, s)
			quoted = append(quoted, regexp.QuoteMeta(s))
		}
	}
	if len(seps) == 0 {
		seps = []string{"x"}
		quoted = []string{"x"}
	}

	labels := cfg.SummaryLabels
	var summary []string
	for _, l := range [][]string{labels.Games, labels.TotalOdds, labels.PossiblePrize, labels.BettorName, labels.Stake} {
		summary = append(summary, l...)
	}

	return &Extractor{
		league:     newKeywordMatcher(cfg.LeagueKeywords),
		wager:      newKeywordMatcher(cfg.WagerKeywords),
		summary:    newLabelMatcher(summary),
		separators: seps,
		teamRegex:  regexp.MustCompile(`^(.+?)\s+(?:` + strings.Join(quoted, "|") + `)\s+(.+)$`),
	}
}

// isWagerLine holds for a line with a wager keyword that is not a ticket
// summary label such as "Total odds".
func (e *Extractor) isWagerLine(line string) bool {
	return e.wager.match(line) && !e.isSummaryLine(line)
}

func (e *Extractor) isSummaryLine(line string) bool {
	return e.summary.match(line)
}

func isOddsLine(line string) bool {
	return oddsLineRegex.MatchString(line)
}

func (e *Extractor) isTeamLine(line string) bool {
	return e.teamRegex.MatchString(line) && !e.isWagerLine(line) && !isOddsLine(line)
}

func (e *Extractor) isDateLine(line string) bool {
	return kickoffRegex.MatchString(line) &&
		!e.teamRegex.MatchString(line) &&
		!e.league.match(line) &&
		!e.isWagerLine(line)
}

func (e *Extractor) isLeagueLine(line string) bool {
	return e.league.match(line) && !e.isWagerLine(line) && !isOddsLine(line) &&
		!e.isDateLine(line) && !e.isTeamLine(line) && !e.isSummaryLine(line)
}

func (e *Extractor) isNameLine(line string) bool {
	if !hasLetter(line) || utf8.RuneCountInString(line) > maxNameLength {
		return false
	}

	return !e.isSeparator(line) &&
		!e.isSummaryLine(line) &&
		!e.isWagerLine(line) &&
		!isOddsLine(line) &&
		!kickoffRegex.MatchString(line) &&
		!e.league.match(line) &&
		!e.isTeamLine(line)
}

func (e *Extractor) isSeparator(s string) bool {
	for _, sep := range e.separators {
		if s == sep {
			return true
		}
	}
	return false
}

// League returns the first line that is not a wager, odds, date or team line.
// Unlike a plain first-line rule it also skips the team line and summary
// labels, and a later line carrying a league keyword wins over an earlier
// line without one.
func (e *Extractor) League(b domain.Block) string {
	first := ""
	for _, l := range b.Lines {
		if e.isWagerLine(l) || isOddsLine(l) || e.isDateLine(l) || e.isTeamLine(l) || e.isSummaryLine(l) {
			continue
		}
		if e.league.match(l) {
			return l
		}
		if first == "" {
			first = l
		}
	}

	return first
}

// Teams finds "Home x Away" on one line, falling back to two consecutive
// name-like lines.
func (e *Extractor) Teams(b domain.Block) (home, away string, ok bool) {
	for _, l := range b.Lines {
		if !e.isTeamLine(l) {
			continue
		}

		l = strings.TrimSpace(kickoffRegex.ReplaceAllString(l, ""))
		m := e.teamRegex.FindStringSubmatch(l)
		if m == nil {
			continue
		}

		home, away = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if home != "" && away != "" {
			return home, away, true
		}
	}

	for i := 0; i+1 < len(b.Lines); i++ {
		if e.isNameLine(b.Lines[i]) && e.isNameLine(b.Lines[i+1]) {
			return b.Lines[i], b.Lines[i+1], true
		}
	}

	return "", "", false
}

// Kickoff returns the first "DD/MM HH:MM" in the block or nil.
func (e *Extractor) Kickoff(b domain.Block) *string {
	m := kickoffRegex.FindStringSubmatch(b.Text)
	if m == nil {
		return nil
	}

	kickoff := m[1] + " " + m[2]
	return &kickoff
}

// Odds parses a line that holds nothing but a decimal odds token.
func Odds(line string) (decimal.Decimal, bool) {
	line = strings.TrimSpace(line)
	if !isOddsLine(line) {
		return decimal.Zero, false
	}

	odds, err := decimal.NewFromString(line)
	if err != nil || !odds.IsPositive() {
		return decimal.Zero, false
	}

	return odds, true
}

// Selections pairs every wager line with the standalone odds lines after it.
// Each further odds line before the next wager line is another selection with
// the same description. Odds lines with no wager line before them are ignored.
func (e *Extractor) Selections(b domain.Block) []domain.Selection {
	var (
		out     []domain.Selection
		pending string
	)

	for _, l := range b.Lines {
		if e.isWagerLine(l) {
			pending = l
			continue
		}

		odds, ok := Odds(l)
		if !ok || pending == "" {
			continue
		}

		out = append(out, domain.Selection{Description: pending, Odds: odds})
	}

	return out
}

func (e *Extractor) hasWager(b domain.Block) bool {
	for _, l := range b.Lines {
		if e.isWagerLine(l) {
			return true
		}
	}
	return false
}
