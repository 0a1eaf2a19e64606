package core

import (
	"strings"

	"github.com/Cast4nha/scrapper-sub000/src/domain"

	"github.com/sirupsen/logrus"
)

// How far past a wager line the odds line may sit.
const oddsLookahead = 2

// segmentLines cuts a flat list of page lines into synthetic blocks. A team
// line opens a game and carries the last league line seen plus the kickoff
// around it; a wager line takes the odds lines that follow it. Summary labels
// are never wager lines. A league keyword is not required here.
func segmentLines(ex *Extractor, lines []string) []step {
	var (
		steps   []step
		league  string
		kickoff string
	)

	for i := 0; i < len(lines); i++ {
		l := lines[i]

		switch {
		case ex.isTeamLine(l):
			header := make([]string, 0, 3)
			if league != "" {
				header = append(header, league)
			}
			if kickoff != "" {
				header = append(header, kickoff)
			} else if i+1 < len(lines) && ex.isDateLine(lines[i+1]) {
				header = append(header, lines[i+1])
				i++
			}
			header = append(header, l)

			steps = append(steps, step{class: NewGame, block: syntheticBlock(len(steps), header)})
			kickoff = ""

		case ex.isWagerLine(l):
			sel := []string{l}
			for j := i + 1; j < len(lines) && j <= i+oddsLookahead; j++ {
				if isOddsLine(lines[j]) {
					// odds lines right after the first one belong to the same wager
					for ; j < len(lines) && isOddsLine(lines[j]); j++ {
						sel = append(sel, lines[j])
					}
					i = j - 1
					break
				}
				if ex.isWagerLine(lines[j]) || ex.isTeamLine(lines[j]) {
					break
				}
			}

			steps = append(steps, step{class: AdditionalSelection, block: syntheticBlock(len(steps), sel)})

		case ex.isDateLine(l):
			kickoff = l

		case ex.isLeagueLine(l):
			league = l
		}
	}

	return steps
}

func syntheticBlock(ordinal int, lines []string) domain.Block {
	return domain.Block{
		Ordinal: ordinal,
		Text:    strings.Join(lines, "\n"),
		Lines:   lines,
	}
}

// TextRegexScan reads the rendered page text line by line.
type TextRegexScan struct {
	ex  *Extractor
	log *logrus.Entry
}

func NewTextRegexScan(ex *Extractor, log *logrus.Entry) *TextRegexScan {
	return &TextRegexScan{
		ex:  ex,
		log: log.WithField("strategy", TextRegexScanName),
	}
}

func (s *TextRegexScan) Name() string {
	return TextRegexScanName
}

func (s *TextRegexScan) Scan(page *domain.Page, seen *Deduplicator) []domain.Game {
	lines := domain.SplitLines(page.Text)
	if len(lines) == 0 {
		return []domain.Game{}
	}

	steps := segmentLines(s.ex, lines)
	s.log.WithFields(logrus.Fields{
		"lines":    len(lines),
		"segments": len(steps),
	}).Debug("page text segmented")

	return aggregate(s.ex, steps, seen, s.log)
}
