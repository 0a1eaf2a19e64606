package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Keys of Page.Summary filled by the collector.
const (
	SummaryGames         = "games"
	SummaryTotalOdds     = "total_odds"
	SummaryPossiblePrize = "possible_prize"
	SummaryBettorName    = "bettor_name"
	SummaryStake         = "stake"
)

// Block is the text of one on-page row.
type Block struct {
	Ordinal int
	Text    string
	Lines   []string
}

func NewBlock(ordinal int, text string) Block {
	return Block{
		Ordinal: ordinal,
		Text:    text,
		Lines:   SplitLines(text),
	}
}

// SplitLines splits text on line breaks, trims every line and drops empty ones.
func SplitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}

	return lines
}

// Page is everything the collector read from one ticket page.
type Page struct {
	Code    string
	Blocks  []Block
	Text    string
	HTML    string
	Summary map[string]string
}

type Selection struct {
	Description string          `json:"description"`
	Odds        decimal.Decimal `json:"odds"`
}

type Game struct {
	League     string      `json:"league"`
	HomeTeam   string      `json:"home_team"`
	AwayTeam   string      `json:"away_team"`
	Kickoff    *string     `json:"kickoff"`
	Selections []Selection `json:"selections"`
}

type Ticket struct {
	Code          string `json:"code"`
	Games         []Game `json:"games"`
	TotalGames    int    `json:"total_games"`
	TotalOdds     string `json:"total_odds"`
	PossiblePrize string `json:"possible_prize"`
	BettorName    string `json:"bettor_name"`
	Stake         string `json:"stake"`
}
