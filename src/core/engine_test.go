package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/Cast4nha/scrapper-sub000/src/config"
	"github.com/Cast4nha/scrapper-sub000/src/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEngine(skip int) *Engine {
	cfg := config.Default().Extraction
	cfg.SkipCount = skip
	return NewEngine(cfg, quietLogger())
}

func blocksPage(texts ...string) *domain.Page {
	blocks := make([]domain.Block, 0, len(texts))
	for i, text := range texts {
		blocks = append(blocks, domain.NewBlock(i, text))
	}
	return &domain.Page{Code: "ABC123", Blocks: blocks}
}

func mustExtract(t *testing.T, e *Engine, page *domain.Page) *domain.Ticket {
	t.Helper()

	ticket, err := e.Extract(page)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ticket.Games == nil {
		t.Fatalf("Extract returned nil games")
	}
	return ticket
}

func assertSelection(t *testing.T, sel domain.Selection, desc, odds string) {
	t.Helper()

	if sel.Description != desc || !sel.Odds.Equal(decimal.RequireFromString(odds)) {
		t.Errorf("selection = {%q %s}, want {%q %s}", sel.Description, sel.Odds, desc, odds)
	}
}

func TestExtractHeaderThenWinner(t *testing.T) {
	ticket := mustExtract(t, newTestEngine(0), blocksPage(headerBlock, winnerBlock))

	if len(ticket.Games) != 1 {
		t.Fatalf("got %d games, want 1", len(ticket.Games))
	}

	g := ticket.Games[0]
	if g.League != "Brazil: Série A" || g.HomeTeam != "Flamengo" || g.AwayTeam != "Palmeiras" {
		t.Errorf("game = %q %q x %q", g.League, g.HomeTeam, g.AwayTeam)
	}
	if g.Kickoff == nil || *g.Kickoff != "12/08 20:00" {
		t.Errorf("kickoff = %v, want 12/08 20:00", g.Kickoff)
	}
	if len(g.Selections) != 1 {
		t.Fatalf("got %d selections, want 1", len(g.Selections))
	}
	assertSelection(t, g.Selections[0], "Winner: Flamengo", "1.85")

	if ticket.Code != "ABC123" || ticket.TotalGames != 1 {
		t.Errorf("ticket code=%q total_games=%d", ticket.Code, ticket.TotalGames)
	}
}

func TestExtractAdditionalSelectionJoinsSameGame(t *testing.T) {
	ticket := mustExtract(t, newTestEngine(0), blocksPage(headerBlock, winnerBlock, drawBlock))

	if len(ticket.Games) != 1 {
		t.Fatalf("got %d games, want 1", len(ticket.Games))
	}
	sels := ticket.Games[0].Selections
	if len(sels) != 2 {
		t.Fatalf("got %d selections, want 2", len(sels))
	}
	assertSelection(t, sels[0], "Winner: Flamengo", "1.85")
	assertSelection(t, sels[1], "Draw", "3.20")

	if ticket.TotalOdds != "5.92" {
		t.Errorf("computed total odds = %q, want 5.92", ticket.TotalOdds)
	}
}

func TestExtractNoiseOnly(t *testing.T) {
	ticket := mustExtract(t, newTestEngine(0), blocksPage("Advertisement banner"))

	if len(ticket.Games) != 0 {
		t.Fatalf("got %d games, want 0", len(ticket.Games))
	}

	defaults := config.Default().Extraction.Defaults
	if ticket.TotalGames != 0 || ticket.TotalOdds != "0.00" {
		t.Errorf("total_games=%d total_odds=%q", ticket.TotalGames, ticket.TotalOdds)
	}
	if ticket.Stake != defaults.Stake || ticket.BettorName != defaults.BettorName || ticket.PossiblePrize != defaults.PossiblePrize {
		t.Errorf("summary defaults not applied: %+v", ticket)
	}

	raw, err := json.Marshal(ticket)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(raw, []byte(`"games":[]`)) {
		t.Errorf("empty games should marshal as [], got %s", raw)
	}
}

func TestExtractPreservesGameOrder(t *testing.T) {
	ticket := mustExtract(t, newTestEngine(0), blocksPage(
		headerBlock,
		winnerBlock,
		"Advertisement banner",
		"England: Premier League\n13/08 16:00\nArsenal x Chelsea",
		"Both teams to score\n1.70",
		"Spain: La Liga\nBetis x Sevilla",
		"Over 2.5 Goals\n1.95",
	))

	want := []string{"Flamengo", "Arsenal", "Betis"}
	if len(ticket.Games) != len(want) {
		t.Fatalf("got %d games, want %d", len(ticket.Games), len(want))
	}
	for i, home := range want {
		if ticket.Games[i].HomeTeam != home {
			t.Errorf("game %d home = %q, want %q", i, ticket.Games[i].HomeTeam, home)
		}
	}
	if ticket.Games[2].Kickoff != nil {
		t.Errorf("game without a date should have nil kickoff, got %q", *ticket.Games[2].Kickoff)
	}
}

func TestExtractDeduplicates(t *testing.T) {
	tests := []struct {
		name      string
		blocks    []string
		wantGames int
		wantSels  int
	}{
		{"row rendered twice", []string{headerBlock, winnerBlock, winnerBlock}, 1, 1},
		{"odds written differently", []string{headerBlock, winnerBlock, "Winner: Flamengo\n1.850"}, 1, 1},
		{"whole game rendered twice", []string{headerBlock, winnerBlock, headerBlock, winnerBlock}, 1, 1},
		{"repeated game with a new wager", []string{headerBlock, winnerBlock, headerBlock, winnerBlock, drawBlock}, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := mustExtract(t, newTestEngine(0), blocksPage(tt.blocks...))

			if len(ticket.Games) != tt.wantGames {
				t.Fatalf("got %d games, want %d", len(ticket.Games), tt.wantGames)
			}

			keys := make(map[string]bool)
			total := 0
			for i := range ticket.Games {
				g := &ticket.Games[i]
				if len(g.Selections) == 0 {
					t.Errorf("game %d has no selections", i)
				}
				for _, sel := range g.Selections {
					key := SelectionKey(g, sel)
					if keys[key] {
						t.Errorf("duplicate selection %q in output", sel.Description)
					}
					keys[key] = true
					total++
				}
			}
			if total != tt.wantSels {
				t.Errorf("got %d selections, want %d", total, tt.wantSels)
			}
		})
	}
}

func TestExtractExtraOddsInOneBlock(t *testing.T) {
	ticket := mustExtract(t, newTestEngine(0), blocksPage(headerBlock, "Winner: Flamengo\n1.85\n2.10"))

	if len(ticket.Games) != 1 {
		t.Fatalf("got %d games, want 1", len(ticket.Games))
	}
	sels := ticket.Games[0].Selections
	if len(sels) != 2 {
		t.Fatalf("got %d selections, want 2", len(sels))
	}
	assertSelection(t, sels[0], "Winner: Flamengo", "1.85")
	assertSelection(t, sels[1], "Winner: Flamengo", "2.10")
}

func TestExtractDropsInlineOddsRow(t *testing.T) {
	ticket := mustExtract(t, newTestEngine(0), blocksPage(headerBlock, winnerBlock, "Over 2.5 Goals 1.95"))

	if len(ticket.Games) != 1 || len(ticket.Games[0].Selections) != 1 {
		t.Fatalf("games = %+v, want one game with one selection", ticket.Games)
	}
	assertSelection(t, ticket.Games[0].Selections[0], "Winner: Flamengo", "1.85")
}

func TestExtractIgnoresSummaryRows(t *testing.T) {
	ticket := mustExtract(t, newTestEngine(0), blocksPage(
		headerBlock,
		winnerBlock,
		drawBlock,
		"Total odds\n9.99",
		"Cotação total\n9.99",
		"Apostador\nMaria",
		"Valor apostado\nR$ 10,00",
	))

	if len(ticket.Games) != 1 {
		t.Fatalf("got %d games, want 1", len(ticket.Games))
	}
	sels := ticket.Games[0].Selections
	if len(sels) != 2 {
		t.Fatalf("got %d selections, want 2: %+v", len(sels), sels)
	}
	assertSelection(t, sels[0], "Winner: Flamengo", "1.85")
	assertSelection(t, sels[1], "Draw", "3.20")

	if ticket.TotalOdds != "5.92" {
		t.Errorf("computed total odds = %q, want 5.92", ticket.TotalOdds)
	}
}

func TestExtractDropsSelectionBeforeFirstGame(t *testing.T) {
	ticket := mustExtract(t, newTestEngine(0), blocksPage(winnerBlock, headerBlock, drawBlock))

	if len(ticket.Games) != 1 || len(ticket.Games[0].Selections) != 1 {
		t.Fatalf("games = %+v, want one game with one selection", ticket.Games)
	}
	assertSelection(t, ticket.Games[0].Selections[0], "Draw", "3.20")
}

func TestExtractDropsGameWithoutSelections(t *testing.T) {
	ticket := mustExtract(t, newTestEngine(0), blocksPage(
		"England: Premier League\nArsenal x Chelsea",
		headerBlock,
		winnerBlock,
	))

	if len(ticket.Games) != 1 || ticket.Games[0].HomeTeam != "Flamengo" {
		t.Fatalf("games = %+v, want only the Flamengo game", ticket.Games)
	}
}

func TestExtractSkipCountBoundary(t *testing.T) {
	blocks := []string{headerBlock, winnerBlock, headerBlock, winnerBlock}

	tests := []struct {
		skip      int
		wantGames int
	}{
		{0, 1},
		{1, 1},
		{2, 1},
		{3, 0},
		{4, 0},
		{10, 0},
	}

	for _, tt := range tests {
		ticket := mustExtract(t, newTestEngine(tt.skip), blocksPage(blocks...))
		if len(ticket.Games) != tt.wantGames {
			t.Errorf("skip=%d: got %d games, want %d", tt.skip, len(ticket.Games), tt.wantGames)
		}
	}

	// a header hidden behind the skip count never opens a game
	ticket := mustExtract(t, newTestEngine(1), blocksPage(headerBlock, winnerBlock))
	if len(ticket.Games) != 0 {
		t.Errorf("skipped header still produced %d games", len(ticket.Games))
	}
}

func TestExtractDefaultSkipCount(t *testing.T) {
	texts := make([]string, 0, config.DefaultSkipCount+2)
	for i := 0; i < config.DefaultSkipCount; i++ {
		texts = append(texts, headerBlock)
	}
	texts = append(texts, "England: Premier League\nArsenal x Chelsea", "Draw\n3.40")

	ticket := mustExtract(t, NewEngine(config.Default().Extraction, quietLogger()), blocksPage(texts...))
	if len(ticket.Games) != 1 || ticket.Games[0].HomeTeam != "Arsenal" {
		t.Fatalf("games = %+v, want only the block after the navigation rows", ticket.Games)
	}
}

type fakeStrategy struct {
	name  string
	games []domain.Game
	calls int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Scan(page *domain.Page, seen *Deduplicator) []domain.Game {
	f.calls++
	return f.games
}

func oneGame() []domain.Game {
	return []domain.Game{{
		League:     "L",
		HomeTeam:   "A",
		AwayTeam:   "B",
		Selections: []domain.Selection{{Description: "Draw", Odds: decimal.RequireFromString("3.10")}},
	}}
}

func TestExtractFallbackOrder(t *testing.T) {
	tests := []struct {
		name      string
		found     [3]bool
		wantCalls [3]int
		wantGames int
	}{
		{"structured wins", [3]bool{true, true, true}, [3]int{1, 0, 0}, 1},
		{"text wins", [3]bool{false, true, true}, [3]int{1, 1, 0}, 1},
		{"html wins", [3]bool{false, false, true}, [3]int{1, 1, 1}, 1},
		{"all empty", [3]bool{false, false, false}, [3]int{1, 1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := []string{StructuredScanName, TextRegexScanName, HtmlRegexScanName}
			fakes := make([]*fakeStrategy, 3)
			strategies := make([]Strategy, 3)
			for i := range fakes {
				fakes[i] = &fakeStrategy{name: names[i]}
				if tt.found[i] {
					fakes[i].games = oneGame()
				}
				strategies[i] = fakes[i]
			}

			e := newTestEngine(0).WithStrategies(strategies...)
			ticket := mustExtract(t, e, blocksPage())

			for i, f := range fakes {
				if f.calls != tt.wantCalls[i] {
					t.Errorf("%s called %d times, want %d", f.name, f.calls, tt.wantCalls[i])
				}
			}
			if len(ticket.Games) != tt.wantGames {
				t.Errorf("got %d games, want %d", len(ticket.Games), tt.wantGames)
			}
		})
	}
}

func TestExtractFallsBackToPageText(t *testing.T) {
	page := blocksPage("Advertisement banner")
	page.Text = "Meus bilhetes\n" + headerBlock + "\n" + winnerBlock + "\n" + drawBlock + "\nTotal odds: 5.92"

	ticket := mustExtract(t, newTestEngine(0), page)

	if len(ticket.Games) != 1 {
		t.Fatalf("got %d games, want 1", len(ticket.Games))
	}
	g := ticket.Games[0]
	if g.League != "Brazil: Série A" || g.HomeTeam != "Flamengo" || g.AwayTeam != "Palmeiras" {
		t.Errorf("game = %q %q x %q", g.League, g.HomeTeam, g.AwayTeam)
	}
	if g.Kickoff == nil || *g.Kickoff != "12/08 20:00" {
		t.Errorf("kickoff = %v, want 12/08 20:00", g.Kickoff)
	}
	if len(g.Selections) != 2 {
		t.Fatalf("got %d selections, want 2", len(g.Selections))
	}
	assertSelection(t, g.Selections[1], "Draw", "3.20")
}

func TestExtractFallsBackToPageTextWithSummaryLabels(t *testing.T) {
	page := blocksPage("Advertisement banner")
	page.Text = headerBlock + "\n" + winnerBlock + "\n" + drawBlock +
		"\nTotal odds\n5.92\nCotação total\n5.92\nApostador\nMaria\nValor apostado\nR$ 10,00"

	ticket := mustExtract(t, newTestEngine(0), page)

	if len(ticket.Games) != 1 {
		t.Fatalf("got %d games, want 1", len(ticket.Games))
	}
	sels := ticket.Games[0].Selections
	if len(sels) != 2 {
		t.Fatalf("got %d selections, want 2: %+v", len(sels), sels)
	}
	assertSelection(t, sels[0], "Winner: Flamengo", "1.85")
	assertSelection(t, sels[1], "Draw", "3.20")

	if ticket.TotalOdds != "5.92" || ticket.BettorName != "Maria" || ticket.Stake != "R$ 10,00" {
		t.Errorf("summary = odds %q bettor %q stake %q", ticket.TotalOdds, ticket.BettorName, ticket.Stake)
	}
}

func TestExtractFallsBackToHTML(t *testing.T) {
	page := &domain.Page{
		Code:   "HTML1",
		Blocks: []domain.Block{},
		HTML: `<html><head><style>.sel { color: red; }</style>
<script>var tpl = "<b>Winner: Nobody</b><i>9.99</i>";</script></head>
<body>
  <!-- <div>Winner: Hidden</div><div>7.77</div> -->
  <div class="league">Brazil: S&eacute;rie A</div>
  <div class="teams"><span>Flamengo</span> <span>x</span> <span>Palmeiras</span></div>
  <div class="date">12/08 20:00</div>
  <div class="sel"><span>Winner: Flamengo</span><span>1.85</span></div>
</body></html>`,
	}

	ticket := mustExtract(t, newTestEngine(0), page)

	if len(ticket.Games) != 1 {
		t.Fatalf("got %d games, want 1", len(ticket.Games))
	}
	g := ticket.Games[0]
	if g.League != "Brazil: Série A" || g.HomeTeam != "Flamengo" || g.AwayTeam != "Palmeiras" {
		t.Errorf("game = %q %q x %q", g.League, g.HomeTeam, g.AwayTeam)
	}
	if g.Kickoff == nil || *g.Kickoff != "12/08 20:00" {
		t.Errorf("kickoff = %v, want 12/08 20:00", g.Kickoff)
	}
	if len(g.Selections) != 1 {
		t.Fatalf("got %d selections, want 1", len(g.Selections))
	}
	assertSelection(t, g.Selections[0], "Winner: Flamengo", "1.85")
}

func TestExtractIsIdempotent(t *testing.T) {
	e := newTestEngine(0)
	page := blocksPage(headerBlock, winnerBlock, drawBlock, "Spain: La Liga\nBetis x Sevilla", "Over 2.5 Goals\n1.95")
	page.Text = "Apostador: Maria\nValor apostado: R$ 20,00"

	first, err := json.Marshal(mustExtract(t, e, page))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(mustExtract(t, e, page))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("extractions differ:\n%s\n%s", first, second)
	}
}

func TestExtractInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		engine *Engine
		page   *domain.Page
	}{
		{"nil page", newTestEngine(0), nil},
		{"nil block list", newTestEngine(0), &domain.Page{Code: "X"}},
		{"negative skip count", newTestEngine(-1), blocksPage(headerBlock)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket, err := tt.engine.Extract(tt.page)
			if ticket != nil {
				t.Errorf("expected no ticket, got %+v", ticket)
			}

			var invalid *InvalidInputError
			if !errors.As(err, &invalid) {
				t.Errorf("err = %v, want *InvalidInputError", err)
			}
		})
	}

	// an empty but present block list is not a contract violation
	if _, err := newTestEngine(0).Extract(blocksPage()); err != nil {
		t.Errorf("empty block list: %v", err)
	}
}
