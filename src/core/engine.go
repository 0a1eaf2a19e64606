package core

import (
	"github.com/Cast4nha/scrapper-sub000/src/config"
	"github.com/Cast4nha/scrapper-sub000/src/domain"

	"github.com/sirupsen/logrus"
)

// Engine turns one collected page into a ticket. It holds no per-call state;
// one Engine may serve many goroutines.
type Engine struct {
	skip       int
	summary    *SummaryExtractor
	strategies []Strategy
	log        *logrus.Entry
}

func NewEngine(cfg config.Extraction, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	log := logger.WithField("component", "engine")

	ex := NewExtractor(cfg)

	return &Engine{
		skip:    cfg.SkipCount,
		summary: NewSummaryExtractor(cfg),
		strategies: []Strategy{
			NewStructuredScan(ex, cfg.SkipCount, log),
			NewTextRegexScan(ex, log),
			NewHtmlRegexScan(ex, log),
		},
		log: log,
	}
}

// WithStrategies replaces the fallback chain.
func (e *Engine) WithStrategies(strategies ...Strategy) *Engine {
	e.strategies = strategies
	return e
}

// Extract runs the strategies in order and keeps the first non-empty result.
// A page with no games is a valid ticket with an empty games list.
func (e *Engine) Extract(page *domain.Page) (*domain.Ticket, error) {
	if page == nil {
		return nil, &InvalidInputError{Reason: "page is nil"}
	}
	if page.Blocks == nil {
		return nil, &InvalidInputError{Reason: "block list is nil"}
	}
	if e.skip < 0 {
		return nil, &InvalidInputError{Reason: "skip count is negative"}
	}

	log := e.log.WithField("code", page.Code)
	seen := NewDeduplicator()

	games := []domain.Game{}
	for _, s := range e.strategies {
		found := s.Scan(page, seen)

		log.WithFields(logrus.Fields{
			"strategy": s.Name(),
			"games":    len(found),
		}).Debug("strategy finished")

		if len(found) > 0 {
			games = found
			break
		}
	}

	if len(games) == 0 {
		log.Info("no games found on ticket page")
	}

	ticket := &domain.Ticket{
		Code:  page.Code,
		Games: games,
	}
	e.summary.Fill(ticket, page)

	return ticket, nil
}
