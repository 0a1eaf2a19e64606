package core

import (
	"github.com/Cast4nha/scrapper-sub000/src/domain"

	"github.com/sirupsen/logrus"
)

type step struct {
	class Class
	block domain.Block
}

// classificationContext is the accumulator of one aggregation pass.
type classificationContext struct {
	current *domain.Game
	seen    *Deduplicator
	games   []domain.Game
}

// aggregate folds classified blocks into games in input order. Games without
// a single surviving selection are dropped.
func aggregate(ex *Extractor, steps []step, seen *Deduplicator, log *logrus.Entry) []domain.Game {
	ctx := &classificationContext{
		seen:  seen,
		games: []domain.Game{},
	}

	for _, s := range steps {
		switch s.class {
		case NewGame:
			ctx.flush()

			home, away, _ := ex.Teams(s.block)
			ctx.current = &domain.Game{
				League:     ex.League(s.block),
				HomeTeam:   home,
				AwayTeam:   away,
				Kickoff:    ex.Kickoff(s.block),
				Selections: []domain.Selection{},
			}
			ctx.add(ex.Selections(s.block))

		case AdditionalSelection:
			if ctx.current == nil {
				log.WithField("ordinal", s.block.Ordinal).Debug("selection before any game, dropped")
				continue
			}
			ctx.add(ex.Selections(s.block))
		}
	}

	ctx.flush()

	return ctx.games
}

func (ctx *classificationContext) add(selections []domain.Selection) {
	for _, sel := range selections {
		if ctx.seen.Add(ctx.current, sel) {
			ctx.current.Selections = append(ctx.current.Selections, sel)
		}
	}
}

func (ctx *classificationContext) flush() {
	if ctx.current != nil && len(ctx.current.Selections) > 0 {
		ctx.games = append(ctx.games, *ctx.current)
	}
	ctx.current = nil
}
