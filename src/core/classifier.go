package core

import (
	"github.com/Cast4nha/scrapper-sub000/src/domain"
)

type Class int

const (
	Noise Class = iota
	NewGame
	AdditionalSelection
)

func (c Class) String() string {
	switch c {
	case NewGame:
		return "new_game"
	case AdditionalSelection:
		return "additional_selection"
	default:
		return "noise"
	}
}

type Classifier struct {
	ex *Extractor
}

func NewClassifier(ex *Extractor) *Classifier {
	return &Classifier{ex: ex}
}

// Classify labels a block. NewGame wins over AdditionalSelection when a block
// qualifies for both; its selections are parsed from the same block. A block
// is an AdditionalSelection only when Selections reads at least one pair from
// it, so odds written inline after a market name make the block Noise.
func (c *Classifier) Classify(b domain.Block) Class {
	if len(b.Lines) == 0 {
		return Noise
	}

	if c.ex.league.match(b.Text) {
		if _, _, ok := c.ex.Teams(b); ok {
			return NewGame
		}
	}

	if len(c.ex.Selections(b)) > 0 {
		return AdditionalSelection
	}

	return Noise
}
