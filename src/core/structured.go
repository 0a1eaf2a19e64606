package core

import (
	"github.com/Cast4nha/scrapper-sub000/src/domain"

	"github.com/sirupsen/logrus"
)

// StructuredScan classifies the collector's row blocks one by one.
type StructuredScan struct {
	skip       int
	ex         *Extractor
	classifier *Classifier
	log        *logrus.Entry
}

func NewStructuredScan(ex *Extractor, skip int, log *logrus.Entry) *StructuredScan {
	return &StructuredScan{
		skip:       skip,
		ex:         ex,
		classifier: NewClassifier(ex),
		log:        log.WithField("strategy", StructuredScanName),
	}
}

func (s *StructuredScan) Name() string {
	return StructuredScanName
}

func (s *StructuredScan) Scan(page *domain.Page, seen *Deduplicator) []domain.Game {
	if len(page.Blocks) <= s.skip {
		return []domain.Game{}
	}

	blocks := page.Blocks[s.skip:]
	steps := make([]step, 0, len(blocks))
	for _, b := range blocks {
		class := s.classifier.Classify(b)
		if class == Noise {
			if s.ex.hasWager(b) && oddsTokenRegex.MatchString(b.Text) {
				s.log.WithFields(logrus.Fields{
					"ordinal": b.Ordinal,
					"text":    b.Text,
				}).Debug("wager block without a standalone odds line, dropped")
			}
			continue
		}
		steps = append(steps, step{class: class, block: b})
	}

	s.log.WithFields(logrus.Fields{
		"blocks":     len(blocks),
		"classified": len(steps),
	}).Debug("blocks classified")

	return aggregate(s.ex, steps, seen, s.log)
}
