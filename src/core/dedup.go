package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/Cast4nha/scrapper-sub000/src/domain"
)

// Deduplicator remembers the selections already placed during one
// extraction call. It is not safe for concurrent use.
type Deduplicator struct {
	seen map[string]struct{}
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// SelectionKey hashes league, teams, description and odds. Odds are taken in
// canonical form so 3.20 and 3.2 collide.
func SelectionKey(g *domain.Game, s domain.Selection) string {
	raw := strings.Join([]string{
		g.League,
		g.HomeTeam,
		g.AwayTeam,
		s.Description,
		s.Odds.String(),
	}, "\x1f")

	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Add records the selection and reports whether it was new.
func (d *Deduplicator) Add(g *domain.Game, s domain.Selection) bool {
	key := SelectionKey(g, s)
	if _, ok := d.seen[key]; ok {
		return false
	}

	d.seen[key] = struct{}{}
	return true
}

func (d *Deduplicator) Len() int {
	return len(d.seen)
}
