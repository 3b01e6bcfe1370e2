package cache

import (
	"golang.org/x/sync/singleflight"
)

// SuggestionGroup collapses concurrent identical suggestion requests so the
// remote service sees at most one in-flight call per
// (document, stage, paragraph) key.
type SuggestionGroup struct {
	group singleflight.Group
}

// Do runs fn once per key among concurrent callers and hands every caller
// the same result.
func (g *SuggestionGroup) Do(documentID, stage string, paragraphIndex int, fn func() (any, error)) (any, error) {
	key := Key(documentID, stage, paragraphIndex, "")
	v, err, _ := g.group.Do(key, fn)
	return v, err
}
