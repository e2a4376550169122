package usecase

import (
	"fmt"

	"github.com/fliplens/backend/internal/domain"
)

// Dedupe collapses raw items into a unique subsequence, keeping the first
// occurrence of each derived key. Key derivation, first non-empty wins:
// extracted identity, then link, then title joined with price. Items where
// all three fail cannot be deduplicated safely and nothing downstream
// could act on them either, so they are dropped.
func (e *Extractor) Dedupe(items []domain.RawItem) []domain.RawItem {
	seen := make(map[string]bool, len(items))
	unique := make([]domain.RawItem, 0, len(items))

	for _, item := range items {
		key := e.dedupeKey(item)
		if key == "" {
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, item)
	}

	return unique
}

// dedupeKey derives the identity key for one raw item. The title+price
// composite requires a title: a bare price identifies nothing.
func (e *Extractor) dedupeKey(item domain.RawItem) string {
	if id := e.ID(item); id != "" {
		return id
	}
	if link := e.Link(item); link != "" {
		return link
	}
	if title := e.Title(item); title != "" {
		return fmt.Sprintf("%s|%v", title, e.Price(item))
	}
	return ""
}
