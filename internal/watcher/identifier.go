package watcher

import (
	domain "github.com/Nikitosik2311/parserwb/pkg/types"
)

// Identifier builds the dedup key for item found by query:
// "{query}__{identity}__{whole price}". The price part is truncated toward
// zero, so a price change within the same ruble does not re-alert.
func Identifier(query string, item *domain.PricedItem) string {
	return query + "__" + item.Identity() + "__" + item.Price.Truncate(0).String()
}
