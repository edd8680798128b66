// Package extract turns loosely structured Wildberries search payloads into
// priced items.
//
// The upstream response shape is not stable, so extraction never relies on a
// fixed schema. A payload is treated as a JSON tree (map[string]any, []any,
// json.Number, string, bool, nil) and searched in tiers:
//
//  1. a known top-level key holding a list of products;
//  2. the same keys one level down, under "data";
//  3. a depth-first scan for any object carrying both an identity and a
//     price field.
package extract

import (
	"fmt"
	"net/url"
	"sort"

	domain "github.com/Nikitosik2311/parserwb/pkg/types"
)

// DetailURLFormat is the product page template, keyed by product identity.
const DetailURLFormat = "https://www.wildberries.ru/catalog/%s/detail.aspx"

var (
	listKeys        = []string{"data", "items", "products", "subjects"}
	identityKeys    = []string{"id", "nm_id", "sku"}
	nameKeys        = []string{"name", "title", "brand"}
	priceKeys       = []string{"salePriceU", "priceU", "price"}
	nestedPriceKeys = []string{"sale", "now"}
)

// Items extracts every well-formed priced item it can recover from payload.
// Candidates without a determinable price are dropped. Items never panics and
// returns an empty, non-nil slice when nothing is recoverable.
func Items(payload any) []domain.PricedItem {
	candidates := findCandidates(payload)

	items := make([]domain.PricedItem, 0, len(candidates))
	for _, c := range candidates {
		if item, ok := toItem(c); ok {
			items = append(items, item)
		}
	}
	return items
}

func findCandidates(payload any) []any {
	if root, ok := payload.(map[string]any); ok {
		if seq, found := probeLists(root); found {
			return seq
		}
		if data, ok := root["data"].(map[string]any); ok {
			if seq, found := probeLists(data); found {
				return seq
			}
		}
	}

	var found []any
	collect(payload, &found)
	return found
}

// probeLists returns the first listKeys value that is a list. An empty list
// is not a result; the caller moves on to the next tier.
func probeLists(m map[string]any) ([]any, bool) {
	for _, k := range listKeys {
		if seq, ok := m[k].([]any); ok {
			return seq, len(seq) > 0
		}
	}
	return nil, false
}

func collect(node any, found *[]any) {
	switch v := node.(type) {
	case map[string]any:
		if looksLikeProduct(v) {
			*found = append(*found, v)
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collect(v[k], found)
		}
	case []any:
		for _, child := range v {
			collect(child, found)
		}
	}
}

func looksLikeProduct(m map[string]any) bool {
	return hasAny(m, identityKeys) && hasAny(m, priceKeys)
}

func hasAny(m map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// toItem converts one candidate. A panic while doing so only loses that
// candidate.
func toItem(c any) (item domain.PricedItem, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			item, ok = domain.PricedItem{}, false
		}
	}()

	m, isMap := c.(map[string]any)
	if !isMap {
		return domain.PricedItem{}, false
	}

	raw, present := rawPrice(m)
	if !present {
		return domain.PricedItem{}, false
	}
	price, valid := MajorUnits(raw)
	if !valid {
		return domain.PricedItem{}, false
	}

	item = domain.PricedItem{
		ID:    identity(m),
		Name:  firstString(m, nameKeys),
		Price: price,
	}
	if item.ID != "" {
		item.URL = fmt.Sprintf(DetailURLFormat, url.PathEscape(item.ID))
	}
	return item, true
}

func identity(m map[string]any) string {
	for _, k := range identityKeys {
		if s, ok := scalarString(m[k]); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// rawPrice picks the first scalar price field. A "price" object is only
// consulted when no scalar field is present.
func rawPrice(m map[string]any) (any, bool) {
	for _, k := range priceKeys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if _, nested := v.(map[string]any); nested {
			continue
		}
		return v, true
	}

	if nested, ok := m["price"].(map[string]any); ok {
		for _, k := range nestedPriceKeys {
			if v, ok := nested[k]; ok && v != nil {
				return v, true
			}
		}
	}
	return nil, false
}
