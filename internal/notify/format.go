package notify

import (
	"html"
	"strings"

	domain "github.com/Nikitosik2311/parserwb/pkg/types"
)

// FormatAlert renders the HTML alert for item found by query. The item name
// falls back to the query text and the price is rounded to whole rubles,
// halves to even.
func FormatAlert(item domain.PricedItem, query string) string {
	name := item.Name
	if name == "" {
		name = query
	}

	var b strings.Builder
	b.WriteString("🔔 <b>Найдено на Wildberries</b>\n")
	b.WriteString("<b>" + html.EscapeString(name) + "</b> — <b>" + item.Price.RoundBank(0).String() + " ₽</b>\n")
	if item.URL != "" {
		b.WriteString("Ссылка: " + html.EscapeString(item.URL) + "\n")
	}
	b.WriteString("Запрос: " + html.EscapeString(query))
	return b.String()
}
