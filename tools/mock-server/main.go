// Package main implements a mock Wildberries search API and Telegram Bot API
// for local development. Point wildberries.search_url and
// telegram.api_endpoint at it to run full cycles without network access.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const searchPath = "/exactmatch/ru/common/v4/search"

type searchResponse struct {
	Data struct {
		Products []json.RawMessage `json:"products"`
	} `json:"data"`
}

type product struct {
	Name  string `json:"name"`
	Brand string `json:"brand"`
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/search_response.json", "path to search response fixture")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fixture, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "products", len(fixture.Data.Products))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock server", "addr", addr,
		"search_url", fmt.Sprintf("http://localhost:%d%s", *port, searchPath),
		"telegram_endpoint", fmt.Sprintf("http://localhost:%d", *port),
	)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(logger, fixture)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, fixture *searchResponse) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+searchPath, searchHandler(logger, fixture))
	mux.HandleFunc("POST /{bot}/{method}", telegramHandler(logger))
	return mux
}

func loadFixture(path string) (*searchResponse, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &resp, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

// searchHandler filters fixture products whose name or brand contains every
// word of the query, case-insensitively, and applies limit.
func searchHandler(logger *slog.Logger, fixture *searchResponse) http.HandlerFunc {
	type indexedProduct struct {
		raw  json.RawMessage
		text string
	}
	products := make([]indexedProduct, 0, len(fixture.Data.Products))
	for _, raw := range fixture.Data.Products {
		var p product
		//nolint:errcheck,gosec // fixture data is trusted; name extraction is best-effort
		json.Unmarshal(raw, &p)
		products = append(products, indexedProduct{raw: raw, text: strings.ToLower(p.Brand + " " + p.Name)})
	}

	return func(w http.ResponseWriter, r *http.Request) {
		words := strings.Fields(strings.ToLower(r.URL.Query().Get("query")))

		limit := 100
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
			limit = v
		}

		var resp searchResponse
		resp.Data.Products = []json.RawMessage{}
		for _, p := range products {
			if len(resp.Data.Products) == limit {
				break
			}
			if containsAll(p.text, words) {
				resp.Data.Products = append(resp.Data.Products, p.raw)
			}
		}

		writeJSON(w, http.StatusOK, resp)
		logger.Info("search", "query", r.URL.Query().Get("query"), "returned", len(resp.Data.Products), "limit", limit)
	}
}

func containsAll(text string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}

// telegramHandler answers the Bot API methods the notifier uses. Any token
// is accepted.
func telegramHandler(logger *slog.Logger) http.HandlerFunc {
	var messageID atomic.Int64

	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.PathValue("bot"), "bot") {
			http.NotFound(w, r)
			return
		}

		switch method := r.PathValue("method"); method {
		case "getMe":
			writeJSON(w, http.StatusOK, map[string]any{
				"ok": true,
				"result": map[string]any{
					"id":         1,
					"is_bot":     true,
					"first_name": "parserwb mock",
					"username":   "parserwb_mock_bot",
				},
			})
		case "sendMessage":
			if err := r.ParseForm(); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error_code": 400, "description": "bad form"})
				return
			}
			chatID := r.PostForm.Get("chat_id")
			if chatID == "" {
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"ok": false, "error_code": 400, "description": "Bad Request: chat not found",
				})
				return
			}
			numericChat, _ := strconv.ParseInt(chatID, 10, 64)
			id := messageID.Add(1)
			logger.Info("message sent", "chat_id", chatID, "message_id", id, "text", r.PostForm.Get("text"))
			writeJSON(w, http.StatusOK, map[string]any{
				"ok": true,
				"result": map[string]any{
					"message_id": id,
					"date":       time.Now().Unix(),
					"chat":       map[string]any{"id": numericChat, "type": "private"},
					"text":       r.PostForm.Get("text"),
				},
			})
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{
				"ok": false, "error_code": 404, "description": "Not Found: method " + method,
			})
		}
	}
}
