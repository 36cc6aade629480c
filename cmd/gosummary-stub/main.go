// Command gosummary-stub serves canned content-provider and chat-completion
// responses for local runs and smoke tests.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type contentsRequest struct {
	IDs     []string        `json:"ids"`
	URLs    []string        `json:"urls"`
	Summary *map[string]any `json:"summary"`
	Text    *map[string]any `json:"text"`
}

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	model := envOr("MODEL_ID", "test-model")
	addr := envOr("ADDR", ":8081")
	// STUB_CREDITS=0 makes /contents answer 402 so the scraping tier runs.
	exhausted := strings.TrimSpace(os.Getenv("STUB_CREDITS")) == "0"

	r := chi.NewRouter()
	r.Get("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": []map[string]any{{"id": model, "object": "model"}}})
	})
	r.Post("/contents", func(w http.ResponseWriter, r *http.Request) {
		if exhausted {
			http.Error(w, `{"error":"insufficient credits"}`, http.StatusPaymentRequired)
			return
		}
		var req contentsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"results": contentsResults(req)})
	})
	r.Post("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) == 0 {
			http.Error(w, "no messages", http.StatusBadRequest)
			return
		}
		prompt := req.Messages[len(req.Messages)-1].Content
		n := strings.Count(prompt, "\nURL: ")
		content, _ := json.Marshal(map[string]any{
			"summary":    "Stub summary synthesized from " + plural(n) + ".",
			"key_points": []string{"Stub point one", "Stub point two"},
		})
		writeJSON(w, map[string]any{
			"model": model,
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": string(content)}},
			},
		})
	})

	log.Info().Str("addr", addr).Str("model", model).Bool("exhausted", exhausted).Msg("gosummary-stub listening")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}

func contentsResults(req contentsRequest) []map[string]string {
	keys := req.IDs
	byID := true
	if len(keys) == 0 {
		keys = req.URLs
		byID = false
	}
	out := make([]map[string]string, 0, len(keys))
	for i, k := range keys {
		res := map[string]string{"title": fmt.Sprintf("Stub document %d", i+1)}
		if byID {
			res["id"] = k
			res["url"] = "https://stub.invalid/" + k
		} else {
			res["url"] = k
		}
		if req.Summary != nil {
			res["summary"] = "Provider summary for " + k + "."
		} else {
			res["text"] = strings.Repeat("Stub provider text for "+k+". ", 8)
		}
		out = append(out, res)
	}
	return out
}

func plural(n int) string {
	if n == 1 {
		return "1 source"
	}
	return fmt.Sprintf("%d sources", n)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
