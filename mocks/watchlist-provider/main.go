// watchlist-provider is a local stand-in for the upstream screening pipeline.
// It serves canned pipeline payloads in the shape the evaluate endpoint
// consumes, so the service can be exercised without a provider account.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
)

var pipelines = map[string]any{
	"clean": map[string]any{
		"pipeline": []any{
			map[string]any{"type": "refinitiv-blacklist", "results": []any{}},
		},
	},
	"hit": map[string]any{
		"pipeline": []any{
			map[string]any{
				"type": "refinitiv-blacklist",
				"results": []any{
					map[string]any{
						"id":          "wl-1001",
						"first_name":  "John",
						"last_name":   "Doe",
						"dob":         "1990-01-01",
						"gender":      "male",
						"nationality": "US",
						"location":    "New York",
						"risk_type":   "sanctions",
					},
					map[string]any{
						"id":         "wl-1002",
						"full_name":  "Johnny Doe",
						"dob":        "1991-01-01",
						"location":   "London",
						"risk_type":  "pep",
					},
				},
			},
			map[string]any{"type": "news-search", "results": []any{
				map[string]any{"headline": "unrelated step, never extracted"},
			}},
		},
	},
}

func main() {
	addr := os.Getenv("WATCHLIST_PROVIDER_ADDR")
	if addr == "" {
		addr = ":9090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /pipelines/{name}", func(w http.ResponseWriter, r *http.Request) {
		payload, ok := pipelines[r.PathValue("name")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	})

	log.Printf("watchlist-provider stub listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
