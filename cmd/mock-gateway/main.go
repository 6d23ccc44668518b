package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/mattbennet/lentra/internal/logging"
)

type order struct {
	TransferID  string `json:"transfer_id"`
	Beneficiary string `json:"beneficiary"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
}

func main() {
	logging.Init("mock-gateway", "info", os.Getenv("APP_ENV"))

	// GATEWAY_FAIL_AFTER=N makes every order past the Nth come back 503, for
	// exercising rollback paths end to end.
	failAfter := -1
	if v := os.Getenv("GATEWAY_FAIL_AFTER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			failAfter = n
		}
	}

	var mu sync.Mutex
	var received []order

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	})

	mux.HandleFunc("POST /transfers", func(w http.ResponseWriter, r *http.Request) {
		var o order
		if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		mu.Lock()
		count := len(received)
		if failAfter >= 0 && count >= failAfter {
			mu.Unlock()
			slog.Warn("rejecting transfer", "transfer_id", o.TransferID)
			http.Error(w, "rail unavailable", http.StatusServiceUnavailable)
			return
		}
		received = append(received, o)
		mu.Unlock()

		slog.Info("transfer accepted",
			"transfer_id", o.TransferID,
			"beneficiary", o.Beneficiary,
			"amount", o.Amount,
			"reference", o.Reference,
		)
		w.WriteHeader(http.StatusAccepted)
	})

	mux.HandleFunc("GET /transfers", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(received); err != nil {
			slog.Error("failed to write transfers response", "error", err)
		}
	})

	slog.Info("mock gateway started", "addr", ":8081")
	if err := http.ListenAndServe(":8081", mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
