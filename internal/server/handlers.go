package server

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"biteiq-bot/pkg/logger"
)

const (
	botName    = "BiteIQBot"
	botVersion = "1.0.0"
)

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "online",
		"bot":     botName,
		"version": botVersion,
	})
}

func handleHealth(db Pinger, l *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				l.Warnw("Health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

type pageData struct {
	Title   string
	Heading string
	Body    string
	Bot     string
}

var pageTemplate = template.Must(template.New("payment").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, Segoe UI, sans-serif; background: #f4f8f4; color: #1f2d1f; text-align: center; padding: 64px 16px; }
.card { max-width: 420px; margin: 0 auto; background: #fff; border-radius: 12px; padding: 32px; box-shadow: 0 2px 12px rgba(0,0,0,.08); }
a { color: #2e7d32; }
</style>
</head>
<body>
<div class="card">
<h1>{{.Heading}}</h1>
<p>{{.Body}}</p>
<p><a href="https://t.me/{{.Bot}}">Back to {{.Bot}}</a></p>
</div>
</body>
</html>
`))

var (
	successPage = pageData{
		Title:   "Payment successful",
		Heading: "🎉 You're all set!",
		Body:    "Your premium subscription is active. Head back to Telegram, your daily plans and reminders are unlocked.",
		Bot:     botName,
	}
	cancelledPage = pageData{
		Title:   "Payment cancelled",
		Heading: "Payment cancelled",
		Body:    "No charge was made. You can subscribe any time from the bot menu.",
		Bot:     botName,
	}
)

func handlePaymentPage(page pageData) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = pageTemplate.Execute(w, page)
	}
}
