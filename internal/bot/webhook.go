package bot

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxUpdateBytes = 1 << 20

	// SecretTokenHeader carries the secret_token given to setWebhook.
	SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"
)

// ServeHTTP accepts Telegram webhook updates. Requests without the registered secret are
// refused. Any decodable update is acknowledged with 200 and processed in the background so
// Telegram never redelivers it.
func (t *TelegramBot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.mu.Lock()
	secret := t.webhookSecret
	t.mu.Unlock()

	got := r.Header.Get(SecretTokenHeader)
	if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
		t.logger.Warnw("Rejected webhook request without valid secret", "remote_addr", r.RemoteAddr)
		writeOK(w, http.StatusForbidden, false)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&update); err != nil {
		t.logger.Warnw("Failed to decode Telegram update", "error", err)
		writeOK(w, http.StatusBadRequest, false)
		return
	}

	t.Dispatch(r.Context(), update)
	writeOK(w, http.StatusOK, true)
}

func writeOK(w http.ResponseWriter, code int, ok bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if ok {
		_, _ = w.Write([]byte(`{"ok":true}`))
		return
	}
	_, _ = w.Write([]byte(`{"ok":false}`))
}
