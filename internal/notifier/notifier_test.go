package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"TrendScope/internal/errs"
	"TrendScope/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(url string) *TelegramNotifier {
	n := NewTelegramNotifier(TelegramOptions{BotToken: "TOKEN", ChatID: "42", BaseURL: url, Log: zerolog.Nop()})
	n.backoff = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).Send(context.Background(), "hello"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).Send(context.Background(), "hello")
	assert.ErrorContains(t, err, "chat not found")
}

func TestSendWithRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"ok":false,"description":"try later"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	require.NoError(t, n.SendWithRetry(context.Background(), "hi", 3))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, -10)
	err := n.SendWithRetry(context.Background(), "hi", 1)
	assert.ErrorContains(t, err, "all 2 attempts failed")
}

func TestDispatch_FiltersChat(t *testing.T) {
	n := newTestNotifier("http://127.0.0.1:0")
	raw := `[
		{"update_id": 7, "message": {"text": " /status ", "chat": {"id": 99}}},
		{"update_id": 8},
		{"update_id": 9, "message": {"text": "/status", "chat": {"id": 42}}},
		{"update_id": 10, "message": {"text": "/run@TrendScopeBot", "chat": {"id": 42}}}
	]`
	var updates []telegramUpdate
	require.NoError(t, json.Unmarshal([]byte(raw), &updates))

	var seen []string
	next := n.dispatch(context.Background(), updates, 0, func(_ context.Context, cmd string) string {
		seen = append(seen, cmd)
		return ""
	})
	assert.Equal(t, 11, next)
	assert.Equal(t, []string{"/status", "/run"}, seen)
}

func TestCommandText(t *testing.T) {
	tests := map[string]string{
		" /status ":              "/status",
		"/run@TrendScopeBot":     "/run",
		"/run@TrendScopeBot now": "/run now",
		"hello@example.com":      "hello@example.com",
		"/status":                "/status",
	}
	for in, want := range tests {
		assert.Equal(t, want, commandText(in), in)
	}
}

func TestFormatRunSummary(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	bars, err := model.NewBarSeries("SPX", "1d", []model.OHLCV{
		{Time: day, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Time: day.AddDate(0, 0, 1), Open: 1.5, High: 2, Low: 1, Close: 1.8, Volume: 10},
	})
	require.NoError(t, err)
	res := &model.AnalysisResult{
		Bars:      bars,
		Signals:   []model.Signal{{Time: day.AddDate(0, 0, 1), Type: model.SignalBuy, Price: 1.8}},
		Metadata:  map[string]any{model.MetaOutputPath: "out/chart.html"},
		CreatedAt: day,
	}

	msg := FormatRunSummary(res)
	assert.Contains(t, msg, "<b>TrendScope</b>")
	assert.Contains(t, msg, "SPX (1d)")
	assert.Contains(t, msg, "Latest: BUY</b> on 2024-05-02 at 1.80")
	assert.Contains(t, msg, "Output: out/chart.html")
}

func TestFormatFailure(t *testing.T) {
	msg := FormatFailure("AAPL", errs.DataFetch("yahoo", errors.New("<timeout>"), "fetch AAPL"))
	assert.Contains(t, msg, "Kind: data_fetch")
	assert.Contains(t, msg, "&lt;timeout&gt;")
	assert.NotContains(t, FormatFailure("AAPL", errors.New("plain")), "Kind:")
}
