package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"PortfolioGuard/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTelegram records sendMessage calls and fails the first failN of them.
type fakeTelegram struct {
	mu    sync.Mutex
	texts []string
	failN int
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"guard","username":"guard_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failN > 0 {
			f.failN--
			fmt.Fprint(w, `{"ok":false,"error_code":500,"description":"Internal Server Error"}`)
			return
		}
		f.texts = append(f.texts, r.PostForm.Get("text"))
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeTelegram) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

func newTestNotifier(t *testing.T, fake *fakeTelegram) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	n, err := NewTelegramNotifierWithEndpoint("TOKEN", 42, srv.URL+"/bot%s/%s", srv.Client(), nil)
	require.NoError(t, err)
	return n
}

func TestTelegramNotifier_Send(t *testing.T) {
	fake := &fakeTelegram{}
	n := newTestNotifier(t, fake)

	require.NoError(t, n.Send(context.Background(), "hello"))
	assert.Equal(t, []string{"hello"}, fake.sent())
}

func TestTelegramNotifier_SendWithRetry(t *testing.T) {
	fake := &fakeTelegram{failN: 1}
	n := newTestNotifier(t, fake)

	require.NoError(t, n.SendWithRetry(context.Background(), "retry me", 2))
	assert.Equal(t, []string{"retry me"}, fake.sent())
}

func TestTelegramNotifier_SendWithRetryCancelled(t *testing.T) {
	fake := &fakeTelegram{failN: 10}
	n := newTestNotifier(t, fake)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := n.SendWithRetry(ctx, "never", 5)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHandleUpdate(t *testing.T) {
	fake := &fakeTelegram{}
	n := newTestNotifier(t, fake)

	var got []string
	handler := func(_ context.Context, cmd string) string {
		got = append(got, cmd)
		return "reply to " + cmd
	}
	n.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "/check@guard_bot", Chat: &tgbotapi.Chat{ID: 42},
	}}, handler)
	n.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "/check", Chat: &tgbotapi.Chat{ID: 7},
	}}, handler)

	assert.Equal(t, []string{"/check"}, got)
	assert.Equal(t, []string{"reply to /check"}, fake.sent())
}

func TestFormatCheckResult(t *testing.T) {
	res := &model.CheckResult{
		Alerts: []string{"STOP LOSS for AAA: Current 96.0000 < Limit 96.5000"},
		Failed: []string{"XXX"},
		Saved:  false,
	}
	out := FormatCheckResult(res, time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC))
	assert.Contains(t, out, "2026-01-02 15:04")
	assert.Contains(t, out, "Current 96.0000 &lt; Limit 96.5000")
	assert.Contains(t, out, "No quote for: XXX")
	assert.Contains(t, out, "outside trading window")

	clean := FormatCheckResult(&model.CheckResult{Saved: true}, time.Now())
	assert.Contains(t, clean, "No stop-loss alerts")
	assert.NotContains(t, clean, "outside trading window")
}

func TestFormatPositions(t *testing.T) {
	out := FormatPositions([]model.Position{
		{Symbol: "AAA", BaselinePrice: 100, Status: model.StatusActive, InvestedAmount: 1000},
		{Symbol: "BBB", BaselinePrice: 10, Status: model.StatusInactive, InvestedAmount: 0},
	})
	assert.Contains(t, out, "🟢 AAA  base 100.0000  invested 1000.00  shares 10")
	assert.Contains(t, out, "⚪ BBB")
}
