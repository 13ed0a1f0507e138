// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reporter

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type telegram struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (tg *telegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"news","username":"news_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()

		tg.mu.Lock()
		defer tg.mu.Unlock()
		if tg.fail {
			_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
			return
		}
		tg.sent = append(tg.sent, r.PostForm.Get("chat_id")+":"+r.PostForm.Get("text"))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
	default:
		http.NotFound(w, r)
	}
}

func (tg *telegram) messages() []string {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	return append([]string(nil), tg.sent...)
}

func newReporter(t *testing.T, tg *telegram, adminID int64) *Reporter {
	t.Helper()

	srv := httptest.NewServer(tg)
	t.Cleanup(srv.Close)

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint("token", srv.URL+"/bot%s/%s")
	require.NoError(t, err)

	return New(bot, adminID, zaptest.NewLogger(t))
}

type result string

func (r result) String() string { return string(r) }

func TestNotify(t *testing.T) {
	tg := &telegram{}
	r := newReporter(t, tg, 42)

	r.Notify("hello")
	assert.Equal(t, []string{"42:hello"}, tg.messages())
}

func TestNotify_NoChat(t *testing.T) {
	tg := &telegram{}
	r := newReporter(t, tg, 0)

	r.Notify("hello")
	assert.Empty(t, tg.messages())
}

func TestNotify_NilSafe(t *testing.T) {
	var r *Reporter
	assert.NotPanics(t, func() {
		r.Notify("hello")
		r.RunFinished("scrape", result("ok"), true, nil)
	})
}

func TestNotify_SendFailureIsLogged(t *testing.T) {
	tg := &telegram{fail: true}
	r := newReporter(t, tg, 42)

	assert.NotPanics(t, func() { r.Notify("hello") })
	assert.Empty(t, tg.messages())
}

func TestRunFinished(t *testing.T) {
	tg := &telegram{}
	r := newReporter(t, tg, 42)

	r.RunFinished("scrape", result("nothing new"), false, nil)
	r.RunFinished("scrape", result("added 2 new"), true, nil)
	r.RunFinished("prune", nil, false, errors.New("store unavailable"))

	assert.Equal(t, []string{
		"42:scrape: added 2 new",
		"42:prune failed: store unavailable",
	}, tg.messages())
}

func TestFromToken_Disabled(t *testing.T) {
	r, err := FromToken("", 42, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = FromToken("token", 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, r)
}
