// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reporter

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Reporter sends short run notifications to a Telegram admin chat.
// It is nil-safe: if adminID is 0 or the receiver is nil, Notify is a no-op.
type Reporter struct {
	bot     *tgbotapi.BotAPI
	adminID int64
	log     *zap.Logger
}

func New(bot *tgbotapi.BotAPI, adminID int64, log *zap.Logger) *Reporter {
	return &Reporter{bot: bot, adminID: adminID, log: log.With(zap.String("component", "reporter"))}
}

// FromToken connects a bot for the token. Without a token or chat it returns nil, which
// is a valid Reporter that does nothing.
func FromToken(token string, adminID int64, log *zap.Logger) (*Reporter, error) {
	if token == "" || adminID == 0 {
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return New(bot, adminID, log), nil
}

func (r *Reporter) Notify(msg string) {
	if r == nil || r.adminID == 0 {
		return
	}
	if _, err := r.bot.Send(tgbotapi.NewMessage(r.adminID, msg)); err != nil {
		r.log.Error("failed to send notification", zap.Error(err))
	}
}

// RunFinished reports the outcome of a scheduled job; successes are only reported when
// they changed something.
func (r *Reporter) RunFinished(job string, result fmt.Stringer, changed bool, err error) {
	switch {
	case err != nil:
		r.Notify(fmt.Sprintf("%s failed: %v", job, err))
	case changed:
		r.Notify(fmt.Sprintf("%s: %s", job, result))
	}
}
