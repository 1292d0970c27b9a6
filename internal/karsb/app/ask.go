package app

import (
	"context"
	"errors"
	"time"

	"github.com/bdobrica/karsb/common/trace"
	"github.com/bdobrica/karsb/internal/karsb/chat"
	"github.com/bdobrica/karsb/internal/karsb/observability"
	"github.com/bdobrica/karsb/internal/karsb/store"
)

// Channels a query can arrive on.
const (
	ChannelMatrix = "matrix"
	ChannelHTTP   = "http"
	ChannelCLI    = "cli"
)

// ErrRateLimited is returned by Ask when sender exceeded its query budget.
var ErrRateLimited = errors.New("rate limit exceeded")

const rateLimitedReply = "You're asking a bit too fast. Please wait a minute and try again."

// Ask answers one chat query from sender, logging it and recording it in the
// audit log when one is configured. The Response is always usable; the only
// error is ErrRateLimited, returned with a polite reply.
func (a *App) Ask(ctx context.Context, sender, channel, text string) (chat.Response, error) {
	ctx, traceID := trace.Ensure(ctx)
	log := observability.WithTrace(ctx)

	if !a.limiter.Allow(channel + ":" + sender) {
		log.Warn("chat query rate limited", "sender", sender, "channel", channel)
		return chat.Response{Reply: rateLimitedReply, Suggestions: []string{}}, ErrRateLimited
	}

	start := time.Now()
	resp := a.controller.Handle(ctx, text)
	elapsed := time.Since(start)
	a.answered.Add(1)

	o := resp.Outcome
	log.Info("chat query",
		"sender", sender,
		"channel", channel,
		"stage", o.Stage,
		"kind", o.Kind,
		"domain", o.Domain,
		"period", o.Period.String(),
		"effective", o.Effective.String(),
		"duration", elapsed,
	)

	if a.store != nil {
		rec := &store.QueryRecord{
			TraceID:   traceID,
			Sender:    sender,
			Channel:   channel,
			Text:      text,
			Stage:     string(o.Stage),
			Kind:      string(o.Kind),
			Domain:    string(o.Domain),
			Period:    o.Period.String(),
			Effective: o.Effective.String(),
			Duration:  elapsed,
		}
		if resp.Source != nil {
			rec.Source = *resp.Source
		}
		if err := a.store.RecordQuery(ctx, rec); err != nil {
			log.Warn("failed to record query", "err", err)
		}
	}

	return resp, nil
}
