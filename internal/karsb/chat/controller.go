// Package chat is the single entry point of the bot: it takes one message and
// returns the reply, the dataset it came from, and follow-up suggestions.
//
// Each call is independent. The only state shared between calls lives in the
// dataset fetcher's caches.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bdobrica/karsb/internal/karsb/clan"
	"github.com/bdobrica/karsb/internal/karsb/dataset"
	"github.com/bdobrica/karsb/internal/karsb/nlp"
	"github.com/bdobrica/karsb/internal/karsb/observability"
	"github.com/bdobrica/karsb/internal/karsb/resolver"
	"github.com/bdobrica/karsb/internal/karsb/response"
)

// MaxMessageLen is the longest accepted message, in characters.
const MaxMessageLen = 500

// Fetcher loads the dataset for a domain and period.
type Fetcher interface {
	Fetch(ctx context.Context, d clan.Domain, p clan.Period) (*dataset.Result, error)
}

// Stage names where in the pipeline a message was answered.
type Stage string

const (
	StageTooLong      Stage = "too_long"
	StageEmpty        Stage = "empty"
	StageHelp         Stage = "help"
	StageThanks       Stage = "thanks"
	StageGreeting     Stage = "greeting"
	StageGibberish    Stage = "gibberish"
	StageIdentity     Stage = "identity"
	StageCapabilities Stage = "capabilities"
	StageMetrics      Stage = "metrics"
	StageGlossary     Stage = "glossary"
	StageNoPeriod     Stage = "no_period"
	StageNoDomain     Stage = "no_domain"
	StageNoData       Stage = "no_data"
	StageUnresolved   Stage = "unresolved"
	StageAnswered     Stage = "answered"
)

// Outcome describes how a message was handled, for logs and the audit trail.
type Outcome struct {
	Stage     Stage
	Kind      resolver.Kind
	Domain    clan.Domain
	Period    clan.Period
	Effective clan.Period
}

// Response is the reply envelope. Source is nil when no dataset was used.
type Response struct {
	Reply       string   `json:"reply"`
	Source      *string  `json:"source"`
	Suggestions []string `json:"suggestions"`
	Outcome     Outcome  `json:"-"`
}

// Controller answers chat messages.
type Controller struct {
	fetcher Fetcher
	replies Replies
}

// New returns a Controller using the embedded replies.
func New(f Fetcher) (*Controller, error) {
	replies, err := DefaultReplies()
	if err != nil {
		return nil, err
	}
	return NewWithReplies(f, replies), nil
}

// NewWithReplies returns a Controller with custom replies.
func NewWithReplies(f Fetcher, replies Replies) *Controller {
	return &Controller{fetcher: f, replies: replies}
}

var helpCommands = map[string]bool{"help": true, "/help": true, "commands": true}

// Handle answers one message. It never fails; every problem is explained in
// the reply text.
func (c *Controller) Handle(ctx context.Context, text string) Response {
	if utf8.RuneCountInString(text) > MaxMessageLen {
		return static(c.replies.TooLong, StageTooLong)
	}

	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)

	if text == "" {
		return static(c.replies.Empty, StageEmpty)
	}
	if helpCommands[lower] {
		return static(c.replies.Help, StageHelp)
	}
	if containsAny(lower, "thanks", "thank you", "thnx") {
		return static(c.replies.Thanks, StageThanks)
	}

	switch nlp.ClassifyInput(text) {
	case nlp.InputGreeting:
		return static(c.replies.Greeting, StageGreeting)
	case nlp.InputGibberish:
		return static(c.replies.Gibberish, StageGibberish)
	}

	if r, ok := c.informational(lower); ok {
		return r
	}

	return c.query(ctx, text)
}

// informational answers questions about the bot itself.
func (c *Controller) informational(lower string) (Response, bool) {
	switch {
	case strings.Contains(lower, "who are you"):
		return static(c.replies.Identity, StageIdentity), true
	case strings.Contains(lower, "what can you do"):
		return static(c.replies.Capabilities, StageCapabilities), true
	case strings.Contains(lower, "what metrics"):
		reply := c.replies.MetricsIntro + "\n" + strings.Join(clan.MetricNames(), ", ")
		return static(reply, StageMetrics), true
	case strings.Contains(lower, "what does") && strings.Contains(lower, "mean"):
		for _, m := range glossaryOrder {
			if strings.Contains(lower, string(m)) {
				return static(fmt.Sprintf("**%s** means:\n%s", m, glossary[m]), StageGlossary), true
			}
		}
	}
	return Response{}, false
}

func (c *Controller) query(ctx context.Context, text string) Response {
	log := observability.WithTrace(ctx)

	period, ok := nlp.NormalizeMonth(text)
	if !ok {
		if hint, ok := nlp.SuggestMonth(text); ok {
			reply := fmt.Sprintf("I couldn't find an exact match for the date.\nDid you mean **%s**?", hint)
			return static(reply, StageNoPeriod)
		}
		return static(c.replies.MonthFormat, StageNoPeriod)
	}

	domain, ok := nlp.RouteDomain(text, period)
	if !ok {
		r := static(c.replies.NoDomain, StageNoDomain)
		r.Outcome.Period = period
		return r
	}

	data, err := c.fetcher.Fetch(ctx, domain, period)
	if err != nil {
		if !errors.Is(err, dataset.ErrNotAvailable) {
			log.Error("chat: fetch failed", "domain", domain, "period", period.String(), "err", err)
		}
		r := static(fmt.Sprintf("No data available for %s.", period.Readable()), StageNoData)
		r.Outcome.Domain, r.Outcome.Period = domain, period
		return r
	}

	effective := data.Effective
	if effective.IsZero() {
		effective = period
	}
	outcome := Outcome{Domain: domain, Period: period, Effective: effective}

	result := resolver.Resolve(text, domain, data.Records)
	if result == nil {
		r := static(c.replies.NoOperation, StageUnresolved)
		outcome.Stage = StageUnresolved
		r.Outcome = outcome
		return r
	}
	outcome.Stage = StageAnswered
	outcome.Kind = result.Kind()

	reply := response.Build(result, effective)
	if k := result.Kind(); k == resolver.KindPlayerNotFound || k == resolver.KindComparePlayersNotFound {
		if p, ok := nlp.SuggestPlayerInText(text, recordNames(data.Records)); ok {
			reply += fmt.Sprintf("\nDid you mean **%s**?", p)
		}
	}
	if data.UsedFallback {
		reply = fmt.Sprintf("Data for %s is not available yet, showing %s instead.\n\n%s",
			period.Readable(), effective.Readable(), reply)
	}

	log.Debug("chat: resolved", "domain", domain, "period", effective.String(), "kind", outcome.Kind)

	source := data.URL
	return Response{
		Reply:       reply,
		Source:      &source,
		Suggestions: suggestions(result.Kind(), effective),
		Outcome:     outcome,
	}
}

// suggestions returns the three follow-up questions for a result kind.
func suggestions(k resolver.Kind, p clan.Period) []string {
	tmpl, ok := suggestionTemplates[k]
	if !ok {
		tmpl = defaultSuggestions
	}
	m := p.Readable()
	out := make([]string, 0, len(tmpl))
	for _, t := range tmpl {
		out = append(out, fmt.Sprintf(t, m))
	}
	return out
}

func static(reply string, stage Stage) Response {
	return Response{Reply: reply, Suggestions: []string{}, Outcome: Outcome{Stage: stage}}
}

func recordNames(records []clan.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name())
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
