// Package app wires the chat pipeline to its transports: Matrix rooms, the
// HTTP server and the one-shot CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bdobrica/karsb/internal/karsb/chat"
	"github.com/bdobrica/karsb/internal/karsb/commands"
	"github.com/bdobrica/karsb/internal/karsb/dataset"
	"github.com/bdobrica/karsb/internal/karsb/matrix"
	"github.com/bdobrica/karsb/internal/karsb/ratelimit"
	"github.com/bdobrica/karsb/internal/karsb/store"
)

// App is the running bot.
type App struct {
	config     *Config
	fetcher    *dataset.Fetcher
	controller *chat.Controller
	limiter    *ratelimit.Limiter
	store      *store.Store
	router     *commands.Router
	admins     map[string]struct{}
	matrix     *matrix.Client
	server     *Server
	startedAt  time.Time
	answered   atomic.Int64
	stopOnce   sync.Once
}

// New builds the application. Nothing is started until Run.
func New(config *Config) (*App, error) {
	fetcher, err := dataset.New(config.Dataset)
	if err != nil {
		return nil, fmt.Errorf("create dataset fetcher: %w", err)
	}

	controller, err := chat.New(fetcher)
	if err != nil {
		return nil, fmt.Errorf("create chat controller: %w", err)
	}

	a := &App{
		config:     config,
		fetcher:    fetcher,
		controller: controller,
		limiter:    ratelimit.New(config.RateLimit, time.Minute),
		router:     commands.NewRouter(commands.Prefix),
		admins:     make(map[string]struct{}, len(config.AdminSenders)),
		startedAt:  time.Now(),
	}
	for _, s := range config.AdminSenders {
		a.admins[s] = struct{}{}
	}

	var log commands.QueryLog
	if config.DBPath != "" {
		st, err := store.New(config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.store = st
		log = st
		slog.Info("query audit log enabled", "path", config.DBPath)
	}
	commands.NewHandlers(log, fetcher).Register(a.router)

	if config.Matrix != nil {
		mc := *config.Matrix
		if a.store != nil {
			mc.State = a.store
		}
		client, err := matrix.New(mc)
		if err != nil {
			a.closeStore()
			return nil, err
		}
		a.matrix = client
	}

	if config.HTTPAddr != "" {
		a.server = NewServer(config.HTTPAddr, a)
	}

	return a, nil
}

// Run starts the configured transports and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Start(ctx); err != nil {
			return err
		}
	}

	if a.matrix != nil {
		slog.Info("starting Matrix sync", "rooms", len(a.config.Matrix.Rooms))
		if err := a.matrix.Start(ctx, a.handleMessage); err != nil {
			return fmt.Errorf("start Matrix client: %w", err)
		}
	}

	slog.Info("kARsb is running")
	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}

// Stop releases everything New and Run acquired. Safe to call twice.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		if a.matrix != nil {
			slog.Info("stopping Matrix client")
			a.matrix.Stop()
		}
		if a.server != nil {
			slog.Info("stopping HTTP server")
			a.server.Stop()
		}
		a.closeStore()
	})
}

func (a *App) closeStore() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("close store", "err", err)
	}
}

// Status is the runtime snapshot served on /status.
func (a *App) Status(ctx context.Context) Status {
	s := Status{
		StartedAt:       a.startedAt,
		Uptime:          time.Since(a.startedAt),
		QueriesAnswered: a.answered.Load(),
		Cache:           a.fetcher.Stats(),
		ActiveSenders:   a.limiter.Senders(),
		AuditLog:        a.store != nil,
		Matrix:          a.matrix != nil,
	}
	if a.store != nil {
		if n, err := a.store.CountQueries(ctx); err == nil {
			s.QueriesRecorded = n
		}
	}
	return s
}

// commandsRestricted answers operator commands from senders outside
// Config.AdminSenders.
const commandsRestricted = "⛔ Operator commands are restricted to bot administrators."

// handleMessage answers a Matrix room message.
func (a *App) handleMessage(ctx context.Context, msg matrix.Message) {
	text, notice := a.respond(ctx, msg.Sender, msg.Body)
	if notice {
		if err := a.matrix.SendNotice(ctx, msg.RoomID, text); err != nil {
			slog.Error("failed to send notice", "room", msg.RoomID, "err", err)
		}
		return
	}
	a.send(ctx, msg, text)
}

// respond computes the reply to a room message: operator commands go to the
// router, everything else to the chat pipeline. notice is set for replies
// that are posted as notices rather than threaded answers.
func (a *App) respond(ctx context.Context, sender, body string) (text string, notice bool) {
	if _, err := a.router.Parse(body); !errors.Is(err, commands.ErrNotACommand) {
		if !a.isAdmin(sender) {
			slog.Warn("operator command refused", "sender", sender)
			return commandsRestricted, true
		}
		reply, err := a.router.Route(ctx, body, sender)
		if err != nil {
			return fmt.Sprintf("❌ Error: %s", err), false
		}
		return reply, false
	}

	resp, err := a.Ask(ctx, sender, ChannelMatrix, body)
	if errors.Is(err, ErrRateLimited) {
		return resp.Reply, true
	}
	return FormatReply(resp), false
}

// isAdmin reports whether sender may run operator commands. Everyone may
// when no allowlist is configured.
func (a *App) isAdmin(sender string) bool {
	if len(a.admins) == 0 {
		return true
	}
	_, ok := a.admins[sender]
	return ok
}

func (a *App) send(ctx context.Context, msg matrix.Message, text string) {
	if text == "" {
		return
	}
	if err := a.matrix.Reply(ctx, msg.RoomID, msg.EventID, text, markdownToHTML(text)); err != nil {
		slog.Error("failed to send reply", "room", msg.RoomID, "err", err)
	}
}

// FormatReply renders a Response as chat text: the reply, then the source
// link and the follow-up suggestions when present.
func FormatReply(resp chat.Response) string {
	var sb strings.Builder
	sb.WriteString(resp.Reply)
	if resp.Source != nil {
		fmt.Fprintf(&sb, "\n\nSource: %s", *resp.Source)
	}
	if len(resp.Suggestions) > 0 {
		sb.WriteString("\n\n**Try asking:**")
		for _, s := range resp.Suggestions {
			fmt.Fprintf(&sb, "\n• %s", s)
		}
	}
	return sb.String()
}
