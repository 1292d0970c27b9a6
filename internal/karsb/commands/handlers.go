package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bdobrica/karsb/common/trace"
	"github.com/bdobrica/karsb/common/version"
	"github.com/bdobrica/karsb/internal/karsb/dataset"
	"github.com/bdobrica/karsb/internal/karsb/store"
)

// QueryLog is the read side of the query audit log.
type QueryLog interface {
	RecentQueries(ctx context.Context, limit int) ([]*store.QueryRecord, error)
	QueriesByTrace(ctx context.Context, traceID string) ([]*store.QueryRecord, error)
}

// CacheStats reports dataset cache counters.
type CacheStats interface {
	Stats() dataset.Stats
}

const (
	defaultTail = 10
	maxTail     = 100
)

// Handlers holds the dependencies of the operator commands.
type Handlers struct {
	log   QueryLog
	cache CacheStats
}

// NewHandlers creates the handlers. log may be nil when no database is
// configured.
func NewHandlers(log QueryLog, cache CacheStats) *Handlers {
	return &Handlers{log: log, cache: cache}
}

// Register wires every handler into r.
func (h *Handlers) Register(r *Router) {
	r.Register("help", h.HandleHelp)
	r.Register("version", h.HandleVersion)
	r.Register("ping", h.HandlePing)
	r.Register("audit.tail", h.HandleAuditTail)
	r.Register("trace", h.HandleTrace)
	r.Register("cache.stats", h.HandleCacheStats)
}

func (h *Handlers) HandleHelp(ctx context.Context, cmd *Command, sender string) (string, error) {
	return `**kARsb operator commands**

• /karsb help - Show this message
• /karsb version - Show version information
• /karsb ping - Health check
• /karsb audit tail [n] - Show the last n answered queries (default 10)
• /karsb trace <trace_id> - Show the query recorded under a trace ID
• /karsb cache stats - Show dataset cache counters

Anything else is answered as a clan stats question.`, nil
}

func (h *Handlers) HandleVersion(ctx context.Context, cmd *Command, sender string) (string, error) {
	return fmt.Sprintf("**kARsb**\nVersion: %s\nCommit: %s\nBuild Time: %s",
		version.Version, version.GitCommit, version.BuildTime), nil
}

func (h *Handlers) HandlePing(ctx context.Context, cmd *Command, sender string) (string, error) {
	_, traceID := trace.Ensure(ctx)
	return fmt.Sprintf("🏓 Pong! (trace: %s)", traceID), nil
}

// HandleAuditTail lists the newest audited queries.
func (h *Handlers) HandleAuditTail(ctx context.Context, cmd *Command, sender string) (string, error) {
	if h.log == nil {
		return "The query audit log is disabled.", nil
	}

	limit := defaultTail
	if arg, ok := cmd.Arg(0); ok {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return "", fmt.Errorf("usage: %s audit tail [n]", Prefix)
		}
		limit = n
	}
	if limit <= 0 || limit > maxTail {
		limit = defaultTail
	}

	records, err := h.log.RecentQueries(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("read audit log: %w", err)
	}
	if len(records) == 0 {
		return "No queries recorded yet.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Recent queries (last %d)**\n\n", limit)
	for _, q := range records {
		writeRecord(&sb, q)
	}
	return sb.String(), nil
}

// HandleTrace shows the queries recorded under one trace ID.
func (h *Handlers) HandleTrace(ctx context.Context, cmd *Command, sender string) (string, error) {
	traceID := cmd.Subcommand
	if traceID == "" {
		return "", fmt.Errorf("usage: %s trace <trace_id>", Prefix)
	}
	if !trace.Valid(traceID) {
		return "", fmt.Errorf("invalid trace ID %q", traceID)
	}
	if h.log == nil {
		return "The query audit log is disabled.", nil
	}

	records, err := h.log.QueriesByTrace(ctx, traceID)
	if err != nil {
		return "", fmt.Errorf("read trace: %w", err)
	}
	if len(records) == 0 {
		return fmt.Sprintf("No queries found for trace %s.", traceID), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Trace %s**\n\n", traceID)
	for _, q := range records {
		writeRecord(&sb, q)
		if q.Source != "" {
			fmt.Fprintf(&sb, "  source: %s\n", q.Source)
		}
		if q.Effective != "" && q.Effective != q.Period {
			fmt.Fprintf(&sb, "  answered from %s\n", q.Effective)
		}
	}
	return sb.String(), nil
}

func (h *Handlers) HandleCacheStats(ctx context.Context, cmd *Command, sender string) (string, error) {
	if h.cache == nil {
		return "Dataset cache is not available.", nil
	}
	s := h.cache.Stats()
	return fmt.Sprintf("**Dataset cache**\nExistence entries: %d\nContent entries: %d\nHits: %d\nMisses: %d",
		s.ExistsEntries, s.ContentEntries, s.Hits, s.Misses), nil
}

func writeRecord(sb *strings.Builder, q *store.QueryRecord) {
	outcome := q.Stage
	if q.Kind != "" {
		outcome = q.Kind
	}
	fmt.Fprintf(sb, "• %s `%s` %s via %s: %q → %s",
		q.Timestamp.UTC().Format(time.DateTime), q.TraceID, q.Sender, q.Channel, q.Text, outcome)
	if q.Domain != "" {
		fmt.Fprintf(sb, " (%s %s)", q.Domain, q.Period)
	}
	sb.WriteString("\n")
}
