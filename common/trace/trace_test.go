package trace_test

import (
	"context"
	"strings"
	"testing"

	"github.com/bdobrica/karsb/common/trace"
)

func TestGenerateID(t *testing.T) {
	a, b := trace.GenerateID(), trace.GenerateID()
	if a == b {
		t.Fatal("two generated IDs collided")
	}
	if !strings.HasPrefix(a, trace.Prefix) || len(a) != len(trace.Prefix)+32 {
		t.Errorf("unexpected ID shape %q", a)
	}
	if !trace.Valid(a) {
		t.Errorf("Valid(%q) = false", a)
	}
}

func TestValid(t *testing.T) {
	for _, id := range []string{"", "t_", "x_0123456789abcdef0123456789abcdef", "t_zz23456789abcdef0123456789abcdef"} {
		if trace.Valid(id) {
			t.Errorf("Valid(%q) = true", id)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := trace.FromContext(ctx); got != "" {
		t.Errorf("empty context gave %q", got)
	}
	ctx = trace.WithTraceID(ctx, "t_abc")
	if got := trace.FromContext(ctx); got != "t_abc" {
		t.Errorf("FromContext = %q", got)
	}
}

func TestEnsure(t *testing.T) {
	ctx, id := trace.Ensure(context.Background())
	if id == "" || trace.FromContext(ctx) != id {
		t.Fatalf("Ensure did not attach an ID: %q", id)
	}
	again, id2 := trace.Ensure(ctx)
	if id2 != id || again != ctx {
		t.Error("Ensure replaced an existing ID")
	}
}
