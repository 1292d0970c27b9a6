package environment_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/bdobrica/karsb/common/environment"
)

func TestReader_Key(t *testing.T) {
	if got := environment.New("KARSB").Key("HTTP_ADDR"); got != "KARSB_HTTP_ADDR" {
		t.Errorf("Key = %q", got)
	}
	if got := environment.New("KARSB_").Key("HTTP_ADDR"); got != "KARSB_HTTP_ADDR" {
		t.Errorf("Key with trailing underscore = %q", got)
	}
	if got := environment.New("").Key("MATRIX_USER_ID"); got != "MATRIX_USER_ID" {
		t.Errorf("Key without prefix = %q", got)
	}
}

func TestReader_StringOr(t *testing.T) {
	env := environment.New("KT")
	t.Setenv("KT_NAME", "hello")
	if got := env.StringOr("NAME", "default"); got != "hello" {
		t.Errorf("expected hello, got %q", got)
	}
	if got := env.StringOr("MISSING", "default"); got != "default" {
		t.Errorf("expected default, got %q", got)
	}
}

func TestReader_Numbers(t *testing.T) {
	env := environment.New("KT")
	t.Setenv("KT_INT", " 42 ")
	t.Setenv("KT_BAD_INT", "forty-two")
	t.Setenv("KT_DUR", "3s")

	if got := env.IntOr("INT", 0); got != 42 {
		t.Errorf("IntOr = %d, want 42", got)
	}
	if got := env.IntOr("BAD_INT", 7); got != 7 {
		t.Errorf("IntOr on bad value = %d, want default 7", got)
	}
	if got := env.DurationOr("DUR", time.Second); got != 3*time.Second {
		t.Errorf("DurationOr = %v, want 3s", got)
	}
	if got := env.DurationOr("NO_DUR", time.Second); got != time.Second {
		t.Errorf("DurationOr default = %v", got)
	}
}

func TestReader_ListOr(t *testing.T) {
	env := environment.New("KT")
	t.Setenv("KT_ROOMS", " !a:example.com, ,!b:example.com ")
	want := []string{"!a:example.com", "!b:example.com"}
	if got := env.ListOr("ROOMS", nil); !reflect.DeepEqual(got, want) {
		t.Errorf("ListOr = %v, want %v", got, want)
	}
	t.Setenv("KT_EMPTY", " , ")
	if got := env.ListOr("EMPTY", []string{"x"}); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("ListOr on empty items = %v", got)
	}
}
