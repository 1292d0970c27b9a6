package chat

import (
	"bytes"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed replies.yaml
var repliesYAML []byte

// Replies are the canned texts returned without running the pipeline.
type Replies struct {
	Help         string `yaml:"help"`
	Greeting     string `yaml:"greeting"`
	Gibberish    string `yaml:"gibberish"`
	Identity     string `yaml:"identity"`
	Capabilities string `yaml:"capabilities"`
	MetricsIntro string `yaml:"metrics_intro"`
	Thanks       string `yaml:"thanks"`
	TooLong      string `yaml:"too_long"`
	Empty        string `yaml:"empty"`
	MonthFormat  string `yaml:"month_format"`
	NoDomain     string `yaml:"no_domain"`
	NoOperation  string `yaml:"no_operation"`
}

// DefaultReplies parses the embedded replies.
func DefaultReplies() (Replies, error) {
	return ParseReplies(repliesYAML)
}

// ParseReplies decodes replies from YAML. Unknown keys are rejected and every
// reply must be non-empty.
func ParseReplies(data []byte) (Replies, error) {
	var r Replies
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		return Replies{}, fmt.Errorf("parse replies: %w", err)
	}

	for key, v := range map[string]string{
		"help":          r.Help,
		"greeting":      r.Greeting,
		"gibberish":     r.Gibberish,
		"identity":      r.Identity,
		"capabilities":  r.Capabilities,
		"metrics_intro": r.MetricsIntro,
		"thanks":        r.Thanks,
		"too_long":      r.TooLong,
		"empty":         r.Empty,
		"month_format":  r.MonthFormat,
		"no_domain":     r.NoDomain,
		"no_operation":  r.NoOperation,
	} {
		if v == "" {
			return Replies{}, fmt.Errorf("parse replies: %q is empty", key)
		}
	}
	return r, nil
}
