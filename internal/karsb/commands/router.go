// Package commands parses and dispatches the operator commands the bot
// accepts in Matrix rooms, e.g. "/karsb audit tail 5".
package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Prefix starts every operator command.
const Prefix = "/karsb"

// Command is a parsed operator command.
type Command struct {
	Name       string
	Subcommand string
	Args       []string
	RawText    string
}

// ErrNotACommand is returned by Parse when the message does not start with the
// router prefix. Such messages are chat queries.
var ErrNotACommand = errors.New("not a command (missing prefix)")

// Handler handles one command on behalf of sender.
type Handler func(ctx context.Context, cmd *Command, sender string) (string, error)

// Router routes commands to handlers keyed by "name" or "name.subcommand".
type Router struct {
	handlers map[string]Handler
	prefix   string
}

// NewRouter creates a router for prefix.
func NewRouter(prefix string) *Router {
	return &Router{
		handlers: make(map[string]Handler),
		prefix:   prefix,
	}
}

// Register registers handler under key.
func (r *Router) Register(key string, handler Handler) {
	r.handlers[key] = handler
}

// Parse splits text into a Command. The prefix must be followed by a space or
// end the message, so "/karsbot" is not a command.
func (r *Router) Parse(text string) (*Command, error) {
	text = strings.TrimSpace(text)

	rest, ok := strings.CutPrefix(text, r.prefix)
	if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
		return nil, ErrNotACommand
	}

	parts := strings.Fields(rest)
	if len(parts) == 0 {
		return nil, errors.New("empty command")
	}

	cmd := &Command{
		Name:    strings.ToLower(parts[0]),
		Args:    []string{},
		RawText: strings.TrimSpace(rest),
	}
	if len(parts) > 1 {
		cmd.Subcommand = parts[1]
		cmd.Args = append(cmd.Args, parts[2:]...)
	}
	return cmd, nil
}

// Route parses text and calls its handler. A handler registered for the
// bare name also receives unknown subcommands, which is how "trace <id>"
// reaches the trace handler.
func (r *Router) Route(ctx context.Context, text, sender string) (string, error) {
	cmd, err := r.Parse(text)
	if err != nil {
		return "", err
	}

	key := cmd.Name
	if cmd.Subcommand != "" {
		key = cmd.Name + "." + strings.ToLower(cmd.Subcommand)
	}

	handler, ok := r.handlers[key]
	if !ok {
		handler, ok = r.handlers[cmd.Name]
		if !ok {
			return "", fmt.Errorf("unknown command: %s", strings.ReplaceAll(key, ".", " "))
		}
	}
	return handler(ctx, cmd, sender)
}

// Arg returns the argument at index.
func (c *Command) Arg(index int) (string, bool) {
	if index < 0 || index >= len(c.Args) {
		return "", false
	}
	return c.Args[index], true
}
