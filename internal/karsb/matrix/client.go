// Package matrix is the bot's Matrix transport: it syncs the configured
// rooms, hands plain-text messages to a handler and posts replies.
package matrix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// Config holds Matrix client configuration.
type Config struct {
	Homeserver  string
	UserID      string
	AccessToken string
	// Rooms the bot joins and listens in. Messages from other rooms are
	// ignored.
	Rooms []string
	// State persists the sync position. When nil an in-memory store is used
	// and events from before startup are skipped.
	State SyncState
}

// Message is an incoming plain-text room message.
type Message struct {
	RoomID  string
	EventID string
	Sender  string
	Body    string
}

// MessageHandler processes one incoming message.
type MessageHandler func(ctx context.Context, msg Message)

// Client wraps the mautrix client.
type Client struct {
	client  *mautrix.Client
	config  Config
	rooms   map[string]struct{}
	stopCh  chan struct{}
	handler MessageHandler
}

const (
	backoffMin = 2 * time.Second
	backoffMax = 5 * time.Minute
)

// New creates a client. It does not contact the homeserver.
func New(config Config) (*Client, error) {
	client, err := mautrix.NewClient(config.Homeserver, id.UserID(config.UserID), config.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("create Matrix client: %w", err)
	}

	if config.State != nil {
		client.Store = NewSyncStore(config.State)
	} else {
		slog.Warn("Matrix sync state is not persisted; events before startup are skipped")
	}

	rooms := make(map[string]struct{}, len(config.Rooms))
	for _, r := range config.Rooms {
		rooms[r] = struct{}{}
	}

	return &Client{
		client: client,
		config: config,
		rooms:  rooms,
		stopCh: make(chan struct{}),
	}, nil
}

// Start joins the configured rooms and syncs in the background until Stop,
// reconnecting with exponential backoff.
func (c *Client) Start(ctx context.Context, handler MessageHandler) error {
	c.handler = handler

	syncer, ok := c.client.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return errors.New("unexpected Matrix syncer type")
	}
	if c.config.State == nil {
		syncer.OnSync(c.client.DontProcessOldEvents)
	}
	syncer.OnEventType(event.EventMessage, c.onMessage)

	for _, roomID := range c.config.Rooms {
		if err := c.joinRoom(ctx, id.RoomID(roomID)); err != nil {
			return fmt.Errorf("join room %s: %w", roomID, err)
		}
	}

	go c.syncLoop()
	return nil
}

func (c *Client) syncLoop() {
	backoff := backoffMin
	for {
		err := c.client.Sync()
		if err == nil {
			// Only a StopSync call ends Sync cleanly.
			return
		}
		select {
		case <-c.stopCh:
			return
		default:
		}

		slog.Error("Matrix sync stopped; reconnecting", "err", err, "backoff", backoff)
		select {
		case <-c.stopCh:
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, backoffMax)
	}
}

// Stop ends the sync loop.
func (c *Client) Stop() {
	close(c.stopCh)
	c.client.StopSync()
}

// UserID returns the bot's own Matrix ID.
func (c *Client) UserID() string {
	return c.config.UserID
}

// Reply posts body as a reply to eventID. html, when non-empty, is sent as
// the formatted body.
func (c *Client) Reply(ctx context.Context, roomID, eventID, body, html string) error {
	content := event.MessageEventContent{
		MsgType: event.MsgText,
		Body:    body,
		RelatesTo: &event.RelatesTo{
			InReplyTo: &event.InReplyTo{EventID: id.EventID(eventID)},
		},
	}
	if html != "" {
		content.Format = event.FormatHTML
		content.FormattedBody = html
	}

	if _, err := c.client.SendMessageEvent(ctx, id.RoomID(roomID), event.EventMessage, &content); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// SendNotice posts a notice, used for rate-limit and operator messages.
func (c *Client) SendNotice(ctx context.Context, roomID, body string) error {
	content := event.MessageEventContent{
		MsgType: event.MsgNotice,
		Body:    body,
	}
	if _, err := c.client.SendMessageEvent(ctx, id.RoomID(roomID), event.EventMessage, &content); err != nil {
		return fmt.Errorf("send notice: %w", err)
	}
	return nil
}

func (c *Client) onMessage(ctx context.Context, evt *event.Event) {
	if evt.Sender == id.UserID(c.config.UserID) {
		return
	}
	if _, ok := c.rooms[evt.RoomID.String()]; !ok {
		return
	}

	content := evt.Content.AsMessage()
	if content == nil || content.MsgType != event.MsgText {
		return
	}

	if c.handler != nil {
		c.handler(ctx, Message{
			RoomID:  evt.RoomID.String(),
			EventID: evt.ID.String(),
			Sender:  evt.Sender.String(),
			Body:    content.Body,
		})
	}
}

func (c *Client) joinRoom(ctx context.Context, roomID id.RoomID) error {
	_, err := c.client.JoinRoomByID(ctx, roomID)
	if err != nil {
		// Homeservers answer M_FORBIDDEN when the bot is already a member.
		if errors.Is(err, mautrix.MForbidden) {
			slog.Warn("join room: already a member or access denied, continuing", "room", roomID)
			return nil
		}
		return err
	}
	return nil
}
