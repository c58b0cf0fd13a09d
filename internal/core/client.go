package core

import "sync"

// Client is one live connection as seen by the core layer. A user has at
// most one admitted client at a time; admitting a new one closes the old.
type Client struct {
	ID       string
	UserID   int64
	Name     string
	Commands chan *Command
	Events   chan *Event

	closeOnce sync.Once
	done      chan struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id string, userID int64, name string) *Client {
	return &Client{
		ID:       id,
		UserID:   userID,
		Name:     name,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 8),
		done:     make(chan struct{}),
	}
}

// Close marks the client as finished. Safe to call multiple times.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed when the client has been evicted or replaced.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// deliver hands an event to the client without blocking.
func (c *Client) deliver(event *Event) {
	select {
	case c.Events <- event:
	case <-c.done:
	default:
		// Drop if slow consumer.
	}
}
