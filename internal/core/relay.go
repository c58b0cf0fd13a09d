package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/olegsm/talkie-server/internal/store"
)

const (
	// defaultReplyTimeout bounds how long the generated-reply race waits
	// for the language model.
	defaultReplyTimeout = 10 * time.Second

	// generatedSenderName labels synthetic replies so clients can tell
	// them apart from messages the recipient actually wrote.
	generatedSenderName = "Auto-Reply"

	// unavailableText is substituted when the language model fails or
	// the timeout wins the race.
	unavailableText = "Recipient is currently unavailable"
)

func (h *Hub) handle(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandSendMessage:
		h.handleSend(ctx, c, cmd)
	case CommandStartTyping:
		h.fanOutTyping(c, cmd, EventStartTyping)
	case CommandStopTyping:
		h.fanOutTyping(c, cmd, EventStopTyping)
	}
}

// handleSend relays a message to the online chat members and, for a busy
// recipient in a two-party chat, schedules a generated stand-in reply.
// The authoritative record is persisted after the relay has been emitted.
func (h *Hub) handleSend(ctx context.Context, c *Client, cmd *Command) {
	recipient, twoParty := otherMember(c.UserID, cmd.Members)

	var status store.UserStatus
	if twoParty {
		if _, online := h.registry.Lookup(recipient); !online {
			c.deliver(&Event{Kind: EventOfflineNotice, ChatID: cmd.ChatID})
			return
		}
		status = h.presence.Status(ctx, recipient)
	}

	relay := Message{
		ID:         uuid.NewString(),
		ChatID:     cmd.ChatID,
		SenderID:   c.UserID,
		SenderName: c.Name,
		Content:    cmd.Content,
		CreatedAt:  time.Now(),
	}

	targets := h.registry.Resolve(cmd.Members)
	h.emit(targets, &Event{Kind: EventNewMessage, ChatID: cmd.ChatID, Message: relay})
	h.emit(targets, &Event{Kind: EventNewMessageAlert, ChatID: cmd.ChatID})

	if twoParty && status == store.StatusBusy && h.replies != nil {
		go h.sendGeneratedReply(ctx, cmd.ChatID, recipient, cmd.Members, cmd.Content)
	}

	if h.store != nil {
		record := &store.Message{
			ChatID:   cmd.ChatID,
			SenderID: c.UserID,
			Content:  cmd.Content,
		}
		if err := h.store.SaveMessage(ctx, record); err != nil {
			// Recipients already saw the relay; the durable record is now
			// missing. Surface it instead of swallowing.
			h.log.Error().Err(err).
				Int64("chat_id", cmd.ChatID).
				Int64("sender_id", c.UserID).
				Msg("persist message after relay")
			c.deliver(&Event{
				Kind:   EventError,
				ChatID: cmd.ChatID,
				Error:  coreError(ErrCodePersistFailed, "message could not be saved"),
			})
		}
	}
}

// sendGeneratedReply races the language model against the reply timeout and
// emits the winner as a synthetic message attributed to the busy recipient.
// A late completion is discarded via the buffered channel.
func (h *Hub) sendGeneratedReply(ctx context.Context, chatID, recipientID int64, members []int64, prompt string) {
	cctx, cancel := context.WithTimeout(ctx, h.replyTimeout)
	defer cancel()

	type completion struct {
		text string
		err  error
	}
	done := make(chan completion, 1)
	go func() {
		text, err := h.replies.Complete(cctx, prompt)
		done <- completion{text: text, err: err}
	}()

	text := unavailableText
	select {
	case res := <-done:
		if res.err != nil {
			h.log.Warn().Err(res.err).Int64("chat_id", chatID).Msg("generated reply failed")
		} else {
			text = res.text
		}
	case <-cctx.Done():
		h.log.Warn().Int64("chat_id", chatID).Msg("generated reply timed out")
	}

	reply := Message{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		SenderID:   recipientID,
		SenderName: generatedSenderName,
		Content:    text,
		CreatedAt:  time.Now(),
	}

	targets := h.registry.Resolve(members)
	h.emit(targets, &Event{Kind: EventNewMessage, ChatID: chatID, Message: reply})
	h.emit(targets, &Event{Kind: EventNewMessageAlert, ChatID: chatID})
}

// RelayMessage fans an already-persisted message (e.g. an attachment upload
// accepted over HTTP) out to the online chat members.
func (h *Hub) RelayMessage(chatID int64, members []int64, msg Message) {
	targets := h.registry.Resolve(members)
	h.emit(targets, &Event{Kind: EventNewMessage, ChatID: chatID, Message: msg})
	h.emit(targets, &Event{Kind: EventNewMessageAlert, ChatID: chatID})
}

// fanOutTyping emits a typing indicator to every online member except the
// originating connection.
func (h *Hub) fanOutTyping(c *Client, cmd *Command, kind EventKind) {
	for _, target := range h.registry.Resolve(cmd.Members) {
		if target.UserID == c.UserID {
			continue
		}
		target.deliver(&Event{Kind: kind, ChatID: cmd.ChatID})
	}
}

// broadcastOnline pushes the current online set to every remaining client.
func (h *Hub) broadcastOnline() {
	event := &Event{Kind: EventOnlineUsers, Users: h.registry.SnapshotOnline()}
	for _, c := range h.registry.All() {
		c.deliver(event)
	}
}

func (h *Hub) emit(targets []*Client, event *Event) {
	for _, c := range targets {
		c.deliver(event)
	}
}

// otherMember picks the single member that is not the sender. The offline
// notice and busy fallback only apply to two-party chats; group chats relay
// to whoever is online without them.
func otherMember(senderID int64, members []int64) (int64, bool) {
	if len(members) != 2 {
		return 0, false
	}
	for _, id := range members {
		if id != senderID {
			return id, true
		}
	}
	return 0, false
}
