package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/olegsm/talkie-server/internal/proto"
)

func wsURL(env *testEnv) string {
	return strings.Replace(env.ts.URL, "http", "ws", 1) + "/ws"
}

func dialWS(ctx context.Context, t *testing.T, env *testEnv, token string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, wsURL(env)+"?token="+token, nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })

	return conn
}

func readOutbound(ctx context.Context, t *testing.T, conn *websocket.Conn) outboundEnvelope {
	t.Helper()

	var out outboundEnvelope
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		t.Fatalf("read outbound: %v", err)
	}
	return out
}

type outboundEnvelope struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func TestHealthEndpoint(t *testing.T) {
	env := startTestServer(t)

	resp, err := env.ts.Client().Get(env.ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	env := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, wsURL(env), nil)
	if err == nil {
		t.Fatalf("expected handshake to fail without a token")
	}
	if resp == nil || resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
}

func TestWebSocketRelayBetweenMembers(t *testing.T) {
	env := startTestServer(t)

	alice, aliceToken := registerTestUser(t, env, "Alice", "alice")
	bob, bobToken := registerTestUser(t, env, "Bob", "bob")

	chat, err := env.store.CreateChat(context.Background(), "", false, alice.ID, []int64{bob.ID})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialWS(ctx, t, env, aliceToken)
	connB := dialWS(ctx, t, env, bobToken)

	// Registration goes through the hub run loop after the handshake.
	time.Sleep(100 * time.Millisecond)

	payload, _ := json.Marshal(proto.NewMessageData{
		ChatID:  chat.ID,
		Members: []int64{alice.ID, bob.ID},
		Message: "hi there",
	})
	if err := wsjson.Write(ctx, connA, proto.Inbound{Type: proto.EventNewMessage, Data: payload}); err != nil {
		t.Fatalf("write message: %v", err)
	}

	out := readOutbound(ctx, t, connB)
	if out.Type != proto.OutboundTypeEvent || out.Event != proto.EventNewMessage {
		t.Fatalf("unexpected outbound: %+v", out)
	}

	var event proto.EventMessageData
	if err := json.Unmarshal(out.Data, &event); err != nil {
		t.Fatalf("unmarshal event data: %v", err)
	}
	if event.ChatID != chat.ID || event.Message.Content != "hi there" {
		t.Fatalf("unexpected event payload: %+v", event)
	}
	if event.Message.Sender.ID != alice.ID || event.Message.Sender.Name != "Alice" {
		t.Fatalf("unexpected sender: %+v", event.Message.Sender)
	}

	alert := readOutbound(ctx, t, connB)
	if alert.Event != proto.EventNewMessageAlert {
		t.Fatalf("expected alert after the message, got %+v", alert)
	}

	// The message persists after the relay.
	deadline := time.Now().Add(2 * time.Second)
	for {
		n, err := env.store.CountMessages(context.Background(), chat.ID)
		if err != nil {
			t.Fatalf("count messages: %v", err)
		}
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("message was not persisted, count %d", n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketOfflineNotice(t *testing.T) {
	env := startTestServer(t)

	alice, aliceToken := registerTestUser(t, env, "Alice", "alice")
	bob, _ := registerTestUser(t, env, "Bob", "bob")

	chat, err := env.store.CreateChat(context.Background(), "", false, alice.ID, []int64{bob.ID})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialWS(ctx, t, env, aliceToken)
	time.Sleep(100 * time.Millisecond)

	payload, _ := json.Marshal(proto.NewMessageData{
		ChatID:  chat.ID,
		Members: []int64{alice.ID, bob.ID},
		Message: "anyone home?",
	})
	if err := wsjson.Write(ctx, connA, proto.Inbound{Type: proto.EventNewMessage, Data: payload}); err != nil {
		t.Fatalf("write message: %v", err)
	}

	out := readOutbound(ctx, t, connA)
	if out.Event != proto.EventOfflineNotice {
		t.Fatalf("expected offline notice, got %+v", out)
	}

	var notice proto.EventChatData
	if err := json.Unmarshal(out.Data, &notice); err != nil {
		t.Fatalf("unmarshal notice: %v", err)
	}
	if notice.ChatID != chat.ID {
		t.Fatalf("unexpected chat id: %d", notice.ChatID)
	}

	n, err := env.store.CountMessages(context.Background(), chat.ID)
	if err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if n != 0 {
		t.Fatalf("offline-bound messages must not persist, count %d", n)
	}
}

func TestWebSocketCookieAuth(t *testing.T) {
	env := startTestServer(t)

	_, token := registerTestUser(t, env, "Alice", "alice")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	header := stdhttp.Header{}
	header.Set("Cookie", TokenCookieName+"="+token)

	conn, _, err := websocket.Dial(ctx, wsURL(env), &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		t.Fatalf("ws dial with cookie: %v", err)
	}
	_ = conn.Close(websocket.StatusNormalClosure, "done")
}

func TestWebSocketUnknownType(t *testing.T) {
	env := startTestServer(t)

	_, token := registerTestUser(t, env, "Alice", "alice")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(ctx, t, env, token)
	time.Sleep(50 * time.Millisecond)

	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: "BOGUS", Data: json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := readOutbound(ctx, t, conn)
	if out.Type != proto.OutboundTypeError || out.Error == nil {
		t.Fatalf("expected an error outbound, got %+v", out)
	}
}
