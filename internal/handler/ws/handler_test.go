package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/companion/backend/internal/model/chat"
	"github.com/zhouzirui/companion/backend/internal/service/companion"
)

type echoChatter struct{}

func (echoChatter) Chat(_ context.Context, req chat.Request) (chat.Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return chat.Response{}, companion.ErrEmptyMessage
	}
	id := req.Persona
	if id == "" {
		id = "aria"
	}
	return chat.Response{Response: "echo: " + req.Message, Status: chat.StatusSuccess, Persona: id}, nil
}

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	r := chi.NewRouter()
	New(echoChatter{}).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/chat", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestFramesAreIndependentTurns(t *testing.T) {
	conn := dial(t)

	for _, p := range []string{"ethan", "lila"} {
		if err := conn.WriteJSON(chat.Request{Message: "hi", Persona: p}); err != nil {
			t.Fatalf("write: %v", err)
		}
		var resp chat.Response
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("read: %v", err)
		}
		if resp.Persona != p || resp.Response != "echo: hi" {
			t.Fatalf("unexpected response: %+v", resp)
		}
	}
}

func TestErrorFrames(t *testing.T) {
	conn := dial(t)

	if err := conn.WriteJSON(chat.Request{Message: "  "}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var frame ErrorFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	if frame.Code != 400 || frame.Error == "" {
		t.Fatalf("unexpected frame: %+v", frame)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	frame = ErrorFrame{}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	if frame.Code != 400 {
		t.Fatalf("unexpected frame: %+v", frame)
	}

	// connection stays usable after errors
	if err := conn.WriteJSON(chat.Request{Message: "still there?"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp chat.Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Response != "echo: still there?" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
