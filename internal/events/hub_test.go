package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobcard-backend/internal/store"

	"github.com/gorilla/websocket"
)

func TestHubBroadcastsChanges(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish(store.Change{Slot: "manufacturingJobCards", Action: store.ActionCreated, ID: "a", Version: 3})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got store.Change
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if got.Slot != "manufacturingJobCards" || got.ID != "a" || got.Version != 3 {
		t.Errorf("change = %+v", got)
	}
}
