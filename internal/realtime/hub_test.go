package realtime

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// addClient inserts a subscriber directly, the way run() does on register.
func addClient(h *Hub, projectID uuid.UUID, buffer int) *Client {
	client := &Client{
		send:      make(chan []byte, buffer),
		projectID: projectID,
		userID:    uuid.New(),
		hub:       h,
	}
	h.clientsMu.Lock()
	if h.clients[projectID] == nil {
		h.clients[projectID] = make(map[*Client]bool)
	}
	h.clients[projectID][client] = true
	h.clientsMu.Unlock()
	return client
}

func TestHub_Broadcast_DeliversToProjectClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	projectID := uuid.New()
	otherProject := uuid.New()

	subscriber := addClient(hub, projectID, 4)
	bystander := addClient(hub, otherProject, 4)

	hub.Broadcast(projectID, Event{
		Type:       EventStatusChanged,
		EntityType: "SUB_PHASE",
		EntityID:   uuid.New().String(),
		NewStatus:  "in_progress",
	})

	select {
	case payload := <-subscriber.send:
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			t.Fatalf("Failed to decode event: %v", err)
		}
		if event.Type != EventStatusChanged {
			t.Errorf("Expected type %s, got %s", EventStatusChanged, event.Type)
		}
		if event.ProjectID != projectID.String() {
			t.Errorf("Expected project %s, got %s", projectID, event.ProjectID)
		}
		if event.Timestamp.IsZero() {
			t.Error("Expected the timestamp stamped on broadcast")
		}
	case <-time.After(time.Second):
		t.Fatal("Expected the subscriber to receive the event")
	}

	select {
	case <-bystander.send:
		t.Fatal("Expected clients on other projects to receive nothing")
	default:
	}
}

func TestHub_Broadcast_DropsSlowClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	projectID := uuid.New()

	// A full send buffer marks the client as slow on the next broadcast
	slow := addClient(hub, projectID, 1)
	slow.send <- []byte("backlog")

	hub.Broadcast(projectID, Event{Type: EventProgressUpdated})

	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount(projectID) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Expected the slow client to be unregistered")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_Broadcast_ConcurrentUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop())
	projectID := uuid.New()

	clients := make([]*Client, 20)
	for i := range clients {
		clients[i] = addClient(hub, projectID, 1)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			hub.Broadcast(projectID, Event{Type: EventProgressUpdated, OverallProgress: i})
		}
	}()
	go func() {
		defer wg.Done()
		for _, c := range clients {
			hub.unregister <- c
		}
	}()

	// Drain so broadcasts never see a uniformly full project
	done := make(chan struct{})
	go func() {
		for _, c := range clients {
			for range c.send {
			}
		}
		close(done)
	}()

	wg.Wait()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected all client channels to close after unregister")
	}

	if count := hub.SubscriberCount(projectID); count != 0 {
		t.Errorf("Expected no subscribers left, got %d", count)
	}
}
