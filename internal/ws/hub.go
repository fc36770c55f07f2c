package ws

import (
	"encoding/json"
	"log"

	"github.com/pliu/socialite/internal/models"
	"github.com/pliu/socialite/internal/store"
)

// Event is the wire format for everything the hub pushes to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

const (
	EventUserRegistered = "user_registered"
	EventNewPost        = "new_post"
	EventNewMessage     = "new_message"
	EventError          = "error"
)

// directMessage is an inbound send frame from a connected client.
type directMessage struct {
	from    models.Account
	To      models.Account `json:"to"`
	Content string         `json:"content"`
}

type notification struct {
	// targets nil means broadcast to every connected client.
	targets []models.Account
	event   Event
}

type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Inbound message-send frames from clients.
	direct chan directMessage

	// Events pushed by HTTP handlers.
	notify chan notification

	store store.Store
}

func NewHub(store store.Store) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan directMessage),
		notify:     make(chan notification),
		store:      store,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case dm := <-h.direct:
			msg, err := h.store.SendMessage(dm.from, dm.To, dm.Content)
			if err != nil {
				log.Printf("ws send from %s failed: %v", dm.from, err)
				h.deliver([]models.Account{dm.from}, Event{Type: EventError, Payload: err.Error()})
				continue
			}
			h.deliver([]models.Account{msg.Sender, msg.Receiver}, Event{Type: EventNewMessage, Payload: msg})
		case n := <-h.notify:
			h.deliver(n.targets, n.event)
		}
	}
}

// Notify delivers an event to the given accounts' connections. Safe on a
// nil hub so handlers can run without one in tests.
func (h *Hub) Notify(event Event, targets ...models.Account) {
	if h == nil {
		return
	}
	h.notify <- notification{targets: targets, event: event}
}

// Broadcast delivers an event to every connected client.
func (h *Hub) Broadcast(event Event) {
	if h == nil {
		return
	}
	h.notify <- notification{event: event}
}

func (h *Hub) deliver(targets []models.Account, event Event) {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws marshal event: %v", err)
		return
	}

	for client := range h.clients {
		if targets != nil && !isTarget(targets, client.account) {
			continue
		}
		select {
		case client.send <- msgBytes:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

func isTarget(targets []models.Account, account models.Account) bool {
	for _, t := range targets {
		if t == account {
			return true
		}
	}
	return false
}
