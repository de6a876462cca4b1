package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"
)

// Event is a realtime notification pushed to connected clients when bills
// or stock change.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	At      time.Time   `json:"at"`
}

// Hub fans events out to every connected websocket client. It replaces the
// usual process-global subscription set with an owned value injected into
// the services that publish.
type Hub struct {
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	broadcast  chan []byte
	clients    map[*websocket.Conn]bool
	mutex      sync.Mutex
	log        *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[*websocket.Conn]bool),
		log:        log,
	}
}

// Publish serializes an event and queues it for broadcast. Safe on a nil
// hub (services under test run without one); drops the event instead of
// blocking when the queue is full.
func (h *Hub) Publish(eventType string, payload interface{}) {
	if h == nil {
		return
	}
	msg, err := json.Marshal(Event{Type: eventType, Payload: payload, At: time.Now().UTC()})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- msg:
	default:
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.clients[conn] = true
			h.mutex.Unlock()
			h.log.WithField("clients", len(h.clients)).Info("ws client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
