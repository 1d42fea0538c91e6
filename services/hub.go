package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"openrace/models"

	"github.com/gorilla/websocket"
)

// Hub fans race events out to connected clients. Clients push position
// samples at animation-frame cadence over their socket; the hub feeds
// them through the race service and broadcasts the resulting state to
// everyone in the same race.
type Hub struct {
	clients     map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	mutex       sync.RWMutex
	raceService *RaceService
}

type Client struct {
	hub        *Hub
	id         string
	socket     *websocket.Conn
	send       chan []byte
	raceID     uint
	playerID   uint
	playerName string
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type positionUpdatePayload struct {
	Position models.Vec2 `json:"position"`
	Lap      int         `json:"lap"`
}

func NewHub(raceService *RaceService) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		raceService: raceService,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client %s connected to race %d (player %d: %s)", client.id, client.raceID, client.playerID, client.playerName)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				h.dropClientLocked(client)
				log.Printf("Client %s left race %d (player %d: %s)", client.id, client.raceID, client.playerID, client.playerName)
			}
			h.mutex.Unlock()
		}
	}
}

// dropClientLocked removes a client and closes its send channel. It is
// a no-op for clients already dropped, so a client stalled on several
// paths at once is never double-closed. Caller holds the write lock.
func (h *Hub) dropClientLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
}

// BroadcastToRace sends a typed message to every client connected to
// the race. Clients whose send buffer is full are dropped.
func (h *Hub) BroadcastToRace(raceID uint, messageType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s message: %v", messageType, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		if client.raceID != raceID {
			continue
		}
		select {
		case client.send <- data:
		default:
			h.dropClientLocked(client)
		}
	}
}

// SendRaceStateSync pushes the current race snapshot to one client,
// used when a client (re)connects or explicitly asks for state.
func (h *Hub) SendRaceStateSync(client *Client) {
	state, err := h.raceService.GetCurrentRaceState(client.raceID)
	if err != nil {
		log.Printf("Error getting race state for client %s: %v", client.id, err)
		return
	}

	data, err := json.Marshal(Message{Type: "race_state_sync", Payload: state})
	if err != nil {
		log.Printf("Error marshaling race state sync: %v", err)
		return
	}

	select {
	case client.send <- data:
	default:
		h.mutex.Lock()
		h.dropClientLocked(client)
		h.mutex.Unlock()
	}
}

func (h *Hub) ConnectedPlayers(raceID uint) []uint {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	var playerIDs []uint
	for client := range h.clients {
		if client.raceID == raceID {
			playerIDs = append(playerIDs, client.playerID)
		}
	}
	return playerIDs
}

func (h *Hub) RegisterClient(conn *websocket.Conn, raceID uint, playerID uint, playerName string) *Client {
	client := &Client{
		hub:        h,
		id:         generateClientID(),
		socket:     conn,
		send:       make(chan []byte, 256),
		raceID:     raceID,
		playerID:   playerID,
		playerName: playerName,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg inboundMessage) {
	switch msg.Type {
	case "ping":
		data, _ := json.Marshal(Message{Type: "pong", Payload: "pong"})
		c.send <- data

	case "position_update":
		var payload positionUpdatePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			log.Printf("Invalid position_update from player %d in race %d: %v", c.playerID, c.raceID, err)
			return
		}

		race, err := c.hub.raceService.ReportPositionForPlayer(c.playerID, c.raceID, &ReportPositionRequest{
			Position: payload.Position,
			Lap:      payload.Lap,
		})
		if err != nil {
			log.Printf("Position report from player %d in race %d rejected: %v", c.playerID, c.raceID, err)
			return
		}

		c.hub.BroadcastToRace(c.raceID, "race_update", stateFromRace(race))
		if race.Status == models.RaceStatusFinished {
			c.hub.BroadcastToRace(c.raceID, "race_finished", race.Roster)
		}

	case "request_race_state":
		c.hub.SendRaceStateSync(c)

	default:
		log.Printf("Unknown message type %q from player %d in race %d", msg.Type, c.playerID, c.raceID)
	}
}

func generateClientID() string {
	return fmt.Sprintf("client_%d", time.Now().UnixNano())
}
