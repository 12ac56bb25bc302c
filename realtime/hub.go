package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"codequest/services"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// evalTimeout bounds one evaluator run so a slow or hostile submission cannot
// stall other rooms.
const evalTimeout = 10 * time.Second

type clientEvent struct {
	client *Client
	event  Event
}

// Hub is the room registry and fan-out point for the real-time protocol.
// Membership lives in explicit maps keyed by room id; an optional redis
// backbone extends broadcasts across processes.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
	users   map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	inbound    chan *clientEvent

	evaluator   services.Evaluator
	matches     *services.MultiplayerService
	submissions *services.SubmissionService
	backbone    *Backbone
	instanceID  string
}

func NewHub(evaluator services.Evaluator, matches *services.MultiplayerService, submissions *services.SubmissionService) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		rooms:       make(map[string]map[*Client]bool),
		users:       make(map[uint]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		inbound:     make(chan *clientEvent),
		evaluator:   evaluator,
		matches:     matches,
		submissions: submissions,
		instanceID:  uuid.NewString(),
	}
}

// SetBackbone attaches the shared pub/sub backbone. Call before Run.
func (h *Hub) SetBackbone(b *Backbone) {
	h.backbone = b
}

// Run drives the hub loop. Start it in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	if h.backbone != nil {
		go h.backbone.Subscribe(ctx, h)
	}

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case ev := <-h.inbound:
			h.handleEvent(ev.client, ev.event)
		case <-ctx.Done():
			return
		}
	}
}

// ServeClient attaches an upgraded connection to the hub and blocks until the
// client disconnects. Identity comes from the session captured pre-upgrade.
func (h *Hub) ServeClient(conn *websocket.Conn) {
	userID, _ := conn.Locals("ws_user_id").(uint)
	username, _ := conn.Locals("ws_username").(string)

	client := newClient(h, conn, userID, username)
	h.register <- client

	go client.writePump()
	client.readPump()
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	if client.UserID != 0 {
		if h.users[client.UserID] == nil {
			h.users[client.UserID] = make(map[*Client]bool)
		}
		h.users[client.UserID][client] = true
	}
	h.mu.Unlock()

	// anonymous connections produce no presence event
	if client.UserID != 0 {
		h.broadcastGlobal(EventUserConnected, PresencePayload{
			UserID:   client.UserID,
			Username: client.Username,
		})
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if !h.clients[client] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)

	var emptied []string
	for room := range client.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
				emptied = append(emptied, room)
			}
		}
	}
	client.rooms = make(map[string]bool)

	if client.UserID != 0 {
		if conns, ok := h.users[client.UserID]; ok {
			delete(conns, client)
			if len(conns) == 0 {
				delete(h.users, client.UserID)
			}
		}
	}
	close(client.send)
	h.mu.Unlock()

	for _, room := range emptied {
		if err := h.matches.CancelMatch(room); err != nil {
			log.Printf("Failed to cancel match for room %s: %v", room, err)
		}
	}

	if client.UserID != 0 {
		h.broadcastGlobal(EventUserDisconnected, PresencePayload{
			UserID:   client.UserID,
			Username: client.Username,
		})
	}
}

func (h *Hub) handleEvent(client *Client, event Event) {
	switch event.Type {
	case EventJoinRoom:
		var p RoomPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.Room == "" {
			return
		}
		h.joinRoom(client, p.Room, displayName(p.Username))

	case EventLeaveRoom:
		var p RoomPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.Room == "" {
			return
		}
		h.leaveRoom(client, p.Room, displayName(p.Username))

	case EventCreateRoom:
		var p CreateRoomPayload
		if event.Payload != nil {
			if err := json.Unmarshal(event.Payload, &p); err != nil {
				return
			}
		}
		h.createRoom(client, displayName(p.Username))

	case EventChallengeSubmit:
		var p ChallengeSubmitPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.Room == "" {
			return
		}
		h.challengeSubmit(client, p)

	default:
		// unknown events are silently ignored
	}
}

func (h *Hub) joinRoom(client *Client, room, username string) {
	h.mu.Lock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	client.rooms[room] = true
	h.mu.Unlock()

	h.BroadcastRoom(room, EventMessage, SystemMessagePayload{
		Type:    "system",
		Message: fmt.Sprintf("%s has joined the room", username),
	})

	if client.UserID != 0 {
		if err := h.matches.ActivateMatch(room, client.UserID); err != nil {
			log.Printf("Failed to activate match for room %s: %v", room, err)
		}
	}
}

func (h *Hub) leaveRoom(client *Client, room, username string) {
	h.mu.Lock()
	emptied := false
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
			emptied = true
		}
	}
	delete(client.rooms, room)
	h.mu.Unlock()

	h.BroadcastRoom(room, EventMessage, SystemMessagePayload{
		Type:    "system",
		Message: fmt.Sprintf("%s has left the room", username),
	})

	if emptied {
		if err := h.matches.CancelMatch(room); err != nil {
			log.Printf("Failed to cancel match for room %s: %v", room, err)
		}
	}
}

func (h *Hub) createRoom(client *Client, username string) {
	// uuid suffix instead of a 4-digit random: collision-resistant room ids
	roomID := fmt.Sprintf("room_%s", uuid.NewString()[:8])

	h.mu.Lock()
	h.rooms[roomID] = map[*Client]bool{client: true}
	client.rooms[roomID] = true
	h.mu.Unlock()

	h.BroadcastRoom(roomID, EventRoomCreated, RoomCreatedPayload{
		RoomID:    roomID,
		Creator:   username,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	if client.UserID != 0 {
		if _, err := h.matches.CreateMatch(roomID, client.UserID, nil); err != nil {
			log.Printf("Failed to create match for room %s: %v", roomID, err)
		}
	}
}

// challengeSubmit evaluates off the hub loop and broadcasts the result to the
// room when done.
func (h *Hub) challengeSubmit(client *Client, p ChallengeSubmitPayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
		defer cancel()

		start := time.Now()
		result := h.evaluator.Evaluate(ctx, p.Code, p.ChallengeID)
		elapsed := time.Since(start)

		h.submissions.Record(client.UserID, p.ChallengeID, p.Code, result, elapsed)

		if result.Passed && client.UserID != 0 {
			winner := client.UserID
			if err := h.matches.CompleteMatch(p.Room, &winner, result.Score, 0); err != nil {
				log.Printf("Failed to complete match for room %s: %v", p.Room, err)
			}
		}

		h.BroadcastRoom(p.Room, EventChallengeResult, ChallengeResultPayload{
			Username:  p.Username,
			Result:    result,
			Score:     result.Score,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}()
}

// BroadcastRoom sends an event to every member of a room, here and on peer
// processes when a backbone is attached.
func (h *Hub) BroadcastRoom(room string, eventType EventType, payload interface{}) {
	data, err := json.Marshal(outEvent{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}
	h.deliverRoom(room, data)
	h.publish(scopeRoom, room, 0, data)
}

func (h *Hub) broadcastGlobal(eventType EventType, payload interface{}) {
	data, err := json.Marshal(outEvent{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}
	h.deliverGlobal(data)
	h.publish(scopeGlobal, "", 0, data)
}

// NotifyUser implements services.Notifier: it pushes an event to every
// connection of one user (their private channel).
func (h *Hub) NotifyUser(userID uint, event string, payload interface{}) {
	data, err := json.Marshal(outEvent{Type: EventType(event), Payload: payload})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event, err)
		return
	}
	h.deliverUser(userID, data)
	h.publish(scopeUser, "", userID, data)
}

func (h *Hub) deliverRoom(room string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		client.enqueue(data)
	}
}

func (h *Hub) deliverGlobal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		client.enqueue(data)
	}
}

func (h *Hub) deliverUser(userID uint, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.users[userID] {
		client.enqueue(data)
	}
}

func (h *Hub) publish(scope string, room string, userID uint, data []byte) {
	if h.backbone == nil {
		return
	}
	if err := h.backbone.Publish(context.Background(), envelope{
		Origin: h.instanceID,
		Scope:  scope,
		Room:   room,
		UserID: userID,
		Data:   data,
	}); err != nil {
		log.Printf("Backbone publish failed: %v", err)
	}
}

// RoomSize returns the number of local members in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func displayName(username string) string {
	if username == "" {
		return "Anonymous"
	}
	return username
}
