package realtime

import (
	"encoding/json"

	"codequest/services"
)

type EventType string

const (
	// Client -> Server
	EventJoinRoom        EventType = "join_room"
	EventLeaveRoom       EventType = "leave_room"
	EventCreateRoom      EventType = "create_room"
	EventChallengeSubmit EventType = "challenge_submit"

	// Server -> Client
	EventUserConnected       EventType = "user_connected"
	EventUserDisconnected    EventType = "user_disconnected"
	EventMessage             EventType = "message"
	EventRoomCreated         EventType = "room_created"
	EventChallengeResult     EventType = "challenge_result"
	EventAchievementUnlocked EventType = "achievement_unlocked"
)

// Event is the wire envelope in both directions.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outEvent struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type RoomPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

type CreateRoomPayload struct {
	Username string `json:"username"`
}

type ChallengeSubmitPayload struct {
	Room        string `json:"room"`
	Username    string `json:"username"`
	Code        string `json:"code"`
	ChallengeID uint   `json:"challenge_id"`
}

type SystemMessagePayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type RoomCreatedPayload struct {
	RoomID    string `json:"roomId"`
	Creator   string `json:"creator"`
	Timestamp string `json:"timestamp"`
}

type ChallengeResultPayload struct {
	Username  string          `json:"username"`
	Result    services.Result `json:"result"`
	Score     int             `json:"score"`
	Timestamp string          `json:"timestamp"`
}

type PresencePayload struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
}
