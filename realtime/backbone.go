package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"
)

const backboneChannel = "codequest:broadcast"

const (
	scopeGlobal = "global"
	scopeRoom   = "room"
	scopeUser   = "user"
)

// envelope is what travels over the backbone channel between processes.
type envelope struct {
	Origin string          `json:"origin"`
	Scope  string          `json:"scope"`
	Room   string          `json:"room,omitempty"`
	UserID uint            `json:"user_id,omitempty"`
	Data   json.RawMessage `json:"data"`
}

// Backbone fans broadcasts out across server processes over redis pub/sub.
// Without one, room membership is process-local and horizontally scaled
// deployments would split rooms.
type Backbone struct {
	rdb *redis.Client
}

func NewBackbone(addr, password string, db int) (*Backbone, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &Backbone{rdb: rdb}, nil
}

func (b *Backbone) Publish(ctx context.Context, env envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, backboneChannel, data).Err()
}

// Subscribe feeds remote broadcasts into the hub. Envelopes published by this
// process are skipped; locals already received them.
func (b *Backbone) Subscribe(ctx context.Context, hub *Hub) {
	pubsub := b.rdb.Subscribe(ctx, backboneChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("Backbone: malformed envelope: %v", err)
				continue
			}
			if env.Origin == hub.instanceID {
				continue
			}
			switch env.Scope {
			case scopeGlobal:
				hub.deliverGlobal(env.Data)
			case scopeRoom:
				hub.deliverRoom(env.Room, env.Data)
			case scopeUser:
				hub.deliverUser(env.UserID, env.Data)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (b *Backbone) Close() error {
	return b.rdb.Close()
}
