package realtime

import (
	"context"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/tablemesh/kds-backend/pkg/enums"
	"github.com/tablemesh/kds-backend/pkg/logger"
	redisclient "github.com/tablemesh/kds-backend/pkg/redis"
)

// Broadcaster is the surface services use to push events toward terminals.
type Broadcaster interface {
	Broadcast(ctx context.Context, branchID uuid.UUID, station *enums.Station, event Event) error
}

// Bridge connects the in-process hub to Redis pub/sub so fan-out works
// across API instances. Outgoing events go to one Redis room; incoming
// frames from any instance land in the local hub.
type Bridge struct {
	client *redisclient.Client
	hub    *Hub
	prefix string
	logg   *logger.Logger
}

func NewBridge(client *redisclient.Client, hub *Hub, prefix string, logg *logger.Logger) *Bridge {
	return &Bridge{client: client, hub: hub, prefix: prefix, logg: logg}
}

// Broadcast publishes the event to its room. Local delivery happens when the
// subscription loop receives the frame back, keeping single-instance and
// multi-instance behavior identical.
func (b *Bridge) Broadcast(ctx context.Context, branchID uuid.UUID, station *enums.Station, event Event) error {
	frame, err := event.Encode()
	if err != nil {
		return err
	}
	room := RoomFor(b.prefix, branchID, station)
	return b.client.Publish(ctx, room, frame)
}

// Run consumes the room pattern until the context is cancelled, feeding every
// received frame into the hub.
func (b *Bridge) Run(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, SubscribePattern(b.prefix))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.dispatch(ctx, msg)
		}
	}
}

func (b *Bridge) dispatch(ctx context.Context, msg *goredis.Message) {
	branchID, station, err := ParseRoom(b.prefix, msg.Channel)
	if err != nil {
		if b.logg != nil {
			b.logg.Error(ctx, "realtime bridge received unroutable message", err)
		}
		return
	}

	event, err := Decode([]byte(msg.Payload))
	if err != nil {
		if b.logg != nil {
			b.logg.Error(ctx, "realtime bridge received undecodable frame", err)
		}
		return
	}

	b.hub.Publish(ctx, branchID, station, event.Kind, []byte(msg.Payload))
}
