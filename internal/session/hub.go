package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/rolltable/rolltable/internal/application/constant"
	"github.com/rolltable/rolltable/internal/application/metric"
	"github.com/rolltable/rolltable/internal/usecase"
)

// Client message kinds carried over the websocket.
const (
	MessageChat       = "chat"
	MessageDice       = "dice"
	MessageSummary    = "summary"
	MessageEvent      = "event"
	MessageCharacters = "characters"
)

// DefaultSnapshotInterval is how often a live room's state is folded back
// into its durable snapshot.
const DefaultSnapshotInterval = 30 * time.Second

// Message is the envelope clients exchange within a room.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type room struct {
	id      string
	clients map[string]*Client
	state   *roomState
	stop    chan struct{}
}

// Hub tracks live clients per room. It drives the registry's occupancy
// markers, the per-room snapshot ticker, and the best-effort save when the
// last client disconnects.
type Hub struct {
	registry         usecase.RegistryUsecase
	snapshots        usecase.SnapshotUsecase
	snapshotInterval time.Duration

	mu    sync.Mutex
	rooms map[string]*room
}

func NewHub(registry usecase.RegistryUsecase, snapshots usecase.SnapshotUsecase, snapshotInterval time.Duration) *Hub {
	return &Hub{
		registry:         registry,
		snapshots:        snapshots,
		snapshotInterval: snapshotInterval,
		rooms:            make(map[string]*room),
	}
}

// Join registers the client with its room, reviving the room's registry
// entry if it was marked empty.
func (h *Hub) Join(ctx context.Context, client *Client) {
	h.mu.Lock()
	r, ok := h.rooms[client.RoomID]
	if !ok {
		r = &room{
			id:      client.RoomID,
			clients: make(map[string]*Client),
			state:   newRoomState(),
			stop:    make(chan struct{}),
		}
		h.rooms[client.RoomID] = r
		go h.runSnapshotLoop(r)
	}
	r.clients[client.ID] = client
	count := len(r.clients)
	h.mu.Unlock()

	metric.IncrementWSActiveConnections()
	slog.Info("client joined room",
		slog.String(constant.ClientID, client.ID),
		slog.String(constant.RoomID, client.RoomID),
	)

	if err := h.registry.MarkEmpty(ctx, client.RoomID, false); err != nil {
		slog.Warn("clear empty marker", slog.Any(constant.Error, err))
	}
	if err := h.registry.SetUsersConnected(ctx, client.RoomID, count); err != nil {
		slog.Warn("update users connected", slog.Any(constant.Error, err))
	}

	h.broadcastPresence(r)
}

// Leave removes the client. When the room drains, its registry entry is
// marked empty for the reaper and a final snapshot save is attempted,
// fire-and-forget.
func (h *Hub) Leave(ctx context.Context, client *Client) {
	h.mu.Lock()
	r, ok := h.rooms[client.RoomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(r.clients, client.ID)
	count := len(r.clients)
	if count == 0 {
		delete(h.rooms, client.RoomID)
		close(r.stop)
	}
	h.mu.Unlock()

	metric.DecrementWSActiveConnections()
	slog.Info("client left room",
		slog.String(constant.ClientID, client.ID),
		slog.String(constant.RoomID, client.RoomID),
	)

	if err := h.registry.SetUsersConnected(ctx, client.RoomID, count); err != nil {
		slog.Warn("update users connected", slog.Any(constant.Error, err))
	}

	if count > 0 {
		h.broadcastPresence(r)
		return
	}

	if err := h.registry.MarkEmpty(ctx, client.RoomID, true); err != nil {
		slog.Warn("set empty marker", slog.Any(constant.Error, err))
	}

	// Best-effort final save. No retry, no acknowledgement; losing it only
	// costs ephemeral state.
	state := r.state.snapshot()
	go func() {
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := h.snapshots.Sync(saveCtx, r.id, state); err != nil {
			slog.Warn("final snapshot save",
				slog.String(constant.RoomID, r.id),
				slog.Any(constant.Error, err),
			)
		}
	}()
}

// Dispatch applies a client message to the room state and relays it to the
// other connected clients.
func (h *Hub) Dispatch(sender *Client, msg Message) {
	h.mu.Lock()
	r, ok := h.rooms[sender.RoomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	peers := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		if c.ID != sender.ID {
			peers = append(peers, c)
		}
	}
	h.mu.Unlock()

	r.state.apply(msg.Type, msg.Data)

	for _, peer := range peers {
		if err := peer.WriteJSON(msg); err != nil {
			slog.Warn("relay message",
				slog.String(constant.ClientID, peer.ID),
				slog.Any(constant.Error, err),
			)
		}
	}
}

// Drain force-saves every live room, used on process shutdown.
func (h *Hub) Drain(ctx context.Context) {
	h.mu.Lock()
	rooms := make([]*room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.Unlock()

	for _, r := range rooms {
		if _, err := h.snapshots.Sync(ctx, r.id, r.state.snapshot()); err != nil {
			slog.Warn("drain snapshot save",
				slog.String(constant.RoomID, r.id),
				slog.Any(constant.Error, err),
			)
		}
	}
}

func (h *Hub) runSnapshotLoop(r *room) {
	ticker := time.NewTicker(h.snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if _, err := h.snapshots.Sync(ctx, r.id, r.state.snapshot()); err != nil {
				slog.Warn("periodic snapshot save",
					slog.String(constant.RoomID, r.id),
					slog.Any(constant.Error, err),
				)
			}
			cancel()
		}
	}
}

func (h *Hub) broadcastPresence(r *room) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	payload, err := json.Marshal(map[string]int{"connected": len(clients)})
	if err != nil {
		return
	}
	msg := Message{Type: "presence", Data: payload}

	for _, c := range clients {
		if err := c.WriteJSON(msg); err != nil {
			slog.Warn("broadcast presence",
				slog.String(constant.ClientID, c.ID),
				slog.Any(constant.Error, err),
			)
		}
	}
}
