package service

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
)

func chatRoomName(swapRequestID uint) string {
	return fmt.Sprintf("chat_%d", swapRequestID)
}

func userRoomName(userID uint) string {
	return fmt.Sprintf("user_%d", userID)
}

// chatHub tracks active websocket clients by room and fans events out to
// them. Rooms are either per-conversation (chat_<id>) or per-user
// (user_<id>); a client may sit in many rooms at once.
type chatHub struct {
	mu    sync.RWMutex
	rooms map[string]map[*chatClient]struct{}
	log   zerolog.Logger
}

func newChatHub(logger zerolog.Logger) *chatHub {
	return &chatHub{
		rooms: make(map[string]map[*chatClient]struct{}),
		log:   logger.With().Str("component", "chat_hub").Logger(),
	}
}

func (h *chatHub) join(client *chatClient, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.rooms[room]; !exists {
		h.rooms[room] = make(map[*chatClient]struct{})
	}
	h.rooms[room][client] = struct{}{}
	client.rooms[room] = struct{}{}
	h.log.Debug().Str("room", room).Uint("user_id", client.userID).Msg("chat client joined room")
}

func (h *chatHub) remove(client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range client.rooms {
		if clients, ok := h.rooms[room]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.log.Debug().Uint("user_id", client.userID).Msg("chat client disconnected")
}

// broadcast delivers the event to every client in the given rooms exactly
// once, optionally skipping one sender connection.
func (h *chatHub) broadcast(rooms []string, event dto.ChatOutboundEvent, skip *chatClient) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := make(map[*chatClient]struct{})
	for _, room := range rooms {
		for client := range h.rooms[room] {
			if client == skip {
				continue
			}
			if _, done := delivered[client]; done {
				continue
			}
			delivered[client] = struct{}{}
			client.deliver(event)
		}
	}
}

// broadcastAll delivers the event to every connected client. Used for
// presence transitions.
func (h *chatHub) broadcastAll(event dto.ChatOutboundEvent, skip *chatClient) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := make(map[*chatClient]struct{})
	for _, clients := range h.rooms {
		for client := range clients {
			if client == skip {
				continue
			}
			if _, done := delivered[client]; done {
				continue
			}
			delivered[client] = struct{}{}
			client.deliver(event)
		}
	}
}

// presenceRegistry counts open connections per user so presence survives
// multiple tabs. Transitions fire only on the first connect and the last
// disconnect.
type presenceRegistry struct {
	mu          sync.Mutex
	connections map[uint]int
}

func newPresenceRegistry() *presenceRegistry {
	return &presenceRegistry{connections: make(map[uint]int)}
}

// Connect records a connection and reports whether the user just came online.
func (p *presenceRegistry) Connect(userID uint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.connections[userID]++
	return p.connections[userID] == 1
}

// Disconnect records a closed connection and reports whether the user went
// offline.
func (p *presenceRegistry) Disconnect(userID uint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	count, ok := p.connections[userID]
	if !ok {
		return false
	}
	if count <= 1 {
		delete(p.connections, userID)
		return true
	}
	p.connections[userID] = count - 1
	return false
}

// Online reports whether the user has at least one open connection.
func (p *presenceRegistry) Online(userID uint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.connections[userID] > 0
}

// OnlineIDs returns the ids of all users with open connections.
func (p *presenceRegistry) OnlineIDs() []uint {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]uint, 0, len(p.connections))
	for id := range p.connections {
		ids = append(ids, id)
	}
	return ids
}
