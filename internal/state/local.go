package state

import (
	"sync"

	"github.com/gorilla/websocket"
)

// LocalStateManager tracks per-room connection state that never leaves this
// process. Rooms are battles, lobbies, or a player's personal room keyed by
// user id; the store documents in Redis stay the source of truth.
type LocalStateManager struct {
	rooms map[string]*RoomLocalState
	mu    sync.RWMutex
}

type RoomLocalState struct {
	WSClients map[string]*websocket.Conn
	MU        sync.RWMutex
}

func NewLocalStateManager() *LocalStateManager {
	return &LocalStateManager{
		rooms: make(map[string]*RoomLocalState),
	}
}

// GetRoomState returns the local state for a room, creating it if missing.
func (lsm *LocalStateManager) GetRoomState(roomID string) *RoomLocalState {
	lsm.mu.Lock()
	defer lsm.mu.Unlock()

	room, exists := lsm.rooms[roomID]
	if !exists {
		room = &RoomLocalState{
			WSClients: make(map[string]*websocket.Conn),
		}
		lsm.rooms[roomID] = room
	}
	return room
}

func (lsm *LocalStateManager) AddWSClient(roomID, userID string, conn *websocket.Conn) {
	room := lsm.GetRoomState(roomID)
	room.MU.Lock()
	defer room.MU.Unlock()

	room.WSClients[userID] = conn
}

// RemoveWSClient drops one client from a room and closes its socket. Used on
// disconnect cleanup where the socket is already dead.
func (lsm *LocalStateManager) RemoveWSClient(roomID, userID string) {
	lsm.mu.RLock()
	room, exists := lsm.rooms[roomID]
	lsm.mu.RUnlock()
	if !exists {
		return
	}

	room.MU.Lock()
	defer room.MU.Unlock()

	if conn, ok := room.WSClients[userID]; ok {
		conn.Close()
		delete(room.WSClients, userID)
	}
}

func (lsm *LocalStateManager) GetWSClient(roomID, userID string) (*websocket.Conn, bool) {
	lsm.mu.RLock()
	room, exists := lsm.rooms[roomID]
	lsm.mu.RUnlock()
	if !exists {
		return nil, false
	}

	room.MU.RLock()
	defer room.MU.RUnlock()

	conn, found := room.WSClients[userID]
	return conn, found
}

// GetAllWSClients returns a copy of the room's client map.
func (lsm *LocalStateManager) GetAllWSClients(roomID string) map[string]*websocket.Conn {
	lsm.mu.RLock()
	room, exists := lsm.rooms[roomID]
	lsm.mu.RUnlock()
	if !exists {
		return make(map[string]*websocket.Conn)
	}

	room.MU.RLock()
	defer room.MU.RUnlock()

	clients := make(map[string]*websocket.Conn, len(room.WSClients))
	for userID, conn := range room.WSClients {
		clients[userID] = conn
	}
	return clients
}

// CleanupRoom drops a room's local state without closing the sockets. The
// connections belong to players who stay online after the room is done.
func (lsm *LocalStateManager) CleanupRoom(roomID string) {
	lsm.mu.Lock()
	defer lsm.mu.Unlock()

	delete(lsm.rooms, roomID)
}
