// room/room.go
package room

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/elanrrrk/citadels/engine"
	"github.com/elanrrrk/citadels/logger"
	"github.com/elanrrrk/citadels/models"
	"github.com/elanrrrk/citadels/network"
	"github.com/elanrrrk/citadels/session"
	"github.com/elanrrrk/citadels/timer"
)

// Room owns exactly one GameState and is its single writer: every mutation
// funnels through Apply under one mutex, so two clients racing on the same
// room can never both succeed against stale copies. The engine itself stays
// pure; this is where its transitions meet storage and fan-out.
type Room struct {
	Code      string
	CreatedAt time.Time

	state *engine.GameState
	rng   engine.Rand
	mu    sync.Mutex // serializes every state transition and commit

	store       Store
	broadcaster Broadcaster

	sessions    map[string]*session.Session // sessionID -> subscriber
	sessionMu   sync.RWMutex
	lastAction  time.Time
	actionMu    sync.RWMutex
	recorded    bool
}

// NewRoom wraps an existing state. The rng drives every shuffle and crown
// pick inside this room; giving each room its own source keeps transitions
// deterministic under test.
func NewRoom(code string, state *engine.GameState, rng engine.Rand, store Store, broadcaster Broadcaster) *Room {
	return &Room{
		Code:        code,
		CreatedAt:   time.Now(),
		state:       state,
		rng:         rng,
		store:       store,
		broadcaster: broadcaster,
		sessions:    make(map[string]*session.Session),
		lastAction:  time.Now(),
	}
}

// Apply runs one engine transition for the acting player. On success the new
// state is committed to storage and broadcast to every subscriber; on
// rejection nothing is stored or sent and the typed reason comes back for
// the caller to surface.
func (r *Room) Apply(playerID string, act engine.Action) (*engine.GameState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := engine.Apply(r.state, playerID, act, r.rng)
	if err != nil {
		return r.state, err
	}
	r.state = next
	r.touch()

	if err := r.store.CommitState(r.Code, next); err != nil {
		// The in-memory state stays authoritative; storage catches up on
		// the next commit.
		logger.Log.Errorf("Room %s: failed to commit state: %v", r.Code, err)
	}
	r.broadcastState(next)

	if next.Phase == engine.PhaseEnded && !r.recorded {
		r.recorded = true
		if err := r.store.RecordFinishedGame(next); err != nil {
			logger.Log.Errorf("Room %s: failed to record finished game: %v", r.Code, err)
		}
	}
	return next, nil
}

func (r *Room) broadcastState(state *engine.GameState) {
	data, err := json.Marshal(state)
	if err != nil {
		logger.Log.Errorf("Room %s: failed to marshal state: %v", r.Code, err)
		return
	}
	if err := r.broadcaster.BroadcastToRoom(r.Code, network.MsgTypeRoomState, data); err != nil {
		logger.Log.Warnf("Room %s: broadcast failed: %v", r.Code, err)
	}
}

// Snapshot returns an immutable copy of the current state, for replaying to
// late subscribers and for the browser feed.
func (r *Room) Snapshot() *engine.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// Subscribe attaches a session to the room's fan-out and marks the session
// as being in this room.
func (r *Room) Subscribe(s *session.Session) {
	r.sessionMu.Lock()
	defer r.sessionMu.Unlock()
	r.sessions[s.ID] = s
	s.RoomCode = r.Code
}

// Unsubscribe detaches a session.
func (r *Room) Unsubscribe(sessionID string) {
	r.sessionMu.Lock()
	defer r.sessionMu.Unlock()
	if s, exists := r.sessions[sessionID]; exists {
		s.RoomCode = ""
		delete(r.sessions, sessionID)
	}
}

// GetSessions returns a copy of the current subscribers.
func (r *Room) GetSessions() []*session.Session {
	r.sessionMu.RLock()
	defer r.sessionMu.RUnlock()

	sessions := make([]*session.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// SubscriberCount returns how many sessions are attached.
func (r *Room) SubscriberCount() int {
	r.sessionMu.RLock()
	defer r.sessionMu.RUnlock()
	return len(r.sessions)
}

// Lobby summarizes the room for the browser feed.
func (r *Room) Lobby() models.LobbyInfo {
	s := r.Snapshot()
	hostName := ""
	if len(s.Players) > 0 {
		hostName = s.Players[0].Name
	}
	return models.LobbyInfo{
		RoomCode:    r.Code,
		LobbyName:   s.LobbyName,
		HostName:    hostName,
		PlayerCount: len(s.Players),
		Phase:       string(s.Phase),
		CreatedAt:   r.CreatedAt,
	}
}

func (r *Room) touch() {
	r.actionMu.Lock()
	r.lastAction = time.Now()
	r.actionMu.Unlock()
}

// IdleSince reports the time of the last applied action.
func (r *Room) IdleSince() time.Time {
	r.actionMu.RLock()
	defer r.actionMu.RUnlock()
	return r.lastAction
}

// Finished reports whether the match ended.
func (r *Room) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Phase == engine.PhaseEnded
}

// Manager owns every live room, keyed by room code.
type Manager struct {
	rooms         map[string]*Room
	mutex         sync.RWMutex
	store         Store
	codeRng       engine.Rand
	codeMu        sync.Mutex
	sweepID       int64
	onCountChange func(int)
}

// NewManager creates a room manager. The store is consulted on cache misses
// so rooms survive a process restart.
func NewManager(store Store) *Manager {
	return &Manager{
		rooms:   make(map[string]*Room),
		store:   store,
		codeRng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// newCode generates a room code not currently in use.
func (m *Manager) newCode() string {
	m.codeMu.Lock()
	defer m.codeMu.Unlock()
	for {
		code := engine.NewRoomCode(m.codeRng)
		if _, taken := m.rooms[code]; !taken {
			return code
		}
	}
}

// OnCountChange registers a listener invoked with the live room count each
// time it changes. Set once during wiring, before any room exists.
func (m *Manager) OnCountChange(fn func(int)) {
	m.onCountChange = fn
}

func (m *Manager) notifyCount(n int) {
	if m.onCountChange != nil {
		m.onCountChange(n)
	}
}

// CreateRoom seeds a new match for the creating player and registers it.
func (m *Manager) CreateRoom(user engine.UserInfo, lobbyName string, broadcaster Broadcaster) (*Room, error) {
	m.mutex.Lock()
	code := m.newCode()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	state := engine.NewGame(user, code, lobbyName, rng)
	room := NewRoom(code, state, rng, m.store, broadcaster)
	m.rooms[code] = room
	count := len(m.rooms)
	m.mutex.Unlock()

	if err := m.store.CommitState(code, state); err != nil {
		logger.Log.Errorf("Room %s: failed to commit initial state: %v", code, err)
	}
	m.notifyCount(count)
	return room, nil
}

// GetRoom returns the live room, reviving it from storage if the process
// restarted since the room's last action.
func (m *Manager) GetRoom(code string, broadcaster Broadcaster) (*Room, bool) {
	m.mutex.RLock()
	room, exists := m.rooms[code]
	m.mutex.RUnlock()
	if exists {
		return room, true
	}

	state, err := m.store.LoadState(code)
	if err != nil {
		return nil, false
	}

	m.mutex.Lock()
	if room, exists := m.rooms[code]; exists {
		m.mutex.Unlock()
		return room, true
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	room = NewRoom(code, state, rng, m.store, broadcaster)
	m.rooms[code] = room
	count := len(m.rooms)
	m.mutex.Unlock()

	m.notifyCount(count)
	return room, true
}

// RemoveRoom drops the room from the manager and deletes its stored
// document. Finished rooms already archived keep their record.
func (m *Manager) RemoveRoom(code string) {
	m.mutex.Lock()
	room, exists := m.rooms[code]
	delete(m.rooms, code)
	count := len(m.rooms)
	m.mutex.Unlock()

	if !exists {
		return
	}
	m.notifyCount(count)
	if !room.Finished() {
		if err := m.store.DeleteState(code); err != nil {
			logger.Log.Warnf("Room %s: failed to delete stored state: %v", code, err)
		}
	}
}

// Lobbies lists every live room for the browser feed.
func (m *Manager) Lobbies() []models.LobbyInfo {
	m.mutex.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mutex.RUnlock()

	lobbies := make([]models.LobbyInfo, 0, len(rooms))
	for _, r := range rooms {
		lobbies = append(lobbies, r.Lobby())
	}
	return lobbies
}

// Count returns the number of live rooms.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// StartIdleSweep removes rooms with no actions for ttl. A room with no
// further actions otherwise stays in its last state indefinitely; teardown
// is this layer's job, not the engine's.
func (m *Manager) StartIdleSweep(tm *timer.TimerManager, ttl time.Duration) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	m.sweepID = tm.AddTimer(interval, interval, func() {
		m.sweepIdle(ttl)
	})
}

func (m *Manager) sweepIdle(ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)

	m.mutex.RLock()
	var expired []string
	for code, r := range m.rooms {
		if r.IdleSince().Before(cutoff) {
			expired = append(expired, code)
		}
	}
	m.mutex.RUnlock()

	for _, code := range expired {
		logger.Log.Infof("Room %s idle for over %v, removing", code, ttl)
		m.RemoveRoom(code)
	}
}

// String implements fmt.Stringer for log lines.
func (r *Room) String() string {
	return fmt.Sprintf("room %s (%d subscribers)", r.Code, r.SubscriberCount())
}
