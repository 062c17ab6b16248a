package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/elanrrrk/citadels/broadcast"
	"github.com/elanrrrk/citadels/engine"
	"github.com/elanrrrk/citadels/logger"
	"github.com/elanrrrk/citadels/monitor"
	"github.com/elanrrrk/citadels/network"
	"github.com/elanrrrk/citadels/room"
	citadels_rpc "github.com/elanrrrk/citadels/rpc"
	"github.com/elanrrrk/citadels/services"
	"github.com/elanrrrk/citadels/session"
)

type GameServer struct {
	addr             string
	defaultLobbyName string
	upgrader         websocket.Upgrader
	roomManager      *room.Manager
	sessionManager   *session.Manager
	gameService      *services.GameService
	broadcaster      broadcast.Broadcaster
	rpcServer        *citadels_rpc.Server
	monitor          *monitor.Monitor
	shutdownChan     chan struct{}
}

func NewGameServer(addr, rpcAddr, defaultLobbyName string, gs *services.GameService, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:             addr,
		defaultLobbyName: defaultLobbyName,
		roomManager:      room.NewManager(gs),
		sessionManager:   session.NewManager(),
		gameService:      gs,
		monitor:          mon,
		shutdownChan:     make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // allow all origins; auth is out of scope
			},
		},
	}

	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)
	// Gauge tracks creates, revivals, and sweep removals alike.
	s.roomManager.OnCountChange(mon.SetActiveRooms)

	rpcServer, err := citadels_rpc.NewServer(rpcAddr)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	lobbyService := citadels_rpc.NewLobbyService(s.roomManager, gs)
	rpc.Register(lobbyService)

	return s
}

// RoomManager exposes the manager for wiring (idle sweep, tests).
func (s *GameServer) RoomManager() *room.Manager {
	return s.roomManager
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.monitor.DecOnlinePlayers()
		s.sessionManager.Remove(sess.GetID())
		if sess.RoomCode != "" {
			if r, exists := s.roomManager.GetRoom(sess.RoomCode, s.broadcaster); exists {
				r.Unsubscribe(sess.GetID())
			}
		}
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess)
	case network.MsgTypeListRooms:
		s.handleListRooms(sess)
	case network.MsgTypePlayerAction:
		s.handleGameAction(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

type createRoomRequest struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	LobbyName  string `json:"lobbyName,omitempty"`
}

type joinRoomRequest struct {
	RoomCode   string `json:"roomCode"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	var req createRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, "malformed create request")
		return
	}
	if req.PlayerID == "" || req.PlayerName == "" {
		s.sendError(sess, "player identity required")
		return
	}
	lobbyName := req.LobbyName
	if lobbyName == "" {
		lobbyName = s.defaultLobbyName
	}

	sess.BindPlayer(req.PlayerID, req.PlayerName)
	r, err := s.roomManager.CreateRoom(engine.UserInfo{ID: req.PlayerID, Name: req.PlayerName}, lobbyName, s.broadcaster)
	if err != nil {
		s.sendError(sess, err.Error())
		return
	}
	r.Subscribe(sess)
	logger.Log.Infof("Session %s created room %s", sess.GetID(), r.Code)

	resp, _ := json.Marshal(map[string]string{"roomCode": r.Code})
	sess.Send(network.MsgTypeCreateRoom, resp)
	s.sendSnapshot(sess, r)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req joinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, "malformed join request")
		return
	}
	if req.PlayerID == "" || req.PlayerName == "" {
		s.sendError(sess, "player identity required")
		return
	}

	r, exists := s.roomManager.GetRoom(req.RoomCode, s.broadcaster)
	if !exists {
		s.sendError(sess, "room "+req.RoomCode+" not found")
		return
	}

	sess.BindPlayer(req.PlayerID, req.PlayerName)
	r.Subscribe(sess)

	_, err := r.Apply(req.PlayerID, engine.Action{Type: engine.ActionJoin, PlayerName: req.PlayerName})
	switch {
	case err == nil:
		logger.Log.Infof("Session %s joined room %s as %s", sess.GetID(), r.Code, req.PlayerName)
	case errors.Is(err, engine.ErrAlreadyMember):
		// Rejoin: nothing to commit, just resubscribe and replay the state.
		logger.Log.Infof("Session %s rejoined room %s", sess.GetID(), r.Code)
	default:
		r.Unsubscribe(sess.GetID())
		s.monitor.IncActionsRejected(rejectionReason(err))
		s.sendError(sess, err.Error())
		return
	}
	s.sendSnapshot(sess, r)
}

func (s *GameServer) handleLeaveRoom(sess *session.Session) {
	if sess.RoomCode == "" {
		return
	}
	if r, exists := s.roomManager.GetRoom(sess.RoomCode, s.broadcaster); exists {
		r.Unsubscribe(sess.GetID())
	}
}

func (s *GameServer) handleListRooms(sess *session.Session) {
	data, err := json.Marshal(s.roomManager.Lobbies())
	if err != nil {
		s.sendError(sess, "failed to list rooms")
		return
	}
	sess.Send(network.MsgTypeListRooms, data)
}

func (s *GameServer) handleGameAction(sess *session.Session, packet *network.Packet) {
	if sess.RoomCode == "" {
		s.sendError(sess, "not in a room")
		return
	}
	playerID, _ := sess.Player()
	if playerID == "" {
		s.sendError(sess, "no player identity bound")
		return
	}

	r, exists := s.roomManager.GetRoom(sess.RoomCode, s.broadcaster)
	if !exists {
		logger.Log.Errorf("Room %s not found for session %s", sess.RoomCode, sess.GetID())
		s.sendError(sess, "room no longer exists")
		return
	}

	var act engine.Action
	if err := json.Unmarshal(packet.Data, &act); err != nil {
		s.sendError(sess, "malformed action")
		return
	}

	start := time.Now()
	state, err := r.Apply(playerID, act)
	s.monitor.ObserveActionLatency(time.Since(start))
	if err != nil {
		// The room is untouched; only the caller hears about the rejection.
		s.monitor.IncActionsRejected(rejectionReason(err))
		s.sendError(sess, err.Error())
		return
	}
	s.monitor.IncActionsApplied()

	if state.Phase == engine.PhaseEnded {
		s.monitor.IncGamesFinished()
		logger.Log.Infof("Room %s finished: %s", r.Code, state.Status())
	}
}

func (s *GameServer) sendSnapshot(sess *session.Session, r *room.Room) {
	data, err := json.Marshal(r.Snapshot())
	if err != nil {
		logger.Log.Errorf("Failed to marshal snapshot of room %s: %v", r.Code, err)
		return
	}
	sess.Send(network.MsgTypeRoomState, data)
}

func (s *GameServer) sendError(sess *session.Session, msg string) {
	data, _ := json.Marshal(map[string]string{"error": msg})
	sess.Send(network.MsgTypeError, data)
}

// rejectionReason maps engine rejections onto stable metric labels.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, engine.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, engine.ErrInvalidPhase):
		return "invalid_phase"
	case errors.Is(err, engine.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, engine.ErrAlreadyBuilt):
		return "already_built"
	case errors.Is(err, engine.ErrUnknownRole):
		return "unknown_role"
	case errors.Is(err, engine.ErrUnknownDistrict):
		return "unknown_district"
	case errors.Is(err, engine.ErrUnknownPlayer):
		return "unknown_player"
	case errors.Is(err, engine.ErrAlreadyMember):
		return "already_member"
	case errors.Is(err, engine.ErrRoomFull):
		return "room_full"
	default:
		return "precondition"
	}
}
