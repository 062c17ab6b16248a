package rpc

import (
	"net"
	"net/rpc"

	"github.com/elanrrrk/citadels/logger"
	"github.com/elanrrrk/citadels/models"
	"github.com/elanrrrk/citadels/room"
	"github.com/elanrrrk/citadels/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// LobbyService exposes the room browser and player stats over net/rpc. The
// launch surface (bot command, room list UI) consumes this to hand players
// a joinable room code.
type LobbyService struct {
	roomManager *room.Manager
	gameService *services.GameService
}

// NewLobbyService creates the RPC-facing service.
func NewLobbyService(rm *room.Manager, gs *services.GameService) *LobbyService {
	return &LobbyService{roomManager: rm, gameService: gs}
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Lobbies []models.LobbyInfo
}

// ListRooms returns every live, joinable room.
func (ls *LobbyService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.Lobbies = ls.roomManager.Lobbies()
	return nil
}

type PlayerStatsArgs struct {
	PlayerID string
}

type PlayerStatsReply struct {
	Stats *models.PlayerStats
}

// GetPlayerStats aggregates a player's archived matches.
func (ls *LobbyService) GetPlayerStats(args *PlayerStatsArgs, reply *PlayerStatsReply) error {
	stats, err := ls.gameService.PlayerStats(args.PlayerID)
	if err != nil {
		return err
	}
	reply.Stats = stats
	return nil
}
