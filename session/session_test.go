package session

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/elanrrrk/citadels/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct{}

func (m *MockConnection) Send(msgID uint16, data []byte) error { return nil }
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	_, exists = manager.Get(sessionID)
	if exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestManager_GetByPlayerID(t *testing.T) {
	manager := NewManager()

	sess1 := NewSession("session1", &MockConnection{})
	sess1.BindPlayer("alice", "Alice")

	sess2 := NewSession("session2", &MockConnection{})
	sess2.BindPlayer("bob", "Bob")

	sess3 := NewSession("session3", &MockConnection{})
	sess3.BindPlayer("alice", "Alice")

	manager.Add(sess1)
	manager.Add(sess2)
	manager.Add(sess3)

	aliceSessions := manager.GetByPlayerID("alice")
	if len(aliceSessions) != 2 {
		t.Errorf("Expected 2 sessions for alice, got %d", len(aliceSessions))
	}

	bobSessions := manager.GetByPlayerID("bob")
	if len(bobSessions) != 1 {
		t.Errorf("Expected 1 session for bob, got %d", len(bobSessions))
	}

	ghostSessions := manager.GetByPlayerID("ghost")
	if len(ghostSessions) != 0 {
		t.Errorf("Expected 0 sessions for an unknown player, got %d", len(ghostSessions))
	}
}

func TestSession_ConcurrentSendAndTouch(t *testing.T) {
	sess := NewSession("test_session", &MockConnection{})
	before := sess.Seen()

	// Sends and heartbeat touches race in production: the broadcaster
	// writes while the connection's read loop touches.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sess.Send(1, nil)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sess.Touch()
			}
		}()
	}
	wg.Wait()

	if sess.Seen().Before(before) {
		t.Error("Seen should never move backwards")
	}
}

func TestSession_BindPlayer(t *testing.T) {
	sess := NewSession("test_session", &MockConnection{})
	sess.BindPlayer("alice", "Alice")

	id, name := sess.Player()
	if id != "alice" || name != "Alice" {
		t.Errorf("Expected alice/Alice, got %s/%s", id, name)
	}
}
