package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeCreateRoom   = 101
	MsgTypeJoinRoom     = 102
	MsgTypeLeaveRoom    = 103
	MsgTypeListRooms    = 104
	MsgTypePlayerAction = 201
)

// send frames and sends a message: 2-byte message ID, 2-byte length, data.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func sendJSON(c *websocket.Conn, msgID uint16, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return send(c, msgID, data)
}

func usage() {
	log.Println("Commands:")
	log.Println("  create [lobby name]      create a room")
	log.Println("  join <code>              join a room by code")
	log.Println("  list                     list open rooms")
	log.Println("  ready                    toggle ready")
	log.Println("  start                    start the game (host)")
	log.Println("  pick <roleId>            pick a role (1..8)")
	log.Println("  build <districtId>       build a district from hand")
	log.Println("  power <roleId> [player]  use your role power")
	log.Println("  end                      end your turn")
	log.Println("  quit                     close the connection")
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	playerID := flag.String("id", "", "player id (defaults to the name)")
	playerName := flag.String("name", "player", "player name")
	flag.Parse()

	if *playerID == "" {
		*playerID = *playerName
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s as %s", u.String(), *playerName)

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	usage()

	commands := make(chan string)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		for {
			text, err := reader.ReadString('\n')
			if err != nil {
				close(commands)
				return
			}
			commands <- strings.TrimSpace(text)
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case text, ok := <-commands:
			if !ok {
				return
			}
			if text == "" {
				continue
			}
			if err := dispatch(c, text, *playerID, *playerName); err != nil {
				log.Println("Write error:", err)
				return
			}
			if text == "quit" {
				return
			}
		}
	}
}

func dispatch(c *websocket.Conn, text, playerID, playerName string) error {
	parts := strings.Fields(text)
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "create":
		payload := map[string]string{"playerId": playerID, "playerName": playerName}
		if len(args) > 0 {
			payload["lobbyName"] = strings.Join(args, " ")
		}
		return sendJSON(c, MsgTypeCreateRoom, payload)
	case "join":
		if len(args) != 1 {
			log.Println("Usage: join <code>")
			return nil
		}
		return sendJSON(c, MsgTypeJoinRoom, map[string]string{
			"roomCode":   strings.ToUpper(args[0]),
			"playerId":   playerID,
			"playerName": playerName,
		})
	case "list":
		return send(c, MsgTypeListRooms, []byte{})
	case "ready":
		return sendJSON(c, MsgTypePlayerAction, map[string]interface{}{"type": "toggle_ready"})
	case "start":
		return sendJSON(c, MsgTypePlayerAction, map[string]interface{}{"type": "start_game"})
	case "pick":
		id, ok := intArg(args, 0, "Usage: pick <roleId>")
		if !ok {
			return nil
		}
		return sendJSON(c, MsgTypePlayerAction, map[string]interface{}{"type": "pick_role", "roleId": id})
	case "build":
		id, ok := intArg(args, 0, "Usage: build <districtId>")
		if !ok {
			return nil
		}
		return sendJSON(c, MsgTypePlayerAction, map[string]interface{}{"type": "build_district", "districtId": id})
	case "power":
		id, ok := intArg(args, 0, "Usage: power <roleId> [targetPlayer]")
		if !ok {
			return nil
		}
		target := map[string]interface{}{"roleId": id}
		if len(args) > 1 {
			target["playerId"] = args[1]
		}
		return sendJSON(c, MsgTypePlayerAction, map[string]interface{}{"type": "use_power", "target": target})
	case "end":
		return sendJSON(c, MsgTypePlayerAction, map[string]interface{}{"type": "end_turn"})
	case "quit":
		return send(c, MsgTypeLeaveRoom, []byte{})
	default:
		usage()
		return nil
	}
}

func intArg(args []string, i int, usageMsg string) (int, bool) {
	if len(args) <= i {
		log.Println(usageMsg)
		return 0, false
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		log.Println(usageMsg)
		return 0, false
	}
	return n, true
}
