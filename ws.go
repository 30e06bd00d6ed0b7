package main

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client wraps one websocket connection. Outbound messages go through a
// buffered channel drained by writePump; a slow consumer loses messages
// rather than blocking a room callback.
type Client struct {
	conn    *websocket.Conn
	send    chan ServerMessage
	limiter *rate.Limiter

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn:    conn,
		send:    make(chan ServerMessage, 32),
		limiter: rate.NewLimiter(10, 20),
	}
}

func (c *Client) trySend(msg ServerMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *Client) readPump(cfg *Config, reg *Registry) {
	defer func() {
		reg.handleDisconnect(c)
		c.close()
		_ = c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		if !c.limiter.Allow() {
			logf(cfg, "WS: Closing flooding connection from %s", c.conn.RemoteAddr())
			frame := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "rate limit exceeded")
			_ = c.conn.WriteControl(websocket.CloseMessage, frame, time.Now().Add(time.Second))
			return
		}

		msg, err := decodeClientMessage(data)
		if err != nil {
			c.trySend(newErrorMessage(err.Error()))
			continue
		}

		dispatch(cfg, reg, c, msg)
	}
}

func dispatch(cfg *Config, reg *Registry, c *Client, msg ClientMessage) {
	switch m := msg.(type) {
	case CreateRoomMessage:
		handleCreateRoom(cfg, reg, c, m.Name)
	case CreateSoloMessage:
		handleCreateSolo(cfg, reg, c, m.Name)
	case JoinRoomMessage:
		handleJoinRoom(cfg, reg, c, m)
	default:
		r, player := reg.findRoomByClient(c)
		if r == nil || player == nil {
			c.trySend(newErrorMessage("No estas en una sala"))
			return
		}

		r.mu.Lock()
		defer r.mu.Unlock()

		switch m := msg.(type) {
		case PlayerReadyMessage:
			r.handlePlayerReady(player)
		case IntroDoneMessage:
			r.handleIntroDone(player)
		case InstructionsDoneMessage:
			r.handleInstructionsDone(player)
		case SubmitAnswerMessage:
			r.handleSubmitAnswer(player, m)
		case RequestExtendMessage:
			r.handleRequestExtend(player, m.QuestionID)
		case RematchMessage:
			r.handleRematch(player)
		}
	}
}

func handleCreateRoom(cfg *Config, reg *Registry, c *Client, name string) {
	r := reg.createRoom(false)

	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.addPlayer(name, c)
	logf(cfg, "GAME: Room %s created by %s", r.code, player.Name)
	player.send(newRoomCreatedMessage(r.code, player.ID, false))
}

func handleCreateSolo(cfg *Config, reg *Registry, c *Client, name string) {
	r := reg.createRoom(true)

	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.addPlayer(name, c)
	bot := r.addBot()
	logf(cfg, "GAME: Solo room %s created by %s", r.code, player.Name)

	player.send(newRoomCreatedMessage(r.code, player.ID, true))
	player.send(newPlayerJoinedMessage(2, player.Name, bot.Name))

	r.phase = PhaseIntro
	r.introReady = map[string]bool{bot.ID: true}
	player.send(newShowIntroMessage())
}

func handleJoinRoom(cfg *Config, reg *Registry, c *Client, msg JoinRoomMessage) {
	r := reg.findRoomByCode(msg.Code)
	if r == nil {
		c.trySend(newErrorMessage("Sala no encontrada"))
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.PlayerID != "" {
		for _, p := range r.players {
			if p.ID != msg.PlayerID {
				continue
			}
			// Disconnected players may rejoin; so may a player whose seat
			// was handed to a substitute bot in the meantime. The solo
			// room's permanent bot is never reclaimable.
			if (!p.Connected && !p.Bot) || (p.Bot && !r.botMode) {
				logf(cfg, "GAME: Room %s: %s reconnected", r.code, p.Name)
				r.handleReconnection(p, c)
				return
			}
		}
	}

	if r.connectedHumans() >= 2 {
		c.trySend(newErrorMessage("La sala esta llena"))
		return
	}
	if r.phase != PhaseLobby {
		c.trySend(newErrorMessage("La partida ya ha empezado"))
		return
	}

	player := r.addPlayer(msg.Name, c)
	logf(cfg, "GAME: Room %s: %s joined", r.code, player.Name)
	player.send(newRoomCreatedMessage(r.code, player.ID, false))

	if len(r.players) == 2 {
		r.broadcast(newPlayerJoinedMessage(2, r.players[0].Name, r.players[1].Name))
		r.phase = PhaseIntro
		r.introReady = make(map[string]bool)
		r.broadcast(newShowIntroMessage())
	} else {
		r.broadcast(newPlayerJoinedMessage(len(r.players), "", ""))
	}
}

func serveWS(cfg *Config, reg *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := newClient(conn)

		go client.writePump()
		client.readPump(cfg, reg)
	}
}
