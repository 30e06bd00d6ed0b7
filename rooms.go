package main

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseLobby        Phase = "lobby"
	PhaseIntro        Phase = "intro"
	PhaseReady        Phase = "ready"
	PhaseInstructions Phase = "instructions"
	PhaseMG1          Phase = "mg1"
	PhaseMG2Important Phase = "mg2_important"
	PhaseMG2NoWant    Phase = "mg2_nowant"
	PhaseMG3          Phase = "mg3"
	PhaseResults      Phase = "results"
)

// sink is where a player's outbound messages go. The websocket client
// implements it; bots and disconnected players have none.
type sink interface {
	trySend(msg ServerMessage) bool
}

// AnswerSheet accumulates one player's answers across the whole game.
// Presence of a key in Picks marks the question as answered, so an empty
// slice (timer ran out) and an absent key mean different things.
type AnswerSheet struct {
	Picks   map[string][]string
	Sliders map[string]int
}

func newAnswerSheet() AnswerSheet {
	return AnswerSheet{Picks: make(map[string][]string)}
}

type Player struct {
	ID        string
	Name      string
	Ready     bool
	Connected bool
	Bot       bool
	sink      sink
	Answers   AnswerSheet
}

func (p *Player) send(msg ServerMessage) {
	if p.Bot || !p.Connected || p.sink == nil {
		return
	}
	p.sink.trySend(msg)
}

type reconnectTimer struct {
	remaining int
	cancel    func() bool
}

// Room holds the full state of one game session. All fields are guarded
// by mu; timer and bot callbacks re-acquire it and bail out if the room
// was aborted or moved on underneath them.
type Room struct {
	mu sync.Mutex

	code    string
	players []*Player
	phase   Phase
	botMode bool
	aborted bool

	currentQuestionIndex int
	currentQuestion      string

	timerRemaining int
	timerGen       uint64
	timerCancel    func() bool
	timerActive    bool

	instructionsCancel func() bool
	pendingPhase       Phase

	extendUsed        map[string]bool
	introReady        map[string]bool
	instructionsReady map[string]bool
	rematchRequests   map[string]bool
	reconnectTimers   map[string]*reconnectTimer

	lastActive time.Time

	sched Scheduler
	cfg   *Config
}

func (r *Room) addPlayer(name string, s sink) *Player {
	if name == "" {
		name = fmt.Sprintf("Jugador %d", len(r.players)+1)
	}
	p := &Player{
		ID:        uuid.NewString(),
		Name:      name,
		Connected: true,
		sink:      s,
		Answers:   newAnswerSheet(),
	}
	r.players = append(r.players, p)
	return p
}

func (r *Room) addBot() *Player {
	p := &Player{
		ID:        uuid.NewString(),
		Name:      "Bot",
		Connected: true,
		Bot:       true,
		Answers:   newAnswerSheet(),
	}
	r.players = append(r.players, p)
	return p
}

func (r *Room) partnerOf(playerID string) *Player {
	for _, p := range r.players {
		if p.ID != playerID {
			return p
		}
	}
	return nil
}

func (r *Room) broadcast(msg ServerMessage) {
	for _, p := range r.players {
		p.send(msg)
	}
}

func (r *Room) connectedHumans() int {
	n := 0
	for _, p := range r.players {
		if !p.Bot && p.Connected {
			n++
		}
	}
	return n
}

func (r *Room) touch() {
	r.lastActive = time.Now()
}

// Registry owns every live room. Its lock is always taken before any
// room lock, never after.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	cfg   *Config
	sched Scheduler
}

func NewRegistry(cfg *Config, sched Scheduler) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		cfg:   cfg,
		sched: sched,
	}
}

// Codes skip O, 0, I, 1 and L so players can read them aloud without
// ambiguity.
const roomCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func randomRoomCode() string {
	var sb strings.Builder
	max := big.NewInt(int64(len(roomCodeAlphabet)))
	for i := 0; i < 4; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		sb.WriteByte(roomCodeAlphabet[n.Int64()])
	}
	return sb.String()
}

func (reg *Registry) createRoom(botMode bool) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var code string
	for {
		code = randomRoomCode()
		if _, taken := reg.rooms[code]; !taken {
			break
		}
	}

	r := &Room{
		code:              code,
		phase:             PhaseLobby,
		botMode:           botMode,
		extendUsed:        make(map[string]bool),
		introReady:        make(map[string]bool),
		instructionsReady: make(map[string]bool),
		rematchRequests:   make(map[string]bool),
		reconnectTimers:   make(map[string]*reconnectTimer),
		lastActive:        time.Now(),
		sched:             reg.sched,
		cfg:               reg.cfg,
	}
	reg.rooms[code] = r
	return r
}

func (reg *Registry) findRoomByCode(code string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.rooms[strings.ToUpper(code)]
}

// findRoomByClient locates the room and player bound to a connection.
// Bots never match: their sink is nil.
func (reg *Registry) findRoomByClient(s sink) (*Room, *Player) {
	reg.mu.Lock()
	candidates := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		candidates = append(candidates, r)
	}
	reg.mu.Unlock()

	for _, r := range candidates {
		r.mu.Lock()
		for _, p := range r.players {
			if p.sink != nil && p.sink == s {
				r.mu.Unlock()
				return r, p
			}
		}
		r.mu.Unlock()
	}
	return nil, nil
}

// cleanupRoom removes the room from the registry and cancels everything
// that could still fire. Players mid-game are told the session is over.
func (reg *Registry) cleanupRoom(code string) {
	reg.mu.Lock()
	r, ok := reg.rooms[code]
	if ok {
		delete(reg.rooms, code)
	}
	reg.mu.Unlock()
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopTimer()
	if r.instructionsCancel != nil {
		r.instructionsCancel()
		r.instructionsCancel = nil
	}
	for id, t := range r.reconnectTimers {
		t.cancel()
		delete(r.reconnectTimers, id)
	}

	inGame := r.phase != PhaseLobby && r.phase != PhaseResults
	r.aborted = true
	if inGame {
		r.broadcast(newGameAbortedMessage())
	}
}

// startReaper sweeps idle rooms twice per session timeout. Tests create
// registries without a reaper and drive cleanup directly.
func (reg *Registry) startReaper() {
	interval := reg.cfg.sessionTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}

	var sweep func()
	sweep = func() {
		cutoff := time.Now().Add(-reg.cfg.sessionTimeout)

		reg.mu.Lock()
		stale := make([]string, 0)
		for code, r := range reg.rooms {
			r.mu.Lock()
			if r.lastActive.Before(cutoff) {
				stale = append(stale, code)
			}
			r.mu.Unlock()
		}
		reg.mu.Unlock()

		for _, code := range stale {
			logf(reg.cfg, "ROOMS: Ending idle room %s", code)
			reg.cleanupRoom(code)
		}

		reg.sched.Schedule(interval, sweep)
	}

	reg.sched.Schedule(interval, sweep)
}
