package main

import (
	"reflect"
	"sync"
	"testing"
	"time"
)

// fakeScheduler runs callbacks on virtual time so tests can step through
// countdowns and delays without sleeping.
type fakeTask struct {
	due       time.Duration
	fn        func()
	cancelled bool
	done      bool
}

type fakeScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*fakeTask
}

func (s *fakeScheduler) Schedule(d time.Duration, fn func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := &fakeTask{due: s.now + d, fn: fn}
	s.tasks = append(s.tasks, task)

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if task.cancelled || task.done {
			return false
		}
		task.cancelled = true
		return true
	}
}

// advance moves virtual time forward, firing due tasks in order. Tasks
// scheduled by a firing task are picked up in the same pass.
func (s *fakeScheduler) advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		var next *fakeTask
		for _, task := range s.tasks {
			if task.cancelled || task.done || task.due > target {
				continue
			}
			if next == nil || task.due < next.due {
				next = task
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		next.done = true
		s.now = next.due
		s.mu.Unlock()

		next.fn()

		s.mu.Lock()
	}
}

// recordingSink captures everything sent to one player.
type recordingSink struct {
	mu   sync.Mutex
	msgs []ServerMessage
}

func (s *recordingSink) trySend(msg ServerMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return true
}

func (s *recordingSink) all() []ServerMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ServerMessage, len(s.msgs))
	copy(out, s.msgs)
	return out
}

func (s *recordingSink) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = nil
}

func msgType(m ServerMessage) string {
	return reflect.ValueOf(m).FieldByName("Type").String()
}

func (s *recordingSink) countType(name string) int {
	n := 0
	for _, m := range s.all() {
		if msgType(m) == name {
			n++
		}
	}
	return n
}

func (s *recordingSink) lastOfType(name string) (ServerMessage, bool) {
	var found ServerMessage
	ok := false
	for _, m := range s.all() {
		if msgType(m) == name {
			found = m
			ok = true
		}
	}
	return found, ok
}

func testConfig() *Config {
	return &Config{
		bind:            "127.0.0.1",
		port:            3000,
		reconnectWindow: 60 * time.Second,
		sessionTimeout:  time.Hour,
	}
}

// newTestGame builds a registry plus a two-human room ready in the intro
// phase, mirroring the state right after the second player joins.
func newTestGame(t *testing.T) (*Registry, *Room, *fakeScheduler, [2]*Player, [2]*recordingSink) {
	t.Helper()

	sched := &fakeScheduler{}
	reg := NewRegistry(testConfig(), sched)
	r := reg.createRoom(false)

	sink1 := &recordingSink{}
	sink2 := &recordingSink{}

	r.mu.Lock()
	p1 := r.addPlayer("Ana", sink1)
	p2 := r.addPlayer("Luis", sink2)
	r.phase = PhaseIntro
	r.mu.Unlock()

	return reg, r, sched, [2]*Player{p1, p2}, [2]*recordingSink{sink1, sink2}
}

func withRoom(r *Room, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

// startGame drives a fresh two-human room from intro to the first MG1
// question.
func startGame(t *testing.T, r *Room, sched *fakeScheduler, players [2]*Player) {
	t.Helper()

	withRoom(r, func() {
		r.handleIntroDone(players[0])
		r.handleIntroDone(players[1])
	})
	withRoom(r, func() {
		r.handlePlayerReady(players[0])
		r.handlePlayerReady(players[1])
	})
	sched.advance(readyCountdownSeconds * time.Second)
	sched.advance(instructionsSeconds * time.Second)

	withRoom(r, func() {
		if r.phase != PhaseMG1 {
			t.Fatalf("expected phase mg1 after start sequence, got %s", r.phase)
		}
	})
}
