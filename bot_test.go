package main

import (
	"testing"
	"time"
)

func newSoloGame(t *testing.T) (*Registry, *Room, *fakeScheduler, *Player, *recordingSink) {
	t.Helper()

	sched := &fakeScheduler{}
	reg := NewRegistry(testConfig(), sched)
	r := reg.createRoom(true)

	sink := &recordingSink{}
	r.mu.Lock()
	p := r.addPlayer("Ana", sink)
	bot := r.addBot()
	r.phase = PhaseIntro
	r.introReady = map[string]bool{bot.ID: true}
	r.mu.Unlock()

	return reg, r, sched, p, sink
}

func Test_SoloModeStartSequence(t *testing.T) {
	_, r, sched, p, _ := newSoloGame(t)

	withRoom(r, func() {
		r.handleIntroDone(p)
		if r.phase != PhaseReady {
			t.Fatalf("expected ready phase once the human acknowledges, got %s", r.phase)
		}
	})

	// Bot readies itself on a delay, then the human clicks ready.
	sched.advance(botReadyDelay)
	withRoom(r, func() {
		r.handlePlayerReady(p)
	})
	sched.advance(readyCountdownSeconds * time.Second)

	withRoom(r, func() {
		if r.phase != PhaseInstructions {
			t.Fatalf("expected instructions after countdown, got %s", r.phase)
		}
	})
}

func Test_BotAnswersEveryPhase(t *testing.T) {
	_, r, sched, p, _ := newSoloGame(t)

	withRoom(r, func() {
		r.handleIntroDone(p)
	})
	sched.advance(botReadyDelay)
	withRoom(r, func() {
		r.handlePlayerReady(p)
	})
	sched.advance(readyCountdownSeconds * time.Second)
	sched.advance(instructionsSeconds * time.Second)

	var bot *Player
	withRoom(r, func() {
		for _, candidate := range r.players {
			if candidate.Bot {
				bot = candidate
			}
		}
		if r.phase != PhaseMG1 {
			t.Fatalf("expected mg1, got %s", r.phase)
		}
	})

	// The bot answers each picture question within its delay bound.
	for _, question := range mg1Questions {
		sched.advance(3 * time.Second)
		withRoom(r, func() {
			picks, answered := bot.Answers.Picks["mg1_"+question.ID]
			if !answered {
				t.Fatalf("bot never answered %s", question.ID)
			}
			if len(picks) < 1 || len(picks) > 2 {
				t.Fatalf("bot picked %d options on %s", len(picks), question.ID)
			}
			r.submitPicks(p, PhaseMG1, question.ID, []string{question.Options[0].ID})
		})
		sched.advance(500 * time.Millisecond)
	}

	sched.advance(instructionsSeconds * time.Second)
	sched.advance(3 * time.Second)
	withRoom(r, func() {
		picks := bot.Answers.Picks["mg2_important"]
		if len(picks) != mg2MaxSelect {
			t.Fatalf("expected %d importance picks, got %d", mg2MaxSelect, len(picks))
		}
		r.submitPicks(p, PhaseMG2Important, "mg2_important", []string{"imp_agua"})
	})
	sched.advance(500 * time.Millisecond)

	sched.advance(3 * time.Second)
	withRoom(r, func() {
		picks := bot.Answers.Picks["mg2_nowant"]
		if len(picks) != mg2MaxSelect {
			t.Fatalf("expected %d no-want picks, got %d", mg2MaxSelect, len(picks))
		}
		r.submitPicks(p, PhaseMG2NoWant, "mg2_nowant", []string{"no_caro"})
	})
	sched.advance(500 * time.Millisecond)
	sched.advance(instructionsSeconds * time.Second)

	sched.advance(3 * time.Second)
	withRoom(r, func() {
		if bot.Answers.Sliders == nil {
			t.Fatal("bot never moved the sliders")
		}
		for tag, v := range bot.Answers.Sliders {
			if v < 1 || v > 5 {
				t.Fatalf("slider %s out of range: %d", tag, v)
			}
		}
		r.submitSliders(p, defaultSliderAnswers())
	})
	sched.advance(500 * time.Millisecond)

	withRoom(r, func() {
		if r.phase != PhaseResults {
			t.Fatalf("expected results, got %s", r.phase)
		}
	})
}

func Test_SoloRematchAutoReadiesBot(t *testing.T) {
	_, r, sched, p, sink := newSoloGame(t)

	withRoom(r, func() {
		r.phase = PhaseResults
		r.handleRematch(p)
		if r.phase != PhaseLobby {
			t.Fatalf("expected immediate reset in bot mode, got %s", r.phase)
		}
	})

	if n := sink.countType("rematch_ready"); n != 1 {
		t.Errorf("expected rematch_ready broadcast, got %d", n)
	}

	// Bot re-readies on its own; one human ready restarts the game.
	sched.advance(botReadyDelay)
	withRoom(r, func() {
		r.handlePlayerReady(p)
		if r.phase != PhaseReady {
			t.Fatalf("expected countdown start, got %s", r.phase)
		}
	})
}
