package main

import (
	"math/rand/v2"
	"time"
)

// Bot behavior. Bots are ordinary players whose answers arrive through the
// same submit path as human ones, just on a randomized delay so the pacing
// feels natural.

const (
	botReadyDelay   = time.Second
	botAnswerMin    = time.Second
	botAnswerSpread = 2 * time.Second
)

func botAnswerDelay() time.Duration {
	return botAnswerMin + rand.N(botAnswerSpread)
}

// scheduleBotReady readies every bot after a short delay and kicks off the
// countdown once everyone is ready. Callers must hold r.mu.
func (r *Room) scheduleBotReady() {
	r.sched.Schedule(botReadyDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.aborted {
			return
		}
		for _, p := range r.players {
			if p.Bot {
				p.Ready = true
			}
		}
		if r.allReady() {
			r.startGameSequence()
		}
	})
}

// scheduleBotAnswers queues an answer for every bot that has not answered
// the current question yet. It runs on every question start, so a player
// converted to a bot mid-game is picked up on the next question without
// special casing. Callers must hold r.mu.
func (r *Room) scheduleBotAnswers() {
	phase := r.phase
	questionID := r.currentQuestion

	for _, p := range r.players {
		if !p.Bot {
			continue
		}
		bot := p
		r.sched.Schedule(botAnswerDelay(), func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.aborted || r.phase != phase || r.currentQuestion != questionID {
				return
			}
			r.submitBotAnswer(bot)
		})
	}
}

// submitBotAnswer produces a random answer for the current question and
// submits it through the normal path. Callers must hold r.mu.
func (r *Room) submitBotAnswer(bot *Player) {
	switch r.phase {
	case PhaseMG1:
		question := mg1QuestionByID(r.currentQuestion)
		if question == nil {
			return
		}
		limit := question.MaxSelect
		if limit > 2 {
			limit = 2
		}
		count := 1 + rand.IntN(limit)
		picks := pickRandomOptions(question.Options, count)
		r.submitPicks(bot, PhaseMG1, question.ID, picks)
	case PhaseMG2Important:
		picks := pickRandomOptions(mg2ImportantOptions, mg2MaxSelect)
		r.submitPicks(bot, PhaseMG2Important, "mg2_important", picks)
	case PhaseMG2NoWant:
		ids := make([]string, 0, len(mg2NoWantOptions))
		for _, o := range mg2NoWantOptions {
			ids = append(ids, o.ID)
		}
		rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		r.submitPicks(bot, PhaseMG2NoWant, "mg2_nowant", ids[:mg2MaxSelect])
	case PhaseMG3:
		sliders := make(map[string]int, len(tags))
		for _, tag := range tags {
			sliders[tag] = 1 + rand.IntN(5)
		}
		r.submitSliders(bot, sliders)
	}
}

func pickRandomOptions(options []PickOption, count int) []string {
	ids := make([]string, 0, len(options))
	for _, o := range options {
		ids = append(ids, o.ID)
	}
	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if count > len(ids) {
		count = len(ids)
	}
	return ids[:count]
}

// backfillBotAnswer fills in the current question for a player that was
// just converted to a bot, so the room never stalls waiting on them.
// Callers must hold r.mu.
func (r *Room) backfillBotAnswer(bot *Player) {
	switch r.phase {
	case PhaseMG1, PhaseMG2Important, PhaseMG2NoWant:
		var key string
		if r.phase == PhaseMG1 {
			key = "mg1_" + r.currentQuestion
		} else {
			key = r.currentQuestion
		}
		if _, answered := bot.Answers.Picks[key]; !answered {
			r.submitBotAnswer(bot)
		}
	case PhaseMG3:
		if bot.Answers.Sliders == nil {
			r.submitBotAnswer(bot)
		}
	case PhaseIntro:
		r.handleIntroDone(bot)
	case PhaseInstructions:
		r.handleInstructionsDone(bot)
	case PhaseLobby, PhaseReady:
		bot.Ready = true
		if r.allReady() {
			r.startGameSequence()
		}
	}
}
