package main

import (
	"encoding/json"
	"time"
)

// Game flow. Every function in this file expects r.mu to be held by the
// caller; scheduled callbacks re-acquire the lock themselves and verify
// the room is still in the state they were scheduled for.

func (r *Room) handleIntroDone(player *Player) {
	if r.phase != PhaseIntro {
		return
	}
	r.introReady[player.ID] = true
	r.touch()

	for _, p := range r.players {
		if p.ID != player.ID {
			p.send(newPartnerIntroReadyMessage())
		}
	}

	if r.botMode {
		for _, p := range r.players {
			if p.Bot {
				r.introReady[p.ID] = true
			}
		}
	}

	if len(r.introReady) < len(r.players) {
		return
	}

	r.phase = PhaseReady
	r.broadcast(newIntroAllReadyMessage())

	if r.botMode {
		r.scheduleBotReady()
	}
}

func (r *Room) handlePlayerReady(player *Player) {
	if r.phase != PhaseLobby && r.phase != PhaseReady {
		return
	}
	player.Ready = true
	r.touch()

	if r.allReady() {
		r.startGameSequence()
	}
}

func (r *Room) allReady() bool {
	if len(r.players) < 2 {
		return false
	}
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

func (r *Room) startGameSequence() {
	r.phase = PhaseReady
	r.broadcast(newBothReadyMessage())

	r.sched.Schedule(readyCountdownSeconds*time.Second, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.aborted {
			return
		}
		r.broadcast(newGameStartMessage())
		r.startMiniGame(PhaseMG1)
	})
}

// startMiniGame shows the instructions screen for a phase and arms the
// auto-advance fallback for players who never tap continue.
func (r *Room) startMiniGame(phase Phase) {
	if r.aborted {
		return
	}

	r.phase = PhaseInstructions
	r.pendingPhase = phase
	r.instructionsReady = make(map[string]bool)
	r.broadcast(newShowInstructionsMessage(phase))

	if r.instructionsCancel != nil {
		r.instructionsCancel()
	}
	r.instructionsCancel = r.sched.Schedule(instructionsSeconds*time.Second, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.advanceFromInstructions()
	})
}

func (r *Room) handleInstructionsDone(player *Player) {
	if r.phase != PhaseInstructions {
		return
	}
	r.instructionsReady[player.ID] = true
	r.touch()

	for _, p := range r.players {
		if p.ID != player.ID {
			p.send(newPartnerInstructionsReadyMessage())
		}
	}

	if r.botMode {
		for _, p := range r.players {
			if p.Bot {
				r.instructionsReady[p.ID] = true
			}
		}
	}

	if len(r.instructionsReady) >= len(r.players) {
		r.advanceFromInstructions()
	}
}

func (r *Room) advanceFromInstructions() {
	if r.aborted || r.phase != PhaseInstructions {
		return
	}
	if r.instructionsCancel != nil {
		r.instructionsCancel()
		r.instructionsCancel = nil
	}

	phase := r.pendingPhase
	r.phase = phase
	r.broadcast(newPhaseChangeMessage(phase))

	switch phase {
	case PhaseMG1:
		r.currentQuestionIndex = 0
		r.sendMG1Question()
	case PhaseMG2Important:
		r.startMG2Important()
	case PhaseMG2NoWant:
		r.startMG2NoWant()
	case PhaseMG3:
		r.startMG3()
	}
}

func (r *Room) sendMG1Question() {
	if r.aborted {
		return
	}

	if r.currentQuestionIndex >= len(mg1Questions) {
		r.startMiniGame(PhaseMG2Important)
		return
	}

	question := mg1Questions[r.currentQuestionIndex]
	r.currentQuestion = question.ID

	for _, p := range r.players {
		delete(p.Answers.Picks, "mg1_"+question.ID)
	}

	r.broadcast(newQuestionMessage(PhaseMG1, question.ID, question, mg1QuestionSeconds))
	r.scheduleBotAnswers()

	r.startTimer(mg1QuestionSeconds,
		func(remaining int) { r.broadcast(newTimerTickMessage(remaining)) },
		func() { r.onMG1TimerExpire() },
	)
}

func (r *Room) onMG1TimerExpire() {
	if r.aborted {
		return
	}

	question := mg1Questions[r.currentQuestionIndex]
	key := "mg1_" + question.ID
	for _, p := range r.players {
		if _, answered := p.Answers.Picks[key]; !answered {
			p.Answers.Picks[key] = []string{}
		}
	}
	r.advanceMG1()
}

func (r *Room) advanceMG1() {
	r.currentQuestionIndex++
	r.sendMG1Question()
}

func (r *Room) startMG2Important() {
	r.currentQuestion = "mg2_important"

	for _, p := range r.players {
		delete(p.Answers.Picks, "mg2_important")
	}

	data := map[string]any{"options": mg2ImportantOptions, "maxSelect": mg2MaxSelect}
	r.broadcast(newQuestionMessage(PhaseMG2Important, "mg2_important", data, mg2ImportantSeconds))
	r.scheduleBotAnswers()

	r.startTimer(mg2ImportantSeconds,
		func(remaining int) { r.broadcast(newTimerTickMessage(remaining)) },
		func() { r.onMG2ImportantTimerExpire() },
	)
}

func (r *Room) onMG2ImportantTimerExpire() {
	if r.aborted {
		return
	}
	for _, p := range r.players {
		if _, answered := p.Answers.Picks["mg2_important"]; !answered {
			p.Answers.Picks["mg2_important"] = []string{}
		}
	}
	// No instructions screen between the two halves of minigame 2.
	r.startMG2NoWant()
}

func (r *Room) startMG2NoWant() {
	r.phase = PhaseMG2NoWant
	r.currentQuestion = "mg2_nowant"

	for _, p := range r.players {
		delete(p.Answers.Picks, "mg2_nowant")
	}

	r.broadcast(newPhaseChangeMessage(PhaseMG2NoWant))

	data := map[string]any{"options": mg2NoWantOptions, "maxSelect": mg2MaxSelect}
	r.broadcast(newQuestionMessage(PhaseMG2NoWant, "mg2_nowant", data, mg2NoWantSeconds))
	r.scheduleBotAnswers()

	r.startTimer(mg2NoWantSeconds,
		func(remaining int) { r.broadcast(newTimerTickMessage(remaining)) },
		func() { r.onMG2NoWantTimerExpire() },
	)
}

func (r *Room) onMG2NoWantTimerExpire() {
	if r.aborted {
		return
	}
	for _, p := range r.players {
		if _, answered := p.Answers.Picks["mg2_nowant"]; !answered {
			p.Answers.Picks["mg2_nowant"] = []string{}
		}
	}
	r.startMiniGame(PhaseMG3)
}

func (r *Room) startMG3() {
	r.currentQuestion = "mg3"

	for _, p := range r.players {
		p.Answers.Sliders = nil
	}

	data := map[string]any{"sliders": mg3Sliders()}
	r.broadcast(newQuestionMessage(PhaseMG3, "mg3", data, mg3Seconds))
	r.scheduleBotAnswers()

	r.startTimer(mg3Seconds,
		func(remaining int) { r.broadcast(newTimerTickMessage(remaining)) },
		func() { r.onMG3TimerExpire() },
	)
}

func (r *Room) onMG3TimerExpire() {
	if r.aborted {
		return
	}
	for _, p := range r.players {
		if p.Answers.Sliders == nil {
			p.Answers.Sliders = defaultSliderAnswers()
		}
	}
	r.finishGame()
}

func defaultSliderAnswers() map[string]int {
	answers := make(map[string]int, len(tags))
	for _, tag := range tags {
		answers[tag] = mg3DefaultSliderValue
	}
	return answers
}

func (r *Room) finishGame() {
	if r.aborted {
		return
	}
	r.stopTimer()

	results := computeResults(r.players)
	r.phase = PhaseResults
	r.touch()
	r.broadcast(newResultsMessage(results))
}

// handleSubmitAnswer decodes the phase-specific answer payload and feeds
// it through the same path bots use. Malformed payloads are dropped.
func (r *Room) handleSubmitAnswer(player *Player, msg SubmitAnswerMessage) {
	switch Phase(msg.Phase) {
	case PhaseMG1, PhaseMG2Important, PhaseMG2NoWant:
		var picks []string
		if err := json.Unmarshal(msg.Answer, &picks); err != nil {
			return
		}
		r.submitPicks(player, Phase(msg.Phase), msg.QuestionID, picks)
	case PhaseMG3:
		var sliders map[string]int
		if err := json.Unmarshal(msg.Answer, &sliders); err != nil || sliders == nil {
			return
		}
		r.submitSliders(player, sliders)
	}
}

func (r *Room) submitPicks(player *Player, phase Phase, questionID string, picks []string) {
	if r.phase != phase {
		player.send(newErrorMessage("Fase incorrecta"))
		return
	}
	r.touch()

	var key string
	switch phase {
	case PhaseMG1:
		if questionID != r.currentQuestion {
			player.send(newErrorMessage("Pregunta incorrecta"))
			return
		}
		key = "mg1_" + questionID
	case PhaseMG2Important:
		key = "mg2_important"
	case PhaseMG2NoWant:
		key = "mg2_nowant"
	default:
		return
	}

	if _, answered := player.Answers.Picks[key]; answered {
		return
	}
	if picks == nil {
		picks = []string{}
	}
	player.Answers.Picks[key] = picks

	if partner := r.partnerOf(player.ID); partner != nil {
		partner.send(newPartnerAnsweredMessage())
	}

	for _, p := range r.players {
		if _, answered := p.Answers.Picks[key]; !answered {
			return
		}
	}

	// Brief pause so the last submitter sees the partner acknowledgement
	// before the screen changes.
	r.stopTimer()
	questionID = r.currentQuestion
	r.sched.Schedule(500*time.Millisecond, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.aborted || r.phase != phase || r.currentQuestion != questionID {
			return
		}
		switch phase {
		case PhaseMG1:
			r.advanceMG1()
		case PhaseMG2Important:
			r.startMG2NoWant()
		case PhaseMG2NoWant:
			r.startMiniGame(PhaseMG3)
		}
	})
}

func (r *Room) submitSliders(player *Player, sliders map[string]int) {
	if r.phase != PhaseMG3 {
		player.send(newErrorMessage("Fase incorrecta"))
		return
	}
	if player.Answers.Sliders != nil {
		return
	}
	r.touch()
	player.Answers.Sliders = sliders

	if partner := r.partnerOf(player.ID); partner != nil {
		partner.send(newPartnerAnsweredMessage())
	}

	for _, p := range r.players {
		if p.Answers.Sliders == nil {
			return
		}
	}

	r.stopTimer()
	r.sched.Schedule(500*time.Millisecond, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.aborted || r.phase != PhaseMG3 {
			return
		}
		r.finishGame()
	})
}

// handleRequestExtend grants one 10 second extension per player per
// question. Only the picture round supports it.
func (r *Room) handleRequestExtend(player *Player, questionID string) {
	if r.phase != PhaseMG1 {
		return
	}

	extendKey := player.ID + "_" + questionID
	if r.extendUsed[extendKey] {
		player.send(newErrorMessage("Ya usaste +10s en esta pregunta"))
		return
	}

	r.extendUsed[extendKey] = true
	r.touch()
	remaining := r.extendTimer(10)
	if remaining < 0 {
		return
	}

	r.broadcast(newTimerExtendedMessage(remaining, player.ID))
}

func (r *Room) handleRematch(player *Player) {
	if r.phase != PhaseResults {
		player.send(newErrorMessage("Solo se puede pedir revancha en la pantalla de resultados"))
		return
	}

	r.rematchRequests[player.ID] = true
	r.touch()
	r.broadcast(newRematchReadyMessage(player.ID, len(r.rematchRequests)))

	if r.botMode {
		for _, p := range r.players {
			if p.Bot {
				r.rematchRequests[p.ID] = true
			}
		}
	}

	if len(r.rematchRequests) >= len(r.players) {
		r.resetForRematch()
	}
}

func (r *Room) resetForRematch() {
	r.stopTimer()
	if r.instructionsCancel != nil {
		r.instructionsCancel()
		r.instructionsCancel = nil
	}

	r.phase = PhaseLobby
	r.aborted = false
	r.currentQuestionIndex = 0
	r.currentQuestion = ""
	r.pendingPhase = ""
	r.extendUsed = make(map[string]bool)
	r.introReady = make(map[string]bool)
	r.instructionsReady = make(map[string]bool)
	r.rematchRequests = make(map[string]bool)
	r.touch()

	for _, p := range r.players {
		p.Ready = false
		p.Answers = newAnswerSheet()
	}

	r.broadcast(newPhaseChangeMessage(PhaseLobby))

	if r.botMode {
		r.scheduleBotReady()
	}
}
