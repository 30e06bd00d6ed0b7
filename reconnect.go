package main

import "time"

// Disconnect and reconnect handling. A player who drops mid-game gets a
// grace window to come back; if it runs out they are replaced by a bot so
// the partner can finish the game.

func (reg *Registry) handleDisconnect(s sink) {
	r, player := reg.findRoomByClient(s)
	if r == nil || player == nil {
		return
	}

	r.mu.Lock()

	player.Connected = false
	player.sink = nil

	switch r.phase {
	case PhaseLobby:
		remaining := r.players[:0]
		for _, p := range r.players {
			if p.ID != player.ID {
				remaining = append(remaining, p)
			}
		}
		r.players = remaining
		empty := len(r.players) == 0
		code := r.code
		if !empty {
			r.broadcast(newPlayerJoinedMessage(len(r.players), "", ""))
		}
		r.mu.Unlock()
		if empty {
			reg.cleanupRoom(code)
		}
		return
	case PhaseResults:
		// No urgency; the player can still rejoin to see results.
		r.mu.Unlock()
		return
	}

	waitSeconds := int(r.cfg.reconnectWindow / time.Second)

	if partner := r.partnerOf(player.ID); partner != nil {
		partner.send(newPlayerDisconnectedMessage(waitSeconds))
	}

	r.startReconnectCountdown(player, waitSeconds)
	r.mu.Unlock()
}

// startReconnectCountdown ticks the partner once per second and converts
// the absentee to a bot when the window closes. Callers must hold r.mu.
func (r *Room) startReconnectCountdown(player *Player, waitSeconds int) {
	rt := &reconnectTimer{remaining: waitSeconds}

	var step func()
	step = func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		// Reconnection removes the entry; a stale callback must not fire.
		if r.aborted || r.reconnectTimers[player.ID] != rt {
			return
		}

		rt.remaining--
		if partner := r.partnerOf(player.ID); partner != nil {
			partner.send(newWaitingReconnectMessage(rt.remaining))
		}

		if rt.remaining <= 0 {
			delete(r.reconnectTimers, player.ID)
			r.convertToBot(player)
			return
		}
		rt.cancel = r.sched.Schedule(time.Second, step)
	}

	rt.cancel = r.sched.Schedule(time.Second, step)
	r.reconnectTimers[player.ID] = rt
}

// convertToBot makes the timed-out player a bot and fills whatever answer
// the room is currently waiting on. Callers must hold r.mu.
func (r *Room) convertToBot(player *Player) {
	player.Bot = true
	player.Connected = true
	player.sink = nil

	logf(r.cfg, "GAME: Room %s: %s replaced by bot", r.code, player.Name)

	r.backfillBotAnswer(player)

	if partner := r.partnerOf(player.ID); partner != nil {
		partner.send(newPlayerReconnectedMessage())
	}
}

// handleReconnection reattaches a returning player and replays enough
// state for the client to rebuild its screen. Callers must hold r.mu.
func (r *Room) handleReconnection(player *Player, s sink) {
	player.sink = s
	player.Connected = true
	player.Bot = false
	r.touch()

	if rt, ok := r.reconnectTimers[player.ID]; ok {
		rt.cancel()
		delete(r.reconnectTimers, player.ID)
	}

	if partner := r.partnerOf(player.ID); partner != nil {
		partner.send(newPlayerReconnectedMessage())
	}

	r.sendStateSnapshot(player)
}

func (r *Room) sendStateSnapshot(player *Player) {
	player.send(newPhaseChangeMessage(r.phase))

	switch r.phase {
	case PhaseMG1:
		if r.currentQuestionIndex < len(mg1Questions) {
			question := mg1Questions[r.currentQuestionIndex]
			player.send(newQuestionMessage(PhaseMG1, question.ID, question, r.timerRemaining))
			player.send(newTimerTickMessage(r.timerRemaining))
		}
	case PhaseMG2Important:
		data := map[string]any{"options": mg2ImportantOptions, "maxSelect": mg2MaxSelect}
		player.send(newQuestionMessage(PhaseMG2Important, "mg2_important", data, r.timerRemaining))
		player.send(newTimerTickMessage(r.timerRemaining))
	case PhaseMG2NoWant:
		data := map[string]any{"options": mg2NoWantOptions, "maxSelect": mg2MaxSelect}
		player.send(newQuestionMessage(PhaseMG2NoWant, "mg2_nowant", data, r.timerRemaining))
		player.send(newTimerTickMessage(r.timerRemaining))
	case PhaseMG3:
		data := map[string]any{"sliders": mg3Sliders()}
		player.send(newQuestionMessage(PhaseMG3, "mg3", data, r.timerRemaining))
		player.send(newTimerTickMessage(r.timerRemaining))
	case PhaseResults:
		player.send(newResultsMessage(computeResults(r.players)))
	}
}
