package main

import (
	"encoding/json"
	"fmt"
)

// ClientMessage is the closed set of messages a player may send. Decoding
// goes through a single envelope so unknown types fail in one place.
type ClientMessage interface {
	clientMessage()
}

type CreateRoomMessage struct {
	Name string `json:"name"`
}

type CreateSoloMessage struct {
	Name string `json:"name"`
}

type JoinRoomMessage struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	PlayerID string `json:"playerId"`
	Rejoin   bool   `json:"rejoin"`
}

type PlayerReadyMessage struct{}

type IntroDoneMessage struct{}

type InstructionsDoneMessage struct {
	Phase string `json:"phase"`
}

type SubmitAnswerMessage struct {
	Phase      string          `json:"phase"`
	QuestionID string          `json:"questionId"`
	Answer     json.RawMessage `json:"answer"`
}

type RequestExtendMessage struct {
	QuestionID string `json:"questionId"`
}

type RematchMessage struct{}

func (CreateRoomMessage) clientMessage()       {}
func (CreateSoloMessage) clientMessage()       {}
func (JoinRoomMessage) clientMessage()         {}
func (PlayerReadyMessage) clientMessage()      {}
func (IntroDoneMessage) clientMessage()        {}
func (InstructionsDoneMessage) clientMessage() {}
func (SubmitAnswerMessage) clientMessage()     {}
func (RequestExtendMessage) clientMessage()    {}
func (RematchMessage) clientMessage()          {}

type clientEnvelope struct {
	Type       string          `json:"type"`
	Name       string          `json:"name"`
	Code       string          `json:"code"`
	PlayerID   string          `json:"playerId"`
	Rejoin     bool            `json:"rejoin"`
	Phase      string          `json:"phase"`
	QuestionID string          `json:"questionId"`
	Answer     json.RawMessage `json:"answer"`
}

func decodeClientMessage(data []byte) (ClientMessage, error) {
	var env clientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("Invalid JSON")
	}

	switch env.Type {
	case "create_room":
		return CreateRoomMessage{Name: env.Name}, nil
	case "create_solo":
		return CreateSoloMessage{Name: env.Name}, nil
	case "join_room":
		return JoinRoomMessage{Code: env.Code, Name: env.Name, PlayerID: env.PlayerID, Rejoin: env.Rejoin}, nil
	case "player_ready":
		return PlayerReadyMessage{}, nil
	case "intro_done":
		return IntroDoneMessage{}, nil
	case "instructions_done":
		return InstructionsDoneMessage{Phase: env.Phase}, nil
	case "submit_answer":
		return SubmitAnswerMessage{Phase: env.Phase, QuestionID: env.QuestionID, Answer: env.Answer}, nil
	case "request_extend":
		return RequestExtendMessage{QuestionID: env.QuestionID}, nil
	case "rematch":
		return RematchMessage{}, nil
	default:
		return nil, fmt.Errorf("Tipo de mensaje desconocido: %s", env.Type)
	}
}

// ServerMessage is anything the server pushes to a player. Every concrete
// type carries its own Type tag so WriteJSON produces the wire form directly.
type ServerMessage interface {
	serverMessage()
}

type RoomCreatedMessage struct {
	Type     string `json:"type"`
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	SoloMode bool   `json:"soloMode,omitempty"`
}

func newRoomCreatedMessage(code, playerID string, solo bool) RoomCreatedMessage {
	return RoomCreatedMessage{Type: "room_created", Code: code, PlayerID: playerID, SoloMode: solo}
}

type PlayerJoinedMessage struct {
	Type        string `json:"type"`
	PlayerCount int    `json:"playerCount"`
	Player1Name string `json:"player1Name,omitempty"`
	Player2Name string `json:"player2Name,omitempty"`
}

func newPlayerJoinedMessage(count int, name1, name2 string) PlayerJoinedMessage {
	return PlayerJoinedMessage{Type: "player_joined", PlayerCount: count, Player1Name: name1, Player2Name: name2}
}

type ShowIntroMessage struct {
	Type string `json:"type"`
}

func newShowIntroMessage() ShowIntroMessage {
	return ShowIntroMessage{Type: "show_intro"}
}

type PartnerIntroReadyMessage struct {
	Type string `json:"type"`
}

func newPartnerIntroReadyMessage() PartnerIntroReadyMessage {
	return PartnerIntroReadyMessage{Type: "partner_intro_ready"}
}

type IntroAllReadyMessage struct {
	Type string `json:"type"`
}

func newIntroAllReadyMessage() IntroAllReadyMessage {
	return IntroAllReadyMessage{Type: "intro_all_ready"}
}

type BothReadyMessage struct {
	Type string `json:"type"`
}

func newBothReadyMessage() BothReadyMessage {
	return BothReadyMessage{Type: "both_ready"}
}

type GameStartMessage struct {
	Type string `json:"type"`
}

func newGameStartMessage() GameStartMessage {
	return GameStartMessage{Type: "game_start"}
}

type ShowInstructionsMessage struct {
	Type  string `json:"type"`
	Phase string `json:"phase"`
}

func newShowInstructionsMessage(phase Phase) ShowInstructionsMessage {
	return ShowInstructionsMessage{Type: "show_instructions", Phase: string(phase)}
}

type PartnerInstructionsReadyMessage struct {
	Type string `json:"type"`
}

func newPartnerInstructionsReadyMessage() PartnerInstructionsReadyMessage {
	return PartnerInstructionsReadyMessage{Type: "partner_instructions_ready"}
}

type PhaseChangeMessage struct {
	Type  string `json:"type"`
	Phase string `json:"phase"`
}

func newPhaseChangeMessage(phase Phase) PhaseChangeMessage {
	return PhaseChangeMessage{Type: "phase_change", Phase: string(phase)}
}

type QuestionMessage struct {
	Type         string `json:"type"`
	Phase        string `json:"phase"`
	QuestionID   string `json:"questionId"`
	QuestionData any    `json:"questionData"`
	TimerSeconds int    `json:"timerSeconds"`
}

func newQuestionMessage(phase Phase, questionID string, data any, seconds int) QuestionMessage {
	return QuestionMessage{Type: "question", Phase: string(phase), QuestionID: questionID, QuestionData: data, TimerSeconds: seconds}
}

type TimerTickMessage struct {
	Type      string `json:"type"`
	Remaining int    `json:"remaining"`
}

func newTimerTickMessage(remaining int) TimerTickMessage {
	return TimerTickMessage{Type: "timer_tick", Remaining: remaining}
}

type TimerExtendedMessage struct {
	Type      string `json:"type"`
	Remaining int    `json:"remaining"`
	PlayerID  string `json:"playerId"`
}

func newTimerExtendedMessage(remaining int, playerID string) TimerExtendedMessage {
	return TimerExtendedMessage{Type: "timer_extended", Remaining: remaining, PlayerID: playerID}
}

type PartnerAnsweredMessage struct {
	Type string `json:"type"`
}

func newPartnerAnsweredMessage() PartnerAnsweredMessage {
	return PartnerAnsweredMessage{Type: "partner_answered"}
}

type ResultsMessage struct {
	Type    string   `json:"type"`
	Results *Results `json:"results"`
}

func newResultsMessage(results *Results) ResultsMessage {
	return ResultsMessage{Type: "results", Results: results}
}

type PlayerDisconnectedMessage struct {
	Type        string `json:"type"`
	WaitSeconds int    `json:"waitSeconds"`
}

func newPlayerDisconnectedMessage(waitSeconds int) PlayerDisconnectedMessage {
	return PlayerDisconnectedMessage{Type: "player_disconnected", WaitSeconds: waitSeconds}
}

type WaitingReconnectMessage struct {
	Type      string `json:"type"`
	Remaining int    `json:"remaining"`
}

func newWaitingReconnectMessage(remaining int) WaitingReconnectMessage {
	return WaitingReconnectMessage{Type: "waiting_reconnect", Remaining: remaining}
}

type PlayerReconnectedMessage struct {
	Type string `json:"type"`
}

func newPlayerReconnectedMessage() PlayerReconnectedMessage {
	return PlayerReconnectedMessage{Type: "player_reconnected"}
}

type GameAbortedMessage struct {
	Type string `json:"type"`
}

func newGameAbortedMessage() GameAbortedMessage {
	return GameAbortedMessage{Type: "game_aborted"}
}

type RematchReadyMessage struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Count    int    `json:"count"`
	Needed   int    `json:"needed"`
}

func newRematchReadyMessage(playerID string, count int) RematchReadyMessage {
	return RematchReadyMessage{Type: "rematch_ready", PlayerID: playerID, Count: count, Needed: 2}
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newErrorMessage(message string) ErrorMessage {
	return ErrorMessage{Type: "error", Message: message}
}

func (RoomCreatedMessage) serverMessage()              {}
func (PlayerJoinedMessage) serverMessage()             {}
func (ShowIntroMessage) serverMessage()                {}
func (PartnerIntroReadyMessage) serverMessage()        {}
func (IntroAllReadyMessage) serverMessage()            {}
func (BothReadyMessage) serverMessage()                {}
func (GameStartMessage) serverMessage()                {}
func (ShowInstructionsMessage) serverMessage()         {}
func (PartnerInstructionsReadyMessage) serverMessage() {}
func (PhaseChangeMessage) serverMessage()              {}
func (QuestionMessage) serverMessage()                 {}
func (TimerTickMessage) serverMessage()                {}
func (TimerExtendedMessage) serverMessage()            {}
func (PartnerAnsweredMessage) serverMessage()          {}
func (ResultsMessage) serverMessage()                  {}
func (PlayerDisconnectedMessage) serverMessage()       {}
func (WaitingReconnectMessage) serverMessage()         {}
func (PlayerReconnectedMessage) serverMessage()        {}
func (GameAbortedMessage) serverMessage()              {}
func (RematchReadyMessage) serverMessage()             {}
func (ErrorMessage) serverMessage()                    {}
