package main

import (
	"encoding/json"
	"testing"
)

func Test_DecodeClientMessages(t *testing.T) {
	msg, err := decodeClientMessage([]byte(`{"type":"create_room","name":"Ana"}`))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if create, ok := msg.(CreateRoomMessage); !ok || create.Name != "Ana" {
		t.Errorf("unexpected decode result: %#v", msg)
	}

	msg, err = decodeClientMessage([]byte(`{"type":"join_room","code":"abcd","name":"Luis","playerId":"p1","rejoin":true}`))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	join, ok := msg.(JoinRoomMessage)
	if !ok || join.Code != "abcd" || join.PlayerID != "p1" || !join.Rejoin {
		t.Errorf("unexpected decode result: %#v", msg)
	}

	msg, err = decodeClientMessage([]byte(`{"type":"submit_answer","phase":"mg1","questionId":"q1","answer":["agua"]}`))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	submit, ok := msg.(SubmitAnswerMessage)
	if !ok || submit.Phase != "mg1" || submit.QuestionID != "q1" {
		t.Errorf("unexpected decode result: %#v", msg)
	}
	var picks []string
	if err := json.Unmarshal(submit.Answer, &picks); err != nil || len(picks) != 1 {
		t.Errorf("answer payload not preserved: %s", submit.Answer)
	}

	for _, typ := range []string{"player_ready", "intro_done", "rematch", "create_solo", "request_extend", "instructions_done"} {
		if _, err := decodeClientMessage([]byte(`{"type":"` + typ + `"}`)); err != nil {
			t.Errorf("decode %s: %v", typ, err)
		}
	}
}

func Test_DecodeUnknownType(t *testing.T) {
	_, err := decodeClientMessage([]byte(`{"type":"self_destruct"}`))
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	if err.Error() != "Tipo de mensaje desconocido: self_destruct" {
		t.Errorf("unexpected error text: %s", err.Error())
	}
}

func Test_DecodeMalformedJSON(t *testing.T) {
	_, err := decodeClientMessage([]byte(`{"type":`))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if err.Error() != "Invalid JSON" {
		t.Errorf("unexpected error text: %s", err.Error())
	}
}

func Test_ServerMessageWireForm(t *testing.T) {
	data, err := json.Marshal(newQuestionMessage(PhaseMG1, "q1", mg1Questions[0], 30))
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["type"] != "question" || decoded["questionId"] != "q1" {
		t.Errorf("unexpected wire form: %s", data)
	}
	if decoded["timerSeconds"] != float64(30) {
		t.Errorf("unexpected timerSeconds: %v", decoded["timerSeconds"])
	}

	data, err = json.Marshal(newRematchReadyMessage("p1", 1))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["needed"] != float64(2) {
		t.Errorf("rematch_ready should always need 2, got %v", decoded["needed"])
	}
}
