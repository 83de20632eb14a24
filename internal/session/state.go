package session

import (
	"encoding/json"
	"sync"

	"github.com/rolltable/rolltable/internal/usecase"
)

// roomState accumulates the ephemeral collaborative state of one room for
// the duration of the session. It is what the snapshot synchronizer folds
// back into durable storage.
type roomState struct {
	mu         sync.Mutex
	characters json.RawMessage
	chat       []json.RawMessage
	dice       []json.RawMessage
	summary    []json.RawMessage
	events     []json.RawMessage
}

func newRoomState() *roomState {
	return &roomState{characters: json.RawMessage("{}")}
}

func (s *roomState) apply(kind string, data json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case MessageChat:
		s.chat = append(s.chat, data)
	case MessageDice:
		s.dice = append(s.dice, data)
	case MessageSummary:
		s.summary = append(s.summary, data)
	case MessageEvent:
		s.events = append(s.events, data)
	case MessageCharacters:
		s.characters = data
	}
}

func (s *roomState) snapshot() usecase.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return usecase.SessionState{
		Characters: s.characters,
		Chat:       append([]json.RawMessage(nil), s.chat...),
		Dice:       append([]json.RawMessage(nil), s.dice...),
		Summary:    append([]json.RawMessage(nil), s.summary...),
		Events:     append([]json.RawMessage(nil), s.events...),
	}
}
