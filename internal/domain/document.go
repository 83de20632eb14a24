package domain

import "encoding/json"

// Required top-level fields of a room's live document, with the JSON default
// each one is seeded with on first join. Every default is a fixed value, so
// concurrent initializers writing the same field converge to the same state.
// Never seed a field with an append or an increment.
var DocumentDefaults = map[string]string{
	"characters": "{}",
	"images":     "{}",
	"editor":     "{}",
	"music":      "{}",
	"summary":    "{}",
	"events":     "[]",
	"rooms":      "[]",
}

// DocumentFields lists the required field names in a stable order.
func DocumentFields() []string {
	return []string{"characters", "images", "editor", "music", "summary", "events", "rooms"}
}

// SnapshotBlob is the durable per-room copy of ephemeral session state,
// overwritten wholesale on each save.
type SnapshotBlob struct {
	RoomID     string            `json:"roomId"`
	Characters json.RawMessage   `json:"characters"`
	Chat       []json.RawMessage `json:"chat"`
	Dice       []json.RawMessage `json:"dice"`
	Summary    []json.RawMessage `json:"summary"`
	Events     []json.RawMessage `json:"events"`
	SavedAt    int64             `json:"savedAt"`
}
