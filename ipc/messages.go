package ipc

import (
	"github.com/nstehr/vimy/drone-core/geom"
	"github.com/nstehr/vimy/drone-core/model"
)

// Envelope types. These must stay in sync with the host's message names.
const (
	TypeHello     = "hello"
	TypeAck       = "ack"
	TypeUnitEvent = "unit_event"
	TypeCommands  = "commands"
	TypeError     = "error"
)

// Unit event kinds, one per host lifecycle callback.
const (
	EventSpawn           = "spawn"
	EventMovementStopped = "movement_stopped"
	EventLoadComplete    = "load_complete"
	EventUnloadComplete  = "unload_complete"
	EventWake            = "wake"
)

type HelloMessage struct {
	Team         string    `json:"team"`
	Field        geom.Rect `json:"field"`
	UnitCapacity float64   `json:"unit_capacity,omitempty"` // overrides the configured capacity when set
}

type AckMessage struct {
	Status  string `json:"status"`
	Session string `json:"session,omitempty"`
}

// UnitEventMessage carries one lifecycle callback together with the full
// field snapshot at the moment it fired.
type UnitEventMessage struct {
	Kind   string         `json:"kind"`
	UnitID int            `json:"unit_id"`
	Tick   int            `json:"tick"`
	State  model.Snapshot `json:"state"`
}

// CommandsMessage answers a unit event. An empty command list is valid and
// means the unit keeps doing what it does.
type CommandsMessage struct {
	UnitID   int       `json:"unit_id"`
	Tick     int       `json:"tick"`
	Commands []Command `json:"commands"`
}

type ErrorMessage struct {
	Error string `json:"error"`
}
