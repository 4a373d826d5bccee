package ipc

import (
	"github.com/nstehr/vimy/drone-core/geom"
	"github.com/nstehr/vimy/drone-core/model"
)

// Command type constants. Must stay in sync with the host's command executor.
const (
	CmdMoveTo      = "move_to"
	CmdTurnTo      = "turn_to"
	CmdBeginLoad   = "begin_load"
	CmdBeginUnload = "begin_unload"
	CmdFire        = "fire"
	CmdHalt        = "halt"
)

// Command is one instruction for one unit. Point commands use X/Y; target
// commands use TargetKind/TargetID.
type Command struct {
	Type       string           `json:"type"`
	X          float64          `json:"x"`
	Y          float64          `json:"y"`
	TargetKind model.TargetKind `json:"target_kind,omitempty"`
	TargetID   int              `json:"target_id,omitempty"`
}

// Batch collects the commands issued for one unit while one event is
// handled. It satisfies behavior.Commander.
type Batch struct {
	UnitID   int
	Commands []Command
}

func NewBatch(unitID int) *Batch {
	return &Batch{UnitID: unitID}
}

func (b *Batch) MoveTo(p geom.Vec) {
	b.Commands = append(b.Commands, Command{Type: CmdMoveTo, X: p.X, Y: p.Y})
}

func (b *Batch) TurnTo(p geom.Vec) {
	b.Commands = append(b.Commands, Command{Type: CmdTurnTo, X: p.X, Y: p.Y})
}

func (b *Batch) BeginLoad(ref model.TargetRef) {
	b.Commands = append(b.Commands, Command{Type: CmdBeginLoad, TargetKind: ref.Kind, TargetID: ref.ID})
}

func (b *Batch) BeginUnload(baseID int) {
	b.Commands = append(b.Commands, Command{Type: CmdBeginUnload, TargetKind: model.KindBase, TargetID: baseID})
}

func (b *Batch) Fire(ref model.TargetRef) {
	b.Commands = append(b.Commands, Command{Type: CmdFire, TargetKind: ref.Kind, TargetID: ref.ID})
}

func (b *Batch) Halt() {
	b.Commands = append(b.Commands, Command{Type: CmdHalt})
}

// Reset drops everything issued so far. A handler that recovers from a
// failure resets the batch before halting so no half-made plan reaches the host.
func (b *Batch) Reset() {
	b.Commands = b.Commands[:0]
}

// Message wraps the batch for the wire. Commands is never null.
func (b *Batch) Message(tick int) CommandsMessage {
	cmds := b.Commands
	if cmds == nil {
		cmds = []Command{}
	}
	return CommandsMessage{UnitID: b.UnitID, Tick: tick, Commands: cmds}
}
