package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nstehr/vimy/drone-core/ipc"
	"github.com/nstehr/vimy/drone-core/rules"
)

var errNoHello = errors.New("unit event before hello")

// Session owns the decision-making for one host connection.
type Session struct {
	ID       string
	Team     *Team
	Engine   *rules.Engine
	Tactics  rules.Tactics
	TeamName string // used when hello leaves the team blank

	recorder Recorder
}

func NewSession(engine *rules.Engine, tactics rules.Tactics, teamName string) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Engine:   engine,
		Tactics:  tactics,
		TeamName: teamName,
	}
}

// SetRecorder traces every decision of the session's team.
func (s *Session) SetRecorder(r Recorder) {
	s.recorder = r
	if s.Team != nil {
		s.Team.SetRecorder(r, s.ID)
	}
}

// Register wires the session's handlers into a connection.
func (s *Session) Register(c *ipc.Connection) {
	c.RegisterHandler(ipc.TypeHello, s.HandleHello)
	c.RegisterHandler(ipc.TypeUnitEvent, s.HandleUnitEvent)
}

// HandleHello creates the team arena so the host knows the core is ready.
// A second hello starts the team over.
func (s *Session) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}

	name := hello.Team
	if name == "" {
		name = s.TeamName
	}
	tactics := s.Tactics
	if hello.UnitCapacity > 0 {
		tactics.UnitCapacity = hello.UnitCapacity
	}
	s.Team = NewTeam(name, s.Engine, tactics)
	if s.recorder != nil {
		s.Team.SetRecorder(s.recorder, s.ID)
	}
	slog.Info("team identified", "session", s.ID, "team", name,
		"field", fmt.Sprintf("%gx%g", hello.Field.Width, hello.Field.Height),
		"unitCapacity", tactics.UnitCapacity)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Session: s.ID})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleUnitEvent runs one lifecycle callback and answers with the unit's
// commands.
func (s *Session) HandleUnitEvent(env ipc.Envelope) (*ipc.Envelope, error) {
	if s.Team == nil {
		return nil, errNoHello
	}
	var ev ipc.UnitEventMessage
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal unit_event: %w", err)
	}
	if ev.Tick == 0 {
		ev.Tick = ev.State.Tick
	}
	if ev.State.Tick == 0 {
		ev.State.Tick = ev.Tick
	}

	batch := ipc.NewBatch(ev.UnitID)
	if err := s.Team.Dispatch(ev.Kind, ev.UnitID, &ev.State, batch); err != nil {
		return nil, err
	}
	slog.Debug("unit event handled", "session", s.ID, "unit", ev.UnitID, "kind", ev.Kind,
		"tick", ev.Tick, "commands", len(batch.Commands))

	out, err := ipc.NewEnvelope(ipc.TypeCommands, batch.Message(ev.Tick))
	if err != nil {
		return nil, err
	}
	return &out, nil
}
