// internal/game/observer.go
package game

import (
	"github.com/sirupsen/logrus"

	"github.com/Lonli-Lokli/vinto/engine"
)

// sessionObserver forwards engine trace events into the session: structured
// logging via logrus plus WebSocket broadcasts for the events clients care
// about. The session lock is held whenever the engine runs, so handlers here
// may touch session state freely.
type sessionObserver struct {
	g *VintoGame
}

var _ engine.Observer = (*sessionObserver)(nil)

func (o *sessionObserver) Event(name string, fields map[string]any) {
	logrus.WithFields(logrus.Fields{"game": o.g.ID, "event": name}).WithFields(fields).Debug("engine event")

	switch name {
	case engine.EvTossInOpen, engine.EvTossInExtend:
		o.g.fireEvent(GameEvent{Type: EventTossInOpened, Payload: fields})
	case engine.EvTossInClosed:
		o.g.fireEvent(GameEvent{Type: EventTossInClosed, Payload: fields})
	case engine.EvPenaltyDraw:
		o.g.fireEvent(GameEvent{Type: EventPenalty, Payload: fields})
	case engine.EvEndgameCalled:
		o.g.fireEvent(GameEvent{Type: EventVintoCalled, Payload: fields})
	}
}

func (o *sessionObserver) Warn(msg string, fields map[string]any) {
	logrus.WithField("game", o.g.ID).WithFields(fields).Warn(msg)
}
