package session

import (
	"context"
	"fmt"
	"sort"
)

// Action names.
const (
	ActionPaint  = "paint"
	ActionErase  = "erase"
	ActionRadius = "change brush radius"
	ActionMove   = "move brush"
	ActionSend   = "send painted label to solver"
)

// DefaultBindings maps input triggers to actions.
var DefaultBindings = map[string]string{
	"SPACE button1":        ActionPaint,
	"SPACE button2":        ActionErase,
	"SPACE button3":        ActionErase,
	"SPACE scroll":         ActionRadius,
	"SPACE":                ActionMove,
	"ctrl shift A button1": ActionSend,
}

// Phase is the stage of an input gesture.
type Phase string

const (
	PhaseInit   Phase = "init"
	PhaseDrag   Phase = "drag"
	PhaseEnd    Phase = "end"
	PhaseClick  Phase = "click"
	PhaseScroll Phase = "scroll"
	PhaseMove   Phase = "move"
)

// Event is an input event in display coordinates.
type Event struct {
	Trigger    string  `json:"trigger"`
	Phase      Phase   `json:"phase"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Rotation   float64 `json:"rotation,omitempty"`
	Horizontal bool    `json:"horizontal,omitempty"`
}

// Action handles the events of one named behaviour.
type Action func(ev Event) error

func (e *Editor) newActions() map[string]Action {
	return map[string]Action{
		ActionPaint:  e.strokeAction(ActionPaint),
		ActionErase:  e.strokeAction(ActionErase),
		ActionRadius: e.radiusAction,
		ActionMove:   e.moveAction,
		ActionSend:   e.sendAction,
	}
}

func (e *Editor) bind(overrides map[string]string) (map[string]string, error) {
	bindings := make(map[string]string, len(DefaultBindings)+len(overrides))
	for trigger, action := range DefaultBindings {
		bindings[trigger] = action
	}
	for trigger, action := range overrides {
		if action == "" {
			delete(bindings, trigger)
			continue
		}
		if _, found := e.actions[action]; !found {
			return nil, fmt.Errorf("trigger %q bound to unknown action %q", trigger, action)
		}
		bindings[trigger] = action
	}
	return bindings, nil
}

// Bindings returns the trigger to action table, sorted by trigger.
func (e *Editor) Bindings() [][2]string {
	table := make([][2]string, 0, len(e.bindings))
	for trigger, action := range e.bindings {
		table = append(table, [2]string{trigger, action})
	}
	sort.Slice(table, func(i, j int) bool { return table[i][0] < table[j][0] })
	return table
}

// Handle dispatches an input event to the action bound to its trigger.
func (e *Editor) Handle(ev Event) error {
	name, found := e.bindings[ev.Trigger]
	if !found {
		return fmt.Errorf("%w %q", ErrUnboundTrigger, ev.Trigger)
	}
	return e.actions[name](ev)
}

func (e *Editor) strokeAction(name string) Action {
	return func(ev Event) error {
		e.mu.Lock()
		defer e.mu.Unlock()
		stroke, err := e.stroke(name)
		if err != nil {
			return err
		}
		switch ev.Phase {
		case PhaseInit:
			stroke.Init(ev.X, ev.Y)
		case PhaseDrag:
			stroke.Drag(ev.X, ev.Y)
		case PhaseEnd:
			stroke.End(ev.X, ev.Y)
		case PhaseClick:
			stroke.Init(ev.X, ev.Y)
			stroke.End(ev.X, ev.Y)
		default:
			return fmt.Errorf("%s does not handle %q events", name, ev.Phase)
		}
		return nil
	}
}

func (e *Editor) radiusAction(ev Event) error {
	if ev.Phase != PhaseScroll {
		return fmt.Errorf("%s does not handle %q events", ActionRadius, ev.Phase)
	}
	e.mu.Lock()
	e.brush.Scroll(ev.Rotation, ev.Horizontal)
	e.brush.MoveOverlay(ev.X, ev.Y, true)
	e.mu.Unlock()
	e.viewer.RequestRepaint()
	return nil
}

func (e *Editor) moveAction(ev Event) error {
	e.mu.Lock()
	e.brush.MoveOverlay(ev.X, ev.Y, ev.Phase != PhaseEnd)
	e.mu.Unlock()
	e.viewer.RequestRepaint()
	return nil
}

func (e *Editor) sendAction(ev Event) error {
	if ev.Phase != PhaseClick {
		return fmt.Errorf("%s does not handle %q events", ActionSend, ev.Phase)
	}
	_, err := e.SendPainted(context.Background(), ev.X, ev.Y)
	return err
}
