// Package interaction defines how a player acts on world objects: a
// target lists the interactions it offers for an event, and the caller
// performs one by name.
package interaction

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/ss3go/internal/model"
)

// DefaultRange is the reach of hand interactions in world units.
const DefaultRange = 1.5

// Sentinel errors
var (
	ErrUnknownInteraction = errors.New("unknown interaction")
	ErrUnavailable        = errors.New("interaction not available")
)

// Object is anything that can take part in an interaction.
type Object interface {
	Name() string
	Location() model.Location
}

// Event describes one attempt: who acts (Source), on what (Target),
// and where the pointer hit.
type Event struct {
	Source Object
	Target Object
	Point  model.Location
}

// Interaction is one verb offered by a target.
type Interaction interface {
	Name(ev Event) string
	Icon(ev Event) string
	CanInteract(ev Event) bool

	// Start performs the interaction. It returns true when the
	// interaction keeps running after Start, false when it is done.
	Start(ev Event) bool
}

// Target offers interactions.
type Target interface {
	Interactions(ev Event) []Interaction
}

// RangeCheck reports whether Source is within r of Target.
func RangeCheck(ev Event, r float64) bool {
	if ev.Source == nil || ev.Target == nil {
		return false
	}
	return ev.Source.Location().DistanceSquared(ev.Target.Location()) <= r*r
}

// Available returns the interactions of t that can run for ev, in the
// order t lists them.
func Available(t Target, ev Event) []Interaction {
	all := t.Interactions(ev)
	out := make([]Interaction, 0, len(all))
	for _, in := range all {
		if in.CanInteract(ev) {
			out = append(out, in)
		}
	}
	return out
}

// Names returns the display names of list for ev.
func Names(list []Interaction, ev Event) []string {
	names := make([]string, len(list))
	for i, in := range list {
		names[i] = in.Name(ev)
	}
	return names
}

// Perform runs the first interaction of t named name.
func Perform(t Target, ev Event, name string) (bool, error) {
	for _, in := range t.Interactions(ev) {
		if in.Name(ev) != name {
			continue
		}
		if !in.CanInteract(ev) {
			return false, fmt.Errorf("%w: %q on %s", ErrUnavailable, name, objectName(ev.Target))
		}

		slog.Debug("interaction started",
			"interaction", name,
			"source", objectName(ev.Source),
			"target", objectName(ev.Target))

		return in.Start(ev), nil
	}
	return false, fmt.Errorf("%w: %q on %s", ErrUnknownInteraction, name, objectName(ev.Target))
}

func objectName(o Object) string {
	if o == nil {
		return "<nil>"
	}
	return o.Name()
}
