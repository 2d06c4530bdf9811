package world

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/udisondev/ss3go/internal/model"
)

// ErrDuplicateObject is returned by AddObject for an id already in the world.
var ErrDuplicateObject = errors.New("object already in world")

// World indexes objects by ground cell so range queries only look at
// nearby regions. Regions are created on first use.
type World struct {
	mu      sync.RWMutex
	regions map[Cell]*Region
	objects map[uint32]*entry
}

type entry struct {
	obj  *model.WorldObject
	cell Cell
}

// New creates an empty world.
func New() *World {
	return &World{
		regions: make(map[Cell]*Region),
		objects: make(map[uint32]*entry),
	}
}

func (w *World) regionLocked(c Cell) *Region {
	r, ok := w.regions[c]
	if !ok {
		r = NewRegion(c)
		w.regions[c] = r
	}
	return r
}

// AddObject places obj in the region under its location.
func (w *World) AddObject(obj *model.WorldObject) error {
	loc := obj.Location()
	if math.IsNaN(loc.X) || math.IsNaN(loc.Z) || math.IsInf(loc.X, 0) || math.IsInf(loc.Z, 0) {
		return fmt.Errorf("invalid coordinates for object %d: (%v, %v)", obj.ObjectID(), loc.X, loc.Z)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.objects[obj.ObjectID()]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateObject, obj.ObjectID())
	}

	c := CellOf(loc.X, loc.Z)
	w.objects[obj.ObjectID()] = &entry{obj: obj, cell: c}
	w.regionLocked(c).Add(obj)
	return nil
}

// MoveObject sets obj's location and re-files it if it crossed a cell.
func (w *World) MoveObject(objectID uint32, loc model.Location) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.objects[objectID]
	if !ok {
		return false
	}
	e.obj.SetLocation(loc)

	c := CellOf(loc.X, loc.Z)
	if c != e.cell {
		w.regions[e.cell].Remove(objectID)
		w.regionLocked(c).Add(e.obj)
		e.cell = c
	}
	return true
}

// RemoveObject takes the object out of the world.
func (w *World) RemoveObject(objectID uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.objects[objectID]
	if !ok {
		return
	}
	delete(w.objects, objectID)
	w.regions[e.cell].Remove(objectID)
}

// GetObject returns the object with objectID.
func (w *World) GetObject(objectID uint32) (*model.WorldObject, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.objects[objectID]
	if !ok {
		return nil, false
	}
	return e.obj, true
}

// ObjectCount returns the number of objects in the world.
func (w *World) ObjectCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.objects)
}

// RegionCount returns the number of regions created so far.
func (w *World) RegionCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.regions)
}

// ForEachInRange calls fn for every object within r of center,
// stopping early when fn returns false.
func (w *World) ForEachInRange(center model.Location, r float64, fn func(*model.WorldObject) bool) {
	cells := CellOf(center.X, center.Z).Around(cellRadius(r))

	w.mu.RLock()
	regions := make([]*Region, 0, len(cells))
	for _, c := range cells {
		if reg, ok := w.regions[c]; ok && reg.Len() > 0 {
			regions = append(regions, reg)
		}
	}
	w.mu.RUnlock()

	r2 := r * r
	for _, reg := range regions {
		for _, obj := range reg.Snapshot() {
			if obj.Location().DistanceSquared(center) > r2 {
				continue
			}
			if !fn(obj) {
				return
			}
		}
	}
}
