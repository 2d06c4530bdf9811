package world

import (
	"sync"
	"sync/atomic"

	"github.com/udisondev/ss3go/internal/model"
)

// Region holds the objects standing in one cell.
type Region struct {
	cell Cell

	objects sync.Map // objectID -> *model.WorldObject

	snapshotCache atomic.Value // []*model.WorldObject, immutable after rebuild
	snapshotDirty atomic.Bool
	size          atomic.Int32
}

// NewRegion creates an empty region for cell.
func NewRegion(cell Cell) *Region {
	return &Region{cell: cell}
}

// Cell returns the region's cell.
func (r *Region) Cell() Cell {
	return r.cell
}

// Len returns the number of objects in the region.
func (r *Region) Len() int {
	return int(r.size.Load())
}

// Add puts obj into the region.
func (r *Region) Add(obj *model.WorldObject) {
	if _, loaded := r.objects.LoadOrStore(obj.ObjectID(), obj); !loaded {
		r.size.Add(1)
	}
	r.snapshotDirty.Store(true)
}

// Remove takes the object with objectID out of the region.
func (r *Region) Remove(objectID uint32) {
	if _, loaded := r.objects.LoadAndDelete(objectID); loaded {
		r.size.Add(-1)
	}
	r.snapshotDirty.Store(true)
}

// Snapshot returns the region's objects. The slice is shared and must
// not be modified.
func (r *Region) Snapshot() []*model.WorldObject {
	if !r.snapshotDirty.Load() {
		if cache := r.snapshotCache.Load(); cache != nil {
			return cache.([]*model.WorldObject)
		}
	}
	return r.rebuildSnapshot()
}

func (r *Region) rebuildSnapshot() []*model.WorldObject {
	r.snapshotDirty.Store(false)

	objects := make([]*model.WorldObject, 0, r.Len())
	r.objects.Range(func(_, value any) bool {
		objects = append(objects, value.(*model.WorldObject))
		return true
	})

	r.snapshotCache.Store(objects)
	return objects
}
