// Package spatial implements the uniform-grid broad phase used by collision.
package spatial

import (
	"math"

	"github.com/kamstrup/intmap"
	"github.com/plus3/danmaku/ecs"
	"github.com/plus3/danmaku/geom"
)

// Entry is a snapshot of one hitbox at table-build time.
type Entry struct {
	Id     ecs.EntityId
	Circle geom.Circle
}

// HashTable maps grid cells to the entries whose bounding box touches them.
// Tables are cleared and rebuilt every tick; there is no incremental update.
type HashTable struct {
	cellSize float64
	cells    *intmap.Map[uint64, int]
	buckets  [][]int
	entries  []Entry

	seen *intmap.Set[int]
}

// NewHashTable creates a table with square cells of the given size. A cell
// size of twice the reference radius keeps most reference-sized objects in
// at most four cells.
func NewHashTable(cellSize float64) *HashTable {
	if cellSize <= 0 {
		panic("spatial: cell size must be positive")
	}
	return &HashTable{
		cellSize: cellSize,
		cells:    intmap.New[uint64, int](256),
		seen:     intmap.NewSet[int](64),
	}
}

// CellSize returns the side length of one cell.
func (h *HashTable) CellSize() float64 {
	return h.cellSize
}

// Len returns the number of inserted entries.
func (h *HashTable) Len() int {
	return len(h.entries)
}

// maxRetainedBuckets bounds how many empty cells Clear keeps around for reuse.
const maxRetainedBuckets = 4096

// Clear removes every entry. Cell buckets are kept for the next build unless
// too many distinct cells have been touched.
func (h *HashTable) Clear() {
	h.entries = h.entries[:0]
	if len(h.buckets) > maxRetainedBuckets {
		h.cells.Clear()
		h.buckets = h.buckets[:0]
		return
	}
	for i := range h.buckets {
		h.buckets[i] = h.buckets[i][:0]
	}
}

func cellKey(cx, cy int32) uint64 {
	return uint64(uint32(cx))<<32 | uint64(uint32(cy))
}

func (h *HashTable) cellRange(c geom.Circle) (minX, minY, maxX, maxY int32) {
	bb := c.Bounds()
	minX = int32(math.Floor(bb.L / h.cellSize))
	minY = int32(math.Floor(bb.B / h.cellSize))
	maxX = int32(math.Floor(bb.R / h.cellSize))
	maxY = int32(math.Floor(bb.T / h.cellSize))
	return
}

// Insert adds an entry to every cell its bounding box overlaps.
func (h *HashTable) Insert(id ecs.EntityId, c geom.Circle) {
	idx := len(h.entries)
	h.entries = append(h.entries, Entry{Id: id, Circle: c})

	minX, minY, maxX, maxY := h.cellRange(c)
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			key := cellKey(cx, cy)
			bucket, ok := h.cells.Get(key)
			if !ok {
				bucket = len(h.buckets)
				h.buckets = append(h.buckets, nil)
				h.cells.Put(key, bucket)
			}
			h.buckets[bucket] = append(h.buckets[bucket], idx)
		}
	}
}

// Nearby appends to out every entry sharing a cell with c's bounding box,
// each at most once. Results may include entries that do not overlap c; use
// Overlapping when an exact answer is needed.
func (h *HashTable) Nearby(c geom.Circle, out []Entry) []Entry {
	h.seen.Clear()

	minX, minY, maxX, maxY := h.cellRange(c)
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			bucket, ok := h.cells.Get(cellKey(cx, cy))
			if !ok {
				continue
			}
			for _, idx := range h.buckets[bucket] {
				if h.seen.Add(idx) {
					out = append(out, h.entries[idx])
				}
			}
		}
	}
	return out
}

// Overlapping appends to out the entries whose circle overlaps c.
func (h *HashTable) Overlapping(c geom.Circle, out []Entry) []Entry {
	start := len(out)
	out = h.Nearby(c, out)

	n := start
	for _, e := range out[start:] {
		if e.Circle.Overlaps(c) {
			out[n] = e
			n++
		}
	}
	return out[:n]
}
