package movement

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/ecs"
	"github.com/plus3/danmaku/expr"
)

// SpawnKind decides where a new path starts.
type SpawnKind uint8

const (
	// Absolute starts at Offset in world space.
	Absolute SpawnKind = iota
	// EntityRelative starts at Offset from the source's current position
	// and moves in world space afterwards.
	EntityRelative
	// EntityAttached starts at Offset in the source's frame and keeps
	// following it.
	EntityAttached
)

var spawnNames = [...]string{"absolute", "entity_relative", "entity_attached"}

func (k SpawnKind) String() string {
	if int(k) < len(spawnNames) {
		return spawnNames[k]
	}
	return fmt.Sprintf("spawn(%d)", uint8(k))
}

type SpawnType struct {
	Kind   SpawnKind
	Offset Vec
}

func (s *SpawnType) Compile(scopes ...expr.Scope) error {
	return s.Offset.Compile(scopes...)
}

// SpawnInfo is where a path begins: a position in the frame of Reference,
// or in world space when Reference is nil.
type SpawnInfo struct {
	Position  cp.Vector
	Reference *ecs.EntityRef
}

// Resolve applies the spawn type to a source entity at sourcePos. source may
// be nil for Absolute spawns.
func (s SpawnType) Resolve(source *ecs.EntityRef, sourcePos cp.Vector) SpawnInfo {
	offset := s.Offset.Value()
	switch s.Kind {
	case EntityRelative:
		return SpawnInfo{Position: sourcePos.Add(offset)}
	case EntityAttached:
		if source == nil {
			return SpawnInfo{Position: sourcePos.Add(offset)}
		}
		return SpawnInfo{Position: offset, Reference: source}
	default:
		return SpawnInfo{Position: offset}
	}
}
