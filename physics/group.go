package physics

import (
	"fmt"
	"image/color"
)

// MaxGroups is the number of collision groups addressable by a mask.
const MaxGroups = 32

// CollisionGroup filters sensor contacts. Two groups interact only when each
// mask has the other's bit set.
type CollisionGroup struct {
	ID    int
	Name  string
	Mask  uint32
	Color color.RGBA
}

// defaultGroupMask is used for groups nobody configured.
const defaultGroupMask = ^uint32(0)

type groupTable struct {
	groups [MaxGroups]CollisionGroup
	set    [MaxGroups]bool
}

func validGroup(id int) bool {
	return id >= 0 && id < MaxGroups
}

func (t *groupTable) put(g CollisionGroup) error {
	if !validGroup(g.ID) {
		return fmt.Errorf("group %d: %w", g.ID, ErrInvalidGroup)
	}
	t.groups[g.ID] = g
	t.set[g.ID] = true
	return nil
}

func (t *groupTable) get(id int) (CollisionGroup, bool) {
	if !validGroup(id) {
		return CollisionGroup{}, false
	}
	if !t.set[id] {
		return CollisionGroup{ID: id, Mask: defaultGroupMask}, false
	}
	return t.groups[id], true
}

func (t *groupTable) mask(id int) uint32 {
	g, _ := t.get(id)
	return g.Mask
}

// canCollide checks both directions.
func (t *groupTable) canCollide(a, b int) bool {
	if !validGroup(a) || !validGroup(b) {
		return false
	}
	return t.mask(a)&(1<<uint(b)) != 0 && t.mask(b)&(1<<uint(a)) != 0
}

func colorRGBA(c [4]uint8) color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}
