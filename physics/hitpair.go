package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/collide/ecs"
)

// HitObject is one participant of a contact as seen when it was detected.
type HitObject struct {
	Ref      HitBoxRef
	Position mgl64.Vec3
}

// Entity is shorthand for Ref.Entity.
func (o HitObject) Entity() ecs.Entity {
	return o.Ref.Entity
}

// HitPair tracks one contact across frames. Exit is -1 while the contact is
// ongoing.
type HitPair struct {
	A          HitObject
	B          HitObject
	Enter      int64
	Exit       int64
	LastUpdate int64
}

// IsEnter reports the first frame of the contact.
func (p *HitPair) IsEnter() bool {
	return p.Enter == p.LastUpdate
}

// IsExit reports the frame the contact ended. The pair is dropped at the
// start of the next update.
func (p *HitPair) IsExit() bool {
	return p.Exit >= 0 && p.Exit == p.LastUpdate
}

// IsStay reports a continuing contact.
func (p *HitPair) IsStay() bool {
	return p.Enter < p.LastUpdate && p.Exit < 0
}

// Involves reports whether e is one of the participants.
func (p *HitPair) Involves(e ecs.Entity) bool {
	return p.A.Ref.Entity == e || p.B.Ref.Entity == e
}

// Other returns the participant that is not e.
func (p *HitPair) Other(e ecs.Entity) HitObject {
	if p.A.Ref.Entity == e {
		return p.B
	}
	return p.A
}

type pairKey struct {
	lo, hi HitBoxRef
}

func refLess(a, b HitBoxRef) bool {
	if a.Entity != b.Entity {
		return a.Entity < b.Entity
	}
	return a.Index < b.Index
}

func makePairKey(a, b HitBoxRef) pairKey {
	if refLess(b, a) {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// pairTable keeps pairs in first-detection order so iteration is stable.
type pairTable struct {
	pairs map[pairKey]*HitPair
	order []pairKey
}

func newPairTable() *pairTable {
	return &pairTable{pairs: make(map[pairKey]*HitPair)}
}

// touch refreshes or creates the pair for a and b at frame. It reports
// whether the pair was created.
func (t *pairTable) touch(a, b HitObject, frame int64) (*HitPair, bool) {
	key := makePairKey(a.Ref, b.Ref)
	if p, ok := t.pairs[key]; ok {
		p.A, p.B = a, b
		p.LastUpdate = frame
		return p, false
	}
	p := &HitPair{A: a, B: b, Enter: frame, Exit: -1, LastUpdate: frame}
	t.pairs[key] = p
	t.order = append(t.order, key)
	return p, true
}

func (t *pairTable) find(a, b HitBoxRef) (*HitPair, bool) {
	p, ok := t.pairs[makePairKey(a, b)]
	return p, ok
}

// retain drops every pair keep rejects.
func (t *pairTable) retain(keep func(*HitPair) bool) {
	n := 0
	for _, key := range t.order {
		p := t.pairs[key]
		if keep(p) {
			t.order[n] = key
			n++
			continue
		}
		delete(t.pairs, key)
	}
	clear(t.order[n:])
	t.order = t.order[:n]
}

// purgeExited drops pairs that reported their exit last frame.
func (t *pairTable) purgeExited() {
	t.retain(func(p *HitPair) bool { return p.Exit < 0 })
}

// stampExits marks every ongoing pair not refreshed at frame as exited.
func (t *pairTable) stampExits(frame int64) {
	for _, key := range t.order {
		p := t.pairs[key]
		if p.Exit < 0 && p.LastUpdate != frame {
			p.Exit = frame
			p.LastUpdate = frame
		}
	}
}

// removeEntity purges pairs referencing e without reporting an exit.
func (t *pairTable) removeEntity(e ecs.Entity) {
	t.retain(func(p *HitPair) bool { return !p.Involves(e) })
}

func (t *pairTable) each(fn func(*HitPair)) {
	for _, key := range t.order {
		fn(t.pairs[key])
	}
}

func (t *pairTable) len() int {
	return len(t.order)
}
