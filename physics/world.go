package physics

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/collide/ecs"
)

// Tree is the ownership tree the resolver reads positions from and writes
// corrections to. *ecs.World implements it.
type Tree interface {
	Position(e ecs.Entity) mgl64.Vec3
	SetPosition(e ecs.Entity, pos mgl64.Vec3)
	Scale(e ecs.Entity) mgl64.Vec3
	EnabledInTree(e ecs.Entity) bool
	PausedInTree(e ecs.Entity) bool
}

var _ Tree = (*ecs.World)(nil)

// Node aggregates the physics records of one entity. Any subset may be set.
type Node struct {
	Entity   ecs.Entity
	Velocity *Velocity
	Collider *Collider
	Body     *Body
}

func (n *Node) empty() bool {
	return n.Velocity == nil && n.Collider == nil && n.Body == nil
}

// World is the collision and physics resolution core. It owns every Node
// and both contact tables; the Tree owns entities and transforms.
type World struct {
	tree     Tree
	callback Callback

	nodes map[ecs.Entity]*Node
	order []ecs.Entity

	groups      groupTable
	bodyPairs   *pairTable
	sensorPairs *pairTable

	frame    int64
	updating bool

	// rebuilt every frame
	moving  []*Node
	dynamic []*Node
	static  []*Node
	terrain terrainBuckets
	sensors sensorBuckets

	warned map[string]struct{}
}

// Option configures a World.
type Option func(*World)

// WithCallback installs the collision callback. A nil callback restores the
// allow-everything default.
func WithCallback(cb Callback) Option {
	return func(w *World) {
		w.SetCallback(cb)
	}
}

// WithGroups registers collision groups up front.
func WithGroups(groups ...CollisionGroup) Option {
	return func(w *World) {
		for _, g := range groups {
			if err := w.SetGroup(g); err != nil {
				log.Printf("physics: %v", err)
			}
		}
	}
}

// NewWorld creates an empty world resolving against tree.
func NewWorld(tree Tree, opts ...Option) *World {
	if tree == nil {
		panic("physics: NewWorld with nil tree")
	}
	w := &World{
		tree:        tree,
		callback:    NopCallback{},
		nodes:       make(map[ecs.Entity]*Node),
		bodyPairs:   newPairTable(),
		sensorPairs: newPairTable(),
		warned:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetCallback replaces the collision callback.
func (w *World) SetCallback(cb Callback) {
	if cb == nil {
		cb = NopCallback{}
	}
	w.callback = cb
}

// Frame returns the frame number of the last Update.
func (w *World) Frame() int64 {
	return w.frame
}

// Update runs one full frame: classification, integration, body and
// terrain resolution, sensors and contact bookkeeping.
func (w *World) Update(frame int64) {
	if w.updating {
		panic(ErrReentrantUpdate)
	}
	w.updating = true
	defer func() { w.updating = false }()

	w.frame = frame
	w.callback.UpdateStart(frame)

	w.beginUpdate()
	w.updateNodeList()
	w.updatePositions()
	w.updateBodyCollision()
	w.updateTerrainCollision()
	w.updateSensorNodeList()
	w.updateSensorCollision()
	w.endUpdate()

	w.callback.UpdateEnd(frame)
}

func (w *World) beginUpdate() {
	w.bodyPairs.purgeExited()
	w.sensorPairs.purgeExited()
}

func (w *World) endUpdate() {
	w.bodyPairs.stampExits(w.frame)
	w.sensorPairs.stampExits(w.frame)
}

// warnOnce logs a message the first time key is seen.
func (w *World) warnOnce(key, format string, args ...any) {
	if _, ok := w.warned[key]; ok {
		return
	}
	w.warned[key] = struct{}{}
	log.Printf("physics: "+format, args...)
}

func (w *World) node(e ecs.Entity) *Node {
	return w.nodes[e]
}

func (w *World) ensureNode(e ecs.Entity) (*Node, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("entity %v: %w", e, ErrInvalidEntity)
	}
	if n, ok := w.nodes[e]; ok {
		return n, nil
	}
	n := &Node{Entity: e}
	w.nodes[e] = n
	w.order = append(w.order, e)
	return n, nil
}

// dropIfEmpty removes a node that no longer holds any record.
func (w *World) dropIfEmpty(n *Node) {
	if n != nil && n.empty() {
		w.Detach(n.Entity)
	}
}

// Detach removes every record of e. Contacts involving e disappear without
// an exit notification; bodies standing on e become airborne.
func (w *World) Detach(e ecs.Entity) {
	if _, ok := w.nodes[e]; !ok {
		return
	}
	delete(w.nodes, e)
	for i, cur := range w.order {
		if cur == e {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.bodyPairs.removeEntity(e)
	w.sensorPairs.removeEntity(e)
	for _, n := range w.nodes {
		if n.Body != nil && n.Body.State.Ground == e {
			n.Body.State.Ground = ecs.Nil
			n.Body.State.HasAltitude = false
		}
	}
}

// Has reports whether e has any physics record.
func (w *World) Has(e ecs.Entity) bool {
	_, ok := w.nodes[e]
	return ok
}

// Len returns the number of attached nodes.
func (w *World) Len() int {
	return len(w.order)
}

// AttachVelocity gives e a velocity, replacing any previous one.
func (w *World) AttachVelocity(e ecs.Entity, speed mgl64.Vec3) error {
	n, err := w.ensureNode(e)
	if err != nil {
		return err
	}
	n.Velocity = newVelocity(speed)
	if n.Body != nil {
		n.Body.invalidateStatic()
	}
	return nil
}

// DetachVelocity removes the velocity of e. A body left without velocity
// becomes static.
func (w *World) DetachVelocity(e ecs.Entity) {
	n := w.node(e)
	if n == nil || n.Velocity == nil {
		return
	}
	n.Velocity = nil
	if n.Body != nil {
		n.Body.invalidateStatic()
	}
	w.dropIfEmpty(n)
}

// AttachBody gives e a body with the given shape and tunables.
func (w *World) AttachBody(e ecs.Entity, shape Shape, desc BodyDesc) error {
	s, err := normalizeShape(shape)
	if err != nil {
		return fmt.Errorf("attach body to %v: %w", e, err)
	}
	n, err := w.ensureNode(e)
	if err != nil {
		return err
	}
	n.Body = newBody(s, desc.sanitize(e))
	return nil
}

// DetachBody removes the body of e and every body contact it had.
func (w *World) DetachBody(e ecs.Entity) {
	n := w.node(e)
	if n == nil || n.Body == nil {
		return
	}
	n.Body = nil
	w.bodyPairs.removeEntity(e)
	w.dropIfEmpty(n)
}

func (w *World) body(e ecs.Entity) (*Body, error) {
	n := w.node(e)
	if n == nil {
		return nil, fmt.Errorf("entity %v: %w", e, ErrNoNode)
	}
	if n.Body == nil {
		return nil, fmt.Errorf("entity %v: %w", e, ErrNoBody)
	}
	return n.Body, nil
}

// SetShape replaces the shape of e's body. The previous variant is
// discarded entirely.
func (w *World) SetShape(e ecs.Entity, shape Shape) error {
	b, err := w.body(e)
	if err != nil {
		return err
	}
	s, err := normalizeShape(shape)
	if err != nil {
		return fmt.Errorf("set shape of %v: %w", e, err)
	}
	b.Shape = s
	return nil
}

// Shape returns the shape of e's body, NoShape when there is none.
func (w *World) Shape(e ecs.Entity) Shape {
	b, err := w.body(e)
	if err != nil {
		return NoShape{}
	}
	return b.Shape
}

// SetBodyDesc replaces the tunables of e's body.
func (w *World) SetBodyDesc(e ecs.Entity, desc BodyDesc) error {
	b, err := w.body(e)
	if err != nil {
		return err
	}
	b.Desc = desc.sanitize(e)
	return nil
}

// BodyDesc returns the tunables of e's body.
func (w *World) BodyDesc(e ecs.Entity) (BodyDesc, bool) {
	b, err := w.body(e)
	if err != nil {
		return BodyDesc{}, false
	}
	return b.Desc, true
}

// BodyState returns a copy of the derived state of e's body.
func (w *World) BodyState(e ecs.Entity) (BodyState, bool) {
	b, err := w.body(e)
	if err != nil {
		return BodyState{}, false
	}
	return b.State, true
}

// SetBodyEnabled toggles a body without detaching it.
func (w *World) SetBodyEnabled(e ecs.Entity, enabled bool) error {
	b, err := w.body(e)
	if err != nil {
		return err
	}
	b.Enabled = enabled
	return nil
}
