package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/collide/ecs"
	"github.com/vmihailenco/msgpack/v5"
)

// snapshotVersion is bumped whenever the encoded layout changes.
const snapshotVersion = 1

type worldSnapshot struct {
	Version int           `msgpack:"v"`
	Frame   int64         `msgpack:"frame"`
	Groups  []groupRecord `msgpack:"groups"`
	Nodes   []nodeRecord  `msgpack:"nodes"`
	Bodies  []pairRecord  `msgpack:"body_pairs"`
	Sensors []pairRecord  `msgpack:"sensor_pairs"`
}

type groupRecord struct {
	ID    int      `msgpack:"id"`
	Name  string   `msgpack:"name"`
	Mask  uint32   `msgpack:"mask"`
	Color [4]uint8 `msgpack:"color"`
}

type nodeRecord struct {
	Entity   ecs.Entity      `msgpack:"e"`
	Velocity *velocityRecord `msgpack:"vel,omitempty"`
	Collider *colliderRecord `msgpack:"col,omitempty"`
	Body     *bodyRecord     `msgpack:"body,omitempty"`
}

type velocityRecord struct {
	Speed   mgl64.Vec3    `msgpack:"speed"`
	Factor  float64       `msgpack:"factor"`
	Prev    [2]mgl64.Vec3 `msgpack:"prev"`
	History int           `msgpack:"history"`
}

type colliderRecord struct {
	Enabled bool           `msgpack:"enabled"`
	Boxes   []hitBoxRecord `msgpack:"boxes"`
}

// hitBoxRecord drops OnHit and Params; Restore keeps the live ones.
type hitBoxRecord struct {
	Center      mgl64.Vec3 `msgpack:"center"`
	HalfExtents mgl64.Vec3 `msgpack:"half"`
	Group       int        `msgpack:"group"`
	Enabled     bool       `msgpack:"enabled"`
	Tag         string     `msgpack:"tag"`
}

type bodyRecord struct {
	Shape   shapeRecord `msgpack:"shape"`
	Desc    BodyDesc    `msgpack:"desc"`
	State   BodyState   `msgpack:"state"`
	Enabled bool        `msgpack:"enabled"`
}

type shapeRecord struct {
	Kind        ShapeKind  `msgpack:"kind"`
	Radius      float64    `msgpack:"radius,omitempty"`
	HalfExtents mgl64.Vec3 `msgpack:"half,omitempty"`
	Normal      mgl64.Vec3 `msgpack:"normal,omitempty"`
	HalfHeight  float64    `msgpack:"half_height,omitempty"`
	ShearX      float64    `msgpack:"shear_x,omitempty"`
}

type pairRecord struct {
	A          hitObjectRecord `msgpack:"a"`
	B          hitObjectRecord `msgpack:"b"`
	Enter      int64           `msgpack:"enter"`
	Exit       int64           `msgpack:"exit"`
	LastUpdate int64           `msgpack:"last"`
}

type hitObjectRecord struct {
	Entity   ecs.Entity `msgpack:"e"`
	Index    int        `msgpack:"i"`
	Position mgl64.Vec3 `msgpack:"pos"`
}

func encodeShape(s Shape) shapeRecord {
	r := shapeRecord{Kind: s.Kind()}
	switch v := s.(type) {
	case Sphere:
		r.Radius = v.Radius
	case Box:
		r.HalfExtents = v.HalfExtents
	case Plane:
		r.Normal, r.Radius = v.Normal, v.Radius
	case Capsule:
		r.Radius, r.HalfHeight = v.Radius, v.HalfHeight
	case ShearedBox:
		r.HalfExtents, r.ShearX = v.HalfExtents, v.ShearX
	}
	return r
}

func (r shapeRecord) decode() (Shape, error) {
	var s Shape
	switch r.Kind {
	case ShapeNone:
		s = NoShape{}
	case ShapeSphere:
		s = Sphere{Radius: r.Radius}
	case ShapeBox:
		s = Box{HalfExtents: r.HalfExtents}
	case ShapeGround:
		s = Ground{}
	case ShapePlane:
		s = Plane{Normal: r.Normal, Radius: r.Radius}
	case ShapeCapsule:
		s = Capsule{Radius: r.Radius, HalfHeight: r.HalfHeight}
	case ShapeShearedBox:
		s = ShearedBox{HalfExtents: r.HalfExtents, ShearX: r.ShearX}
	default:
		return nil, fmt.Errorf("shape kind %v: %w", r.Kind, ErrInvalidShape)
	}
	return normalizeShape(s)
}

func encodePair(p *HitPair) pairRecord {
	obj := func(o HitObject) hitObjectRecord {
		return hitObjectRecord{Entity: o.Ref.Entity, Index: o.Ref.Index, Position: o.Position}
	}
	return pairRecord{A: obj(p.A), B: obj(p.B), Enter: p.Enter, Exit: p.Exit, LastUpdate: p.LastUpdate}
}

func (r pairRecord) decode() HitPair {
	obj := func(o hitObjectRecord) HitObject {
		return HitObject{Ref: HitBoxRef{Entity: o.Entity, Index: o.Index}, Position: o.Position}
	}
	return HitPair{A: obj(r.A), B: obj(r.B), Enter: r.Enter, Exit: r.Exit, LastUpdate: r.LastUpdate}
}

// Snapshot encodes every record and contact of the world. Positions live in
// the Tree and are not included.
func (w *World) Snapshot() ([]byte, error) {
	snap := worldSnapshot{
		Version: snapshotVersion,
		Frame:   w.frame,
		Nodes:   make([]nodeRecord, 0, len(w.order)),
		Bodies:  make([]pairRecord, 0, w.bodyPairs.len()),
		Sensors: make([]pairRecord, 0, w.sensorPairs.len()),
	}
	for id := 0; id < MaxGroups; id++ {
		if g, ok := w.groups.get(id); ok {
			snap.Groups = append(snap.Groups, groupRecord{
				ID: g.ID, Name: g.Name, Mask: g.Mask,
				Color: [4]uint8{g.Color.R, g.Color.G, g.Color.B, g.Color.A},
			})
		}
	}
	for _, e := range w.order {
		n := w.nodes[e]
		rec := nodeRecord{Entity: e}
		if v := n.Velocity; v != nil {
			rec.Velocity = &velocityRecord{Speed: v.Speed, Factor: v.Factor, Prev: v.prev, History: v.history}
		}
		if c := n.Collider; c != nil {
			cr := &colliderRecord{Enabled: c.Enabled}
			for _, b := range c.Boxes {
				cr.Boxes = append(cr.Boxes, hitBoxRecord{
					Center: b.Center, HalfExtents: b.HalfExtents,
					Group: b.Group, Enabled: b.Enabled, Tag: b.Tag,
				})
			}
			rec.Collider = cr
		}
		if b := n.Body; b != nil {
			rec.Body = &bodyRecord{Shape: encodeShape(b.Shape), Desc: b.Desc, State: b.State, Enabled: b.Enabled}
		}
		snap.Nodes = append(snap.Nodes, rec)
	}
	w.bodyPairs.each(func(p *HitPair) { snap.Bodies = append(snap.Bodies, encodePair(p)) })
	w.sensorPairs.each(func(p *HitPair) { snap.Sensors = append(snap.Sensors, encodePair(p)) })

	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("physics: encode snapshot: %w", err)
	}
	return data, nil
}

// Restore replaces the world's records and contacts with a snapshot. Hit
// box callbacks and params survive for boxes that exist on both sides.
// On error the world is left untouched.
func (w *World) Restore(data []byte) error {
	var snap worldSnapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("physics: decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("physics: snapshot version %d, want %d", snap.Version, snapshotVersion)
	}

	var groups groupTable
	for _, g := range snap.Groups {
		err := groups.put(CollisionGroup{
			ID: g.ID, Name: g.Name, Mask: g.Mask,
			Color: colorRGBA(g.Color),
		})
		if err != nil {
			return fmt.Errorf("physics: restore: %w", err)
		}
	}

	nodes := make(map[ecs.Entity]*Node, len(snap.Nodes))
	order := make([]ecs.Entity, 0, len(snap.Nodes))
	for _, rec := range snap.Nodes {
		if !rec.Entity.Valid() {
			return fmt.Errorf("physics: restore entity %v: %w", rec.Entity, ErrInvalidEntity)
		}
		n := &Node{Entity: rec.Entity}
		if v := rec.Velocity; v != nil {
			n.Velocity = &Velocity{Speed: v.Speed, Factor: v.Factor, prev: v.Prev, history: v.History}
		}
		if c := rec.Collider; c != nil {
			n.Collider = &Collider{Enabled: c.Enabled}
			for i, b := range c.Boxes {
				box := HitBox{Center: b.Center, HalfExtents: b.HalfExtents, Group: b.Group, Enabled: b.Enabled, Tag: b.Tag}
				if live, ok := w.hitBox(HitBoxRef{Entity: rec.Entity, Index: i}); ok {
					box.OnHit, box.Params = live.OnHit, live.Params
				}
				n.Collider.Boxes = append(n.Collider.Boxes, box)
			}
		}
		if b := rec.Body; b != nil {
			shape, err := b.Shape.decode()
			if err != nil {
				return fmt.Errorf("physics: restore entity %v: %w", rec.Entity, err)
			}
			n.Body = &Body{Shape: shape, Desc: b.Desc, State: b.State, Enabled: b.Enabled}
		}
		nodes[rec.Entity] = n
		order = append(order, rec.Entity)
	}

	bodyPairs, sensorPairs := newPairTable(), newPairTable()
	restorePairs(bodyPairs, snap.Bodies)
	restorePairs(sensorPairs, snap.Sensors)

	w.frame = snap.Frame
	w.groups = groups
	w.nodes = nodes
	w.order = order
	w.bodyPairs = bodyPairs
	w.sensorPairs = sensorPairs
	return nil
}

func restorePairs(t *pairTable, recs []pairRecord) {
	for _, r := range recs {
		p := r.decode()
		key := makePairKey(p.A.Ref, p.B.Ref)
		if _, ok := t.pairs[key]; ok {
			continue
		}
		t.pairs[key] = &p
		t.order = append(t.order, key)
	}
}
