// Package script runs tengo scripts that veto collision contacts.
//
// A filter script defines a function
//
//	filter := func(kind, a, b) { ... }
//
// where kind is "body", "static" or "sensor" and a, b are maps describing
// the participants. Returning a truthy value denies the contact.
package script

import (
	"fmt"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/collide/ecs"
	"github.com/milk9111/collide/physics"
)

const dispatchScript = `
__deny = filter(__kind, __a, __b)
`

const (
	KindBody   = "body"
	KindStatic = "static"
	KindSensor = "sensor"
)

// Filter is a physics.Callback backed by a compiled tengo script. Only the
// deny hooks are scripted.
type Filter struct {
	physics.NopCallback

	name     string
	compiled *tengo.Compiled
	// Name resolves entity names exposed to the script as "name".
	Name func(ecs.Entity) string

	failures int
}

var _ physics.Callback = (*Filter)(nil)

// NewFilter compiles src. name is only used in messages.
func NewFilter(name string, src []byte) (*Filter, error) {
	s := tengo.NewScript([]byte(string(src) + "\n" + dispatchScript))
	_ = s.Add("__kind", "")
	_ = s.Add("__a", map[string]any{})
	_ = s.Add("__b", map[string]any{})
	_ = s.Add("__deny", false)
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	return &Filter{name: name, compiled: compiled}, nil
}

// Failures counts script runs that errored. Failed runs allow the contact.
func (f *Filter) Failures() int {
	return f.failures
}

func (f *Filter) BodyEach(a, b ecs.Entity) bool {
	return f.run(KindBody, f.entity(a), f.entity(b))
}

func (f *Filter) BodyAndStatic(dynamic, static ecs.Entity) bool {
	return f.run(KindStatic, f.entity(dynamic), f.entity(static))
}

func (f *Filter) Sensor(a physics.HitBoxRef, boxA *physics.HitBox, b physics.HitBoxRef, boxB *physics.HitBox) bool {
	return f.run(KindSensor, f.hitBox(a, boxA), f.hitBox(b, boxB))
}

func (f *Filter) entity(e ecs.Entity) map[string]any {
	m := map[string]any{"entity": int64(e)}
	if f.Name != nil {
		m["name"] = f.Name(e)
	}
	return m
}

func (f *Filter) hitBox(ref physics.HitBoxRef, box *physics.HitBox) map[string]any {
	m := f.entity(ref.Entity)
	m["index"] = ref.Index
	if box != nil {
		m["group"] = box.Group
		m["tag"] = box.Tag
	}
	return m
}

func (f *Filter) run(kind string, a, b map[string]any) bool {
	if err := f.compiled.Set("__kind", kind); err != nil {
		return f.fail(err)
	}
	if err := f.compiled.Set("__a", a); err != nil {
		return f.fail(err)
	}
	if err := f.compiled.Set("__b", b); err != nil {
		return f.fail(err)
	}
	if err := f.compiled.Run(); err != nil {
		return f.fail(err)
	}
	return f.compiled.Get("__deny").Bool()
}

func (f *Filter) fail(err error) bool {
	f.failures++
	if f.failures == 1 {
		log.Printf("script: %s: %v", f.name, err)
	}
	return false
}
