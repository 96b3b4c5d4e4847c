package prefabs

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/collide/physics"
	"gopkg.in/yaml.v3"
)

// SceneSpec is a list of entities built in order. Parents must appear
// before their children.
type SceneSpec struct {
	Name     string            `yaml:"name"`
	Entities []EntityBuildSpec `yaml:"entities"`
}

func LoadSceneSpec(filename string) (SceneSpec, error) {
	return LoadSpec[SceneSpec](filename)
}

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Parent     string         `yaml:"parent"`
	Components map[string]any `yaml:"components"`
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	Position mgl64.Vec3  `yaml:"position"`
	Scale    *mgl64.Vec3 `yaml:"scale"`
}

type TreeComponentSpec struct {
	Disabled bool `yaml:"disabled"`
	Paused   bool `yaml:"paused"`
}

type VelocityComponentSpec struct {
	Speed  mgl64.Vec3 `yaml:"speed"`
	Factor float64    `yaml:"factor"`
}

// BodyComponentSpec describes a body. Only the fields of the chosen shape
// are read.
type BodyComponentSpec struct {
	Shape       string     `yaml:"shape"`
	Radius      float64    `yaml:"radius"`
	HalfExtents mgl64.Vec3 `yaml:"half_extents"`
	Normal      mgl64.Vec3 `yaml:"normal"`
	HalfHeight  float64    `yaml:"half_height"`
	ShearX      float64    `yaml:"shear_x"`
	Preset      string     `yaml:"preset"`
	Disabled    bool       `yaml:"disabled"`
	SleepFrames int64      `yaml:"sleep_frames"`
}

func (s BodyComponentSpec) ToShape() (physics.Shape, error) {
	switch s.Shape {
	case "", "none":
		return physics.NoShape{}, nil
	case "sphere":
		return physics.Sphere{Radius: s.Radius}, nil
	case "box":
		return physics.Box{HalfExtents: s.HalfExtents}, nil
	case "ground":
		return physics.Ground{}, nil
	case "plane":
		return physics.Plane{Normal: s.Normal, Radius: s.Radius}, nil
	case "capsule":
		return physics.Capsule{Radius: s.Radius, HalfHeight: s.HalfHeight}, nil
	case "sheared_box":
		return physics.ShearedBox{HalfExtents: s.HalfExtents, ShearX: s.ShearX}, nil
	}
	return nil, fmt.Errorf("prefabs: unknown shape %q: %w", s.Shape, physics.ErrInvalidShape)
}

type HitBoxComponentSpec struct {
	Center      mgl64.Vec3     `yaml:"center"`
	HalfExtents mgl64.Vec3     `yaml:"half_extents"`
	Group       string         `yaml:"group"`
	Tag         string         `yaml:"tag"`
	Disabled    bool           `yaml:"disabled"`
	Params      map[string]any `yaml:"params"`
}
