package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/milk9111/collide/physics"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// PhysicsSpec is the world-wide configuration in physics.yaml.
type PhysicsSpec struct {
	Groups []GroupSpec `yaml:"groups"`
	Bodies BodyPresets `yaml:"bodies"`
	Filter string      `yaml:"filter"`
	Scenes []string    `yaml:"scenes"`
}

func LoadPhysicsSpec() (*PhysicsSpec, error) {
	spec, err := LoadSpec[PhysicsSpec]("physics.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// GroupSpec names a collision group. Mask lists the names of the groups it
// accepts; "all" accepts every group.
type GroupSpec struct {
	ID    int       `yaml:"id"`
	Name  string    `yaml:"name"`
	Mask  []string  `yaml:"mask"`
	Color YAMLColor `yaml:"color"`
}

// GroupID resolves a group name, or a numeric id, to its id.
func (s *PhysicsSpec) GroupID(name string) (int, error) {
	for _, g := range s.Groups {
		if g.Name == name {
			return g.ID, nil
		}
	}
	if id, err := strconv.Atoi(name); err == nil {
		return id, nil
	}
	return 0, fmt.Errorf("prefabs: unknown collision group %q", name)
}

// CollisionGroups converts the group table, resolving masks by name.
func (s *PhysicsSpec) CollisionGroups() ([]physics.CollisionGroup, error) {
	out := make([]physics.CollisionGroup, 0, len(s.Groups))
	for _, g := range s.Groups {
		var mask uint32
		for _, name := range g.Mask {
			if name == "all" {
				mask = ^uint32(0)
				continue
			}
			id, err := s.GroupID(name)
			if err != nil {
				return nil, fmt.Errorf("prefabs: group %s mask: %w", g.Name, err)
			}
			if id < 0 || id >= physics.MaxGroups {
				return nil, fmt.Errorf("prefabs: group %s mask %d: %w", g.Name, id, physics.ErrInvalidGroup)
			}
			mask |= 1 << uint(id)
		}
		out = append(out, physics.CollisionGroup{ID: g.ID, Name: g.Name, Mask: mask, Color: g.Color.RGBA})
	}
	return out, nil
}

// Body returns a named preset, falling back to physics.DefaultBodyDesc.
func (s *PhysicsSpec) Body(name string) (physics.BodyDesc, error) {
	if name == "" {
		return physics.DefaultBodyDesc(), nil
	}
	d, ok := s.Bodies[name]
	if !ok {
		return physics.BodyDesc{}, fmt.Errorf("prefabs: unknown body preset %q", name)
	}
	return d, nil
}

// BodyPresets decodes each preset on top of physics.DefaultBodyDesc, so a
// preset only lists what it changes.
type BodyPresets map[string]physics.BodyDesc

func (p *BodyPresets) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]yaml.Node
	if err := value.Decode(&raw); err != nil {
		return err
	}
	out := make(BodyPresets, len(raw))
	for name, node := range raw {
		d := physics.DefaultBodyDesc()
		if err := node.Decode(&d); err != nil {
			return fmt.Errorf("body preset %s: %w", name, err)
		}
		out[name] = d
	}
	*p = out
	return nil
}

// YAMLColor accepts "#rrggbb", "#rrggbbaa" or an SVG color name.
type YAMLColor struct {
	color.RGBA
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	if named, ok := colornames.Map[strings.ToLower(value.Value)]; ok {
		c.RGBA = named
		return nil
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.RGBA = color.RGBAModel.Convert(color.NRGBA{R: r, G: g, B: b, A: a}).(color.RGBA)
	return nil
}
