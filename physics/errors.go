package physics

import "errors"

var (
	ErrInvalidEntity   = errors.New("physics: invalid entity")
	ErrNoNode          = errors.New("physics: entity has no physics node")
	ErrNoBody          = errors.New("physics: entity has no body")
	ErrNoCollider      = errors.New("physics: entity has no collider")
	ErrInvalidShape    = errors.New("physics: invalid body shape")
	ErrInvalidGroup    = errors.New("physics: collision group out of range")
	ErrInvalidHitBox   = errors.New("physics: invalid hit box")
	ErrReentrantUpdate = errors.New("physics: Update called from inside a collision callback")
)
