// Package geom holds the shape primitive tests used by the collision
// resolver. Planar tests work in the XZ plane using cp.Vector, where the
// vector's Y component carries world Z. Every circle test returns the
// correction that, added to the circle center, removes the penetration.
package geom
