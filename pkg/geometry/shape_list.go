package geometry

import (
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

// ShapeList is an ordered collection of shapes searched linearly for the nearest hit
type ShapeList struct {
	Shapes []Shape
}

// NewShapeList creates a list holding the given shapes in order
func NewShapeList(shapes ...Shape) *ShapeList {
	return &ShapeList{Shapes: shapes}
}

// Add appends shapes to the list
func (l *ShapeList) Add(shapes ...Shape) {
	l.Shapes = append(l.Shapes, shapes...)
}

// Len returns the number of shapes in the list
func (l *ShapeList) Len() int {
	return len(l.Shapes)
}

// Hit returns the closest intersection among all shapes.
// The upper bound shrinks to the closest hit so far; on equal t the earlier shape wins.
func (l *ShapeList) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := tMax
	hitAnything := false

	for _, shape := range l.Shapes {
		hit, isHit := shape.Hit(ray, tMin, closestSoFar)
		if !isHit || (hitAnything && hit.T >= closestSoFar) {
			continue
		}
		hitAnything = true
		closestSoFar = hit.T
		closestHit = hit
	}

	return closestHit, hitAnything
}
