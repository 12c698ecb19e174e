// Package sketch defines the constrained 2D sketch model for contour.
// A sketch owns points, lines and constraints; the entities form a DAG of
// non-owning dependency edges, expose scalar degrees of freedom and
// constraint residuals, and are driven to a consistent state by the solver.
package sketch
