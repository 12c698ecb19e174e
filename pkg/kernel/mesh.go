package kernel

import v3 "github.com/deadsy/sdfx/vec/v3"

// Mesh is a line-segment mesh suitable for rendering one sketch layer.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z), indices has
// 2 uint32s per segment, and markers lists vertices drawn as point glyphs.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1, ...] segments
	Markers  []uint32  `json:"markers"`  // vertex indices of sketch points
	Layer    string    `json:"layer"`    // which sketch layer this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// SegmentCount returns the number of line segments.
func (m *Mesh) SegmentCount() int {
	return len(m.Indices) / 2
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(p v3.Vec) uint32 {
	i := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
	return i
}

// AddSegment appends a segment between two new vertices.
func (m *Mesh) AddSegment(a, b v3.Vec) {
	ia := m.AddVertex(a)
	ib := m.AddVertex(b)
	m.Indices = append(m.Indices, ia, ib)
}

// AddMarker appends a point glyph at p.
func (m *Mesh) AddMarker(p v3.Vec) {
	m.Markers = append(m.Markers, m.AddVertex(p))
}
