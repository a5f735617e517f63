// Package mesh defines the indexed polygon surface used by every repair
// stage. Faces reference vertices by index; edges and face adjacency are
// derived on demand from the face list.
package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Face is an ordered cycle of vertex indices. The winding order determines
// the face normal by the right-hand rule.
type Face []int

// Reverse flips the winding of the face in place.
func (f Face) Reverse() {
	for i, j := 0, len(f)-1; i < j; i, j = i+1, j-1 {
		f[i], f[j] = f[j], f[i]
	}
}

// Normal returns the unnormalized Newell normal of the face. Its length is
// twice the area of the polygon when the polygon is planar.
func (f Face) Normal(vertices []mgl64.Vec3) mgl64.Vec3 {
	var n mgl64.Vec3
	for i := range f {
		a := vertices[f[i]]
		b := vertices[f[(i+1)%len(f)]]
		n[0] += (a[1] - b[1]) * (a[2] + b[2])
		n[1] += (a[2] - b[2]) * (a[0] + b[0])
		n[2] += (a[0] - b[0]) * (a[1] + b[1])
	}
	return n
}

// Mesh is a polygon surface mesh. Vertex positions are never moved by the
// repair stages; faces are rewritten, reversed or added.
type Mesh struct {
	Vertices []mgl64.Vec3 `json:"vertices"`
	Faces    []Face       `json:"faces"`
}

// New builds a mesh from copies of the given vertices and faces and
// validates it.
func New(vertices []mgl64.Vec3, faces []Face) (*Mesh, error) {
	m := &Mesh{
		Vertices: make([]mgl64.Vec3, len(vertices)),
		Faces:    make([]Face, len(faces)),
	}
	copy(m.Vertices, vertices)
	for i, f := range faces {
		m.Faces[i] = append(Face(nil), f...)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the construction invariants: finite coordinates, in-range
// indices and at least three distinct vertices per face.
func (m *Mesh) Validate() error {
	for i, v := range m.Vertices {
		for _, c := range v {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return fmt.Errorf("mesh: vertex %d has non-finite coordinate %v: %w", i, v, ErrInvalidTopology)
			}
		}
	}
	n := len(m.Vertices)
	for i, f := range m.Faces {
		if len(f) < 3 {
			return fmt.Errorf("mesh: face %d has %d vertices, need at least 3: %w", i, len(f), ErrInvalidTopology)
		}
		seen := make(map[int]struct{}, len(f))
		for _, idx := range f {
			if idx < 0 || idx >= n {
				return fmt.Errorf("mesh: face %d references vertex %d out of range [0,%d): %w", i, idx, n, ErrInvalidTopology)
			}
			if _, dup := seen[idx]; dup {
				return fmt.Errorf("mesh: face %d repeats vertex %d: %w", i, idx, ErrInvalidTopology)
			}
			seen[idx] = struct{}{}
		}
	}
	return nil
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{}
	if m.Vertices != nil {
		c.Vertices = make([]mgl64.Vec3, len(m.Vertices))
		copy(c.Vertices, m.Vertices)
	}
	if m.Faces != nil {
		c.Faces = make([]Face, len(m.Faces))
		for i, f := range m.Faces {
			c.Faces[i] = append(Face(nil), f...)
		}
	}
	return c
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// EdgeCount returns the number of distinct edges. An interior edge shared
// by two faces is counted once.
func (m *Mesh) EdgeCount() int {
	return m.Edges().Len()
}

// IsEmpty returns true if the mesh has no vertices.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// IsTriangleMesh returns true if every face has exactly three vertices.
func (m *Mesh) IsTriangleMesh() bool {
	for _, f := range m.Faces {
		if len(f) != 3 {
			return false
		}
	}
	return true
}

// IsClosed returns true if every edge is used by exactly two faces.
// A mesh without faces is not closed.
func (m *Mesh) IsClosed() bool {
	if len(m.Faces) == 0 {
		return false
	}
	em := m.Edges()
	for _, e := range em.order {
		if len(em.uses[e]) != 2 {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned bounding box of the vertices referenced
// by at least one face. An empty mesh returns zero vectors.
func (m *Mesh) Bounds() (min, max mgl64.Vec3) {
	first := true
	for _, f := range m.Faces {
		for _, idx := range f {
			v := m.Vertices[idx]
			if first {
				min, max = v, v
				first = false
				continue
			}
			for k := 0; k < 3; k++ {
				mgl64.SetMin(&min[k], &v[k])
				mgl64.SetMax(&max[k], &v[k])
			}
		}
	}
	return min, max
}

// Diagonal returns the length of the bounding box diagonal.
func (m *Mesh) Diagonal() float64 {
	min, max := m.Bounds()
	return max.Sub(min).Len()
}

// Compact drops vertices not referenced by any face and renumbers the faces.
// It returns the number of vertices removed.
func (m *Mesh) Compact() int {
	used := make([]bool, len(m.Vertices))
	for _, f := range m.Faces {
		for _, idx := range f {
			used[idx] = true
		}
	}
	return m.compact(used)
}

// CompactOnly drops the listed vertices if no face references them.
func (m *Mesh) CompactOnly(candidates []int) int {
	keep := make([]bool, len(m.Vertices))
	for i := range keep {
		keep[i] = true
	}
	for _, idx := range candidates {
		keep[idx] = false
	}
	for _, f := range m.Faces {
		for _, idx := range f {
			keep[idx] = true
		}
	}
	return m.compact(keep)
}

func (m *Mesh) compact(keep []bool) int {
	remap := make([]int, len(m.Vertices))
	vertices := m.Vertices[:0]
	for i, v := range m.Vertices {
		if !keep[i] {
			remap[i] = -1
			continue
		}
		remap[i] = len(vertices)
		vertices = append(vertices, v)
	}
	removed := len(m.Vertices) - len(vertices)
	m.Vertices = vertices
	if removed == 0 {
		return 0
	}
	for _, f := range m.Faces {
		for j, idx := range f {
			f[j] = remap[idx]
		}
	}
	return removed
}
