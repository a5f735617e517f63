// Package meshtest provides small reference meshes for tests of the repair
// stages.
package meshtest

import (
	"math"

	"github.com/birukm3/femSIM/pkg/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

func mustNew(vertices []mgl64.Vec3, faces []mesh.Face) *mesh.Mesh {
	m, err := mesh.New(vertices, faces)
	if err != nil {
		panic(err)
	}
	return m
}

func unitCubeVertices() []mgl64.Vec3 {
	return []mgl64.Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
}

// cubeQuads are the six faces of the unit cube wound outward.
var cubeQuads = []mesh.Face{
	{0, 3, 2, 1}, // bottom
	{4, 5, 6, 7}, // top
	{0, 1, 5, 4}, // front
	{2, 3, 7, 6}, // back
	{0, 4, 7, 3}, // left
	{1, 2, 6, 5}, // right
}

// QuadCube returns the unit cube as six outward quads.
func QuadCube() *mesh.Mesh {
	return mustNew(unitCubeVertices(), cubeQuads)
}

// Cube returns the unit cube as twelve outward triangles.
func Cube() *mesh.Mesh {
	var faces []mesh.Face
	for _, q := range cubeQuads {
		faces = append(faces, mesh.Face{q[0], q[1], q[2]}, mesh.Face{q[0], q[2], q[3]})
	}
	return mustNew(unitCubeVertices(), faces)
}

// Tetrahedron returns the corner tetrahedron with outward faces.
func Tetrahedron() *mesh.Mesh {
	return mustNew(
		[]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[]mesh.Face{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}},
	)
}

// CubeHalves returns a unit cube cut at z=0.5 into two open quad shells.
// The upper shell carries its own copy of the four cut vertices, so the
// mesh has four coincident pairs of boundary edges with opposite windings.
func CubeHalves() *mesh.Mesh {
	ring := func(z float64) []mgl64.Vec3 {
		return []mgl64.Vec3{{0, 0, z}, {1, 0, z}, {1, 1, z}, {0, 1, z}}
	}
	var vertices []mgl64.Vec3
	vertices = append(vertices, ring(0)...)   // 0-3
	vertices = append(vertices, ring(0.5)...) // 4-7 lower cut
	vertices = append(vertices, ring(1)...)   // 8-11
	vertices = append(vertices, ring(0.5)...) // 12-15 upper cut

	faces := []mesh.Face{{0, 3, 2, 1}, {8, 9, 10, 11}}
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		faces = append(faces, mesh.Face{i, j, 4 + j, 4 + i})
		faces = append(faces, mesh.Face{12 + i, 12 + j, 8 + j, 8 + i})
	}
	return mustNew(vertices, faces)
}

// Inverted returns a copy of m with every face reversed.
func Inverted(m *mesh.Mesh) *mesh.Mesh {
	c := m.Clone()
	for _, f := range c.Faces {
		f.Reverse()
	}
	return c
}

// Soup returns a copy of m in which every face has its own private copy of
// its vertices, as produced by STL files or marching cubes.
func Soup(m *mesh.Mesh) *mesh.Mesh {
	var vertices []mgl64.Vec3
	faces := make([]mesh.Face, len(m.Faces))
	for i, f := range m.Faces {
		nf := make(mesh.Face, len(f))
		for j, idx := range f {
			nf[j] = len(vertices)
			vertices = append(vertices, m.Vertices[idx])
		}
		faces[i] = nf
	}
	return mustNew(vertices, faces)
}

// Translated returns a copy of m moved by d.
func Translated(m *mesh.Mesh, d mgl64.Vec3) *mesh.Mesh {
	c := m.Clone()
	for i := range c.Vertices {
		c.Vertices[i] = c.Vertices[i].Add(d)
	}
	return c
}

// Scaled returns a copy of m scaled about the origin.
func Scaled(m *mesh.Mesh, s float64) *mesh.Mesh {
	c := m.Clone()
	for i := range c.Vertices {
		c.Vertices[i] = c.Vertices[i].Mul(s)
	}
	return c
}

// Merge concatenates meshes into one, renumbering faces.
func Merge(parts ...*mesh.Mesh) *mesh.Mesh {
	var vertices []mgl64.Vec3
	var faces []mesh.Face
	for _, p := range parts {
		base := len(vertices)
		vertices = append(vertices, p.Vertices...)
		for _, f := range p.Faces {
			nf := make(mesh.Face, len(f))
			for j, idx := range f {
				nf[j] = base + idx
			}
			faces = append(faces, nf)
		}
	}
	return mustNew(vertices, faces)
}

// RegularPolygon returns a single convex n-gon of the given radius in the
// z=0 plane, wound counter-clockwise seen from +z.
func RegularPolygon(n int, radius float64) *mesh.Mesh {
	vertices := make([]mgl64.Vec3, n)
	face := make(mesh.Face, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		vertices[i] = mgl64.Vec3{radius * math.Cos(a), radius * math.Sin(a), 0}
		face[i] = i
	}
	return mustNew(vertices, []mesh.Face{face})
}

// Area returns the total area of the mesh faces.
func Area(m *mesh.Mesh) float64 {
	var a float64
	for _, f := range m.Faces {
		a += f.Normal(m.Vertices).Len() / 2
	}
	return a
}
