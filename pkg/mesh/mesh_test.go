package mesh_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/birukm3/femSIM/pkg/mesh"
	"github.com/birukm3/femSIM/pkg/mesh/meshtest"
	"github.com/go-gl/mathgl/mgl64"
)

func TestNewRejectsInvalidTopology(t *testing.T) {
	square := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	tests := []struct {
		name     string
		vertices []mgl64.Vec3
		faces    []mesh.Face
	}{
		{"index out of range", square, []mesh.Face{{0, 1, 4}}},
		{"negative index", square, []mesh.Face{{0, -1, 2}}},
		{"two vertices", square, []mesh.Face{{0, 1}}},
		{"repeated vertex", square, []mesh.Face{{0, 1, 1}}},
		{"nan coordinate", []mgl64.Vec3{{math.NaN(), 0, 0}, {1, 0, 0}, {0, 1, 0}}, []mesh.Face{{0, 1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mesh.New(tt.vertices, tt.faces)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, mesh.ErrInvalidTopology) {
				t.Errorf("error %v does not wrap ErrInvalidTopology", err)
			}
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	vertices := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	faces := []mesh.Face{{0, 1, 2}}
	m, err := mesh.New(vertices, faces)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	faces[0][0] = 2
	vertices[0] = mgl64.Vec3{9, 9, 9}
	if m.Faces[0][0] != 0 {
		t.Error("mesh shares face storage with the caller")
	}
	if m.Vertices[0] != (mgl64.Vec3{}) {
		t.Error("mesh shares vertex storage with the caller")
	}
}

func TestClone(t *testing.T) {
	tests := []struct {
		name string
		m    *mesh.Mesh
	}{
		{"cube", meshtest.Cube()},
		{"vertices only", &mesh.Mesh{Vertices: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}}}},
		{"empty", &mesh.Mesh{}},
		{"empty slices", &mesh.Mesh{Vertices: []mgl64.Vec3{}, Faces: []mesh.Face{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.m.Clone()
			if !reflect.DeepEqual(c, tt.m) {
				t.Errorf("Clone() = %+v, want %+v", c, tt.m)
			}
			if len(c.Faces) > 0 {
				c.Faces[0][0] = -1
				if tt.m.Faces[0][0] == -1 {
					t.Error("clone shares face storage with the original")
				}
			}
		})
	}
}

func TestCounts(t *testing.T) {
	tests := []struct {
		name                    string
		m                       *mesh.Mesh
		vertices, edges, faces  int
		triangle, closed, empty bool
	}{
		{"cube", meshtest.Cube(), 8, 18, 12, true, true, false},
		{"quad cube", meshtest.QuadCube(), 8, 12, 6, false, true, false},
		{"tetrahedron", meshtest.Tetrahedron(), 4, 6, 4, true, true, false},
		{"cube halves", meshtest.CubeHalves(), 16, 24, 10, false, false, false},
		{"single triangle", meshtest.RegularPolygon(3, 1), 3, 3, 1, true, false, false},
		{"empty", &mesh.Mesh{}, 0, 0, 0, true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.VertexCount(); got != tt.vertices {
				t.Errorf("VertexCount() = %d, want %d", got, tt.vertices)
			}
			if got := tt.m.EdgeCount(); got != tt.edges {
				t.Errorf("EdgeCount() = %d, want %d", got, tt.edges)
			}
			if got := tt.m.FaceCount(); got != tt.faces {
				t.Errorf("FaceCount() = %d, want %d", got, tt.faces)
			}
			if got := tt.m.IsTriangleMesh(); got != tt.triangle {
				t.Errorf("IsTriangleMesh() = %v, want %v", got, tt.triangle)
			}
			if got := tt.m.IsClosed(); got != tt.closed {
				t.Errorf("IsClosed() = %v, want %v", got, tt.closed)
			}
			if got := tt.m.IsEmpty(); got != tt.empty {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.empty)
			}
		})
	}
}

func TestEdgeClassification(t *testing.T) {
	// Three triangles hinged on edge (0,1).
	m, err := mesh.New(
		[]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}},
		[]mesh.Face{{0, 1, 2}, {1, 0, 3}, {0, 1, 4}},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	em := m.Edges()
	if got := em.Class(mesh.NewEdge(1, 0)); got != mesh.EdgeNonManifold {
		t.Errorf("Class(0,1) = %v, want non-manifold", got)
	}
	if got := len(em.NonManifold()); got != 1 {
		t.Errorf("len(NonManifold()) = %d, want 1", got)
	}
	if got := len(em.Boundary()); got != 6 {
		t.Errorf("len(Boundary()) = %d, want 6", got)
	}
	if got := len(em.Uses(mesh.NewEdge(0, 1))); got != 3 {
		t.Errorf("len(Uses(0,1)) = %d, want 3", got)
	}
}

func TestBoundaryLoops(t *testing.T) {
	loops := meshtest.CubeHalves().BoundaryLoops()
	if len(loops) != 2 {
		t.Fatalf("len(loops) = %d, want 2", len(loops))
	}
	for _, loop := range loops {
		if len(loop) != 4 {
			t.Errorf("loop %v has %d vertices, want 4", loop, len(loop))
		}
	}
	if loops := meshtest.Cube().BoundaryLoops(); loops != nil {
		t.Errorf("closed cube has boundary loops %v", loops)
	}
}

func TestSignedVolume(t *testing.T) {
	tests := []struct {
		name string
		m    *mesh.Mesh
		want float64
	}{
		{"cube", meshtest.Cube(), 1},
		{"quad cube", meshtest.QuadCube(), 1},
		{"inverted cube", meshtest.Inverted(meshtest.Cube()), -1},
		{"tetrahedron", meshtest.Tetrahedron(), 1.0 / 6},
		{"translated cube", meshtest.Translated(meshtest.Cube(), mgl64.Vec3{100, -50, 7}), 1},
		{"scaled cube", meshtest.Scaled(meshtest.Cube(), 2), 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.SignedVolume(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SignedVolume() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestFaceReverseAndNormal(t *testing.T) {
	m := meshtest.QuadCube()
	top := m.Faces[1]
	if n := top.Normal(m.Vertices); !n.ApproxEqual(mgl64.Vec3{0, 0, 2}) {
		t.Errorf("top normal = %v, want [0 0 2]", n)
	}
	top.Reverse()
	if n := top.Normal(m.Vertices); !n.ApproxEqual(mgl64.Vec3{0, 0, -2}) {
		t.Errorf("reversed top normal = %v, want [0 0 -2]", n)
	}
}

func TestCompactOnly(t *testing.T) {
	m := meshtest.Cube()
	m.Vertices = append(m.Vertices, mgl64.Vec3{5, 5, 5}, mgl64.Vec3{6, 6, 6})

	// Vertex 2 is referenced and must survive; vertex 9 is orphaned.
	if removed := m.CompactOnly([]int{2, 9}); removed != 1 {
		t.Fatalf("CompactOnly() removed %d, want 1", removed)
	}
	if m.VertexCount() != 9 {
		t.Errorf("VertexCount() = %d, want 9", m.VertexCount())
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() after compaction: %v", err)
	}
	if removed := m.Compact(); removed != 1 {
		t.Errorf("Compact() removed %d, want 1", removed)
	}
}

func TestWarningUnwrapsKind(t *testing.T) {
	e := mesh.NewEdge(3, 1)
	w := mesh.NewWarning("stitch", mesh.ErrNonManifoldEdge, &e, "%d candidates", 3)
	if !errors.Is(w, mesh.ErrNonManifoldEdge) {
		t.Error("warning should unwrap to its kind")
	}
	if got, want := w.Error(), "stitch: non-manifold edge: 3 candidates (edge: (1,3))"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
