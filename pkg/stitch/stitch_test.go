package stitch_test

import (
	"errors"
	"math"
	"testing"

	"github.com/birukm3/femSIM/pkg/mesh"
	"github.com/birukm3/femSIM/pkg/mesh/meshtest"
	"github.com/birukm3/femSIM/pkg/stitch"
	"github.com/go-gl/mathgl/mgl64"
)

func TestCubeHalvesClose(t *testing.T) {
	m := meshtest.CubeHalves()
	edgesBefore := m.EdgeCount()

	m, res := stitch.Stitch(m, stitch.Options{})
	if res.EdgesStitched != 4 {
		t.Errorf("EdgesStitched = %d, want 4", res.EdgesStitched)
	}
	if res.VerticesMerged != 4 {
		t.Errorf("VerticesMerged = %d, want 4", res.VerticesMerged)
	}
	if got := m.EdgeCount(); got != edgesBefore-4 {
		t.Errorf("EdgeCount() = %d, want %d", got, edgesBefore-4)
	}
	if !m.IsClosed() {
		t.Error("stitched halves should be closed")
	}
	if m.VertexCount() != 12 {
		t.Errorf("VertexCount() = %d, want 12", m.VertexCount())
	}
	if v := m.SignedVolume(); math.Abs(v-1) > 1e-9 {
		t.Errorf("SignedVolume() = %f, want 1", v)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestStitchIsIdempotent(t *testing.T) {
	inputs := map[string]*mesh.Mesh{
		"cube halves": meshtest.CubeHalves(),
		"soup":        meshtest.Soup(meshtest.Cube()),
		"clean cube":  meshtest.Cube(),
	}
	for name, m := range inputs {
		t.Run(name, func(t *testing.T) {
			m, _ = stitch.Stitch(m, stitch.Options{})
			v, e, f := m.VertexCount(), m.EdgeCount(), m.FaceCount()

			m, res := stitch.Stitch(m, stitch.Options{})
			if res.EdgesStitched != 0 || res.VerticesMerged != 0 {
				t.Errorf("second pass changed the mesh: %+v", res)
			}
			if m.VertexCount() != v || m.EdgeCount() != e || m.FaceCount() != f {
				t.Errorf("counts changed: got %d/%d/%d, want %d/%d/%d",
					m.VertexCount(), m.EdgeCount(), m.FaceCount(), v, e, f)
			}
		})
	}
}

func TestSoupWeldsBackToClosedCube(t *testing.T) {
	m := meshtest.Soup(meshtest.Cube())
	if m.VertexCount() != 36 {
		t.Fatalf("soup VertexCount() = %d, want 36", m.VertexCount())
	}

	m, res := stitch.Stitch(m, stitch.Options{})
	if res.EdgesStitched != 18 {
		t.Errorf("EdgesStitched = %d, want 18", res.EdgesStitched)
	}
	if res.VerticesMerged != 28 {
		t.Errorf("VerticesMerged = %d, want 28", res.VerticesMerged)
	}
	if m.VertexCount() != 8 {
		t.Errorf("VertexCount() = %d, want 8", m.VertexCount())
	}
	if !m.IsClosed() {
		t.Error("welded soup should be closed")
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestEpsilonMatching(t *testing.T) {
	jittered := func() *mesh.Mesh {
		m := meshtest.Soup(meshtest.Cube())
		for i := range m.Vertices {
			d := 1e-9 * float64(i)
			m.Vertices[i] = m.Vertices[i].Add(mgl64.Vec3{d, -d, d})
		}
		return m
	}

	tests := []struct {
		name       string
		eps        float64
		wantClosed bool
	}{
		{"exact", 0, false},
		{"too tight", 1e-12, false},
		{"tolerant", 1e-6, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, res := stitch.Stitch(jittered(), stitch.Options{Epsilon: tt.eps})
			if got := m.IsClosed(); got != tt.wantClosed {
				t.Errorf("IsClosed() = %v, want %v (stitched %d)", got, tt.wantClosed, res.EdgesStitched)
			}
		})
	}
}

func TestIncompatibleWindingLeftOpen(t *testing.T) {
	// Two triangles on either side of the x axis, both traversing the
	// shared edge from (0,0,0) to (1,0,0).
	m, err := mesh.New(
		[]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 0}, {1, 0, 0}, {0, -1, 0}},
		[]mesh.Face{{0, 1, 2}, {3, 4, 5}},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m, res := stitch.Stitch(m, stitch.Options{})
	if res.EdgesStitched != 0 {
		t.Errorf("EdgesStitched = %d, want 0", res.EdgesStitched)
	}
	if res.Incompatible != 1 {
		t.Errorf("Incompatible = %d, want 1", res.Incompatible)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], mesh.ErrUnresolvedBoundary) {
		t.Errorf("warnings = %v, want one unresolved boundary", res.Warnings)
	}
	if m.VertexCount() != 6 {
		t.Errorf("VertexCount() = %d, want 6", m.VertexCount())
	}
}

func TestAmbiguousGroupReported(t *testing.T) {
	// Three triangles hinged on coincident copies of the same edge.
	m, err := mesh.New(
		[]mgl64.Vec3{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
			{1, 0, 0}, {0, 0, 0}, {0, -1, 0},
			{0, 0, 0}, {1, 0, 0}, {0, 0, 1},
		},
		[]mesh.Face{{0, 1, 2}, {3, 4, 5}, {7, 6, 8}},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m, res := stitch.Stitch(m, stitch.Options{})
	if res.Ambiguous != 1 {
		t.Errorf("Ambiguous = %d, want 1", res.Ambiguous)
	}
	if res.EdgesStitched != 0 {
		t.Errorf("EdgesStitched = %d, want 0", res.EdgesStitched)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], mesh.ErrNonManifoldEdge) {
		t.Errorf("warnings = %v, want one non-manifold edge", res.Warnings)
	}
	if m.VertexCount() != 9 {
		t.Errorf("VertexCount() = %d, want 9", m.VertexCount())
	}
}

func TestMergeCollapsingFaceRefused(t *testing.T) {
	// Corners 0 and 2 coincide, so edges 0->1 and 1->2 match each other,
	// but unifying them would fold the triangle onto itself.
	m, err := mesh.New(
		[]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 0}},
		[]mesh.Face{{0, 1, 2}},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m, res := stitch.Stitch(m, stitch.Options{})
	if res.Refused != 1 {
		t.Errorf("Refused = %d, want 1", res.Refused)
	}
	if res.EdgesStitched != 0 {
		t.Errorf("EdgesStitched = %d, want 0", res.EdgesStitched)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestMergeAddingThirdFaceRefused(t *testing.T) {
	// Triangles 0 and 1 already share the edge 0-1. Vertices 4 and 5 copy
	// 0 and 2, so closing triangle 2 fully would lay its edge 1-4 on top
	// of that interior edge.
	m, err := mesh.New(
		[]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 0}, {0, 1, 0}},
		[]mesh.Face{{0, 1, 2}, {1, 0, 3}, {4, 5, 1}},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m, res := stitch.Stitch(m, stitch.Options{})
	if res.EdgesStitched != 1 {
		t.Errorf("EdgesStitched = %d, want 1", res.EdgesStitched)
	}
	if res.Refused != 1 {
		t.Errorf("Refused = %d, want 1", res.Refused)
	}
	var found bool
	for _, w := range res.Warnings {
		if errors.Is(w, mesh.ErrNonManifoldEdge) {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a non-manifold edge refusal", res.Warnings)
	}
	if nm := m.Edges().NonManifold(); len(nm) != 0 {
		t.Errorf("NonManifold() = %v, want none", nm)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestOpenBorderWithoutCounterpart(t *testing.T) {
	m := meshtest.RegularPolygon(5, 1)
	m, res := stitch.Stitch(m, stitch.Options{})
	if res.EdgesStitched != 0 || len(res.Warnings) != 0 {
		t.Errorf("Result = %+v, want nothing stitched and no warnings", res)
	}
	if m.FaceCount() != 1 {
		t.Errorf("FaceCount() = %d, want 1", m.FaceCount())
	}
}
