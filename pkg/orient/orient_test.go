package orient_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/birukm3/femSIM/pkg/mesh"
	"github.com/birukm3/femSIM/pkg/mesh/meshtest"
	"github.com/birukm3/femSIM/pkg/orient"
	"github.com/go-gl/mathgl/mgl64"
)

func TestInvertedCubeIsReversed(t *testing.T) {
	m := meshtest.Inverted(meshtest.Cube())
	if orient.IsOutwardOriented(m) {
		t.Fatal("inverted cube reported as outward oriented")
	}

	m, res, err := orient.Orient(m, orient.DefaultOptions())
	if err != nil {
		t.Fatalf("Orient() error = %v", err)
	}
	if res.FacesFlipped != 12 {
		t.Errorf("FacesFlipped = %d, want 12", res.FacesFlipped)
	}
	if res.ComponentsReversed != 1 {
		t.Errorf("ComponentsReversed = %d, want 1", res.ComponentsReversed)
	}
	if !orient.IsOutwardOriented(m) {
		t.Error("cube is not outward oriented after Orient")
	}
	if !reflect.DeepEqual(m.Faces, meshtest.Cube().Faces) {
		t.Errorf("faces = %v, want every face of the inverted cube reversed", m.Faces)
	}
}

func TestOrientIsFixedPoint(t *testing.T) {
	inputs := map[string]*mesh.Mesh{
		"cube":          meshtest.Cube(),
		"inverted cube": meshtest.Inverted(meshtest.Cube()),
		"quad cube":     meshtest.Inverted(meshtest.QuadCube()),
		"tetrahedron":   meshtest.Tetrahedron(),
	}
	for name, m := range inputs {
		t.Run(name, func(t *testing.T) {
			m, _, err := orient.Orient(m, orient.DefaultOptions())
			if err != nil {
				t.Fatalf("first Orient() error = %v", err)
			}
			if !orient.IsOutwardOriented(m) {
				t.Fatal("not outward oriented after first pass")
			}
			before := m.Clone()

			m, res, err := orient.Orient(m, orient.DefaultOptions())
			if err != nil {
				t.Fatalf("second Orient() error = %v", err)
			}
			if res.FacesFlipped != 0 {
				t.Errorf("second pass flipped %d faces", res.FacesFlipped)
			}
			if !reflect.DeepEqual(m.Faces, before.Faces) {
				t.Error("second pass changed the faces")
			}
		})
	}
}

func TestInconsistentFacesAreMadeConsistent(t *testing.T) {
	m := meshtest.Cube()
	for _, fi := range []int{0, 3, 7, 8} {
		m.Faces[fi].Reverse()
	}
	if orient.IsOutwardOriented(m) {
		t.Fatal("mixed windings reported as outward oriented")
	}

	m, res, err := orient.Orient(m, orient.DefaultOptions())
	if err != nil {
		t.Fatalf("Orient() error = %v", err)
	}
	if !orient.IsOutwardOriented(m) {
		t.Error("cube is not outward oriented after Orient")
	}
	if res.FacesFlipped != 4 {
		t.Errorf("FacesFlipped = %d, want 4", res.FacesFlipped)
	}
	if v := m.SignedVolume(); math.Abs(v-1) > 1e-9 {
		t.Errorf("SignedVolume() = %f, want 1", v)
	}
}

func TestDegenerateMeshLeftUntouched(t *testing.T) {
	flat := meshtest.RegularPolygon(6, 1)
	flat.Faces = append(flat.Faces, mesh.Face{0, 1, 2})

	tests := []struct {
		name string
		m    *mesh.Mesh
	}{
		{"no faces", &mesh.Mesh{Vertices: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}}},
		{"empty", &mesh.Mesh{}},
		{"flat patch", flat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.m.Clone()
			m, _, err := orient.Orient(tt.m, orient.DefaultOptions())
			if !errors.Is(err, mesh.ErrDegenerateMesh) {
				t.Fatalf("Orient() error = %v, want ErrDegenerateMesh", err)
			}
			if !reflect.DeepEqual(m.Faces, before.Faces) {
				t.Error("degenerate mesh was modified")
			}
		})
	}
}

func TestNonManifoldFinReported(t *testing.T) {
	cube := meshtest.Inverted(meshtest.Cube())
	// A fin hanging off the cube edge between vertices 0 and 1.
	cube.Vertices = append(cube.Vertices, mgl64.Vec3{0.5, -1, -0.5})
	cube.Faces = append(cube.Faces, mesh.Face{0, 1, 8})
	if err := cube.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	m, res, err := orient.Orient(cube, orient.DefaultOptions())
	if err != nil {
		t.Fatalf("Orient() error = %v", err)
	}
	found := false
	for _, w := range res.Warnings {
		if errors.Is(w, mesh.ErrNonManifoldEdge) {
			found = true
			if w.Edge == nil || *w.Edge != mesh.NewEdge(0, 1) {
				t.Errorf("warning edge = %v, want (0,1)", w.Edge)
			}
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a non-manifold edge", res.Warnings)
	}
	if orient.IsOutwardOriented(m) {
		t.Error("mesh with a non-manifold edge reported as outward oriented")
	}

	// The cube faces alone still bound a positive volume.
	vols := m.FaceSignedVolumes()
	var cubeVol float64
	for fi := 0; fi < 12; fi++ {
		cubeVol += vols[fi]
	}
	if math.Abs(cubeVol-1) > 1e-9 {
		t.Errorf("cube volume = %f, want 1", cubeVol)
	}
	t.Logf("components=%d flipped=%d warnings=%d", res.Components, res.FacesFlipped, len(res.Warnings))
}

func TestNestedCavity(t *testing.T) {
	outer := meshtest.Translated(meshtest.Scaled(meshtest.Cube(), 3), mgl64.Vec3{-1, -1, -1})
	inner := meshtest.Cube()

	tests := []struct {
		name     string
		nesting  bool
		input    *mesh.Mesh
		wantVol  float64
		reversed int
	}{
		{"both outward, nesting", true, meshtest.Merge(outer, inner), 26, 1},
		{"both inward, nesting", true, meshtest.Merge(meshtest.Inverted(outer), meshtest.Inverted(inner)), 26, 1},
		{"both outward, no nesting", false, meshtest.Merge(outer, inner), 28, 0},
		{"both inward, no nesting", false, meshtest.Merge(meshtest.Inverted(outer), meshtest.Inverted(inner)), 28, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, res, err := orient.Orient(tt.input, orient.Options{Nesting: tt.nesting})
			if err != nil {
				t.Fatalf("Orient() error = %v", err)
			}
			if res.Components != 2 {
				t.Errorf("Components = %d, want 2", res.Components)
			}
			if res.ComponentsReversed != tt.reversed {
				t.Errorf("ComponentsReversed = %d, want %d", res.ComponentsReversed, tt.reversed)
			}
			if v := m.SignedVolume(); math.Abs(v-tt.wantVol) > 1e-9 {
				t.Errorf("SignedVolume() = %f, want %f", v, tt.wantVol)
			}
		})
	}
}

// mobius returns a strip of n quads with a half twist.
func mobius(n int) *mesh.Mesh {
	var vertices []mgl64.Vec3
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		phi := theta / 2
		c := mgl64.Vec3{3 * math.Cos(theta), 3 * math.Sin(theta), 0}
		w := mgl64.Vec3{math.Cos(phi) * math.Cos(theta), math.Cos(phi) * math.Sin(theta), math.Sin(phi)}.Mul(0.5)
		vertices = append(vertices, c.Add(w), c.Sub(w))
	}
	var faces []mesh.Face
	for i := 0; i+1 < n; i++ {
		faces = append(faces, mesh.Face{2 * i, 2*i + 1, 2*i + 3, 2*i + 2})
	}
	// Closing quad: after half a turn the two rails have swapped.
	faces = append(faces, mesh.Face{2 * (n - 1), 2*(n-1) + 1, 0, 1})
	m, err := mesh.New(vertices, faces)
	if err != nil {
		panic(err)
	}
	return m
}

func TestNonOrientableComponentLeftUnchanged(t *testing.T) {
	strip := mobius(8)
	m := meshtest.Merge(meshtest.Inverted(meshtest.Cube()), strip)
	stripFaces := m.Clone().Faces[12:]

	m, res, err := orient.Orient(m, orient.DefaultOptions())
	if err != nil {
		t.Fatalf("Orient() error = %v", err)
	}
	found := false
	for _, w := range res.Warnings {
		if errors.Is(w, mesh.ErrNonOrientable) {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a non-orientable component", res.Warnings)
	}
	if !reflect.DeepEqual(m.Faces[12:], stripFaces) {
		t.Error("non-orientable strip was modified")
	}
	if res.ComponentsReversed != 1 {
		t.Errorf("ComponentsReversed = %d, want 1 (the cube)", res.ComponentsReversed)
	}
}
