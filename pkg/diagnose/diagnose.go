// Package diagnose takes read-only health snapshots of a mesh between
// repair stages.
package diagnose

import (
	"fmt"
	"strings"

	"github.com/birukm3/femSIM/pkg/mesh"
	"github.com/birukm3/femSIM/pkg/orient"
)

// Phase names the point in the pipeline at which a snapshot was taken.
type Phase string

const (
	BeforeTriangulation Phase = "before-triangulation"
	AfterStitching      Phase = "after-stitching"
	AfterOrientation    Phase = "after-orientation"
)

// Snapshot is a point-in-time summary of mesh health.
type Snapshot struct {
	Phase             Phase   `json:"phase"`
	VertexCount       int     `json:"vertexCount"`
	EdgeCount         int     `json:"edgeCount"`
	FaceCount         int     `json:"faceCount"`
	BoundaryEdges     int     `json:"boundaryEdges"`
	NonManifoldEdges  int     `json:"nonManifoldEdges"`
	IsTriangleMesh    bool    `json:"isTriangleMesh"`
	IsClosed          bool    `json:"isClosed"`
	IsOutwardOriented bool    `json:"isOutwardOriented"`
	SignedVolume      float64 `json:"signedVolume"`
}

// Take computes a snapshot of m. It never modifies the mesh.
func Take(phase Phase, m *mesh.Mesh) Snapshot {
	em := m.Edges()
	return Snapshot{
		Phase:             phase,
		VertexCount:       m.VertexCount(),
		EdgeCount:         em.Len(),
		FaceCount:         m.FaceCount(),
		BoundaryEdges:     len(em.Boundary()),
		NonManifoldEdges:  len(em.NonManifold()),
		IsTriangleMesh:    m.IsTriangleMesh(),
		IsClosed:          m.IsClosed(),
		IsOutwardOriented: orient.IsOutwardOriented(m),
		SignedVolume:      m.SignedVolume(),
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf("%s: %d vertices, %d edges (%d boundary, %d non-manifold), %d faces, triangles=%t closed=%t outward=%t volume=%g",
		s.Phase, s.VertexCount, s.EdgeCount, s.BoundaryEdges, s.NonManifoldEdges, s.FaceCount,
		s.IsTriangleMesh, s.IsClosed, s.IsOutwardOriented, s.SignedVolume)
}

// Diff describes what changed between two snapshots, one clause per
// changed field. It returns "no change" when nothing did.
func Diff(a, b Snapshot) string {
	var parts []string
	counts := []struct {
		name     string
		from, to int
	}{
		{"vertices", a.VertexCount, b.VertexCount},
		{"edges", a.EdgeCount, b.EdgeCount},
		{"faces", a.FaceCount, b.FaceCount},
		{"boundary edges", a.BoundaryEdges, b.BoundaryEdges},
		{"non-manifold edges", a.NonManifoldEdges, b.NonManifoldEdges},
	}
	for _, c := range counts {
		if c.from != c.to {
			parts = append(parts, fmt.Sprintf("%s %d -> %d", c.name, c.from, c.to))
		}
	}
	flags := []struct {
		name     string
		from, to bool
	}{
		{"triangles", a.IsTriangleMesh, b.IsTriangleMesh},
		{"closed", a.IsClosed, b.IsClosed},
		{"outward", a.IsOutwardOriented, b.IsOutwardOriented},
	}
	for _, f := range flags {
		if f.from != f.to {
			parts = append(parts, fmt.Sprintf("%s %t -> %t", f.name, f.from, f.to))
		}
	}
	if len(parts) == 0 {
		return "no change"
	}
	return strings.Join(parts, ", ")
}
