// Package triangulate replaces polygonal faces with triangles built from the
// polygon's own vertices. No vertex is ever added or moved.
package triangulate

import (
	"fmt"
	"strings"

	"github.com/birukm3/femSIM/pkg/mesh"
)

// Policy selects how a polygon with more than three vertices is split.
type Policy int

const (
	// EarClip clips ears from the polygon projected onto its best-fit
	// plane. Convex polygons produce the same triangles as Fan.
	EarClip Policy = iota
	// Fan connects the first vertex to every other edge. Correct only for
	// convex polygons; non-convex input may yield inverted triangles.
	Fan
)

func (p Policy) String() string {
	switch p {
	case EarClip:
		return "ear-clip"
	case Fan:
		return "fan"
	default:
		return "unknown"
	}
}

// ParsePolicy converts a policy name ("ear-clip", "fan") into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ear-clip", "earclip", "ear_clip", "ear":
		return EarClip, nil
	case "fan":
		return Fan, nil
	}
	return 0, fmt.Errorf("triangulate: unknown policy %q, expected ear-clip or fan", s)
}

// MarshalText encodes the policy by name.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a policy name accepted by ParsePolicy.
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Result reports what a triangulation pass changed.
type Result struct {
	FacesTriangulated int `json:"facesTriangulated"` // polygons with more than 3 vertices
	TrianglesAdded    int `json:"trianglesAdded"`    // net increase in face count
	Fallbacks         int `json:"fallbacks"`         // ear clipping failed, fan used instead
}

// Triangulate splits every face with more than three vertices into n-2
// triangles with the same winding. Triangles keep their position in the
// face list; the triangles of a split polygon take its place in order.
// The mesh is modified in place and returned.
func Triangulate(m *mesh.Mesh, policy Policy) (*mesh.Mesh, Result) {
	var res Result
	if m.IsTriangleMesh() {
		return m, res
	}

	faces := make([]mesh.Face, 0, len(m.Faces)*2)
	for _, f := range m.Faces {
		if len(f) == 3 {
			faces = append(faces, f)
			continue
		}
		res.FacesTriangulated++

		var tris []mesh.Face
		switch policy {
		case Fan:
			tris = fan(f)
		default:
			var ok bool
			tris, ok = earClip(m, f)
			if !ok {
				tris = fan(f)
				res.Fallbacks++
			}
		}
		res.TrianglesAdded += len(tris) - 1
		faces = append(faces, tris...)
	}
	m.Faces = faces
	return m, res
}

// fan triangulates f from its first vertex.
func fan(f mesh.Face) []mesh.Face {
	tris := make([]mesh.Face, 0, len(f)-2)
	for i := 1; i+1 < len(f); i++ {
		tris = append(tris, mesh.Face{f[0], f[i], f[i+1]})
	}
	return tris
}
