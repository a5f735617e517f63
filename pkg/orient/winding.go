package orient

import (
	"math"

	"github.com/birukm3/femSIM/pkg/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// nestingDepth counts, for every closed component, how many other closed
// components enclose it. Open components always get depth 0.
func nestingDepth(m *mesh.Mesh, flip []bool, comps []component) []int {
	depth := make([]int, len(comps))
	for ci, c := range comps {
		if !c.closed || c.nonOrientable {
			continue
		}
		p := centroid(m, m.Faces[c.faces[0]])
		for cj, other := range comps {
			if cj == ci || !other.closed || other.nonOrientable {
				continue
			}
			if math.Abs(windingNumber(m, flip, other.faces, p)) > 0.5 {
				depth[ci]++
			}
		}
	}
	return depth
}

func centroid(m *mesh.Mesh, f mesh.Face) mgl64.Vec3 {
	var c mgl64.Vec3
	for _, idx := range f {
		c = c.Add(m.Vertices[idx])
	}
	return c.Mul(1 / float64(len(f)))
}

// windingNumber returns the generalized winding number of the faces around
// p: the sum of the signed solid angles they subtend, divided by 4π. It is
// ±1 inside a closed surface and 0 outside.
func windingNumber(m *mesh.Mesh, flip []bool, faces []int, p mgl64.Vec3) float64 {
	var omega float64
	for _, fi := range faces {
		f := m.Faces[fi]
		a := m.Vertices[f[0]].Sub(p)
		var fo float64
		for j := 1; j+1 < len(f); j++ {
			b := m.Vertices[f[j]].Sub(p)
			c := m.Vertices[f[j+1]].Sub(p)
			fo += solidAngle(a, b, c)
		}
		if flip[fi] {
			fo = -fo
		}
		omega += fo
	}
	return omega / (4 * math.Pi)
}

// solidAngle is the signed solid angle of triangle abc seen from the origin
// (Van Oosterom and Strackee).
func solidAngle(a, b, c mgl64.Vec3) float64 {
	la, lb, lc := a.Len(), b.Len(), c.Len()
	num := a.Dot(b.Cross(c))
	den := la*lb*lc + a.Dot(b)*lc + b.Dot(c)*la + c.Dot(a)*lb
	return 2 * math.Atan2(num, den)
}
