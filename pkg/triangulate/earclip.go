package triangulate

import (
	"math"

	"github.com/birukm3/femSIM/pkg/mesh"
	"github.com/rclancey/earcut"
)

// areaEpsilon is the relative 2D cross-product magnitude below which a
// corner is treated as straight.
const areaEpsilon = 1e-12

type point2 struct {
	X, Y float64
}

func cross2(o, a, b point2) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// project maps the face onto the coordinate plane most orthogonal to its
// Newell normal. The second return value is false for degenerate faces.
func project(m *mesh.Mesh, f mesh.Face) ([]point2, bool) {
	n := f.Normal(m.Vertices)
	ax, ay, az := math.Abs(n[0]), math.Abs(n[1]), math.Abs(n[2])
	if ax+ay+az == 0 {
		return nil, false
	}
	pts := make([]point2, len(f))
	for i, idx := range f {
		v := m.Vertices[idx]
		switch {
		case az >= ax && az >= ay:
			pts[i] = point2{v[0], v[1]}
		case ax >= ay:
			pts[i] = point2{v[1], v[2]}
		default:
			pts[i] = point2{v[2], v[0]}
		}
	}
	return pts, true
}

func signedArea2(pts []point2) float64 {
	var a float64
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// scale returns a length representative of the polygon size, used to make
// the straight-corner test relative.
func scale(pts []point2) float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return math.Max(maxX-minX, maxY-minY)
}

// isConvex reports whether the projected ring turns one way only and winds
// exactly once. Straight corners are allowed.
func isConvex(pts []point2, orient float64) bool {
	eps := areaEpsilon * scale(pts) * scale(pts)
	var turning float64
	for i := range pts {
		a := pts[(i+len(pts)-1)%len(pts)]
		b := pts[i]
		c := pts[(i+1)%len(pts)]
		cr := cross2(a, b, c)
		if cr*orient < -eps {
			return false
		}
		in := math.Atan2(b.Y-a.Y, b.X-a.X)
		out := math.Atan2(c.Y-b.Y, c.X-b.X)
		d := out - in
		for d > math.Pi {
			d -= 2 * math.Pi
		}
		for d < -math.Pi {
			d += 2 * math.Pi
		}
		turning += d
	}
	return math.Abs(math.Abs(turning)-2*math.Pi) < 1e-6
}

// earClip triangulates a polygon with more than three vertices. Convex
// polygons are fanned from the first vertex. Non-convex polygons go to the
// earcut library; if it drops straight-corner vertices the local clipper is
// used instead. The second return value is false when every method failed.
func earClip(m *mesh.Mesh, f mesh.Face) ([]mesh.Face, bool) {
	pts, ok := project(m, f)
	if !ok {
		return nil, false
	}
	orient := signedArea2(pts)
	eps := areaEpsilon * scale(pts) * scale(pts)
	if math.Abs(orient) <= eps {
		return nil, false
	}
	if isConvex(pts, orient) {
		return fan(f), true
	}
	if tris, ok := earcutFace(f, pts, orient); ok {
		return tris, true
	}
	return clipEars(f, pts, orient)
}

// earcutFace runs the earcut library over the projected ring and maps its
// triangles back to vertex indices with the winding of the polygon.
func earcutFace(f mesh.Face, pts []point2, orient float64) ([]mesh.Face, bool) {
	coords := make([]float64, 0, len(pts)*2)
	for _, p := range pts {
		coords = append(coords, p.X, p.Y)
	}
	indices, err := earcut.Earcut(coords, nil, 2)
	if err != nil || len(indices) != 3*(len(f)-2) {
		return nil, false
	}
	tris := make([]mesh.Face, 0, len(f)-2)
	for i := 0; i < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if cross2(pts[a], pts[b], pts[c])*orient < 0 {
			b, c = c, b
		}
		tris = append(tris, mesh.Face{f[a], f[b], f[c]})
	}
	return tris, true
}

// clipEars is a quadratic ear clipper over the projected ring. The scan for
// each ear starts at the second remaining vertex so that a convex ring
// degenerates to a fan from the first vertex.
func clipEars(f mesh.Face, pts []point2, orient float64) ([]mesh.Face, bool) {
	eps := areaEpsilon * scale(pts) * scale(pts)
	ring := make([]int, len(f))
	for i := range ring {
		ring[i] = i
	}
	tris := make([]mesh.Face, 0, len(f)-2)

	for len(ring) > 3 {
		clipped := false
		for k := 0; k < len(ring); k++ {
			i := (k + 1) % len(ring)
			prev := ring[(i+len(ring)-1)%len(ring)]
			cur := ring[i]
			next := ring[(i+1)%len(ring)]
			if cross2(pts[prev], pts[cur], pts[next])*orient <= eps {
				continue
			}
			if containsOther(pts, ring, prev, cur, next, orient) {
				continue
			}
			tris = append(tris, mesh.Face{f[prev], f[cur], f[next]})
			ring = append(ring[:i], ring[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return nil, false
		}
	}
	tris = append(tris, mesh.Face{f[ring[0]], f[ring[1]], f[ring[2]]})
	return tris, true
}

// containsOther reports whether any ring vertex other than the candidate
// ear's corners lies inside or on the ear triangle.
func containsOther(pts []point2, ring []int, a, b, c int, orient float64) bool {
	pa, pb, pc := pts[a], pts[b], pts[c]
	for _, r := range ring {
		if r == a || r == b || r == c {
			continue
		}
		p := pts[r]
		if p == pa || p == pb || p == pc {
			continue
		}
		d1 := cross2(pa, pb, p) * orient
		d2 := cross2(pb, pc, p) * orient
		d3 := cross2(pc, pa, p) * orient
		if d1 >= 0 && d2 >= 0 && d3 >= 0 {
			return true
		}
	}
	return false
}
