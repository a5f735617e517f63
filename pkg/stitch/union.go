package stitch

import (
	"math"

	"github.com/birukm3/femSIM/pkg/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// stitcher tracks pending vertex unifications. Faces are only rewritten
// once every group has been decided.
type stitcher struct {
	m        *mesh.Mesh
	parent   []int
	members  map[int][]int // root -> vertices it absorbed, root included
	incident [][]int       // vertex -> faces using it
}

func newStitcher(m *mesh.Mesh) *stitcher {
	s := &stitcher{
		m:        m,
		parent:   make([]int, len(m.Vertices)),
		members:  make(map[int][]int),
		incident: make([][]int, len(m.Vertices)),
	}
	for i := range s.parent {
		s.parent[i] = i
	}
	for fi, f := range m.Faces {
		for _, idx := range f {
			s.incident[idx] = append(s.incident[idx], fi)
		}
	}
	return s
}

func (s *stitcher) find(v int) int {
	for s.parent[v] != v {
		s.parent[v] = s.parent[s.parent[v]]
		v = s.parent[v]
	}
	return v
}

func (s *stitcher) group(root int) []int {
	if g, ok := s.members[root]; ok {
		return g
	}
	return []int{root}
}

// union joins the classes of a and b. The lower root survives.
func (s *stitcher) union(a, b int) {
	ra, rb := s.find(a), s.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	s.parent[rb] = ra
	s.members[ra] = append(s.group(ra), s.group(rb)...)
	delete(s.members, rb)
}

// conflict reports why unifying every pair must be refused. It returns
// mesh.ErrUnresolvedBoundary when some face would get two corners on the
// same vertex and mesh.ErrNonManifoldEdge when an edge would gain a third
// face. A safe merge returns nil.
func (s *stitcher) conflict(pairs [][2]int) error {
	remap := make(map[int]int)
	find := func(v int) int {
		r := s.find(v)
		if t, ok := remap[r]; ok {
			return t
		}
		return r
	}
	for _, p := range pairs {
		ra, rb := find(p[0]), find(p[1])
		if ra == rb {
			continue
		}
		if rb < ra {
			ra, rb = rb, ra
		}
		for k, t := range remap {
			if t == rb {
				remap[k] = ra
			}
		}
		remap[rb] = ra
	}
	if len(remap) == 0 {
		return nil
	}

	merged := make(map[int]bool, len(remap))
	var faces []int
	checked := make(map[int]bool)
	for r, t := range remap {
		merged[t] = true
		for _, root := range []int{r, t} {
			for _, v := range s.group(root) {
				for _, fi := range s.incident[v] {
					if !checked[fi] {
						checked[fi] = true
						faces = append(faces, fi)
					}
				}
			}
		}
	}

	// Every face using an edge at a merged vertex is in faces, so the
	// counts below are exact for those edges.
	before := make(map[mesh.Edge]int)
	after := make(map[mesh.Edge]int)
	prior := make(map[mesh.Edge]int)
	for _, fi := range faces {
		f := s.m.Faces[fi]
		roots := make(map[int]bool, len(f))
		for j, idx := range f {
			r := find(idx)
			if roots[r] {
				return mesh.ErrUnresolvedBoundary
			}
			roots[r] = true

			next := f[(j+1)%len(f)]
			before[mesh.NewEdge(s.find(idx), s.find(next))]++
			after[mesh.NewEdge(r, find(next))]++
		}
	}
	for _, fi := range faces {
		f := s.m.Faces[fi]
		for j, idx := range f {
			next := f[(j+1)%len(f)]
			b := mesh.NewEdge(s.find(idx), s.find(next))
			a := mesh.NewEdge(find(idx), find(next))
			if before[b] > prior[a] {
				prior[a] = before[b]
			}
		}
	}
	for e, n := range after {
		if !merged[e.A] && !merged[e.B] {
			continue
		}
		// Edges that were already non-manifold are reported by orient.
		if n > 2 && n > prior[e] {
			return mesh.ErrNonManifoldEdge
		}
	}
	return nil
}

// grid is a uniform spatial hash with cells of size eps. A query inspects
// the 27 cells around the point.
type grid struct {
	eps   float64
	cells map[[3]int64][]int
}

func newGrid(eps float64) *grid {
	return &grid{eps: eps, cells: make(map[[3]int64][]int)}
}

func (g *grid) cell(p mgl64.Vec3) [3]int64 {
	return [3]int64{
		int64(math.Floor(p[0] / g.eps)),
		int64(math.Floor(p[1] / g.eps)),
		int64(math.Floor(p[2] / g.eps)),
	}
}

func (g *grid) insert(p mgl64.Vec3, v int) {
	c := g.cell(p)
	g.cells[c] = append(g.cells[c], v)
}

// near returns the first inserted vertex within eps of p.
func (g *grid) near(vertices []mgl64.Vec3, p mgl64.Vec3) (int, bool) {
	c := g.cell(p)
	best, found := 0, false
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, v := range g.cells[[3]int64{c[0] + dx, c[1] + dy, c[2] + dz}] {
					if vertices[v].Sub(p).Len() > g.eps {
						continue
					}
					if !found || v < best {
						best, found = v, true
					}
				}
			}
		}
	}
	return best, found
}
