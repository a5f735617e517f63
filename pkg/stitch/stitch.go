// Package stitch closes cracks in a surface mesh by merging pairs of
// coincident boundary edges into shared interior edges.
package stitch

import (
	"sort"

	"github.com/birukm3/femSIM/pkg/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

const stage = "stitch"

// Options controls how boundary vertices are matched.
type Options struct {
	// Epsilon is the distance below which two boundary vertices are treated
	// as the same position. Zero requires exact coordinate equality.
	Epsilon float64 `json:"epsilon"`
}

// Result reports what a stitching pass changed.
type Result struct {
	EdgesStitched  int            `json:"edgesStitched"`
	VerticesMerged int            `json:"verticesMerged"`
	Ambiguous      int            `json:"ambiguous"`    // groups of more than two coincident edges
	Incompatible   int            `json:"incompatible"` // coincident pairs with the same winding
	Refused        int            `json:"refused"`      // merges that would collapse a face or add a third face to an edge
	Warnings       []mesh.Warning `json:"warnings,omitempty"`
}

// Stitch merges every pair of coincident boundary edges with opposite
// windings. Duplicate vertices of a merged pair are unified onto the lower
// index and the vertices left unreferenced are dropped. Groups of more than
// two coincident edges and pairs with equal windings are left open and
// reported as warnings. The mesh is modified in place and returned.
func Stitch(m *mesh.Mesh, opts Options) (*mesh.Mesh, Result) {
	var res Result
	em := m.Edges()

	var halfEdges []mesh.EdgeUse
	for _, e := range em.Boundary() {
		halfEdges = append(halfEdges, em.Uses(e)[0])
	}
	if len(halfEdges) == 0 {
		return m, res
	}

	class := classify(m, halfEdges, opts.Epsilon)
	groups, order := group(halfEdges, class)

	s := newStitcher(m)
	for _, key := range order {
		g := groups[key]
		switch {
		case len(g) == 1:
			// No counterpart; the pipeline reports open loops.
		case len(g) > 2:
			res.Ambiguous++
			e := mesh.NewEdge(g[0].From, g[0].To)
			res.Warnings = append(res.Warnings, mesh.NewWarning(stage, mesh.ErrNonManifoldEdge, &e,
				"%d coincident boundary edges, stitching any pair would be ambiguous", len(g)))
		default:
			a, b := g[0], g[1]
			e := mesh.NewEdge(a.From, a.To)
			if class[a.From] == class[b.From] {
				res.Incompatible++
				res.Warnings = append(res.Warnings, mesh.NewWarning(stage, mesh.ErrUnresolvedBoundary, &e,
					"incompatible winding with coincident edge %s", mesh.NewEdge(b.From, b.To)))
				continue
			}
			pairs := [][2]int{{a.From, b.To}, {a.To, b.From}}
			if kind := s.conflict(pairs); kind != nil {
				reason := "would collapse a face"
				if kind == mesh.ErrNonManifoldEdge {
					reason = "would give an edge a third face"
				}
				res.Refused++
				res.Warnings = append(res.Warnings, mesh.NewWarning(stage, kind, &e,
					"merge with %s %s", mesh.NewEdge(b.From, b.To), reason))
				continue
			}
			for _, p := range pairs {
				s.union(p[0], p[1])
			}
			res.EdgesStitched++
		}
	}

	if res.EdgesStitched == 0 {
		return m, res
	}
	var merged []int
	for v := range m.Vertices {
		if r := s.find(v); r != v {
			merged = append(merged, v)
		}
	}
	for _, f := range m.Faces {
		for j, idx := range f {
			f[j] = s.find(idx)
		}
	}
	res.VerticesMerged = len(merged)
	m.CompactOnly(merged)
	return m, res
}

// classify maps every boundary vertex to the lowest-numbered boundary vertex
// at the same position.
func classify(m *mesh.Mesh, halfEdges []mesh.EdgeUse, eps float64) map[int]int {
	class := make(map[int]int, len(halfEdges))
	var reps []int
	visit := func(v int) {
		if _, ok := class[v]; !ok {
			class[v] = -1
			reps = append(reps, v)
		}
	}
	for _, he := range halfEdges {
		visit(he.From)
		visit(he.To)
	}

	if eps <= 0 {
		exact := make(map[mgl64.Vec3]int, len(reps))
		for _, v := range sortedInts(reps) {
			p := m.Vertices[v]
			if r, ok := exact[p]; ok {
				class[v] = r
				continue
			}
			exact[p] = v
			class[v] = v
		}
		return class
	}

	g := newGrid(eps)
	for _, v := range sortedInts(reps) {
		p := m.Vertices[v]
		if r, ok := g.near(m.Vertices, p); ok {
			class[v] = r
			continue
		}
		g.insert(p, v)
		class[v] = v
	}
	return class
}

// group buckets boundary half-edges by the unordered pair of their
// endpoint classes. Half-edges whose endpoints fall into the same class
// are skipped; they cannot be matched to anything.
func group(halfEdges []mesh.EdgeUse, class map[int]int) (map[mesh.Edge][]mesh.EdgeUse, []mesh.Edge) {
	groups := make(map[mesh.Edge][]mesh.EdgeUse, len(halfEdges))
	var order []mesh.Edge
	for _, he := range halfEdges {
		a, b := class[he.From], class[he.To]
		if a == b {
			continue
		}
		key := mesh.NewEdge(a, b)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], he)
	}
	return groups, order
}

func sortedInts(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	return out
}
