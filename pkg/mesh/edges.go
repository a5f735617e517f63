package mesh

import "fmt"

// Edge is an unordered vertex pair stored with A < B so that (a,b) and
// (b,a) map to the same key.
type Edge struct {
	A, B int
}

// NewEdge returns the canonical edge for the vertex pair.
func NewEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

func (e Edge) String() string {
	return fmt.Sprintf("(%d,%d)", e.A, e.B)
}

// EdgeUse is one directed traversal of an edge by a face.
type EdgeUse struct {
	Face     int
	From, To int
}

// EdgeClass classifies an edge by how many face uses it has.
type EdgeClass int

const (
	EdgeBoundary    EdgeClass = iota // exactly one use
	EdgeInterior                     // exactly two uses
	EdgeNonManifold                  // three or more uses
)

func (c EdgeClass) String() string {
	switch c {
	case EdgeBoundary:
		return "boundary"
	case EdgeInterior:
		return "interior"
	case EdgeNonManifold:
		return "non-manifold"
	default:
		return "unknown"
	}
}

// EdgeMap is the derived edge adjacency of a mesh. Edges are kept in order
// of first appearance so that every pass over them is deterministic.
type EdgeMap struct {
	uses  map[Edge][]EdgeUse
	order []Edge
}

// Edges derives the edge adjacency of the current face list. The map is a
// snapshot; it is not updated when faces change.
func (m *Mesh) Edges() *EdgeMap {
	em := &EdgeMap{uses: make(map[Edge][]EdgeUse, len(m.Faces)*2)}
	for fi, f := range m.Faces {
		for j := range f {
			from, to := f[j], f[(j+1)%len(f)]
			e := NewEdge(from, to)
			if _, ok := em.uses[e]; !ok {
				em.order = append(em.order, e)
			}
			em.uses[e] = append(em.uses[e], EdgeUse{Face: fi, From: from, To: to})
		}
	}
	return em
}

// Len returns the number of distinct edges.
func (em *EdgeMap) Len() int {
	return len(em.order)
}

// All returns every edge in first-appearance order.
func (em *EdgeMap) All() []Edge {
	return em.order
}

// Uses returns the directed face uses of an edge.
func (em *EdgeMap) Uses(e Edge) []EdgeUse {
	return em.uses[e]
}

// Class classifies an edge. Unknown edges report as boundary with zero uses
// and should not be passed in.
func (em *EdgeMap) Class(e Edge) EdgeClass {
	switch n := len(em.uses[e]); {
	case n >= 3:
		return EdgeNonManifold
	case n == 2:
		return EdgeInterior
	default:
		return EdgeBoundary
	}
}

func (em *EdgeMap) filter(class EdgeClass) []Edge {
	var out []Edge
	for _, e := range em.order {
		if em.Class(e) == class {
			out = append(out, e)
		}
	}
	return out
}

// Boundary returns the edges used by exactly one face.
func (em *EdgeMap) Boundary() []Edge {
	return em.filter(EdgeBoundary)
}

// Interior returns the edges used by exactly two faces.
func (em *EdgeMap) Interior() []Edge {
	return em.filter(EdgeInterior)
}

// NonManifold returns the edges used by three or more faces.
func (em *EdgeMap) NonManifold() []Edge {
	return em.filter(EdgeNonManifold)
}

// BoundaryLoops chains the boundary half-edges of the mesh into loops of
// vertex indices, following the winding of the faces that own them. Chains
// that cannot be closed (for example at a non-manifold vertex) are returned
// as open sequences.
func (m *Mesh) BoundaryLoops() [][]int {
	em := m.Edges()
	var halfEdges []EdgeUse
	for _, e := range em.order {
		if uses := em.uses[e]; len(uses) == 1 {
			halfEdges = append(halfEdges, uses[0])
		}
	}
	if len(halfEdges) == 0 {
		return nil
	}

	outgoing := make(map[int][]int, len(halfEdges))
	for i, he := range halfEdges {
		outgoing[he.From] = append(outgoing[he.From], i)
	}
	used := make([]bool, len(halfEdges))

	next := func(v int) (int, bool) {
		for _, i := range outgoing[v] {
			if !used[i] {
				return i, true
			}
		}
		return 0, false
	}

	var loops [][]int
	for start := range halfEdges {
		if used[start] {
			continue
		}
		used[start] = true
		first := halfEdges[start].From
		loop := []int{first}
		cur := halfEdges[start].To
		for cur != first {
			loop = append(loop, cur)
			i, ok := next(cur)
			if !ok {
				break
			}
			used[i] = true
			cur = halfEdges[i].To
		}
		loops = append(loops, loop)
	}
	return loops
}
