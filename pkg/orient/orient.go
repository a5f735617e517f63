// Package orient gives every connected component of a surface mesh a
// consistent winding and turns it so the enclosed volume is positive.
package orient

import (
	"fmt"
	"math"

	"github.com/birukm3/femSIM/pkg/mesh"
)

const stage = "orient"

// Options controls the orientation pass.
type Options struct {
	// Nesting orients a closed component that lies inside an odd number of
	// other closed components inward, so that it bounds a cavity.
	Nesting bool `json:"nesting"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{Nesting: true}
}

// Result reports what an orientation pass changed.
type Result struct {
	Components         int            `json:"components"`
	FacesFlipped       int            `json:"facesFlipped"`
	ComponentsReversed int            `json:"componentsReversed"`
	Warnings           []mesh.Warning `json:"warnings,omitempty"`
}

// IsOutwardOriented reports whether every edge is manifold, every interior
// edge is traversed in opposite directions by its two faces, and the total
// signed volume is positive.
func IsOutwardOriented(m *mesh.Mesh) bool {
	if len(m.Faces) == 0 {
		return false
	}
	em := m.Edges()
	for _, e := range em.All() {
		uses := em.Uses(e)
		if len(uses) > 2 {
			return false
		}
		if len(uses) == 2 && uses[0].From == uses[1].From {
			return false
		}
	}
	return m.SignedVolume() > m.VolumeTolerance()
}

type neighbor struct {
	face int
	same bool // both faces traverse the shared edge in the same direction
	edge mesh.Edge
}

// component is one connected set of faces reached across manifold edges.
type component struct {
	faces         []int
	volume        float64 // signed volume after the relative flips
	closed        bool
	nonOrientable bool
	conflict      *mesh.Edge // first edge where the walk contradicted itself
}

// Orient makes the winding of every face consistent with its neighbours
// and reverses each component whose enclosed volume comes out negative.
// Non-manifold edges are never crossed; they and non-orientable components
// are reported as warnings and the affected faces are left as they are.
//
// Orient fails with an error wrapping mesh.ErrDegenerateMesh, leaving the
// mesh untouched, when the mesh has no faces or encloses no volume. The
// mesh is modified in place and returned.
func Orient(m *mesh.Mesh, opts Options) (*mesh.Mesh, Result, error) {
	var res Result
	if len(m.Faces) == 0 {
		return m, res, fmt.Errorf("orient: mesh has no faces: %w", mesh.ErrDegenerateMesh)
	}

	em := m.Edges()
	adj := make([][]neighbor, len(m.Faces))
	for _, e := range em.All() {
		uses := em.Uses(e)
		switch {
		case len(uses) > 2:
			res.Warnings = append(res.Warnings, mesh.NewWarning(stage, mesh.ErrNonManifoldEdge, &e,
				"edge shared by %d faces, winding not propagated across it", len(uses)))
		case len(uses) == 2 && uses[0].Face != uses[1].Face:
			a, b := uses[0], uses[1]
			same := a.From == b.From
			adj[a.Face] = append(adj[a.Face], neighbor{face: b.Face, same: same, edge: e})
			adj[b.Face] = append(adj[b.Face], neighbor{face: a.Face, same: same, edge: e})
		}
	}

	flip, compOf, comps := propagate(adj)
	for ci := range comps {
		if comps[ci].nonOrientable {
			res.Warnings = append(res.Warnings, mesh.NewWarning(stage, mesh.ErrNonOrientable, comps[ci].conflict,
				"component of %d faces has no consistent winding, left unchanged", len(comps[ci].faces)))
		}
	}
	res.Components = len(comps)

	faceVol := m.FaceSignedVolumes()
	var total float64
	for ci := range comps {
		c := &comps[ci]
		for _, f := range c.faces {
			if flip[f] {
				c.volume -= faceVol[f]
			} else {
				c.volume += faceVol[f]
			}
		}
		c.closed = isClosed(em, m, c.faces)
		total += math.Abs(c.volume)
	}
	tol := m.VolumeTolerance()
	if total <= tol {
		return m, res, fmt.Errorf("orient: signed volume %g is within tolerance %g: %w", total, tol, mesh.ErrDegenerateMesh)
	}

	var depth []int
	if opts.Nesting {
		depth = nestingDepth(m, flip, comps)
	}

	reverse := make([]bool, len(comps))
	skip := make([]bool, len(comps))
	for ci, c := range comps {
		if c.nonOrientable {
			skip[ci] = true
			continue
		}
		if math.Abs(c.volume) <= tol {
			skip[ci] = true
			res.Warnings = append(res.Warnings, mesh.NewWarning(stage, mesh.ErrDegenerateMesh, nil,
				"component of %d faces encloses no volume, winding left unchanged", len(c.faces)))
			continue
		}
		wantPositive := true
		if depth != nil && depth[ci]%2 == 1 {
			wantPositive = false
		}
		reverse[ci] = (c.volume > 0) != wantPositive
		if reverse[ci] {
			res.ComponentsReversed++
		}
	}

	for f, face := range m.Faces {
		ci := compOf[f]
		if skip[ci] {
			continue
		}
		if flip[f] != reverse[ci] {
			face.Reverse()
			res.FacesFlipped++
		}
	}
	return m, res, nil
}

// propagate walks each connected component breadth first from its lowest
// face and decides for every face whether it must be flipped relative to
// the seed.
func propagate(adj [][]neighbor) ([]bool, []int, []component) {
	flip := make([]bool, len(adj))
	compOf := make([]int, len(adj))
	for i := range compOf {
		compOf[i] = -1
	}
	var comps []component

	queue := make([]int, 0, len(adj))
	for seed := range adj {
		if compOf[seed] != -1 {
			continue
		}
		ci := len(comps)
		comps = append(comps, component{})
		c := &comps[ci]

		compOf[seed] = ci
		queue = append(queue[:0], seed)
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			c.faces = append(c.faces, f)
			for _, n := range adj[f] {
				want := flip[f] != n.same
				if compOf[n.face] == -1 {
					compOf[n.face] = ci
					flip[n.face] = want
					queue = append(queue, n.face)
					continue
				}
				if flip[n.face] != want && !c.nonOrientable {
					e := n.edge
					c.nonOrientable = true
					c.conflict = &e
				}
			}
		}
	}
	return flip, compOf, comps
}

// isClosed reports whether every edge of the given faces has exactly two
// uses in the whole mesh.
func isClosed(em *mesh.EdgeMap, m *mesh.Mesh, faces []int) bool {
	for _, fi := range faces {
		f := m.Faces[fi]
		for j := range f {
			if len(em.Uses(mesh.NewEdge(f[j], f[(j+1)%len(f)]))) != 2 {
				return false
			}
		}
	}
	return true
}
