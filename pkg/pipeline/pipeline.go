// Package pipeline runs the repair stages in order over a single mesh:
// triangulation, border stitching and orientation, with a diagnostics
// snapshot before triangulation, after stitching and after orientation.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/birukm3/femSIM/pkg/diagnose"
	"github.com/birukm3/femSIM/pkg/mesh"
	"github.com/birukm3/femSIM/pkg/orient"
	"github.com/birukm3/femSIM/pkg/stitch"
	"github.com/birukm3/femSIM/pkg/triangulate"
)

// Config selects and tunes the stages of a run.
type Config struct {
	Triangulate bool               `json:"triangulate"`
	Policy      triangulate.Policy `json:"policy"`
	Stitch      bool               `json:"stitch"`
	Epsilon     float64            `json:"epsilon"`
	Orient      bool               `json:"orient"`
	Nesting     bool               `json:"nesting"`

	// Logger receives one line per stage. Nil discards the output.
	Logger *log.Logger `json:"-"`
}

// DefaultConfig enables every stage with ear clipping, exact-position
// stitching and cavity-aware orientation.
func DefaultConfig() Config {
	return Config{
		Triangulate: true,
		Policy:      triangulate.EarClip,
		Stitch:      true,
		Orient:      true,
		Nesting:     true,
	}
}

// Report collects what every stage did. It is filled in even when the
// orientation stage fails.
type Report struct {
	Triangulation triangulate.Result  `json:"triangulation"`
	Stitching     stitch.Result       `json:"stitching"`
	Orientation   orient.Result       `json:"orientation"`
	Snapshots     []diagnose.Snapshot `json:"snapshots"`
	Warnings      []mesh.Warning      `json:"warnings"`

	// OrientErr is set when orientation could not be decided; the
	// triangulated and stitched mesh is still returned.
	OrientErr   error  `json:"-"`
	OrientError string `json:"orientError,omitempty"`
}

// Snapshot returns the snapshot taken at the given phase.
func (r *Report) Snapshot(phase diagnose.Phase) (diagnose.Snapshot, bool) {
	for _, s := range r.Snapshots {
		if s.Phase == phase {
			return s, true
		}
	}
	return diagnose.Snapshot{}, false
}

// Run repairs m in place and returns it with a report. Structural problems
// (an error wrapping mesh.ErrInvalidTopology) abort the run before any
// stage. A degenerate mesh only aborts orientation and is recorded in
// Report.OrientErr; every other problem becomes a warning.
func Run(m *mesh.Mesh, cfg Config) (*mesh.Mesh, *Report, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if err := m.Validate(); err != nil {
		return m, nil, fmt.Errorf("pipeline: %w", err)
	}

	r := &Report{Warnings: []mesh.Warning{}}
	r.Snapshots = append(r.Snapshots, diagnose.Take(diagnose.BeforeTriangulation, m))
	logger.Printf("input: %s", r.Snapshots[0])

	if cfg.Triangulate && !m.IsTriangleMesh() {
		m, r.Triangulation = triangulate.Triangulate(m, cfg.Policy)
		logger.Printf("triangulate (%s): %d faces split, %d triangles added, %d fallbacks",
			cfg.Policy, r.Triangulation.FacesTriangulated, r.Triangulation.TrianglesAdded, r.Triangulation.Fallbacks)
	}

	if cfg.Stitch {
		m, r.Stitching = stitch.Stitch(m, stitch.Options{Epsilon: cfg.Epsilon})
		r.Warnings = append(r.Warnings, r.Stitching.Warnings...)
		logger.Printf("stitch: %d edges stitched, %d vertices merged, %d ambiguous, %d incompatible",
			r.Stitching.EdgesStitched, r.Stitching.VerticesMerged, r.Stitching.Ambiguous, r.Stitching.Incompatible)
	}
	if !m.IsClosed() {
		for _, loop := range m.BoundaryLoops() {
			r.Warnings = append(r.Warnings, mesh.NewWarning("stitch", mesh.ErrUnresolvedBoundary, nil,
				"open border of %d vertices starting at vertex %d", len(loop), loop[0]))
		}
	}
	r.Snapshots = append(r.Snapshots, diagnose.Take(diagnose.AfterStitching, m))

	switch {
	case !cfg.Orient:
		em := m.Edges()
		for _, e := range em.NonManifold() {
			r.Warnings = append(r.Warnings, mesh.NewWarning("diagnose", mesh.ErrNonManifoldEdge, &e,
				"edge shared by %d faces", len(em.Uses(e))))
		}
	case orient.IsOutwardOriented(m):
		logger.Printf("orient: already outward oriented")
	default:
		var err error
		m, r.Orientation, err = orient.Orient(m, orient.Options{Nesting: cfg.Nesting})
		r.Warnings = append(r.Warnings, r.Orientation.Warnings...)
		if err != nil {
			if !errors.Is(err, mesh.ErrDegenerateMesh) {
				return m, r, err
			}
			r.OrientErr = err
			r.OrientError = err.Error()
			logger.Printf("orient: skipped: %v", err)
			break
		}
		logger.Printf("orient: %d components, %d faces flipped, %d components reversed",
			r.Orientation.Components, r.Orientation.FacesFlipped, r.Orientation.ComponentsReversed)
	}
	r.Snapshots = append(r.Snapshots, diagnose.Take(diagnose.AfterOrientation, m))
	logger.Printf("output: %s", r.Snapshots[len(r.Snapshots)-1])

	for _, w := range r.Warnings {
		logger.Printf("warning: %v", w)
	}
	return m, r, nil
}
