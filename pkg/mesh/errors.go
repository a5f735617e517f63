package mesh

import (
	"errors"
	"fmt"
)

// Error kinds reported by the repair stages. Stage errors wrap one of these
// so callers can test them with errors.Is.
var (
	// ErrInvalidTopology marks malformed input: out-of-range or repeated
	// vertex references, short faces, non-finite coordinates.
	ErrInvalidTopology = errors.New("invalid topology")

	// ErrNonManifoldEdge marks an edge with three or more incident faces,
	// or an ambiguous stitch candidate that would create one.
	ErrNonManifoldEdge = errors.New("non-manifold edge")

	// ErrDegenerateMesh marks a mesh (or component) whose orientation
	// cannot be decided because it has no faces or encloses no volume.
	ErrDegenerateMesh = errors.New("degenerate mesh")

	// ErrUnresolvedBoundary marks a border that stitching could not close.
	ErrUnresolvedBoundary = errors.New("unresolved boundary")

	// ErrNonOrientable marks a component whose faces cannot be given a
	// consistent winding (for example a Moebius strip).
	ErrNonOrientable = errors.New("non-orientable component")
)

// Warning is a non-fatal condition recorded by a stage. The pipeline keeps
// going on the unaffected remainder of the mesh.
type Warning struct {
	Kind    error  `json:"-"`
	Stage   string `json:"stage"`
	Edge    *Edge  `json:"edge,omitempty"`
	Message string `json:"message"`
}

func (w Warning) Error() string {
	context := ""
	if w.Edge != nil {
		context = fmt.Sprintf(" (edge: %s)", w.Edge)
	}
	return fmt.Sprintf("%s: %v: %s%s", w.Stage, w.Kind, w.Message, context)
}

// Unwrap exposes the warning kind to errors.Is.
func (w Warning) Unwrap() error {
	return w.Kind
}

// NewWarning builds a warning. A zero edge pointer means the warning is not
// tied to a single edge.
func NewWarning(stage string, kind error, edge *Edge, format string, args ...interface{}) Warning {
	return Warning{
		Kind:    kind,
		Stage:   stage,
		Edge:    edge,
		Message: fmt.Sprintf(format, args...),
	}
}
