package manifold

import "errors"

var (
	// ErrUnavailable is returned by New when the package was built without
	// the manifold tag.
	ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")

	// ErrEmpty is returned by ToMesh when the solid has no triangles.
	ErrEmpty = errors.New("manifold: solid has no triangles")
)
