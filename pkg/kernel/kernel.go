// Package kernel defines the abstract geometry kernel used to generate
// sample solids. Kernels tessellate solids into triangle meshes that feed
// the repair pipeline.
package kernel

import (
	"fmt"
	"sort"

	"github.com/birukm3/femSIM/pkg/mesh"
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives, centered on the origin.
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToMesh tessellates a solid into a triangle mesh. Backends may
	// return an unwelded soup in which every triangle owns its vertices.
	ToMesh(s Solid) (*mesh.Mesh, error)
}

// samples builds the named demo solids at a given overall size.
var samples = map[string]func(k Kernel, size float64) Solid{
	"box": func(k Kernel, size float64) Solid {
		return k.Box(size, size*0.75, size*0.5)
	},
	"cylinder": func(k Kernel, size float64) Solid {
		return k.Cylinder(size, size*0.3, 0)
	},
	"drilled": func(k Kernel, size float64) Solid {
		return k.Difference(k.Box(size, size, size*0.5), k.Cylinder(size, size*0.2, 0))
	},
	"bracket": func(k Kernel, size float64) Solid {
		base := k.Box(size, size*0.25, size*0.25)
		upright := k.Translate(k.Box(size*0.25, size*0.25, size), size*0.375, 0, size*0.375)
		return k.Union(base, upright)
	},
}

// SampleNames lists the solids Sample can build.
func SampleNames() []string {
	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sample builds a named demo solid with k.
func Sample(k Kernel, name string, size float64) (Solid, error) {
	build, ok := samples[name]
	if !ok {
		return nil, fmt.Errorf("kernel: unknown sample %q, expected one of %v", name, SampleNames())
	}
	if size <= 0 {
		return nil, fmt.Errorf("kernel: sample size must be positive, got %g", size)
	}
	return build(k, size), nil
}
