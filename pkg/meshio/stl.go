package meshio

import (
	"github.com/birukm3/femSIM/pkg/mesh"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hschendel/stl"
	"github.com/pkg/errors"
)

// readSTL loads an ASCII or binary STL file. Corners with bit-identical
// coordinates share one vertex; triangles that collapse are dropped.
func readSTL(path string) (*mesh.Mesh, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "stl")
	}
	return fromSolid(solid), nil
}

func fromSolid(solid *stl.Solid) *mesh.Mesh {
	index := make(map[stl.Vec3]int)
	m := &mesh.Mesh{Faces: make([]mesh.Face, 0, len(solid.Triangles))}
	for _, tri := range solid.Triangles {
		var f mesh.Face
		for _, v := range tri.Vertices {
			i, ok := index[v]
			if !ok {
				i = len(m.Vertices)
				index[v] = i
				m.Vertices = append(m.Vertices, mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])})
			}
			f = append(f, i)
		}
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			continue
		}
		m.Faces = append(m.Faces, f)
	}
	return m
}

// writeSTL saves m as a binary STL file.
func writeSTL(path string, m *mesh.Mesh) error {
	return render.SaveSTL(path, toTriangles(m))
}

// toTriangles fans every face into sdfx triangles.
func toTriangles(m *mesh.Mesh) []*sdf.Triangle3 {
	var out []*sdf.Triangle3
	for _, f := range m.Faces {
		for i := 1; i+1 < len(f); i++ {
			out = append(out, &sdf.Triangle3{
				toVec(m.Vertices[f[0]]),
				toVec(m.Vertices[f[i]]),
				toVec(m.Vertices[f[i+1]]),
			})
		}
	}
	return out
}

func toVec(v mgl64.Vec3) v3.Vec {
	return v3.Vec{X: v[0], Y: v[1], Z: v[2]}
}
