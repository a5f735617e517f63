// Package meshio reads and writes polygon meshes in STL, OBJ and OFF
// formats. The format is chosen by file extension.
package meshio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/birukm3/femSIM/pkg/mesh"
	"github.com/pkg/errors"
)

var (
	// ErrEmptyMesh is returned when a file holds no usable faces.
	ErrEmptyMesh = errors.New("meshio: mesh has no faces")

	// ErrUnknownFormat is returned for an unsupported file extension.
	ErrUnknownFormat = errors.New("meshio: unknown mesh format")
)

// Format identifies a mesh file format.
type Format string

const (
	STL Format = "stl"
	OBJ Format = "obj"
	OFF Format = "off"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		return STL, nil
	case ".obj":
		return OBJ, nil
	case ".off":
		return OFF, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", path)
}

// Read loads a mesh from path. The result is validated.
func Read(path string) (*mesh.Mesh, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var m *mesh.Mesh
	switch format {
	case STL:
		m, err = readSTL(path)
	default:
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "meshio: open %s", path)
		}
		defer f.Close()
		if format == OBJ {
			m, err = readOBJ(f)
		} else {
			m, err = readOFF(f)
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "meshio: read %s", path)
	}
	if len(m.Faces) == 0 {
		return nil, errors.Wrapf(ErrEmptyMesh, "%s", path)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrapf(err, "meshio: read %s", path)
	}
	return m, nil
}

// Write stores m at path. STL output is triangulated by fan; OBJ and OFF
// keep the polygons.
func Write(path string, m *mesh.Mesh) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if m == nil || len(m.Faces) == 0 {
		return errors.Wrapf(ErrEmptyMesh, "%s", path)
	}

	switch format {
	case STL:
		err = writeSTL(path, m)
	default:
		var f *os.File
		f, err = os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "meshio: create %s", path)
		}
		if format == OBJ {
			err = writeOBJ(f, m)
		} else {
			err = writeOFF(f, m)
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	return errors.Wrapf(err, "meshio: write %s", path)
}
