package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/birukm3/femSIM/pkg/mesh"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// readOBJ parses the v and f records of a Wavefront OBJ file. Face tokens
// may carry texture and normal references (v/vt/vn), which are ignored.
// Negative indices count back from the latest vertex.
func readOBJ(r io.Reader) (*mesh.Mesh, error) {
	m := &mesh.Mesh{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			m.Vertices = append(m.Vertices, v)
		case "f":
			f := make(mesh.Face, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				ref := tok
				if i := strings.IndexByte(tok, '/'); i >= 0 {
					ref = tok[:i]
				}
				n, err := strconv.Atoi(ref)
				if err != nil || n == 0 {
					return nil, errors.Errorf("line %d: bad face index %q", line, tok)
				}
				if n < 0 {
					n += len(m.Vertices)
				} else {
					n--
				}
				f = append(f, n)
			}
			m.Faces = append(m.Faces, f)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// readOFF parses an Object File Format file: the OFF header, a counts
// line, the vertex block and the face block. Comments start with #.
func readOFF(r io.Reader) (*mesh.Mesh, error) {
	sc := bufio.NewScanner(r)
	line := 0
	next := func() ([]string, bool) {
		for sc.Scan() {
			line++
			text := sc.Text()
			if i := strings.IndexByte(text, '#'); i >= 0 {
				text = text[:i]
			}
			if fields := strings.Fields(text); len(fields) > 0 {
				return fields, true
			}
		}
		return nil, false
	}

	fields, ok := next()
	if !ok || fields[0] != "OFF" {
		return nil, errors.New("missing OFF header")
	}
	// The counts may share the header line.
	counts := fields[1:]
	if len(counts) == 0 {
		if counts, ok = next(); !ok {
			return nil, errors.New("missing counts line")
		}
	}
	if len(counts) < 2 {
		return nil, errors.Errorf("line %d: expected vertex and face counts", line)
	}
	nv, err1 := strconv.Atoi(counts[0])
	nf, err2 := strconv.Atoi(counts[1])
	if err1 != nil || err2 != nil || nv < 0 || nf < 0 {
		return nil, errors.Errorf("line %d: bad counts %v", line, counts)
	}

	m := &mesh.Mesh{
		Vertices: make([]mgl64.Vec3, 0, nv),
		Faces:    make([]mesh.Face, 0, nf),
	}
	for i := 0; i < nv; i++ {
		fields, ok := next()
		if !ok {
			return nil, errors.Errorf("expected %d vertices, got %d", nv, i)
		}
		v, err := parseVertex(fields)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		m.Vertices = append(m.Vertices, v)
	}
	for i := 0; i < nf; i++ {
		fields, ok := next()
		if !ok {
			return nil, errors.Errorf("expected %d faces, got %d", nf, i)
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 0 || len(fields) < n+1 {
			return nil, errors.Errorf("line %d: bad face record", line)
		}
		f := make(mesh.Face, n)
		for j := range f {
			if f[j], err = strconv.Atoi(fields[j+1]); err != nil {
				return nil, errors.Errorf("line %d: bad face index %q", line, fields[j+1])
			}
		}
		m.Faces = append(m.Faces, f)
	}
	return m, nil
}

func parseVertex(fields []string) (mgl64.Vec3, error) {
	var v mgl64.Vec3
	if len(fields) < 3 {
		return v, errors.New("vertex needs three coordinates")
	}
	for i := 0; i < 3; i++ {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return v, errors.Wrapf(err, "coordinate %d", i)
		}
		v[i] = x
	}
	return v, nil
}

func writeOBJ(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]))
	}
	for _, f := range m.Faces {
		bw.WriteString("f")
		for _, i := range f {
			fmt.Fprintf(bw, " %d", i+1)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

func writeOFF(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "OFF\n%d %d %d\n", len(m.Vertices), len(m.Faces), m.EdgeCount())
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "%s %s %s\n", formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]))
	}
	for _, f := range m.Faces {
		fmt.Fprintf(bw, "%d", len(f))
		for _, i := range f {
			fmt.Fprintf(bw, " %d", i)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// formatFloat prints 17 significant digits so coordinates survive a round
// trip exactly.
func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', 17, 64)
}
