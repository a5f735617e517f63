package mesh

import "github.com/go-gl/mathgl/mgl64"

// referencePoint returns the bounding box center. Any point gives the same
// volume for a closed surface; the center keeps the terms small.
func (m *Mesh) referencePoint() mgl64.Vec3 {
	min, max := m.Bounds()
	return min.Add(max).Mul(0.5)
}

// SignedVolume returns the sum of the signed volumes of the tetrahedra
// formed by each face (fanned from its first vertex) and a fixed reference
// point. It is positive for an outward-oriented closed mesh.
func (m *Mesh) SignedVolume() float64 {
	ref := m.referencePoint()
	var vol float64
	for fi := range m.Faces {
		vol += m.faceVolume(fi, ref)
	}
	return vol
}

// FaceSignedVolumes returns the per-face volume contributions relative to
// the same reference point used by SignedVolume.
func (m *Mesh) FaceSignedVolumes() []float64 {
	ref := m.referencePoint()
	out := make([]float64, len(m.Faces))
	for fi := range m.Faces {
		out[fi] = m.faceVolume(fi, ref)
	}
	return out
}

func (m *Mesh) faceVolume(fi int, ref mgl64.Vec3) float64 {
	f := m.Faces[fi]
	a := m.Vertices[f[0]].Sub(ref)
	var vol float64
	for j := 1; j+1 < len(f); j++ {
		b := m.Vertices[f[j]].Sub(ref)
		c := m.Vertices[f[j+1]].Sub(ref)
		vol += a.Dot(b.Cross(c))
	}
	return vol / 6
}

// VolumeTolerance is the absolute volume below which a signed volume is
// treated as zero. It scales with the cube of the bounding box diagonal.
func (m *Mesh) VolumeTolerance() float64 {
	d := m.Diagonal()
	return d * d * d * 1e-12
}
