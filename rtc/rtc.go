// Package rtc implements relative-to-center (RTC) coordinate transforms.
//
// Large BIM/CAD models are authored at world coordinates far from the
// origin, where single-precision GPU math loses precision. Geometry is
// therefore stored relative to a per-layer center, and the view matrix is
// adjusted so that the composed transform is equivalent to rendering the
// geometry at its true world position:
//
//	world position = rtc position + center
//
// All math in this package is float64; the result is only narrowed to
// float32 at the point of GPU upload.
package rtc

import (
	"github.com/go-gl/mathgl/mgl64"
)

// ViewMat returns a view matrix for geometry authored relative to center.
//
// The result composes a translation by center with the world-space view
// matrix, so that for an rtc position p, ViewMat(view, center) * p equals
// view * (p + center).
func ViewMat(view mgl64.Mat4, center mgl64.Vec3) mgl64.Mat4 {
	return view.Mul4(mgl64.Translate3D(center.X(), center.Y(), center.Z()))
}

// PlaneRTCPos projects a world-space plane, given as a signed distance
// from the origin along its unit normal dir, into a position expressed
// relative to center. The result is stored in out and returned.
//
// For a unit normal, dot(dir, out + center) == dist holds within
// floating-point tolerance.
func PlaneRTCPos(dist float64, dir mgl64.Vec3, center mgl64.Vec3, out *mgl64.Vec3) *mgl64.Vec3 {
	*out = dir.Mul(dist).Sub(center)
	return out
}

// CentersEqual reports whether two RTC centers are the same point.
//
// Comparison is exact: layers sharing a center share the identical value
// assigned at batch-build time, and an epsilon would merge genuinely
// distinct centers and corrupt section-plane positions.
func CentersEqual(a, b mgl64.Vec3) bool {
	return a[0] == b[0] && a[1] == b[1] && a[2] == b[2]
}
