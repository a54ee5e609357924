package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is an orthographic view of the world box. Rotations are about the
// box centre.
type Camera struct {
	Center r3.Vec
	// Radius is the world distance that maps to half the shorter canvas side
	// at zoom 1.
	Radius     float64
	Yaw, Pitch float64
	Zoom       float64
}

// NewCamera looks straight down the z axis at the whole box.
func NewCamera(extent r3.Vec) *Camera {
	return &Camera{
		Center: r3.Scale(0.5, extent),
		Radius: 0.5 * math.Max(extent.X, extent.Y),
		Zoom:   1,
	}
}

func (c *Camera) Rotate(yaw, pitch float64) {
	c.Yaw += yaw
	c.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Pitch+pitch))
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(20, c.Zoom*1.25) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.05, c.Zoom/1.25) }

func (c *Camera) ResetView() {
	c.Yaw, c.Pitch, c.Zoom = 0, 0, 1
}

// view turns a world point into camera space: x right, y up, z towards the
// viewer.
func (c *Camera) view(p r3.Vec) r3.Vec {
	v := r3.Sub(p, c.Center)
	if c.Yaw != 0 {
		v = r3.NewRotation(c.Yaw, r3.Vec{Z: 1}).Rotate(v)
	}
	if c.Pitch != 0 {
		v = r3.NewRotation(c.Pitch, r3.Vec{X: 1}).Rotate(v)
	}
	return v
}

// Project maps p onto a canvas of w x h dots. ok is false when the dot falls
// outside the canvas.
func (c *Camera) Project(p r3.Vec, w, h int) (x, y int, ok bool) {
	v := c.view(p)
	scale := c.Zoom * 0.5 * float64(min(w, h)) / c.Radius
	fx := float64(w)/2 + v.X*scale
	fy := float64(h)/2 - v.Y*scale
	x, y = int(math.Floor(fx)), int(math.Floor(fy))
	return x, y, x >= 0 && x < w && y >= 0 && y < h
}

// Unproject is the inverse of Project for the unrotated view. The returned
// point lies in the plane z = Center.Z.
func (c *Camera) Unproject(x, y, w, h int) r3.Vec {
	scale := c.Zoom * 0.5 * float64(min(w, h)) / c.Radius
	return r3.Vec{
		X: c.Center.X + (float64(x)+0.5-float64(w)/2)/scale,
		Y: c.Center.Y - (float64(y)+0.5-float64(h)/2)/scale,
		Z: c.Center.Z,
	}
}

// DrawBox outlines the axis-aligned box [0, extent] on the canvas.
func (c *Camera) DrawBox(cv *Canvas, extent r3.Vec) {
	var corners [8]r3.Vec
	for i := range corners {
		corners[i] = r3.Vec{
			X: float64(i&1) * extent.X,
			Y: float64(i>>1&1) * extent.Y,
			Z: float64(i>>2&1) * extent.Z,
		}
	}
	w, h := cv.DotsWide(), cv.DotsHigh()
	for i := range corners {
		for _, bit := range []int{1, 2, 4} {
			j := i | bit
			if j == i {
				continue
			}
			x0, y0, _ := c.Project(corners[i], w, h)
			x1, y1, _ := c.Project(corners[j], w, h)
			cv.DrawLine(x0, y0, x1, y1)
		}
	}
}
