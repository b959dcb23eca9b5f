package viz

import (
	"math"
	"sort"
)

type Vec3 struct {
	X, Y, Z float64
}

// Camera looks down -z at the origin from Distance, after rotating the
// scene by RotX then RotY. Scene coordinates are expected in [-1, 1].
type Camera struct {
	RotX, RotY float64
	Zoom       float64
	Distance   float64
}

func NewCamera() *Camera {
	return &Camera{RotX: -0.45, RotY: 0.6, Zoom: 1, Distance: 6}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(5, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.2, c.Zoom/1.2) }

func (c *Camera) rotate(p Vec3) Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	return p
}

// Project maps p to sub-pixel coordinates on a sw×sh screen. depth grows
// towards the viewer; ok is false for points behind the camera.
func (c *Camera) Project(p Vec3, sw, sh int) (x, y int, depth float64, ok bool) {
	r := c.rotate(p)
	if r.Z >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	persp := c.Distance / (c.Distance - r.Z)
	scale := float64(min(sw, sh)) / 2.6 * c.Zoom * persp
	x = int(math.Round(r.X*scale)) + sw/2
	y = int(math.Round(-r.Y*scale)) + sh/2
	return x, y, r.Z, true
}

// boxCorners are the unit cube vertices in scene coordinates.
var boxCorners = [8]Vec3{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

var boxEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Scene converts box coordinates into [-1, 1] along the longest side.
func Scene(p [3]float64, box [3]float64) Vec3 {
	l := math.Max(box[0], math.Max(box[1], box[2]))
	return Vec3{
		X: (2*p[0] - box[0]) / l,
		Y: (2*p[1] - box[1]) / l,
		Z: (2*p[2] - box[2]) / l,
	}
}

// DrawBox renders the box outline and the particles, far ones first.
// Particles in the front half of the box are drawn as 2×2 blobs.
func DrawBox(c *Canvas, cam *Camera, positions [][3]float64, box [3]float64) {
	sw, sh := c.PixelSize()
	l := math.Max(box[0], math.Max(box[1], box[2]))
	for _, e := range boxEdges {
		a, b := boxCorners[e[0]], boxCorners[e[1]]
		a = Vec3{a.X * box[0] / l, a.Y * box[1] / l, a.Z * box[2] / l}
		b = Vec3{b.X * box[0] / l, b.Y * box[1] / l, b.Z * box[2] / l}
		x0, y0, _, ok0 := cam.Project(a, sw, sh)
		x1, y1, _, ok1 := cam.Project(b, sw, sh)
		if ok0 && ok1 {
			c.DrawLine(x0, y0, x1, y1)
		}
	}

	type dot struct {
		x, y  int
		depth float64
	}
	dots := make([]dot, 0, len(positions))
	for _, p := range positions {
		x, y, d, ok := cam.Project(Scene(p, box), sw, sh)
		if ok {
			dots = append(dots, dot{x, y, d})
		}
	}
	sort.Slice(dots, func(i, j int) bool { return dots[i].depth < dots[j].depth })
	for _, d := range dots {
		if d.depth > 0 {
			c.Blob(d.x, d.y)
		} else {
			c.Set(d.x, d.y)
		}
	}
}
