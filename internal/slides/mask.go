package slides

import (
	"encoding/json"
	"image"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dimension is a size along one frame axis: either an absolute pixel count
// or a percentage of the frame dimension, written as "5%".
type Dimension struct {
	pixels  int
	percent float64
	isPct   bool
}

func Pixels(n int) Dimension        { return Dimension{pixels: n} }
func Percent(p float64) Dimension   { return Dimension{percent: p, isPct: true} }
func (d Dimension) IsZero() bool    { return !d.isPct && d.pixels == 0 && d.percent == 0 }
func (d Dimension) Resolve(max int) int {
	if d.isPct {
		return int(float64(max) * d.percent / 100.0)
	}
	return d.pixels
}

func (d *Dimension) parse(s string) error {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return configErrorf("invalid percentage %q", s)
		}
		*d = Percent(pct)
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return configErrorf("invalid size %q", s)
	}
	*d = Pixels(n)
	return nil
}

func (d *Dimension) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Pixels(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return configErrorf("invalid size %s", string(b))
	}
	return d.parse(s)
}

func (d *Dimension) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

// MaskSpec is one user-facing mask entry. Either the explicit corner
// coordinates are given:
//
//	{"x1": 1108, "y1": 589, "x2": 1280, "y2": 720}
//
// or a frame corner plus a size, where sizes may be pixels or percentages:
//
//	{"location": "bottom-left", "size_x": "1%", "size_y": "2%"}
type MaskSpec struct {
	X1 int `json:"x1" yaml:"x1"`
	Y1 int `json:"y1" yaml:"y1"`
	X2 int `json:"x2" yaml:"x2"`
	Y2 int `json:"y2" yaml:"y2"`

	Location string    `json:"location,omitempty" yaml:"location"`
	SizeX    Dimension `json:"size_x,omitempty"   yaml:"size_x"`
	SizeY    Dimension `json:"size_y,omitempty"   yaml:"size_y"`
}

// rect resolves the spec against the frame bounds.
func (ms MaskSpec) rect(bounds image.Rectangle) (image.Rectangle, error) {
	if ms.Location == "" {
		return image.Rect(ms.X1, ms.Y1, ms.X2, ms.Y2), nil
	}

	parts := strings.Split(ms.Location, "-")
	if len(parts) != 2 {
		return image.Rectangle{}, configErrorf("invalid mask location %q (want e.g. \"top-right\")", ms.Location)
	}
	vert, hori := parts[0], parts[1]

	w, h := bounds.Dx(), bounds.Dy()
	sx, sy := ms.SizeX.Resolve(w), ms.SizeY.Resolve(h)

	var r image.Rectangle
	switch vert {
	case "top":
		r.Min.Y, r.Max.Y = 0, sy
	case "bottom":
		r.Min.Y, r.Max.Y = h-sy, h
	default:
		return image.Rectangle{}, configErrorf("invalid mask location %q", ms.Location)
	}
	switch hori {
	case "left":
		r.Min.X, r.Max.X = 0, sx
	case "right":
		r.Min.X, r.Max.X = w-sx, w
	default:
		return image.Rectangle{}, configErrorf("invalid mask location %q", ms.Location)
	}
	return r, nil
}

// Mask is a set of rectangular regions excluded from frame comparison.
// The zero value compares the whole frame.
type Mask struct {
	rects []image.Rectangle
	area  int
}

// CompileMasks resolves and validates mask specs against the frame bounds.
// A region outside the bounds is a configuration error.
func CompileMasks(specs []MaskSpec, bounds image.Rectangle) (*Mask, error) {
	m := &Mask{}
	for _, spec := range specs {
		r, err := spec.rect(bounds)
		if err != nil {
			return nil, err
		}
		if !r.In(bounds) {
			return nil, configErrorf("mask %v is outside the frame bounds %v", r, bounds)
		}
		if r.Empty() {
			continue
		}
		m.rects = append(m.rects, r)
		m.area += r.Dx() * r.Dy()
	}
	return m, nil
}

func (m *Mask) Empty() bool {
	return m == nil || len(m.rects) == 0
}

// Area is the total number of masked pixels. Overlapping regions are
// counted once per region; overlapping masks are not expected in practice.
func (m *Mask) Area() int {
	if m == nil {
		return 0
	}
	return m.area
}

// Apply zeroes the masked regions in place, so that masked pixels never
// differ between frames.
func (m *Mask) Apply(g *image.Gray) {
	if m.Empty() {
		return
	}
	for _, r := range m.rects {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := g.Pix[y*g.Stride+r.Min.X : y*g.Stride+r.Max.X]
			for i := range row {
				row[i] = 0
			}
		}
	}
}
