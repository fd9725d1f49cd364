package animator

// Frame is one rendered update of a metric.
type Frame struct {
	MetricID string  `json:"id"`
	Display  string  `json:"display"`
	Value    float64 `json:"value"`
	Step     int     `json:"step"`
	Steps    int     `json:"steps"`
	Done     bool    `json:"done"`
}

// Renderer receives frames. Render is called from the animator's wheel
// goroutine and must not call back into the animator.
type Renderer interface {
	Render(Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame)

// Render calls f.
func (f RendererFunc) Render(fr Frame) {
	f(fr)
}

// Renderers fans frames out to several renderers in order.
type Renderers []Renderer

// Render delivers fr to every renderer.
func (rs Renderers) Render(fr Frame) {
	for _, r := range rs {
		r.Render(fr)
	}
}
