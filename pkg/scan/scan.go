// Package scan models AFM images as a set of labeled channels sharing a
// common x/y index. Channels record the operations applied to them.
package scan

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Operation transforms channel data. Implementations must not modify the
// inputs and must return data with the same shape, len(x) rows by len(y)
// columns.
type Operation interface {
	Name() string
	Apply(x, y []float64, data *mat.Dense) (*mat.Dense, error)
}

// History is the ordered list of operations applied to a channel.
type History struct {
	ops []Operation
}

// Push appends an operation to the history.
func (h *History) Push(op Operation) {
	h.ops = append(h.ops, op)
}

// All returns a copy of the recorded operations.
func (h *History) All() []Operation {
	out := make([]Operation, len(h.ops))
	copy(out, h.ops)
	return out
}

// Channel is a single image channel. It shares the x/y index of its image
// and tracks the operations that have been applied to its data.
type Channel struct {
	label   string
	x       []float64
	y       []float64
	data    *mat.Dense
	history History
}

// NewChannel creates a standalone channel. The data must have len(x) rows
// and len(y) columns.
func NewChannel(label string, x, y []float64, data *mat.Dense) (*Channel, error) {
	rows, cols := data.Dims()
	if rows != len(x) || cols != len(y) {
		return nil, fmt.Errorf("invalid data shape: %dx%d data for %dx%d index", rows, cols, len(x), len(y))
	}

	return &Channel{
		label: label,
		x:     copyFloats(x),
		y:     copyFloats(y),
		data:  mat.DenseCopyOf(data),
	}, nil
}

// Label returns the channel label.
func (c *Channel) Label() string {
	return c.label
}

// X returns a copy of the x index.
func (c *Channel) X() []float64 {
	return copyFloats(c.x)
}

// Y returns a copy of the y index.
func (c *Channel) Y() []float64 {
	return copyFloats(c.y)
}

// Data returns a copy of the channel data.
func (c *Channel) Data() *mat.Dense {
	return mat.DenseCopyOf(c.data)
}

// History returns a copy of the operations applied so far.
func (c *Channel) History() []Operation {
	return c.history.All()
}

// Copy returns a deep copy of the channel, including its history.
func (c *Channel) Copy() *Channel {
	out := &Channel{
		label: c.label,
		x:     copyFloats(c.x),
		y:     copyFloats(c.y),
		data:  mat.DenseCopyOf(c.data),
	}
	for _, op := range c.history.All() {
		out.history.Push(op)
	}
	return out
}

// Apply runs an operation on the channel data and records it in the history.
func (c *Channel) Apply(op Operation) error {
	data, err := op.Apply(c.x, c.y, c.data)
	if err != nil {
		return fmt.Errorf("applying %s: %s", op.Name(), err)
	}

	rows, cols := data.Dims()
	if rows != len(c.x) || cols != len(c.y) {
		return fmt.Errorf("applying %s: operation changed shape to %dx%d", op.Name(), rows, cols)
	}

	c.data = data
	c.history.Push(op)
	return nil
}

// Image is a multi-channel AFM image over a common x/y index.
type Image struct {
	x        []float64
	y        []float64
	labels   []string
	channels []*Channel
}

// New creates an image from per-channel data. Each matrix must have len(x)
// rows and len(y) columns, and there must be one label per channel.
func New(x, y []float64, data []*mat.Dense, labels []string) (*Image, error) {
	if len(data) != len(labels) {
		return nil, fmt.Errorf("invalid data shape: %d channels but %d labels", len(data), len(labels))
	}

	img := &Image{
		x:      copyFloats(x),
		y:      copyFloats(y),
		labels: append([]string(nil), labels...),
	}

	for idx, d := range data {
		ch, err := NewChannel(labels[idx], x, y, d)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %s", labels[idx], err)
		}
		img.channels = append(img.channels, ch)
	}

	return img, nil
}

// Channel returns the channel with the given label.
func (img *Image) Channel(label string) (*Channel, error) {
	idx, ok := img.LabelIndex(label)
	if !ok {
		return nil, fmt.Errorf("no channel labeled %q", label)
	}

	return img.channels[idx], nil
}

// Labels returns a copy of the channel labels in channel order.
func (img *Image) Labels() []string {
	return append([]string(nil), img.labels...)
}

// LabelIndex returns the index of a label, if present.
func (img *Image) LabelIndex(label string) (int, bool) {
	for idx, l := range img.labels {
		if l == label {
			return idx, true
		}
	}
	return 0, false
}

// MapLabels renames channels. Every key must name an existing label.
func (img *Image) MapLabels(mapping map[string]string) error {
	for from := range mapping {
		if _, ok := img.LabelIndex(from); !ok {
			return fmt.Errorf("no channel labeled %q", from)
		}
	}

	for from, to := range mapping {
		idx, _ := img.LabelIndex(from)
		img.labels[idx] = to
		img.channels[idx].label = to
	}

	return nil
}

// X returns a copy of the x index.
func (img *Image) X() []float64 {
	return copyFloats(img.x)
}

// Y returns a copy of the y index.
func (img *Image) Y() []float64 {
	return copyFloats(img.y)
}

// Shape returns (width, height) of the image grid.
func (img *Image) Shape() (int, int) {
	return len(img.x), len(img.y)
}

// NumChannels returns the number of channels.
func (img *Image) NumChannels() int {
	return len(img.channels)
}

// CopyChannelData returns a copy of the data of the channel with the given
// label, if present.
func (img *Image) CopyChannelData(label string) (*mat.Dense, bool) {
	idx, ok := img.LabelIndex(label)
	if !ok {
		return nil, false
	}
	return img.channels[idx].Data(), true
}

// SetChannelData replaces the data of the channel at the given index. The
// replacement must match the image shape.
func (img *Image) SetChannelData(idx int, data *mat.Dense) error {
	if idx < 0 || idx >= len(img.channels) {
		return fmt.Errorf("invalid channel index %d", idx)
	}

	rows, cols := data.Dims()
	if rows != len(img.x) || cols != len(img.y) {
		return fmt.Errorf("invalid data shape: %dx%d for %dx%d image", rows, cols, len(img.x), len(img.y))
	}

	img.channels[idx].data = mat.DenseCopyOf(data)
	return nil
}

func copyFloats(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
