package scan

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
)

func randomImage(t *testing.T, xDim, yDim int, labels []string) *Image {
	t.Helper()

	x := make([]float64, xDim)
	y := make([]float64, yDim)
	for i := range x {
		x[i] = float64(i)
	}
	for j := range y {
		y[j] = float64(j)
	}

	data := make([]*mat.Dense, len(labels))
	for c := range data {
		vals := make([]float64, xDim*yDim)
		for i := range vals {
			vals[i] = rand.NormFloat64()
		}
		data[c] = mat.NewDense(xDim, yDim, vals)
	}

	img, err := New(x, y, data, labels)
	if err != nil {
		t.Fatalf("New() = %s", err)
	}
	return img
}

func TestImageLabelMap(t *testing.T) {
	t.Parallel()

	labels := []string{"one", "two", "three"}
	img := randomImage(t, 10, 10, labels)

	if diff := cmp.Diff(labels, img.Labels()); diff != "" {
		t.Errorf("Labels() mismatch (-want +got):\n%s", diff)
	}

	chOne, err := img.Channel("one")
	if err != nil {
		t.Fatalf("Channel(one) = %s", err)
	}
	if chOne.Label() != "one" {
		t.Errorf("Label() = %q, want %q", chOne.Label(), "one")
	}

	if err := img.MapLabels(map[string]string{"one": "first"}); err != nil {
		t.Fatalf("MapLabels() = %s", err)
	}
	if diff := cmp.Diff([]string{"first", "two", "three"}, img.Labels()); diff != "" {
		t.Errorf("Labels() after MapLabels mismatch (-want +got):\n%s", diff)
	}
	if chOne.Label() != "first" {
		t.Errorf("Label() after MapLabels = %q, want %q", chOne.Label(), "first")
	}

	if err := img.MapLabels(map[string]string{"not_there": "nope"}); err == nil {
		t.Error("MapLabels() with unknown label: want error, got nil")
	}
}

func TestImageShapeValidation(t *testing.T) {
	t.Parallel()

	x := []float64{0, 1, 2}
	y := []float64{0, 1}

	tests := []struct {
		name    string
		data    []*mat.Dense
		labels  []string
		wantErr bool
	}{
		{
			name:   "valid",
			data:   []*mat.Dense{mat.NewDense(3, 2, nil)},
			labels: []string{"height"},
		},
		{
			name:    "label count mismatch",
			data:    []*mat.Dense{mat.NewDense(3, 2, nil)},
			labels:  []string{"height", "phase"},
			wantErr: true,
		},
		{
			name:    "data shape mismatch",
			data:    []*mat.Dense{mat.NewDense(2, 3, nil)},
			labels:  []string{"height"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(x, y, tt.data, tt.labels)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

type addOne struct{}

func (addOne) Name() string { return "add_one" }

func (addOne) Apply(x, y []float64, data *mat.Dense) (*mat.Dense, error) {
	out := mat.DenseCopyOf(data)
	out.Apply(func(i, j int, v float64) float64 { return v + 1 }, out)
	return out, nil
}

func TestChannelApplyRecordsHistory(t *testing.T) {
	t.Parallel()

	img := randomImage(t, 4, 4, []string{"height"})
	ch, err := img.Channel("height")
	if err != nil {
		t.Fatalf("Channel() = %s", err)
	}

	before := ch.Data()
	if err := ch.Apply(addOne{}); err != nil {
		t.Fatalf("Apply() = %s", err)
	}

	hist := ch.History()
	if len(hist) != 1 || hist[0].Name() != "add_one" {
		t.Errorf("History() = %v, want one add_one entry", hist)
	}

	after := ch.Data()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if got, want := after.At(i, j), before.At(i, j)+1; got != want {
				t.Fatalf("data at (%d,%d) = %f, want %f", i, j, got, want)
			}
		}
	}
}

func TestChannelDataIsACopy(t *testing.T) {
	t.Parallel()

	img := randomImage(t, 4, 4, []string{"height"})
	ch, err := img.Channel("height")
	if err != nil {
		t.Fatalf("Channel() = %s", err)
	}

	d := ch.Data()
	d.Set(0, 0, 12345)

	if ch.Data().At(0, 0) == 12345 {
		t.Error("mutating the returned data changed the channel")
	}
}

func TestSetChannelData(t *testing.T) {
	t.Parallel()

	img := randomImage(t, 3, 3, []string{"height"})

	if err := img.SetChannelData(0, mat.NewDense(3, 3, nil)); err != nil {
		t.Errorf("SetChannelData() = %s", err)
	}

	if err := img.SetChannelData(5, mat.NewDense(3, 3, nil)); err == nil {
		t.Error("SetChannelData() with invalid index: want error, got nil")
	}

	if err := img.SetChannelData(0, mat.NewDense(2, 3, nil)); err == nil {
		t.Error("SetChannelData() with invalid shape: want error, got nil")
	}
}
