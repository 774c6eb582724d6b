package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

func TestIOU(t *testing.T) {
	tests := []struct {
		name string
		a, b [4]float32
		want float32
	}{
		{"identical", [4]float32{0, 0, 10, 10}, [4]float32{0, 0, 10, 10}, 1},
		{"disjoint", [4]float32{0, 0, 10, 10}, [4]float32{20, 20, 30, 30}, 0},
		{"half overlap", [4]float32{0, 0, 10, 10}, [4]float32{5, 0, 15, 10}, 50.0 / 150.0},
		{"degenerate", [4]float32{0, 0, 0, 0}, [4]float32{0, 0, 0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := iou(tt.a, tt.b); math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("iou = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNMS(t *testing.T) {
	detections := []Detection{
		{BBox: [4]float32{0, 0, 10, 10}, Confidence: 0.7},
		{BBox: [4]float32{1, 1, 11, 11}, Confidence: 0.9},
		{BBox: [4]float32{50, 50, 60, 60}, Confidence: 0.8},
	}

	kept := nms(detections, 0.4)
	if len(kept) != 2 {
		t.Fatalf("expected 2 detections, got %d: %+v", len(kept), kept)
	}
	if kept[0].Confidence != 0.9 || kept[1].Confidence != 0.8 {
		t.Errorf("unexpected survivors %+v", kept)
	}
}

func TestAnchorGridDecode(t *testing.T) {
	g := anchorGrid{inputW: 64, inputH: 64, origW: 128, origH: 64, threshold: 0.5}
	const stride = 32 // 2x2 cells, 2 anchors each

	scores := make([]float32, 8)
	boxes := make([]float32, 32)
	// cell (cx=1, cy=0), second anchor -> idx 3
	scores[3] = 0.95
	copy(boxes[3*4:], []float32{0.25, 0, 0.5, 0.5})

	got := g.decode(stride, scores, boxes)
	if len(got) != 1 {
		t.Fatalf("expected one detection, got %+v", got)
	}
	want := [4]float32{(32 - 8) * 2, 0, (32 + 16) * 2, 16}
	if got[0].BBox != want {
		t.Errorf("bbox = %v, want %v", got[0].BBox, want)
	}
	if got[0].Confidence != 0.95 {
		t.Errorf("confidence = %v", got[0].Confidence)
	}
}

func TestLargestFirst(t *testing.T) {
	in := []Detection{
		{BBox: [4]float32{0, 0, 5, 5}, Confidence: 0.99},
		{BBox: [4]float32{0, 0, 20, 20}, Confidence: 0.6},
		{BBox: [4]float32{0, 0, 10, 10}, Confidence: 0.8},
	}
	got := largestFirst(in)
	if got[0].Confidence != 0.6 || got[1].Confidence != 0.8 || got[2].Confidence != 0.99 {
		t.Errorf("unexpected order %+v", got)
	}
	if in[0].Confidence != 0.99 {
		t.Error("largestFirst reordered its input")
	}
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	normalize(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("unexpected normalised vector %v", v)
	}

	zero := []float32{0, 0}
	normalize(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector changed: %v", zero)
	}
}

func TestCropFace(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	crop := cropFace(img, [4]float32{20, 20, 70, 70})
	if crop == nil {
		t.Fatal("expected a crop")
	}
	if b := crop.Bounds(); b.Dx() != 60 || b.Dy() != 60 {
		t.Errorf("expected padded 60x60 crop, got %v", b)
	}

	if cropFace(img, [4]float32{200, 200, 300, 300}) != nil {
		t.Error("expected nil crop outside the image")
	}
}

func TestPreprocessAndDecode(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			src.Set(x, y, color.RGBA{R: 255, G: 128, B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	img, format, err := decodeImage(buf.Bytes())
	if err != nil {
		t.Fatalf("decodeImage: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q", format)
	}

	data := preprocessForEmbedding(img, 4, 4)
	if len(data) != 3*4*4 {
		t.Fatalf("unexpected tensor length %d", len(data))
	}
	if r := data[0]; math.Abs(float64(r)-1) > 0.01 {
		t.Errorf("red channel = %v, want 1", r)
	}
	if b := data[2*16]; math.Abs(float64(b)+1) > 0.01 {
		t.Errorf("blue channel = %v, want -1", b)
	}

	if _, _, err := decodeImage([]byte("not an image")); err == nil {
		t.Error("expected decode error")
	}
	if _, _, err := decodeImage(nil); err == nil {
		t.Error("expected decode error for an empty object")
	}
}
