package vision

import (
	"fmt"
	"slices"

	ort "github.com/yalue/onnxruntime_go"
)

// Detection is one face found by the detector, in original image pixels.
type Detection struct {
	BBox       [4]float32 // x1, y1, x2, y2
	Confidence float32
}

func (d Detection) area() float32 {
	return (d.BBox[2] - d.BBox[0]) * (d.BBox[3] - d.BBox[1])
}

// Detector runs RetinaFace (det_10g) through ONNX Runtime.
type Detector struct {
	session       *ort.AdvancedSession
	inputTensor   *ort.Tensor[float32]
	outputTensors []*ort.Tensor[float32]
	threshold     float32
	inputW        int
	inputH        int
}

var strides = []int{8, 16, 32}

const (
	anchorsPerStride = 2
	nmsThreshold     = 0.4
	detInputSize     = 640
)

// det_10g output names: scores for strides 8/16/32, then boxes for the same strides.
var detectorOutputs = []struct {
	name  string
	shape ort.Shape
}{
	{"448", ort.NewShape(12800, 1)},
	{"471", ort.NewShape(3200, 1)},
	{"494", ort.NewShape(800, 1)},
	{"451", ort.NewShape(12800, 4)},
	{"474", ort.NewShape(3200, 4)},
	{"497", ort.NewShape(800, 4)},
}

// NewDetector loads the RetinaFace model. opts may be nil.
func NewDetector(modelPath string, threshold float32, opts *ort.SessionOptions) (*Detector, error) {
	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, detInputSize, detInputSize))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	d := &Detector{
		inputTensor: inputTensor,
		threshold:   threshold,
		inputW:      detInputSize,
		inputH:      detInputSize,
	}

	names := make([]string, len(detectorOutputs))
	values := make([]ort.Value, len(detectorOutputs))
	for i, out := range detectorOutputs {
		t, err := ort.NewEmptyTensor[float32](out.shape)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("create output tensor %s: %w", out.name, err)
		}
		names[i] = out.name
		values[i] = t
		d.outputTensors = append(d.outputTensors, t)
	}

	d.session, err = ort.NewAdvancedSession(modelPath,
		[]string{"input.1"}, names,
		[]ort.Value{inputTensor}, values,
		opts,
	)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("create detector session: %w", err)
	}
	return d, nil
}

// Detect runs detection on a CHW tensor produced by preprocessForDetection.
// origW and origH are the source image dimensions used to scale boxes back.
func (d *Detector) Detect(input []float32, origW, origH int) ([]Detection, error) {
	copy(d.inputTensor.GetData(), input)

	if err := d.session.Run(); err != nil {
		return nil, fmt.Errorf("run detection: %w", err)
	}

	g := anchorGrid{
		inputW:    d.inputW,
		inputH:    d.inputH,
		origW:     origW,
		origH:     origH,
		threshold: d.threshold,
	}
	var detections []Detection
	for si, stride := range strides {
		scores := d.outputTensors[si].GetData()
		boxes := d.outputTensors[si+len(strides)].GetData()
		detections = append(detections, g.decode(stride, scores, boxes)...)
	}
	return nms(detections, nmsThreshold), nil
}

func (d *Detector) Close() {
	if d.session != nil {
		d.session.Destroy()
	}
	if d.inputTensor != nil {
		d.inputTensor.Destroy()
	}
	for _, t := range d.outputTensors {
		t.Destroy()
	}
}

// anchorGrid decodes distance-to-edge box regressions of one feature map.
type anchorGrid struct {
	inputW, inputH int
	origW, origH   int
	threshold      float32
}

func (g anchorGrid) decode(stride int, scores, boxes []float32) []Detection {
	scaleW := float32(g.origW) / float32(g.inputW)
	scaleH := float32(g.origH) / float32(g.inputH)
	st := float32(stride)

	var out []Detection
	idx := 0
	for cy := 0; cy < g.inputH/stride; cy++ {
		for cx := 0; cx < g.inputW/stride; cx++ {
			for a := 0; a < anchorsPerStride; a++ {
				if idx < len(scores) && scores[idx] >= g.threshold && idx*4+3 < len(boxes) {
					ax, ay := float32(cx)*st, float32(cy)*st
					out = append(out, Detection{
						BBox: [4]float32{
							clampF((ax-boxes[idx*4+0]*st)*scaleW, 0, float32(g.origW)),
							clampF((ay-boxes[idx*4+1]*st)*scaleH, 0, float32(g.origH)),
							clampF((ax+boxes[idx*4+2]*st)*scaleW, 0, float32(g.origW)),
							clampF((ay+boxes[idx*4+3]*st)*scaleH, 0, float32(g.origH)),
						},
						Confidence: scores[idx],
					})
				}
				idx++
			}
		}
	}
	return out
}

// nms keeps the most confident box of every overlapping cluster.
func nms(detections []Detection, iouThreshold float32) []Detection {
	if len(detections) == 0 {
		return detections
	}

	slices.SortStableFunc(detections, func(a, b Detection) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		}
		return 0
	})

	var kept []Detection
	for _, d := range detections {
		suppressed := false
		for _, k := range kept {
			if iou(k.BBox, d.BBox) > iouThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, d)
		}
	}
	return kept
}

func iou(a, b [4]float32) float32 {
	x1 := max(a[0], b[0])
	y1 := max(a[1], b[1])
	x2 := min(a[2], b[2])
	y2 := min(a[3], b[3])

	intersection := max(0, x2-x1) * max(0, y2-y1)
	union := (a[2]-a[0])*(a[3]-a[1]) + (b[2]-b[0])*(b[3]-b[1]) - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

func clampF(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
