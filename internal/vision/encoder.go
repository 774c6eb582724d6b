package vision

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/your-org/eventface/internal/config"
	"github.com/your-org/eventface/internal/observability"
)

const (
	detectorModel = "det_10g.onnx"
	embedderModel = "w600k_r50.onnx"
)

// ErrNoFace is returned when an image contains no detectable face.
var ErrNoFace = errors.New("no face detected")

// Face is one detected face and its embedding.
type Face struct {
	BBox       [4]float32
	Confidence float32
	Embedding  []float32
}

// FaceEncoder detects every face in a photo and embeds each one.
// ONNX sessions reuse their tensors, so calls are serialised.
type FaceEncoder struct {
	mu       sync.Mutex
	detector *Detector
	embedder *Embedder
}

// InitRuntime points onnxruntime_go at the shared library and initialises it.
// Call DestroyRuntime on shutdown.
func InitRuntime(libraryPath string) error {
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("init onnx runtime: %w", err)
	}
	return nil
}

func DestroyRuntime() {
	_ = ort.DestroyEnvironment()
}

// NewFaceEncoder loads the detection and embedding models from cfg.ModelsDir.
func NewFaceEncoder(cfg config.VisionConfig) (*FaceEncoder, error) {
	detPath := filepath.Join(cfg.ModelsDir, detectorModel)
	embPath := filepath.Join(cfg.ModelsDir, embedderModel)

	slog.Info("loading detection model", "path", detPath)
	det, err := NewDetector(detPath, float32(cfg.DetectionThreshold), nil)
	if err != nil {
		return nil, fmt.Errorf("load detector: %w", err)
	}

	slog.Info("loading embedding model", "path", embPath)
	emb, err := NewEmbedder(embPath, nil)
	if err != nil {
		det.Close()
		return nil, fmt.Errorf("load embedder: %w", err)
	}

	return &FaceEncoder{detector: det, embedder: emb}, nil
}

// Encode returns every face in the image, largest first.
// It returns ErrNoFace when nothing is detected.
func (e *FaceEncoder) Encode(data []byte) ([]Face, error) {
	img, _, err := decodeImage(data)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	input := preprocessForDetection(img, e.detector.inputW, e.detector.inputH)
	detections, err := e.detector.Detect(input, bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	observability.InferenceDuration.WithLabelValues("detect").Observe(time.Since(start).Seconds())

	detections = largestFirst(detections)

	faces := make([]Face, 0, len(detections))
	for _, d := range detections {
		crop := cropFace(img, translate(d.BBox, bounds.Min.X, bounds.Min.Y))
		if crop == nil {
			continue
		}

		start = time.Now()
		embedding, err := e.embedder.Extract(preprocessForEmbedding(crop, embInputSize, embInputSize))
		if err != nil {
			return nil, fmt.Errorf("embed: %w", err)
		}
		observability.InferenceDuration.WithLabelValues("embed").Observe(time.Since(start).Seconds())

		faces = append(faces, Face{BBox: d.BBox, Confidence: d.Confidence, Embedding: embedding})
	}
	if len(faces) == 0 {
		return nil, ErrNoFace
	}
	return faces, nil
}

func (e *FaceEncoder) Close() {
	if e.detector != nil {
		e.detector.Close()
	}
	if e.embedder != nil {
		e.embedder.Close()
	}
}

func largestFirst(detections []Detection) []Detection {
	out := slices.Clone(detections)
	slices.SortStableFunc(out, func(a, b Detection) int {
		switch {
		case a.area() > b.area():
			return -1
		case a.area() < b.area():
			return 1
		}
		return 0
	})
	return out
}

// translate moves a box from zero-origin detector space into the image's own bounds.
func translate(b [4]float32, dx, dy int) [4]float32 {
	x, y := float32(dx), float32(dy)
	return [4]float32{b[0] + x, b[1] + y, b[2] + x, b[3] + y}
}
