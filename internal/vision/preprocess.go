package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// decodeImage decodes any registered format (jpeg, png, webp, bmp).
func decodeImage(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, "", fmt.Errorf("decode image: empty %s image", format)
	}
	return img, format, nil
}

func preprocessForDetection(img image.Image, w, h int) []float32 {
	return toCHW(resize(img, w, h), [3]float32{127.5, 127.5, 127.5}, 128)
}

func preprocessForEmbedding(img image.Image, w, h int) []float32 {
	return toCHW(resize(img, w, h), [3]float32{127.5, 127.5, 127.5}, 127.5)
}

func resize(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// toCHW lays an RGBA image out as planar [R][G][B] floats: (pixel - mean) / std.
func toCHW(img *image.RGBA, mean [3]float32, std float32) []float32 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := w * h
	data := make([]float32, 3*plane)

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			px := row[x*4:]
			i := y*w + x
			data[i] = (float32(px[0]) - mean[0]) / std
			data[plane+i] = (float32(px[1]) - mean[1]) / std
			data[2*plane+i] = (float32(px[2]) - mean[2]) / std
		}
	}
	return data
}

// cropFace cuts the box out of img with 10% padding on each side.
// It returns nil for a box with no area inside the image.
func cropFace(img image.Image, bbox [4]float32) image.Image {
	bounds := img.Bounds()
	box := image.Rect(int(bbox[0]), int(bbox[1]), int(bbox[2]), int(bbox[3])).Intersect(bounds)
	if box.Empty() {
		return nil
	}

	padW, padH := box.Dx()/10, box.Dy()/10
	box = image.Rect(box.Min.X-padW, box.Min.Y-padH, box.Max.X+padW, box.Max.Y+padH).Intersect(bounds)

	crop := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Draw(crop, crop.Bounds(), img, box.Min, draw.Src)
	return crop
}
