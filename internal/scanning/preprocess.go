package scanning

import (
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"
)

const (
	minUpscaleWidth  = 1200
	minUpscaleFactor = 3.0
	contrastFactor   = 2.5
	brightnessFactor = 1.2
	sharpnessFactor  = 2.0
)

// smoothKernel is the 3x3 smoothing filter sharpness is measured against.
var smoothKernel = [9]float64{
	1, 1, 1,
	1, 5, 1,
	1, 1, 1,
}

// Preprocess prepares an image for character recognition: it flattens the image
// onto white, upscales it at least 3x (and to at least 1200px wide), converts it
// to grayscale and boosts contrast, brightness and sharpness. If any step panics
// the plain grayscale conversion of src is returned instead.
func Preprocess(src image.Image) (out *image.NRGBA) {
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return imaging.Grayscale(src)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Image preprocessing failed, using grayscale", "error", r)
			out = imaging.Grayscale(src)
		}
	}()

	scale := math.Max(minUpscaleWidth/float64(b.Dx()), minUpscaleFactor)
	width := int(float64(b.Dx()) * scale)
	height := int(float64(b.Dy()) * scale)

	rgb := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), src, image.Pt(0, 0), 1.0)
	img := imaging.Resize(rgb, width, height, imaging.Lanczos)
	img = imaging.Grayscale(img)
	img = enhanceContrast(img, contrastFactor)
	img = enhanceBrightness(img, brightnessFactor)
	img = enhanceSharpness(img, sharpnessFactor)
	return img
}

// enhanceContrast pushes gray levels away from the image's mean level.
func enhanceContrast(img *image.NRGBA, factor float64) *image.NRGBA {
	mean := meanLevel(img)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return scaleGray(c, func(v float64) float64 { return mean + factor*(v-mean) })
	})
}

// enhanceBrightness scales gray levels towards white.
func enhanceBrightness(img *image.NRGBA, factor float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return scaleGray(c, func(v float64) float64 { return v * factor })
	})
}

// enhanceSharpness extrapolates away from a smoothed copy of the image.
func enhanceSharpness(img *image.NRGBA, factor float64) *image.NRGBA {
	smooth := imaging.Convolve3x3(img, smoothKernel, &imaging.ConvolveOptions{Normalize: true})
	out := imaging.Clone(img)
	for i := 0; i+3 < len(out.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			s := float64(smooth.Pix[i+c])
			out.Pix[i+c] = clamp8(s + factor*(float64(img.Pix[i+c])-s))
		}
	}
	return out
}

func meanLevel(img *image.NRGBA) float64 {
	var sum, n float64
	for i := 0; i+3 < len(img.Pix); i += 4 {
		sum += float64(img.Pix[i])
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Round(sum / n)
}

func scaleGray(c color.NRGBA, fn func(float64) float64) color.NRGBA {
	return color.NRGBA{
		R: clamp8(fn(float64(c.R))),
		G: clamp8(fn(float64(c.G))),
		B: clamp8(fn(float64(c.B))),
		A: c.A,
	}
}

func clamp8(v float64) uint8 {
	return uint8(math.Min(255, math.Max(0, math.Round(v))))
}
