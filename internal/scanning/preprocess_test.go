package scanning

import (
	"image"
	"image/color"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Preprocess", func() {
	It("upscales narrow images to 1200px wide", func() {
		out := Preprocess(testImage(100, 50))
		Expect(out.Bounds().Dx()).To(Equal(1200))
		Expect(out.Bounds().Dy()).To(Equal(600))
	})

	It("upscales wide images at least three times", func() {
		out := Preprocess(testImage(1000, 4))
		Expect(out.Bounds().Dx()).To(Equal(3000))
		Expect(out.Bounds().Dy()).To(Equal(12))
	})

	It("produces a grayscale image", func() {
		src := image.NewRGBA(image.Rect(0, 0, 30, 10))
		for x := 0; x < 30; x++ {
			for y := 0; y < 10; y++ {
				src.Set(x, y, color.RGBA{R: uint8(x * 8), G: 200, B: uint8(y * 20), A: 255})
			}
		}
		out := Preprocess(src)
		for _, p := range []image.Point{{0, 0}, {500, 100}, {1199, 399}} {
			c := out.NRGBAAt(p.X, p.Y)
			Expect(c.R).To(Equal(c.G))
			Expect(c.G).To(Equal(c.B))
		}
	})

	It("flattens transparency onto white", func() {
		out := Preprocess(image.NewNRGBA(image.Rect(0, 0, 10, 10)))
		Expect(out.NRGBAAt(15, 15)).To(Equal(color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
	})

	It("keeps dark text dark", func() {
		out := Preprocess(testImage(40, 20))
		center := out.NRGBAAt(out.Bounds().Dx()/2, out.Bounds().Dy()/2)
		corner := out.NRGBAAt(2, 2)
		Expect(center.R).To(BeNumerically("<", 64))
		Expect(corner.R).To(Equal(uint8(255)))
	})

	It("returns an empty image unchanged in size", func() {
		out := Preprocess(image.NewRGBA(image.Rect(0, 0, 0, 0)))
		Expect(out.Bounds().Empty()).To(BeTrue())
	})
})

var _ = Describe("enhanceContrast", func() {
	It("stretches levels away from the mean", func() {
		img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
		img.SetNRGBA(0, 0, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
		img.SetNRGBA(1, 0, color.NRGBA{R: 140, G: 140, B: 140, A: 255})

		out := enhanceContrast(img, 2.5)
		Expect(out.NRGBAAt(0, 0).R).To(Equal(uint8(70)))
		Expect(out.NRGBAAt(1, 0).R).To(Equal(uint8(170)))
	})
})

var _ = Describe("enhanceBrightness", func() {
	It("scales levels and clips at white", func() {
		img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
		img.SetNRGBA(0, 0, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
		img.SetNRGBA(1, 0, color.NRGBA{R: 250, G: 250, B: 250, A: 255})

		out := enhanceBrightness(img, 1.2)
		Expect(out.NRGBAAt(0, 0).R).To(Equal(uint8(120)))
		Expect(out.NRGBAAt(1, 0).R).To(Equal(uint8(255)))
	})
})

var _ = Describe("enhanceSharpness", func() {
	It("leaves flat regions untouched", func() {
		img := image.NewNRGBA(image.Rect(0, 0, 5, 5))
		for i := range img.Pix {
			img.Pix[i] = 128
		}
		out := enhanceSharpness(img, 2.0)
		Expect(out.NRGBAAt(2, 2).R).To(Equal(uint8(128)))
	})
})
