package scanning

import (
	"bytes"
	"errors"
	"image/jpeg"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var _ = Describe("DecodeImage", func() {
	var (
		data     []byte
		mimeType string
		err      error
		width    int
	)

	JustBeforeEach(func() {
		img, mt, e := DecodeImage(data)
		mimeType, err = mt, e
		width = 0
		if img != nil {
			width = img.Bounds().Dx()
		}
	})

	When("decoding a PNG", func() {
		BeforeEach(func() {
			data = pngBytes(testImage(12, 6))
		})

		It("sniffs the type and decodes", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(mimeType).To(Equal("image/png"))
			Expect(width).To(Equal(12))
		})
	})

	When("decoding a JPEG", func() {
		BeforeEach(func() {
			var buf bytes.Buffer
			Expect(jpeg.Encode(&buf, testImage(16, 8), nil)).To(Succeed())
			data = buf.Bytes()
		})

		It("sniffs the type and decodes", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(mimeType).To(Equal("image/jpeg"))
			Expect(width).To(Equal(16))
		})
	})

	When("decoding a BMP", func() {
		BeforeEach(func() {
			var buf bytes.Buffer
			Expect(bmp.Encode(&buf, testImage(10, 5))).To(Succeed())
			data = buf.Bytes()
		})

		It("decodes", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(width).To(Equal(10))
		})
	})

	When("decoding a TIFF", func() {
		BeforeEach(func() {
			var buf bytes.Buffer
			Expect(tiff.Encode(&buf, testImage(8, 4), nil)).To(Succeed())
			data = buf.Bytes()
		})

		It("decodes", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(mimeType).To(Equal("image/tiff"))
			Expect(width).To(Equal(8))
		})
	})

	When("the data is not an image", func() {
		BeforeEach(func() {
			data = []byte("hello, world")
		})

		It("returns an unsupported format error", func() {
			Expect(err).To(MatchError(ContainSubstring("unsupported image format")))
		})
	})

	When("the data is empty", func() {
		BeforeEach(func() {
			data = nil
		})

		It("returns an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("isHEICFormat", func() {
	It("detects the ftyp heic brand", func() {
		Expect(isHEICFormat([]byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00"))).To(BeTrue())
	})

	It("rejects short data", func() {
		Expect(isHEICFormat([]byte("ftyp"))).To(BeFalse())
	})
})

var _ = Describe("RecognitionError", func() {
	It("matches ErrEngineUnavailable by kind", func() {
		err := error(engineUnavailable(errors.New("missing")))
		Expect(errors.Is(err, ErrEngineUnavailable)).To(BeTrue())
		Expect(errors.Is(processingFailed(errors.New("x")), ErrEngineUnavailable)).To(BeFalse())
	})

	It("unwraps the cause", func() {
		cause := errors.New("cause")
		Expect(errors.Is(processingFailed(cause), cause)).To(BeTrue())
	})

	It("converts arbitrary errors", func() {
		Expect(AsRecognitionError(errors.New("x")).Kind).To(Equal(KindProcessingFailed))
		Expect(AsRecognitionError(ErrEngineUnavailable).Kind).To(Equal(KindEngineUnavailable))
	})
})
