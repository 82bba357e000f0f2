package extract

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Classifier", func() {
	var classifier *Classifier

	BeforeEach(func() {
		var err error
		classifier, err = NewClassifier(nil)
		Expect(err).NotTo(HaveOccurred())
	})

	It("prefers transport for a bus ticket", func() {
		c := classifier.Classify("XYZ Travels Bus Ticket Fare Rs 350", "Travels Bus Ticket Fare")
		Expect(c.Category).To(Equal(Transport))
		Expect(c.Scores[Transport]).To(BeNumerically(">", c.Scores[Shopping]))
		Expect(c.Confidence).To(Equal(95.0))
	})

	It("weights vendor matches four times", func() {
		c := classifier.Classify("bus ticket", "Cafe")
		Expect(c.Scores[Food]).To(Equal(4))
		Expect(c.Scores[Transport]).To(Equal(2))
		Expect(c.Category).To(Equal(Food))
	})

	It("derives confidence from the top score", func() {
		c := classifier.Classify("corner shop", "")
		Expect(c.Category).To(Equal(Shopping))
		Expect(c.Confidence).To(Equal(78.0))
	})

	It("breaks ties by vocabulary order", func() {
		c := classifier.Classify("misc shop", "")
		Expect(c.Scores[Shopping]).To(Equal(c.Scores[Miscellaneous]))
		Expect(c.Category).To(Equal(Shopping))
	})

	It("falls back to miscellaneous when nothing matches", func() {
		c := classifier.Classify("zzz qqq", "")
		Expect(c.Category).To(Equal(Miscellaneous))
		Expect(c.Confidence).To(Equal(40.0))
		Expect(c.Scores).To(HaveLen(len(Categories)))
	})

	It("always picks a category holding the top score", func() {
		inputs := [][2]string{
			{"hotel room night stay", ""},
			{"movie ticket cinema", "PVR Cinema"},
			{"taxi fare to airport", "City Cab"},
			{"rice chicken noodles", "Royal Biryani"},
			{"supermarket grocery", "Fresh Mart"},
			{"", ""},
		}
		for _, in := range inputs {
			c := classifier.Classify(in[0], in[1])
			Expect(c.Category).NotTo(BeEmpty())
			for _, other := range Categories {
				Expect(c.Scores[c.Category]).To(BeNumerically(">=", c.Scores[other]), in[0])
			}
		}
	})

	When("extra keywords are configured", func() {
		BeforeEach(func() {
			var err error
			classifier, err = NewClassifier(map[string][]string{Activities: {"Snorkel"}})
			Expect(err).NotTo(HaveOccurred())
		})

		It("scores them", func() {
			c := classifier.Classify("snorkel trip", "")
			Expect(c.Category).To(Equal(Activities))
			Expect(c.Scores[Activities]).To(Equal(1))
		})
	})

	It("rejects categories outside the vocabulary", func() {
		_, err := NewClassifier(map[string][]string{"groceries": {"milk"}})
		Expect(err).To(MatchError(ContainSubstring("unknown category")))
	})
})

var _ = Describe("LoadKeywords", func() {
	It("reads a YAML category map", func() {
		path := filepath.Join(GinkgoT().TempDir(), "keywords.yaml")
		Expect(os.WriteFile(path, []byte("food:\n  - thali\n  - dosa\ntransport:\n  - rickshaw\n"), 0644)).To(Succeed())

		extra, err := LoadKeywords(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(extra).To(HaveKeyWithValue(Food, []string{"thali", "dosa"}))
		Expect(extra).To(HaveKeyWithValue(Transport, []string{"rickshaw"}))
	})

	It("fails on a missing file", func() {
		_, err := LoadKeywords(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).To(HaveOccurred())
	})

	It("fails on malformed YAML", func() {
		path := filepath.Join(GinkgoT().TempDir(), "bad.yaml")
		Expect(os.WriteFile(path, []byte("food: [unterminated"), 0644)).To(Succeed())

		_, err := LoadKeywords(path)
		Expect(err).To(HaveOccurred())
	})
})
