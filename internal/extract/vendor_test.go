package extract

import (
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Vendor", func() {
	DescribeTable("inferring the merchant",
		func(text, expected string) {
			Expect(Vendor(text)).To(Equal(expected))
		},
		Entry("first name-shaped line", "Date : 09/01/2026\nTotal: 45.00\nJoe's Diner", "Joe's Diner"),
		Entry("skips address lines", "123 Main Street\nFRESH MART\nTotal 9.99", "FRESH MART"),
		Entry("prefers priority terms when no line is name-shaped", "Royal Biryani 12\n45 Gandhi Rd", "Royal Biryani 12"),
		Entry("explicit vendor marker", "Receipt 2291 paid at Corner Store 22", "Corner Store"),
		Entry("title-case run", "Paid 22 Blue Moon Cafe 11", "Blue Moon Cafe"),
		Entry("line with the most letters", "#12 ab\n99 QWERTY 1234", "QWERTY"),
		Entry("nothing name-like", "12 34\n!!", ""),
		Entry("empty text", "", ""),
	)

	It("limits the name to 40 characters", func() {
		v := Vendor(strings.Repeat("abcde ", 10))
		Expect(v).NotTo(BeEmpty())
		Expect(utf8.RuneCountInString(v)).To(BeNumerically("<=", 40))
	})

	It("ignores name-shaped lines after the sixth", func() {
		text := strings.Repeat("1111\n", 6) + "late name"
		Expect(Vendor(text)).To(BeEmpty())
	})
})
