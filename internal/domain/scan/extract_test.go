package scan_test

import (
	"testing"

	"github.com/DominusFuror/tradefury/internal/domain/scan"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExtractTable(t *testing.T) {
	Convey("Given a document with a named nested table", t, func() {
		doc := `
junk before
FOO = {
	["a"] = {
		["b"] = 1,
	},
}
junk after
`

		Convey("When extracting by name", func() {
			span, ok := scan.ExtractTable(doc, "FOO")

			Convey("Then the full balanced span is returned", func() {
				So(ok, ShouldBeTrue)
				So(span, ShouldStartWith, "{")
				So(span, ShouldEndWith, "}")
				So(span, ShouldContainSubstring, `["b"] = 1,`)
			})
		})

		Convey("When the name never occurs", func() {
			_, ok := scan.ExtractTable(doc, "BAR")

			Convey("Then it reports not found", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given a truncated document", t, func() {
		doc := "FOO = {\n\t[\"a\"] = {\n\t\t[\"b\"] = 1,\n"

		Convey("When the braces never balance", func() {
			span, ok := scan.ExtractTable(doc, "FOO")

			Convey("Then nothing is returned, not a partial span", func() {
				So(ok, ShouldBeFalse)
				So(span, ShouldBeEmpty)
			})
		})
	})

	Convey("Given the table name appearing inside string data first", t, func() {
		doc := `
OTHER = {
	["note"] = "FOO is mentioned here",
}
FOO = {
	["x"] = 2,
}
`

		Convey("When extracting FOO", func() {
			span, ok := scan.ExtractTable(doc, "FOO")

			Convey("Then only the real assignment matches", func() {
				So(ok, ShouldBeTrue)
				So(span, ShouldContainSubstring, `["x"] = 2,`)
				So(span, ShouldNotContainSubstring, "note")
			})
		})
	})
}
