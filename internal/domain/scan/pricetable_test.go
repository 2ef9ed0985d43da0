package scan_test

import (
	"testing"

	"github.com/DominusFuror/tradefury/internal/domain/scan"
	"github.com/DominusFuror/tradefury/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

// droppedEntryCount reads the dropped-entries counter off the registry.
func droppedEntryCount() float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return -1
	}
	for _, mf := range families {
		if mf.GetName() == "tradefury_ingest_entries_dropped_total" {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestParsePriceTable(t *testing.T) {
	Convey("Given a realm-nested price span", t, func() {
		span := `{
	["Proudmoore-Alliance"] = {
		["Frost Lotus"] = 500,
		["Saronite Ore"] = 12345,
	},
	["Proudmoore-Horde"] = {
		["Frost Lotus"] = 300,
		["Eternal Fire"] = "oops",
		["Broken Thing"] = 0,
		["Cursed Relic"] = -5,
	},
}`

		Convey("When parsing", func() {
			before := droppedEntryCount()
			prices := scan.ParsePriceTable(span)
			dropped := droppedEntryCount() - before

			Convey("Then the minimum price per name wins across realms", func() {
				So(prices["Frost Lotus"], ShouldEqual, 300)
			})

			Convey("And single-realm items come through as-is", func() {
				So(prices["Saronite Ore"], ShouldEqual, 12345)
			})

			Convey("And malformed, zero and negative values are dropped", func() {
				So(prices, ShouldNotContainKey, "Eternal Fire")
				So(prices, ShouldNotContainKey, "Broken Thing")
				So(prices, ShouldNotContainKey, "Cursed Relic")
				So(len(prices), ShouldEqual, 2)
			})

			Convey("And every skipped value increments the dropped count", func() {
				So(dropped, ShouldEqual, 3)
			})
		})
	})

	Convey("Given keys with HTML character escapes", t, func() {
		span := `{
	["Realm"] = {
		["Alchemist&#39;s Stone"] = 900,
		["Salt &amp; Pepper"] = 450,
	},
}`

		Convey("When parsing", func() {
			prices := scan.ParsePriceTable(span)

			Convey("Then keys are decoded before storing", func() {
				So(prices["Alchemist's Stone"], ShouldEqual, 900)
				So(prices["Salt & Pepper"], ShouldEqual, 450)
			})
		})
	})
}
