package ledger_test

import (
	"testing"
	"time"

	"github.com/DominusFuror/tradefury/internal/domain/ledger"
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

func TestReconstruct(t *testing.T) {
	anchor := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	Convey("Given relative-time records and a fixed anchor", t, func() {
		records := []scan.RawRecord{
			{TimeKey: 90, Total: 2500000, Quantity: 10},
			{TimeKey: 100, Total: 990000, Quantity: 3},
		}

		Convey("When reconstructing with a 60 second unit", func() {
			history := ledger.Reconstruct(records, 100, anchor, 60, "file.lua")

			Convey("Then timestamps count back from the anchor", func() {
				So(len(history), ShouldEqual, 2)
				So(history[0].ObservedAt.Equal(anchor.Add(-600*time.Second)), ShouldBeTrue)
				So(history[1].ObservedAt.Equal(anchor), ShouldBeTrue)
			})

			Convey("And totals become rounded unit prices", func() {
				So(history[0].Price, ShouldEqual, 250000)
				So(history[1].Price, ShouldEqual, 330000)
			})

			Convey("And the source is carried through", func() {
				So(history[0].Source, ShouldEqual, "file.lua")
			})
		})
	})

	Convey("Given degenerate records", t, func() {
		records := []scan.RawRecord{
			{TimeKey: 10, Total: 500, Quantity: 0},
			{TimeKey: 9, Total: 0, Quantity: 4},
			{TimeKey: 8, Total: -100, Quantity: 1},
		}

		Convey("When reconstructing", func() {
			before := droppedEntryCount()
			history := ledger.Reconstruct(records, 10, anchor, 3600, "x")
			dropped := droppedEntryCount() - before

			Convey("Then zero quantity is treated as one", func() {
				So(len(history), ShouldEqual, 1)
				So(history[0].Price, ShouldEqual, 500)
			})

			Convey("And the non-positive records are counted as dropped", func() {
				So(dropped, ShouldEqual, 2)
			})
		})
	})

	Convey("Given rounding on the half boundary", t, func() {
		records := []scan.RawRecord{{TimeKey: 1, Total: 15, Quantity: 2}}

		Convey("When reconstructing", func() {
			history := ledger.Reconstruct(records, 1, anchor, 3600, "x")

			Convey("Then halves round away from zero", func() {
				So(history[0].Price, ShouldEqual, 8)
			})
		})
	})
}
