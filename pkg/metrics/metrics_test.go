package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the package-level helpers", t, func() {
		Convey("When recording ingestion metrics", func() {
			So(func() {
				RecordImport()
				RecordImportFailed()
				RecordObservationsParsed(42)
				RecordEntryDropped()
			}, ShouldNotPanic)
		})

		Convey("When recording identity metrics", func() {
			So(func() {
				RecordNameResolved()
				RecordNameUnresolved()
				RecordIdentityOverride()
				UpdateIdentityCacheSize(100)
			}, ShouldNotPanic)
		})

		Convey("When recording lookup metrics", func() {
			So(func() {
				RecordLookupLatency(12.5)
				RecordLookupError()
				UpdateLookupQueueDepth(4)
				UpdateLookupQueueDepth(0)
			}, ShouldNotPanic)
		})

		Convey("When recording storage metrics", func() {
			So(func() {
				RecordPersistenceError()
				UpdateLedgerItems(1500)
				UpdateLedgerItems(0)
			}, ShouldNotPanic)
		})

		Convey("When recording edge values", func() {
			So(func() {
				RecordObservationsParsed(0)
				UpdateIdentityCacheSize(0)
				RecordLookupLatency(0.0)
				RecordLookupLatency(100000.0)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		done := make(chan bool, 10)

		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					RecordImport()
					UpdateLookupQueueDepth(j)
					RecordLookupLatency(float64(j))
				}
				done <- true
			}()
		}
		for i := 0; i < 10; i++ {
			<-done
		}

		Convey("Then concurrent access does not panic", func() {
			So(true, ShouldBeTrue)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		Convey("When gathering", func() {
			families, err := GetRegistry().Gather()

			Convey("Then the pipeline metrics are registered", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
