package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DominusFuror/tradefury/internal/adapters/kv"
	service "github.com/DominusFuror/tradefury/internal/app"
	"github.com/DominusFuror/tradefury/internal/domain/identity"
	"github.com/DominusFuror/tradefury/internal/domain/model"
	"github.com/DominusFuror/tradefury/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

// unresolvedNameCount reads the unresolved-names counter off the registry.
func unresolvedNameCount() float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return -1
	}
	for _, mf := range families {
		if mf.GetName() == "tradefury_identity_names_unresolved_total" {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

type refStub map[string]model.ItemID

func (r refStub) LookupName(normalized string) (model.ItemID, bool) {
	id, ok := r[normalized]
	return id, ok
}

const sampleDoc = `
AUCTIONATOR_LAST_SCAN_TIME = 1700000000
AUCTIONATOR_PRICE_DATABASE = {
	["Proudmoore-Alliance"] = {
		["Frost Lotus"] = 500,
		["Unknown Herb"] = 42,
	},
}
AUCTIONATOR_PRICE_HISTORY = {
	["Frost Lotus"] = {
		["is"] = "36906:1",
		["100"] = "2500000:10",
		["90"] = "1200000:5",
	},
}
`

func TestParse(t *testing.T) {
	anchor := time.Unix(1700000000, 0).UTC()

	Convey("Given a document with both tables and a scan marker", t, func() {
		resolver := identity.NewResolver(
			identity.WithRefIndex(refStub{"frost lotus": 36906}),
		)
		svc := service.New(resolver)

		Convey("When parsing", func() {
			imp, err := svc.Parse(context.Background(), sampleDoc, "WTF.lua")
			So(err, ShouldBeNil)

			Convey("Then history and price observations land under one id", func() {
				history := imp.ItemPrices[36906]
				So(len(history), ShouldEqual, 3)
			})

			Convey("And timestamps count back from the marker", func() {
				history := imp.ItemPrices[36906]
				So(history[0].ObservedAt.Equal(anchor.Add(-10*time.Hour)), ShouldBeTrue)
				So(history[0].Price, ShouldEqual, 240000)
				latest, ok := history.Latest()
				So(ok, ShouldBeTrue)
				So(latest.ObservedAt.Equal(anchor), ShouldBeTrue)
			})

			Convey("And names nobody can resolve are counted, not fatal", func() {
				So(imp.Unresolved, ShouldEqual, 1)
				So(imp.ItemPrices, ShouldNotContainKey, model.ItemID(0))
			})

			Convey("And the history table primed the resolver", func() {
				name, ok := resolver.NameOf(36906)
				So(ok, ShouldBeTrue)
				So(name, ShouldEqual, "Frost Lotus")
			})

			Convey("And parsing again yields identical observations", func() {
				again, err := svc.Parse(context.Background(), sampleDoc, "WTF.lua")
				So(err, ShouldBeNil)
				So(again.ItemPrices, ShouldResemble, imp.ItemPrices)
			})
		})
	})

	Convey("Given a document in the legacy flat layout", t, func() {
		resolver := identity.NewResolver()
		svc := service.New(resolver)

		doc := `
AUCTIONATOR_PRICE_DATABASE = {
	["is"] = "1001:0:0",
	["price"] = 1250,
}
`
		Convey("When parsing", func() {
			imp, err := svc.Parse(context.Background(), doc, "old.lua")
			So(err, ShouldBeNil)

			Convey("Then prices come through keyed by id", func() {
				So(len(imp.ItemPrices[1001]), ShouldEqual, 1)
				So(imp.ItemPrices[1001][0].Price, ShouldEqual, 1250)
			})
		})
	})

	Convey("Given a document without any known table", t, func() {
		svc := service.New(identity.NewResolver())

		Convey("When parsing", func() {
			_, err := svc.Parse(context.Background(), "local x = 1", "junk.lua")

			Convey("Then it refuses the document", func() {
				So(errors.Is(err, service.ErrNoTables), ShouldBeTrue)
			})
		})
	})
}

func TestUnresolvedCountedOnce(t *testing.T) {
	Convey("Given a document with one unresolvable name", t, func() {
		resolver := identity.NewResolver(
			identity.WithRefIndex(refStub{"frost lotus": 36906}),
		)
		svc := service.New(resolver)

		Convey("When parsing once", func() {
			before := unresolvedNameCount()
			imp, err := svc.Parse(context.Background(), sampleDoc, "WTF.lua")
			So(err, ShouldBeNil)
			delta := unresolvedNameCount() - before

			Convey("Then the miss is counted exactly once", func() {
				So(imp.Unresolved, ShouldEqual, 1)
				So(delta, ShouldEqual, 1)
			})
		})
	})
}

func TestMergeInto(t *testing.T) {
	Convey("Given a service backed by a file store", t, func() {
		store, err := kv.NewFileStore(t.TempDir())
		So(err, ShouldBeNil)

		resolver := identity.NewResolver(
			identity.WithRefIndex(refStub{"frost lotus": 36906}),
		)
		svc := service.New(resolver, service.WithStore(store))

		imp, err := svc.Parse(context.Background(), sampleDoc, "WTF.lua")
		So(err, ShouldBeNil)

		Convey("When merging an import", func() {
			merged, err := svc.MergeInto(context.Background(), imp)
			So(err, ShouldBeNil)

			Convey("Then the ledger is persisted", func() {
				var onDisk model.Ledger
				So(store.ReadJSON(context.Background(), kv.LedgerKey, &onDisk), ShouldBeNil)
				So(len(onDisk[36906]), ShouldEqual, len(merged[36906]))
			})

			Convey("And re-importing the same document adds nothing", func() {
				again, err := svc.MergeInto(context.Background(), imp)
				So(err, ShouldBeNil)
				So(len(again[36906]), ShouldEqual, len(merged[36906]))
			})
		})
	})
}
