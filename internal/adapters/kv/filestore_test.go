package kv_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DominusFuror/tradefury/internal/adapters/kv"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFileStore(t *testing.T) {
	Convey("Given a file store in a fresh directory", t, func() {
		store, err := kv.NewFileStore(filepath.Join(t.TempDir(), "data"))
		So(err, ShouldBeNil)
		ctx := context.Background()

		type blob struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		}

		Convey("When writing and reading back", func() {
			So(store.WriteJSON(ctx, "prefs", blob{Name: "alpha", Count: 3}), ShouldBeNil)

			var got blob
			So(store.ReadJSON(ctx, "prefs", &got), ShouldBeNil)

			Convey("Then the value round-trips", func() {
				So(got.Name, ShouldEqual, "alpha")
				So(got.Count, ShouldEqual, 3)
			})

			Convey("And a rewrite replaces it", func() {
				So(store.WriteJSON(ctx, "prefs", blob{Name: "beta"}), ShouldBeNil)
				var again blob
				So(store.ReadJSON(ctx, "prefs", &again), ShouldBeNil)
				So(again.Name, ShouldEqual, "beta")
			})
		})

		Convey("When reading a key that was never written", func() {
			var got blob
			err := store.ReadJSON(ctx, "missing", &got)

			Convey("Then it reports not found", func() {
				So(errors.Is(err, kv.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When deleting", func() {
			So(store.WriteJSON(ctx, "gone", blob{Name: "x"}), ShouldBeNil)
			So(store.Delete(ctx, "gone"), ShouldBeNil)

			var got blob
			So(errors.Is(store.ReadJSON(ctx, "gone", &got), kv.ErrNotFound), ShouldBeTrue)

			Convey("And deleting again is fine", func() {
				So(store.Delete(ctx, "gone"), ShouldBeNil)
			})
		})

		Convey("When the key could escape the directory", func() {
			for _, key := range []string{"", "../up", `a\b`, "dotted.name"} {
				So(errors.Is(store.WriteJSON(ctx, key, blob{}), kv.ErrInvalidKey), ShouldBeTrue)
			}
		})
	})
}
