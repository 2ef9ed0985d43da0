package lookup_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DominusFuror/tradefury/internal/adapters/lookup"
	"github.com/DominusFuror/tradefury/internal/domain/identity"
	"github.com/DominusFuror/tradefury/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClient(t *testing.T) {
	Convey("Given a server with the reference API shape", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/search":
				if r.URL.Query().Get("q") == "saronite ore" {
					w.Write([]byte(`{"results":[
						{"id":36912,"name":"Saronite Ore"},
						{"id":"36913","name":"Saronite Bar"},
						{"id":1,"name":""},
						{"name":"No Id"}
					]}`))
					return
				}
				w.Write([]byte(`{"results":[]}`))
			case "/item/36912":
				w.Write([]byte(`{"id":36912,"name":"Saronite Ore"}`))
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		c := lookup.NewClient(srv.URL)

		Convey("When searching by name", func() {
			matches, err := c.SearchByName(context.Background(), "saronite ore")

			Convey("Then usable candidates come back in order", func() {
				So(err, ShouldBeNil)
				So(len(matches), ShouldEqual, 2)
				So(matches[0], ShouldResemble, identity.Match{ID: 36912, Name: "Saronite Ore"})
				So(matches[1].ID, ShouldEqual, model.ItemID(36913))
			})
		})

		Convey("When searching finds nothing", func() {
			matches, err := c.SearchByName(context.Background(), "nothing here")
			So(err, ShouldBeNil)
			So(len(matches), ShouldEqual, 0)
		})

		Convey("When fetching a canonical name", func() {
			name, err := c.FetchCanonicalName(context.Background(), 36912)
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "Saronite Ore")
		})

		Convey("When the item does not exist", func() {
			_, err := c.FetchCanonicalName(context.Background(), 404404)
			So(errors.Is(err, identity.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given an upstream with a different response shape", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"hits":[{"itemId":7,"label":"Odd Thing"}]}}`))
		}))
		defer srv.Close()

		c := lookup.NewClient(srv.URL,
			lookup.WithPaths("$.data.hits", "$.itemId", "$.label"))

		Convey("When searching with overridden paths", func() {
			matches, err := c.SearchByName(context.Background(), "odd")

			Convey("Then extraction follows the configured expressions", func() {
				So(err, ShouldBeNil)
				So(len(matches), ShouldEqual, 1)
				So(matches[0], ShouldResemble, identity.Match{ID: 7, Name: "Odd Thing"})
			})
		})
	})
}
