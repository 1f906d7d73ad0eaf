package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManager(t *testing.T) {
	Convey("Given a metrics manager with a custom registry", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(
			WithNamespace("test"),
			WithSubsystem("fetcher"),
			WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
			WithRegistry(registry),
		)

		Convey("Then it uses the given registry", func() {
			So(manager.Registry(), ShouldEqual, registry)
		})

		Convey("When fetches are recorded", func() {
			manager.RecordFetch("departments", OutcomeSuccess, 10*time.Millisecond)
			manager.RecordFetch("departments", OutcomeFailure, 10*time.Millisecond)
			manager.RecordFetch("departments", OutcomeFailure, 10*time.Millisecond)

			Convey("Then the counters reflect each outcome", func() {
				So(testutil.ToFloat64(manager.fetchesTotal.WithLabelValues("departments", OutcomeSuccess)), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.fetchesTotal.WithLabelValues("departments", OutcomeFailure)), ShouldEqual, 2)
			})
		})

		Convey("When an HTTP request is recorded", func() {
			manager.RecordHTTPRequest("/api/v1/departments/", http.MethodGet, http.StatusOK, time.Millisecond)

			Convey("Then it's exposed by the handler", func() {
				recorder := httptest.NewRecorder()
				manager.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
				So(recorder.Code, ShouldEqual, http.StatusOK)
				So(recorder.Body.String(), ShouldContainSubstring, "test_fetcher_http_requests_total")
			})
		})
	})

	Convey("Given a nil manager", t, func() {
		var manager *Manager

		Convey("Then recording is a no-op", func() {
			So(func() { manager.RecordFetch("departments", OutcomeSuccess, time.Millisecond) }, ShouldNotPanic)
			So(func() { manager.RecordHTTPRequest("/", http.MethodGet, http.StatusOK, time.Millisecond) }, ShouldNotPanic)
		})
	})

	Convey("Given two managers without a registry", t, func() {
		Convey("Then creating both doesn't panic on duplicate registration", func() {
			So(func() {
				_ = NewManager()
				_ = NewManager()
			}, ShouldNotPanic)
		})
	})
}
