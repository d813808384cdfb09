package obs

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInstrumentServesAndCounts(t *testing.T) {
	Init()

	handler := Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("wrapped handler status: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics endpoint: %d", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{"http_requests_total", "http_in_flight_requests", "ws_active_connections"} {
		if !strings.Contains(body, metric) {
			t.Fatalf("metric %s not exposed", metric)
		}
	}
}

func TestWSGaugeMoves(t *testing.T) {
	Init()
	WSConnected()
	WSConnected()
	WSDisconnected()
	// No assertion on the absolute value: other tests share the registry.
	// The calls above must simply not panic on an uninitialized gauge.
}
