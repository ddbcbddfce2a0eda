package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matryer/is"
)

func TestCORSHeadersAreAdded(t *testing.T) {
	is := is.New(t)

	r := New("test-service")
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	ts := httptest.NewServer(r)
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/ping", nil)
	req.Header.Add("Origin", "https://example.org")

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err)
	defer resp.Body.Close()

	is.Equal(resp.StatusCode, http.StatusNoContent)
	is.Equal(resp.Header.Get("Access-Control-Allow-Origin"), "https://example.org")
}
