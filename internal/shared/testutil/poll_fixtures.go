package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// PollCSV is a small published poll sheet with two pollsters, a gap and a
// malformed row
const PollCSV = "Encuestadora,Periodo,Candidato,Valor\n" +
	"DATUM,Ene-26,Keiko Fujimori,10\n" +
	"DATUM,Feb-26,Keiko Fujimori,12\n" +
	"DATUM,Ene-26,Rafael López Aliaga,8\n" +
	"IPSOS,Feb-26,Rafael López Aliaga,9.5\n" +
	"IPSOS,Feb-26,Keiko Fujimori,11\n" +
	"IPSOS,Feb-26,,3\n"

// SheetServer serves a poll sheet and can be switched to fail
type SheetServer struct {
	*httptest.Server
	status atomic.Int32
	body   atomic.Value
	hits   atomic.Int32
}

// NewSheetServer starts a server publishing body as text/csv. It is closed
// when the test ends.
func NewSheetServer(t *testing.T, body string) *SheetServer {
	t.Helper()
	s := &SheetServer{}
	s.status.Store(http.StatusOK)
	s.body.Store(body)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		status := int(s.status.Load())
		if status != http.StatusOK {
			http.Error(w, http.StatusText(status), status)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Write([]byte(s.body.Load().(string)))
	}))
	t.Cleanup(s.Close)
	return s
}

// SetStatus makes every following response use status
func (s *SheetServer) SetStatus(status int) { s.status.Store(int32(status)) }

// SetBody replaces the published sheet
func (s *SheetServer) SetBody(body string) { s.body.Store(body) }

// Hits returns the number of requests served
func (s *SheetServer) Hits() int { return int(s.hits.Load()) }
