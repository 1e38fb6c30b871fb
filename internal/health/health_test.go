package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandlerReportsOKWithNoError(t *testing.T) {
	c := NewChecker()
	rec := httptest.NewRecorder()
	c.Handler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
}

func TestHandlerReportsUnavailableAfterStoreError(t *testing.T) {
	c := NewChecker()
	c.RecordStoreError(errors.New("disk full"))
	rec := httptest.NewRecorder()
	c.Handler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("got status %d", rec.Code)
	}
}

func TestHandlerRecoversAfterClearedError(t *testing.T) {
	c := NewChecker()
	c.RecordStoreError(errors.New("disk full"))
	c.RecordStoreError(nil)
	rec := httptest.NewRecorder()
	c.Handler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
}
