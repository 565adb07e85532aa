package core

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestHandleErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewValidationError("bad", nil), http.StatusBadRequest},
		{NewNotFoundError("missing", nil), http.StatusNotFound},
		{NewUnauthorizedError("who", nil), http.StatusUnauthorized},
		{NewForbiddenError("no", nil), http.StatusForbidden},
		{NewAppError(ErrCodeRateLimited, "slow down", nil), http.StatusTooManyRequests},
		{NewDatabaseError("db", errors.New("disk")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rr := httptest.NewRecorder()
		HandleError(rr, tt.err)
		if rr.Code != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
	}
}

func TestHandleErrorHidesInternalText(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleError(rr, errors.New("secret connection string"))

	if strings.Contains(rr.Body.String(), "secret") {
		t.Errorf("internal error text leaked: %s", rr.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Success || resp.Error.Code != ErrCodeInternal {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("cause")
	err := error(NewNotFoundError("Video not found", cause).WithDetails(map[string]any{"id": 3}))

	if !errors.Is(err, cause) {
		t.Errorf("expected AppError to unwrap to its cause")
	}
	if !IsCode(err, ErrCodeNotFound) || IsCode(err, ErrCodeValidation) {
		t.Errorf("IsCode mismatch")
	}
	if IsCode(cause, ErrCodeNotFound) {
		t.Errorf("plain errors carry no code")
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x"}`))
	if err := DecodeJSON(httptest.NewRecorder(), req, &v); err != nil || v.Name != "x" {
		t.Fatalf("expected decode to succeed, got %v (%q)", err, v.Name)
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))
	if err := DecodeJSON(httptest.NewRecorder(), req, &v); !IsCode(err, ErrCodeValidation) {
		t.Errorf("expected validation error for malformed JSON, got %v", err)
	}

	req = httptest.NewRequest("POST", "/", nil)
	if err := DecodeJSON(httptest.NewRecorder(), req, &v); !IsCode(err, ErrCodeValidation) {
		t.Errorf("expected validation error for an empty body, got %v", err)
	}
}
