package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestStructuralError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuralError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with detail",
			err:      &StructuralError{Stage: "select-stream", Detail: "all streams sum to zero"},
			wantMsg:  "structural error in select-stream: all streams sum to zero",
			wantBase: ErrMalformedInput,
		},
		{
			name:     "without detail",
			err:      &StructuralError{Stage: "load-document"},
			wantMsg:  "structural error in load-document",
			wantBase: ErrMalformedInput,
		},
		{
			name:     "with sentinel",
			err:      &StructuralError{Stage: "select-stream", Detail: "no candidates", Err: ErrNoBodyStream},
			wantMsg:  "structural error in select-stream: no candidates",
			wantBase: ErrNoBodyStream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, tt.wantBase) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.wantBase)
			}
		})
	}
}

func TestRowError(t *testing.T) {
	err := &RowError{Row: 3, Field: "original", Reason: "missing or empty"}
	want := "row 3: bad original: missing or empty"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err = &RowError{Row: 0, Reason: "not an object"}
	want = "row 0: not an object"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	underlying := fmt.Errorf("index out of bounds")
	err = &RowError{Row: 7, Field: "block_idx", Reason: "stale", Err: underlying}
	if got := err.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}
}

func TestNewHelpers(t *testing.T) {
	se := NewStructural("load-references", "not a JSON array", nil)
	if se.Stage != "load-references" || se.Detail != "not a JSON array" {
		t.Errorf("NewStructural fields wrong: %+v", se)
	}

	re := NewRow(12, "original", "missing")
	if re.Row != 12 || re.Field != "original" || re.Reason != "missing" {
		t.Errorf("NewRow fields wrong: %+v", re)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	base := errors.New("base error")
	wrapped := Wrap(base, "context")
	if wrapped == nil {
		t.Fatal("Wrap should not return nil for non-nil error")
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error should match base via errors.Is")
	}
	if wrapped.Error() != "context: base error" {
		t.Errorf("Wrap message = %q", wrapped.Error())
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	base := errors.New("base error")
	wrapped := Wrapf(base, "stream %d", 2)
	if wrapped.Error() != "stream 2: base error" {
		t.Errorf("Wrapf message = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error should match base via errors.Is")
	}
}

func TestIsAs(t *testing.T) {
	se := NewStructural("select-stream", "zero word sum", ErrNoBodyStream)
	wrapped := Wrap(se, "verify run")

	if !Is(wrapped, ErrNoBodyStream) {
		t.Error("Is should see through wrapping to the sentinel")
	}

	var target *StructuralError
	if !As(wrapped, &target) {
		t.Fatal("As should find the StructuralError")
	}
	if target.Stage != "select-stream" {
		t.Errorf("As target stage = %q", target.Stage)
	}
}
