package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Name  string `validate:"required"`
	Count int    `validate:"min=1,max=10"`
	Kind  string `validate:"oneof=movie director"`
}

func TestGetIsSingleton(t *testing.T) {
	if Get() != Get() {
		t.Error("Get() returned different instances")
	}
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name      string
		in        sample
		wantErr   bool
		wantField string
		wantTag   string
	}{
		{"valid", sample{Name: "x", Count: 3, Kind: "movie"}, false, "", ""},
		{"missing name", sample{Count: 3, Kind: "movie"}, true, "sample.Name", "required"},
		{"count too high", sample{Name: "x", Count: 11, Kind: "movie"}, true, "sample.Count", "max"},
		{"bad kind", sample{Name: "x", Count: 1, Kind: "studio"}, true, "sample.Kind", "oneof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("Struct() error type = %T, want *Error", err)
			}
			if len(verr.Fields) != 1 {
				t.Fatalf("len(Fields) = %d, want 1", len(verr.Fields))
			}
			if verr.Fields[0].Field != tt.wantField || verr.Fields[0].Tag != tt.wantTag {
				t.Errorf("field error = %+v, want %s/%s", verr.Fields[0], tt.wantField, tt.wantTag)
			}
			if !strings.HasPrefix(err.Error(), "validation failed: ") {
				t.Errorf("Error() = %q", err.Error())
			}
		})
	}
}
