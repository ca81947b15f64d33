package conv

import (
	"reflect"
	"testing"
)

func TestToInt64(t *testing.T) {
	tests := []struct {
		in   any
		want int64
		ok   bool
	}{
		{int(3), 3, true},
		{int64(9), 9, true},
		{float64(7), 7, true},
		{float64(7.5), 0, false},
		{"12", 12, true},
		{" 12 ", 12, true},
		{"12a", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToInt64(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ToInt64(%#v) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSliceAnyToInt64(t *testing.T) {
	got := SliceAnyToInt64([]any{1, 2.0, "3", "x", 4.5})
	want := []int64{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SliceAnyToInt64 = %v, want %v", got, want)
	}
	if SliceAnyToInt64("nope") != nil {
		t.Error("non-slice input should give nil")
	}
}

func TestConfigGet(t *testing.T) {
	m := map[string]any{"label_key": "category", "n": 5, "f": 2.0}
	if got := ConfigGet(m, "label_key", ""); got != "category" {
		t.Errorf("ConfigGet string = %q", got)
	}
	if got := ConfigGet(m, "missing", "dflt"); got != "dflt" {
		t.Errorf("ConfigGet default = %q", got)
	}
	if got := ConfigGet(m, "n", ""); got != "" {
		t.Errorf("ConfigGet type mismatch should default, got %q", got)
	}
	if got := ConfigGetInt64(m, "n", 0); got != 5 {
		t.Errorf("ConfigGetInt64 int = %d", got)
	}
	if got := ConfigGetInt64(m, "f", 0); got != 2 {
		t.Errorf("ConfigGetInt64 float = %d", got)
	}
	if got := ConfigGetInt64(nil, "f", 9); got != 9 {
		t.Errorf("ConfigGetInt64 nil map = %d", got)
	}
}
