package core

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ----------------------------------------------------------------------------
// ParseFlag / SplitList Tests
// ----------------------------------------------------------------------------

func TestParseFlag(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"TRUE", true},
		{"true", true},
		{"True", true},
		{"  TRUE  ", true},
		{`="TRUE"`, true},
		{"FALSE", false},
		{"false", false},
		{"", false},
		{"yes", false},
		{"1", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFlag(tt.input); got != tt.want {
				t.Errorf("ParseFlag(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "   ", []string{}},
		{"single", "summer", []string{"summer"}},
		{"trimmed", " summer , cotton ,dress", []string{"summer", "cotton", "dress"}},
		{"empty items removed", "a,,b, ,c,", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitList(tt.input)
			if got == nil {
				t.Fatalf("SplitList(%q) returned nil, want empty slice", tt.input)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitList(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgNumeric / ToPgInt4 Tests
// ----------------------------------------------------------------------------

func TestToPgNumeric(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue string
	}{
		{name: "positive integer", input: "123", wantValid: true, wantValue: "123"},
		{name: "zero", input: "0", wantValid: true, wantValue: "0"},
		{name: "decimal", input: "1299.50", wantValid: true, wantValue: "1299.5"},
		{name: "leading decimal point", input: ".99", wantValid: true, wantValue: "0.99"},
		{name: "dollar and thousands", input: "$1,234.56", wantValid: true, wantValue: "1234.56"},
		{name: "rupee", input: "₹2,499", wantValid: true, wantValue: "2499"},
		{name: "accounting negative", input: "(45.10)", wantValid: true, wantValue: "-45.1"},
		{name: "excel formula prefix", input: `="12.5"`, wantValid: true, wantValue: "12.5"},
		{name: "empty is NULL", input: "", wantValid: false},
		{name: "whitespace is NULL", input: "   ", wantValid: false},
		{name: "text is NULL", input: "N/A", wantValid: false},
		{name: "two decimal points", input: "1.2.3", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToPgNumeric(tt.input)

			if result.Valid != tt.wantValid {
				t.Fatalf("ToPgNumeric(%q).Valid = %v, want %v", tt.input, result.Valid, tt.wantValid)
			}
			if !tt.wantValid {
				return
			}

			got, ok := PgNumericToDecimal(result)
			if !ok {
				t.Fatalf("PgNumericToDecimal(ToPgNumeric(%q)) not ok", tt.input)
			}
			want := decimal.RequireFromString(tt.wantValue)
			if !got.Equal(want) {
				t.Errorf("ToPgNumeric(%q) = %s, want %s", tt.input, got, want)
			}
		})
	}
}

func TestToPgInt4(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      int32
	}{
		{"0", true, 0},
		{"12", true, 12},
		{"12.0", true, 12},
		{"-3", true, -3},
		{"1,000", true, 1000},
		{"", false, 0},
		{"1.5", false, 0},
		{"ten", false, 0},
		{"99999999999", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ToPgInt4(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToPgInt4(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && got.Int32 != tt.want {
				t.Errorf("ToPgInt4(%q) = %d, want %d", tt.input, got.Int32, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgText / ToPgUUID Tests
// ----------------------------------------------------------------------------

func TestToPgText(t *testing.T) {
	if got := ToPgText("  Linen Shirt "); !got.Valid || got.String != "Linen Shirt" {
		t.Errorf("ToPgText trimmed = %+v", got)
	}
	if got := ToPgText(""); got.Valid {
		t.Errorf("ToPgText(\"\") should be invalid")
	}
	if got := ToPgText(" \t "); got.Valid {
		t.Errorf("ToPgText(whitespace) should be invalid")
	}
}

func TestToPgUUID(t *testing.T) {
	id := uuid.New()

	got := ToPgUUID(id.String())
	if !got.Valid || uuid.UUID(got.Bytes) != id {
		t.Errorf("ToPgUUID round trip = %+v, want %s", got, id)
	}
	if ToPgUUID("").Valid {
		t.Error("ToPgUUID(\"\") should be invalid")
	}
	if ToPgUUID("not-a-uuid").Valid {
		t.Error("ToPgUUID(garbage) should be invalid")
	}
}

func TestDecimalToPgNumeric(t *testing.T) {
	d := decimal.RequireFromString("1499.99")

	n := DecimalToPgNumeric(d)
	back, ok := PgNumericToDecimal(n)
	if !ok || !back.Equal(d) {
		t.Errorf("decimal round trip = %s (ok=%v), want %s", back, ok, d)
	}

	if _, ok := PgNumericToDecimal(ToPgNumeric("")); ok {
		t.Error("PgNumericToDecimal(NULL) should not be ok")
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  hello  ", "hello"},
		{`="00123"`, "00123"},
		{"=SUM", "SUM"},
		{`"quoted"`, "quoted"},
		{"'single'", "single"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
