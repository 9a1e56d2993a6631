package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "integer", input: "90", want: "90"},
		{name: "two decimals", input: "33.33", want: "33.33"},
		{name: "surrounding spaces", input: " 10.5 ", want: "10.5"},
		{name: "three decimals", input: "0.001", wantErr: ErrInvalidPrecision},
		{name: "garbage", input: "ten", wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSumMoney_NoDrift(t *testing.T) {
	tenth := decimal.RequireFromString("0.10")
	amounts := make([]decimal.Decimal, 0, 1000)
	for i := 0; i < 1000; i++ {
		amounts = append(amounts, tenth)
	}

	if got := SumMoney(amounts...); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100, got %s", got)
	}
}

func TestCentsRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("-12.34")
	if cents := ToCents(d); cents != -1234 {
		t.Fatalf("expected -1234 cents, got %d", cents)
	}
	if got := FromCents(-1234); !got.Equal(d) {
		t.Fatalf("expected %s, got %s", d, got)
	}
	if got := FormatMoney(decimal.NewFromInt(5)); got != "5.00" {
		t.Errorf("expected 5.00, got %s", got)
	}
}
