package handlers

import "testing"

func TestPriceToPaisa(t *testing.T) {
	tests := []struct {
		price float64
		want  int64
	}{
		{1500, 150000},
		{0.5, 50},
		{999.99, 99999},
		{250.75, 25075},
	}
	for _, tt := range tests {
		if got := priceToPaisa(tt.price); got != tt.want {
			t.Fatalf("priceToPaisa(%v) = %d, want %d", tt.price, got, tt.want)
		}
	}
}
