package models

import (
	"testing"

	"github.com/boardhaven/commerce/models/enum"
)

func TestFormatCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{2999, "$29.99"},
		{100, "$1.00"},
		{5, "$0.05"},
		{0, "$0.00"},
		{-1050, "-$10.50"},
		{123456, "$1234.56"},
	}

	for _, tc := range cases {
		if got := FormatCents(tc.cents); got != tc.want {
			t.Errorf("FormatCents(%d): expected %s, got %s", tc.cents, tc.want, got)
		}
	}
}

func TestCartItem_LineTotal(t *testing.T) {
	item := CartItem{ID: "p1", Type: enum.ProductTypeGame, PriceCents: 2500, Quantity: 3}
	if got := item.LineTotal(); got != 7500 {
		t.Errorf("Expected 7500, got %d", got)
	}

	// Missing quantity means one unit.
	item.Quantity = 0
	if got := item.LineTotal(); got != 2500 {
		t.Errorf("Expected 2500 for zero quantity, got %d", got)
	}
}
