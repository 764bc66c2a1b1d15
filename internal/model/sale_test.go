package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSaleStatus(t *testing.T) {
	cases := []struct {
		in   string
		want SaleStatus
	}{
		{"paid", StatusPaid},
		{"PAID", StatusPaid},
		{"  pagado ", StatusPaid},
		{"completada", StatusPaid},
		{"cancelled", StatusCancelled},
		{"canceled", StatusCancelled},
		{"anulada", StatusCancelled},
		{"", StatusUnknown},
		{"pending", StatusUnknown},
		{"garbage", StatusUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseSaleStatus(tc.in), "input %q", tc.in)
	}
}
