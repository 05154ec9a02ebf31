package coin

import (
	"math"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedArithmetic(t *testing.T) {
	cases := map[string]struct {
		fn      func(a, b uint64) (uint64, error)
		a, b    uint64
		want    uint64
		wantErr *errors.Error
	}{
		"add":            {fn: Add64, a: 2, b: 3, want: 5},
		"add max":        {fn: Add64, a: math.MaxUint64 - 1, b: 1, want: math.MaxUint64},
		"add overflow":   {fn: Add64, a: math.MaxUint64, b: 1, wantErr: errors.ErrOverflow},
		"sub":            {fn: Sub64, a: 5, b: 5, want: 0},
		"sub underflow":  {fn: Sub64, a: 4, b: 5, wantErr: errors.ErrUnderflow},
		"mul":            {fn: Mul64, a: 1000, b: 250, want: 250000},
		"mul zero":       {fn: Mul64, a: 0, b: math.MaxUint64, want: 0},
		"mul overflow":   {fn: Mul64, a: math.MaxUint64, b: 2, wantErr: errors.ErrOverflow},
		"mul fee limits": {fn: Mul64, a: math.MaxUint64 / BasisPoints, b: BasisPoints, want: math.MaxUint64 / BasisPoints * BasisPoints},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := tc.fn(tc.a, tc.b)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v error, got %v", tc.wantErr, err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestCoinAddSubtract(t *testing.T) {
	ns := barter.MustNewNamespace("testnet", 1)
	a, _ := ns.MustDerive([]byte("asset-a"))
	b, _ := ns.MustDerive([]byte("asset-b"))

	sum, err := NewCoin(a, 7).Add(NewCoin(a, 3))
	require.NoError(t, err)
	assert.Equal(t, NewCoin(a, 10), sum)

	_, err = NewCoin(a, 7).Add(NewCoin(b, 3))
	assert.True(t, errors.ErrInput.Is(err))

	_, err = NewCoin(a, 2).Subtract(NewCoin(a, 3))
	assert.True(t, errors.ErrInsufficientAmount.Is(err))

	_, err = NewCoin(a, math.MaxUint64).Add(NewCoin(a, 1))
	assert.True(t, errors.ErrOverflow.Is(err))
}
