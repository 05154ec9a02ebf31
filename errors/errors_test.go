package errors

import (
	stdlib "errors"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCause(t *testing.T) {
	std := stdlib.New("disk full")

	cases := map[string]struct {
		err  error
		want error
	}{
		"root":           {err: ErrNotFound, want: ErrNotFound},
		"wrapped root":   {err: Wrap(ErrNotFound, "escrow"), want: ErrNotFound},
		"wrapped stdlib": {err: Wrap(std, "write vault"), want: std},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, errors.Cause(tc.err))
		})
	}
}

type plainError struct{}

func (plainError) Error() string { return "plain" }

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		root *Error
		err  error
		want bool
	}{
		"same root": {
			root: ErrNotFound,
			err:  ErrNotFound,
			want: true,
		},
		"other root": {
			root: ErrNotFound,
			err:  ErrState,
		},
		"wrapped twice": {
			root: ErrNotFound,
			err:  Wrap(Wrapf(ErrNotFound, "escrow %d", 1), "take"),
			want: true,
		},
		"wrapped by pkg/errors": {
			root: ErrNotFound,
			err:  errors.Wrap(ErrNotFound, "vault"),
			want: true,
		},
		"other root wrapped": {
			root: ErrNotFound,
			err:  Wrap(ErrOverflow, "price"),
		},
		"stdlib error": {
			root: ErrNotFound,
			err:  fmt.Errorf("not found"),
		},
		"nil root and nil error": {
			root: nil,
			err:  nil,
			want: true,
		},
		"nil root and typed nil": {
			root: nil,
			err:  (*plainErrorPtr)(nil),
			want: true,
		},
		"nil root and value": {
			root: nil,
			err:  plainError{},
		},
		"root and nil": {
			root: ErrNotFound,
			err:  nil,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.root.Is(tc.err))
		})
	}
}

type plainErrorPtr struct{}

func (*plainErrorPtr) Error() string { return "plain pointer" }

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() { Register(ErrNotFound.code, "again") })
	assert.Panics(t, func() { Register(1, "internal") })
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, Wrapf(nil, "nothing %d", 1))
}

func TestWrappedMessage(t *testing.T) {
	err := Wrapf(ErrInsufficientAmount, "balance %d", 10)
	assert.Equal(t, "balance 10: insufficient amount", err.Error())
	assert.Equal(t, "balance 10: insufficient amount", fmt.Sprintf("%v", err))
	assert.Contains(t, fmt.Sprintf("%+v", err), "errors_test.go")
}

func TestRecover(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err)
		panic("boom")
	}
	err := run()
	require.Error(t, err)
	assert.True(t, ErrPanic.Is(err))
	assert.Contains(t, err.Error(), "boom")
}
