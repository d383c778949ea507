// Copyright © 2025 The Gomon Project.

package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zosmac/gomodel/sample"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Field
		want int
		ok   bool
	}{
		{"u32 less", U32(1), U32(2), -1, true},
		{"u64 equal", U64(7), U64(7), 0, true},
		{"i32 greater", I32(-1), I32(-5), 1, true},
		{"i64 less", I64(-9), I64(3), -1, true},
		{"f64 greater", F64(2.5), F64(1.5), 1, true},
		{"string order", Str("a"), Str("b"), -1, true},
		{"state order", State(sample.StateRunning), State(sample.StateZombie), -1, true},
		{"cross variant", U64(1), I64(1), 0, false},
		{"f64 nan", F64(math.NaN()), F64(1), 0, false},
		{"absent", nil, U64(1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Compare(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Str("x"), Str("x")))
	assert.False(t, Equal(U32(1), U64(1)))
	assert.False(t, Equal(F64(1), F64(2)))
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name string
		a, b Field
		want Field
	}{
		{"u32", U32(1), U32(2), U32(3)},
		{"u64", U64(1), U64(2), U64(3)},
		{"i32", I32(-1), I32(2), I32(1)},
		{"i64", I64(-4), I64(-2), I64(-6)},
		{"f64", F64(0.5), F64(0.25), F64(0.75)},
		{"str", Str("foo"), Str("bar"), Str("foobar")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Add(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddUnsupported(t *testing.T) {
	_, err := Add(U64(1), F64(1))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Add(State(sample.StateRunning), State(sample.StateRunning))
	assert.ErrorIs(t, err, ErrUnsupported)

	assert.Panics(t, func() { MustAdd(Str("a"), I32(1)) })
}

func TestConversions(t *testing.T) {
	f, err := ToFloat64(U32(3))
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	i, err := ToInt64(I32(-3))
	require.NoError(t, err)
	assert.Equal(t, int64(-3), i)

	s, err := ToString(Str("cg"))
	require.NoError(t, err)
	assert.Equal(t, "cg", s)

	_, err = ToInt64(U64(1))
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = ToString(F64(1))
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = ToFloat64(Str("1"))
	assert.ErrorIs(t, err, ErrUnsupported)

	assert.Panics(t, func() { MustFloat64(Str("1")) })
	assert.Panics(t, func() { MustInt64(F64(1)) })
	assert.Panics(t, func() { MustString(nil) })
	assert.Equal(t, 1.5, MustFloat64(F64(1.5)))
}

func TestFieldString(t *testing.T) {
	assert.Equal(t, "42", U64(42).String())
	assert.Equal(t, "-7", I32(-7).String())
	assert.Equal(t, "0.5", F64(0.5).String())
	assert.Equal(t, "Sleeping", State(sample.StateSleeping).String())
}
