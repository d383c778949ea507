// Copyright © 2025 The Gomon Project.

package model

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"

	"github.com/zosmac/gomodel/sample"
)

var (
	// ErrUnsupported reports an operation or conversion on mismatched Field variants.
	ErrUnsupported = errors.New("operation for unsupported types")
)

type (
	// Field is a type erased scalar returned by a query. A nil Field is an absent value.
	Field interface {
		fmt.Stringer
		isField()
	}

	// U32 Field variant.
	U32 uint32
	// U64 Field variant.
	U64 uint64
	// I32 Field variant.
	I32 int32
	// I64 Field variant.
	I64 int64
	// F64 Field variant.
	F64 float64
	// Str Field variant.
	Str string
	// State Field variant for a process' execution state.
	State sample.PidState
)

func (U32) isField()   {}
func (U64) isField()   {}
func (I32) isField()   {}
func (I64) isField()   {}
func (F64) isField()   {}
func (Str) isField()   {}
func (State) isField() {}

func (v U32) String() string   { return strconv.FormatUint(uint64(v), 10) }
func (v U64) String() string   { return strconv.FormatUint(uint64(v), 10) }
func (v I32) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v I64) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v F64) String() string   { return strconv.FormatFloat(float64(v), 'f', -1, 64) }
func (v Str) String() string   { return string(v) }
func (v State) String() string { return sample.PidState(v).String() }

// Compare orders two Fields of the same variant. Fields of different
// variants, or absent Fields, are incomparable and report ok false.
func Compare(a, b Field) (c int, ok bool) {
	switch a := a.(type) {
	case U32:
		if b, ok := b.(U32); ok {
			return cmp.Compare(a, b), true
		}
	case U64:
		if b, ok := b.(U64); ok {
			return cmp.Compare(a, b), true
		}
	case I32:
		if b, ok := b.(I32); ok {
			return cmp.Compare(a, b), true
		}
	case I64:
		if b, ok := b.(I64); ok {
			return cmp.Compare(a, b), true
		}
	case F64:
		if b, ok := b.(F64); ok {
			if a != a || b != b { // NaN
				return 0, false
			}
			return cmp.Compare(a, b), true
		}
	case Str:
		if b, ok := b.(Str); ok {
			return cmp.Compare(a, b), true
		}
	case State:
		if b, ok := b.(State); ok {
			return cmp.Compare(a, b), true
		}
	}
	return 0, false
}

// Equal reports whether two Fields are the same variant and value.
func Equal(a, b Field) bool {
	c, ok := Compare(a, b)
	return ok && c == 0
}

// Add sums two Fields of the same numeric variant, or concatenates two Str.
func Add(a, b Field) (Field, error) {
	switch a := a.(type) {
	case U32:
		if b, ok := b.(U32); ok {
			return a + b, nil
		}
	case U64:
		if b, ok := b.(U64); ok {
			return a + b, nil
		}
	case I32:
		if b, ok := b.(I32); ok {
			return a + b, nil
		}
	case I64:
		if b, ok := b.(I64); ok {
			return a + b, nil
		}
	case F64:
		if b, ok := b.(F64); ok {
			return a + b, nil
		}
	case Str:
		if b, ok := b.(Str); ok {
			return a + b, nil
		}
	}
	return nil, fmt.Errorf("%w: %T + %T", ErrUnsupported, a, b)
}

// MustAdd is Add for callers whose FieldID guarantees matching variants.
func MustAdd(a, b Field) Field {
	f, err := Add(a, b)
	if err != nil {
		panic(err)
	}
	return f
}

// ToFloat64 converts any numeric Field.
func ToFloat64(f Field) (float64, error) {
	switch v := f.(type) {
	case U32:
		return float64(v), nil
	case U64:
		return float64(v), nil
	case I32:
		return float64(v), nil
	case I64:
		return float64(v), nil
	case F64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("%w: %T to float64", ErrUnsupported, f)
}

// ToInt64 converts a signed integer Field.
func ToInt64(f Field) (int64, error) {
	switch v := f.(type) {
	case I32:
		return int64(v), nil
	case I64:
		return int64(v), nil
	}
	return 0, fmt.Errorf("%w: %T to int64", ErrUnsupported, f)
}

// ToString converts a Str Field.
func ToString(f Field) (string, error) {
	if v, ok := f.(Str); ok {
		return string(v), nil
	}
	return "", fmt.Errorf("%w: %T to string", ErrUnsupported, f)
}

// MustFloat64 panics if the Field is not numeric.
func MustFloat64(f Field) float64 {
	v, err := ToFloat64(f)
	if err != nil {
		panic(err)
	}
	return v
}

// MustInt64 panics if the Field is not a signed integer.
func MustInt64(f Field) int64 {
	v, err := ToInt64(f)
	if err != nil {
		panic(err)
	}
	return v
}

// MustString panics if the Field is not a Str.
func MustString(f Field) string {
	v, err := ToString(f)
	if err != nil {
		panic(err)
	}
	return v
}

// optional scalar to Field conversions, nil in means nil out.

func u32Field(v *uint32) Field {
	if v == nil {
		return nil
	}
	return U32(*v)
}

func u64Field(v *uint64) Field {
	if v == nil {
		return nil
	}
	return U64(*v)
}

func i32Field(v *int32) Field {
	if v == nil {
		return nil
	}
	return I32(*v)
}

func i64Field(v *int64) Field {
	if v == nil {
		return nil
	}
	return I64(*v)
}

func f64Field(v *float64) Field {
	if v == nil {
		return nil
	}
	return F64(*v)
}

func strField(v *string) Field {
	if v == nil {
		return nil
	}
	return Str(*v)
}

func stateField(v *sample.PidState) Field {
	if v == nil {
		return nil
	}
	return State(*v)
}
