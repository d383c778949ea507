// Copyright © 2025 The Gomon Project.

package model

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrInvalidFieldID reports a field path that names no field of a model.
	ErrInvalidFieldID = errors.New("invalid field id")
)

type (
	// FieldID identifies a field of a Queriable model. Its String form is the
	// dotted path accepted by the model's Parse function.
	FieldID interface {
		String() string
	}

	// Queriable models answer a query for one of their fields. A nil result
	// means the field, or a sub-model on the path to it, is absent.
	Queriable[F FieldID] interface {
		Query(F) Field
	}

	// Recursive models are nodes of a tree that know their distance from the root.
	Recursive interface {
		Depth() int
	}

	// IndexFieldID addresses a field of one element of an ordered collection.
	IndexFieldID[F FieldID] struct {
		Idx int
		Sub F
	}

	// Vec is an ordered collection of Queriables, itself Queriable by IndexFieldID.
	Vec[F FieldID, Q Queriable[F]] []Q

	// leaf is the constraint for enumerations of scalar fields.
	leaf interface {
		~int
		FieldID
	}
)

// String formats the id as "<index>.<nested path>".
func (id IndexFieldID[F]) String() string {
	return strconv.Itoa(id.Idx) + "." + id.Sub.String()
}

// Query delegates to the indexed element, nil if the index is out of bounds.
func (v Vec[F, Q]) Query(id IndexFieldID[F]) Field {
	if id.Idx < 0 || id.Idx >= len(v) {
		return nil
	}
	return v[id.Idx].Query(id.Sub)
}

// ParseIndexFieldID parses "<index>.<nested path>" with parse for the nested path.
func ParseIndexFieldID[F FieldID](s string, parse func(string) (F, error)) (IndexFieldID[F], error) {
	idx, rest, ok := strings.Cut(s, ".")
	if !ok {
		return IndexFieldID[F]{}, fmt.Errorf("%w: no index in %q", ErrInvalidFieldID, s)
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 {
		return IndexFieldID[F]{}, fmt.Errorf("%w: bad index in %q", ErrInvalidFieldID, s)
	}
	sub, err := parse(rest)
	if err != nil {
		return IndexFieldID[F]{}, err
	}
	return IndexFieldID[F]{Idx: i, Sub: sub}, nil
}

// SortQueriables orders qs by the value of field id. Absent values order
// before present ones, incomparable values keep their relative order.
func SortQueriables[F FieldID, Q Queriable[F]](qs []Q, id F, reverse bool) {
	slices.SortStableFunc(qs, func(a, b Q) int {
		c := compareOptional(a.Query(id), b.Query(id))
		if reverse {
			return -c
		}
		return c
	})
}

// compareOptional compares query results the way an optional value does:
// absent < present, and incomparable present values are equal.
func compareOptional(a, b Field) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	c, _ := Compare(a, b)
	return c
}

// accessor names a scalar field of model M and extracts it.
type accessor[M any] struct {
	name  string
	field func(*M) Field
}

// accessors is the table of an enumeration of scalar fields, indexed by the
// enumeration's values.
type accessors[M any] []accessor[M]

// name returns the path name of enumeration value i.
func (as accessors[M]) name(i int) string {
	if i < 0 || i >= len(as) {
		return "invalid(" + strconv.Itoa(i) + ")"
	}
	return as[i].name
}

// query extracts field i of m, nil for an absent model or unknown field.
func (as accessors[M]) query(m *M, i int) Field {
	if m == nil || i < 0 || i >= len(as) {
		return nil
	}
	return as[i].field(m)
}

// parseLeaf looks up a path name in an enumeration.
func parseLeaf[L leaf, M any](as accessors[M], s string) (L, error) {
	for i, a := range as {
		if a.name == s {
			return L(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidFieldID, s)
}

// allLeaves lists every value of an enumeration.
func allLeaves[L leaf, M any](as accessors[M]) []L {
	ls := make([]L, len(as))
	for i := range as {
		ls[i] = L(i)
	}
	return ls
}

// prefixed lists the nested ids of a sub-model wrapped as the parent's FieldID.
func prefixed[L any, F FieldID](ls []L, wrap func(L) F) []F {
	fs := make([]F, len(ls))
	for i, l := range ls {
		fs[i] = wrap(l)
	}
	return fs
}
