// Copyright © 2025 The Gomon Project.

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVecQuery(t *testing.T) {
	v := Vec[NetFieldID, *SingleNetModel]{
		{Interface: "eth0", RxBytes: ptr[uint64](1)},
		{Interface: "eth1"},
	}
	assert.Equal(t, Str("eth1"), v.Query(IndexFieldID[NetFieldID]{Idx: 1, Sub: NetInterface}))
	assert.Equal(t, U64(1), v.Query(IndexFieldID[NetFieldID]{Idx: 0, Sub: NetRxBytes}))
	assert.Nil(t, v.Query(IndexFieldID[NetFieldID]{Idx: 1, Sub: NetRxBytes}))
	assert.Nil(t, v.Query(IndexFieldID[NetFieldID]{Idx: 2, Sub: NetInterface}))
	assert.Nil(t, v.Query(IndexFieldID[NetFieldID]{Idx: -1, Sub: NetInterface}))
}

func TestIndexFieldID(t *testing.T) {
	id, err := ParseIndexFieldID("12.tx_bytes", ParseNetFieldID)
	require.NoError(t, err)
	assert.Equal(t, IndexFieldID[NetFieldID]{Idx: 12, Sub: NetTxBytes}, id)
	assert.Equal(t, "12.tx_bytes", id.String())

	for _, in := range []string{"tx_bytes", "a.tx_bytes", "1.nope", ".tx_bytes"} {
		_, err := ParseIndexFieldID(in, ParseNetFieldID)
		assert.ErrorIs(t, err, ErrInvalidFieldID, in)
	}
}

func TestSortQueriablesStable(t *testing.T) {
	ns := []*SingleNetModel{
		{Interface: "a", RxBytes: ptr[uint64](2)},
		{Interface: "b"},
		{Interface: "c", RxBytes: ptr[uint64](1)},
		{Interface: "d", RxBytes: ptr[uint64](2)},
		{Interface: "e"},
	}
	order := func() string {
		s := ""
		for _, n := range ns {
			s += n.Interface
		}
		return s
	}

	SortQueriables(ns, NetRxBytes, false)
	assert.Equal(t, "becad", order())

	SortQueriables(ns, NetRxBytes, true)
	assert.Equal(t, "adcbe", order())
}

func TestInvalidLeafString(t *testing.T) {
	assert.Equal(t, "invalid(99)", NetFieldID(99).String())
	var m SingleNetModel
	assert.Nil(t, m.Query(NetFieldID(99)))
}
