// Copyright © 2025 The Gomon Project.

package sample

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePidState(t *testing.T) {
	tests := []struct {
		code string
		want PidState
		ok   bool
	}{
		{"R", StateRunning, true},
		{"S", StateSleeping, true},
		{"D", StateUninterruptibleSleep, true},
		{"T", StateStopped, true},
		{"t", StateTracingStopped, true},
		{"Z", StateZombie, true},
		{"X", StateDead, true},
		{"x", StateDead, true},
		{"I", StateIdle, true},
		{"P", StateParked, true},
		{"W", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, ok := ParsePidState(tt.code)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPidStateText(t *testing.T) {
	b, err := json.Marshal(struct {
		State *PidState `json:"state"`
	}{Ptr(StateZombie)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"Zombie"}`, string(b))

	var s PidState
	require.NoError(t, s.UnmarshalText([]byte("Idle")))
	assert.Equal(t, StateIdle, s)
	assert.Error(t, s.UnmarshalText([]byte("Bogus")))

	assert.Equal(t, "PidState(42)", PidState(42).String())
	_, err = PidState(-1).MarshalText()
	assert.Error(t, err)
}
