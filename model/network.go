// Copyright © 2025 The Gomon Project.

package model

import (
	"maps"
	"slices"
	"time"

	"github.com/zosmac/gomodel/sample"
)

type (
	// NetworkModel maps interface names to their rates.
	NetworkModel struct {
		Interfaces map[string]SingleNetModel `json:"interfaces"`
	}

	// SingleNetModel holds the traffic rates of one network interface.
	SingleNetModel struct {
		Interface        string   `json:"interface"`
		RxBytesPerSec    *float64 `json:"rx_bytes_per_sec,omitempty"`
		TxBytesPerSec    *float64 `json:"tx_bytes_per_sec,omitempty"`
		ThroughputPerSec *float64 `json:"throughput_per_sec,omitempty"`
		RxPacketsPerSec  *float64 `json:"rx_packets_per_sec,omitempty"`
		TxPacketsPerSec  *float64 `json:"tx_packets_per_sec,omitempty"`
		RxErrorsPerSec   *float64 `json:"rx_errors_per_sec,omitempty"`
		TxErrorsPerSec   *float64 `json:"tx_errors_per_sec,omitempty"`
		RxDroppedPerSec  *float64 `json:"rx_dropped_per_sec,omitempty"`
		TxDroppedPerSec  *float64 `json:"tx_dropped_per_sec,omitempty"`
		RxBytes          *uint64  `json:"rx_bytes,omitempty"`
		TxBytes          *uint64  `json:"tx_bytes,omitempty"`
	}

	// NetFieldID enumerates the fields of a SingleNetModel.
	NetFieldID int
)

const (
	NetInterface NetFieldID = iota
	NetRxBytesPerSec
	NetTxBytesPerSec
	NetThroughputPerSec
	NetRxPacketsPerSec
	NetTxPacketsPerSec
	NetRxErrorsPerSec
	NetTxErrorsPerSec
	NetRxDroppedPerSec
	NetTxDroppedPerSec
	NetRxBytes
	NetTxBytes
)

var netFields = accessors[SingleNetModel]{
	NetInterface:        {"interface", func(m *SingleNetModel) Field { return Str(m.Interface) }},
	NetRxBytesPerSec:    {"rx_bytes_per_sec", func(m *SingleNetModel) Field { return f64Field(m.RxBytesPerSec) }},
	NetTxBytesPerSec:    {"tx_bytes_per_sec", func(m *SingleNetModel) Field { return f64Field(m.TxBytesPerSec) }},
	NetThroughputPerSec: {"throughput_per_sec", func(m *SingleNetModel) Field { return f64Field(m.ThroughputPerSec) }},
	NetRxPacketsPerSec:  {"rx_packets_per_sec", func(m *SingleNetModel) Field { return f64Field(m.RxPacketsPerSec) }},
	NetTxPacketsPerSec:  {"tx_packets_per_sec", func(m *SingleNetModel) Field { return f64Field(m.TxPacketsPerSec) }},
	NetRxErrorsPerSec:   {"rx_errors_per_sec", func(m *SingleNetModel) Field { return f64Field(m.RxErrorsPerSec) }},
	NetTxErrorsPerSec:   {"tx_errors_per_sec", func(m *SingleNetModel) Field { return f64Field(m.TxErrorsPerSec) }},
	NetRxDroppedPerSec:  {"rx_dropped_per_sec", func(m *SingleNetModel) Field { return f64Field(m.RxDroppedPerSec) }},
	NetTxDroppedPerSec:  {"tx_dropped_per_sec", func(m *SingleNetModel) Field { return f64Field(m.TxDroppedPerSec) }},
	NetRxBytes:          {"rx_bytes", func(m *SingleNetModel) Field { return u64Field(m.RxBytes) }},
	NetTxBytes:          {"tx_bytes", func(m *SingleNetModel) Field { return u64Field(m.TxBytes) }},
}

// NewNetworkModel derives the per interface rates, for interfaces also present last tick.
func NewNetworkModel(s *sample.NetworkSample, last *sample.NetworkSample, elapsed time.Duration) NetworkModel {
	m := NetworkModel{Interfaces: make(map[string]SingleNetModel, len(s.Interfaces))}
	for name, end := range s.Interfaces {
		n := SingleNetModel{
			Interface: name,
			RxBytes:   end.RxBytes,
			TxBytes:   end.TxBytes,
		}
		if last != nil {
			if begin, ok := last.Interfaces[name]; ok {
				n.RxBytesPerSec = CountPerSec(begin.RxBytes, end.RxBytes, elapsed)
				n.TxBytesPerSec = CountPerSec(begin.TxBytes, end.TxBytes, elapsed)
				n.ThroughputPerSec = OptAdd(n.RxBytesPerSec, n.TxBytesPerSec)
				n.RxPacketsPerSec = CountPerSec(begin.RxPackets, end.RxPackets, elapsed)
				n.TxPacketsPerSec = CountPerSec(begin.TxPackets, end.TxPackets, elapsed)
				n.RxErrorsPerSec = CountPerSec(begin.RxErrors, end.RxErrors, elapsed)
				n.TxErrorsPerSec = CountPerSec(begin.TxErrors, end.TxErrors, elapsed)
				n.RxDroppedPerSec = CountPerSec(begin.RxDropped, end.RxDropped, elapsed)
				n.TxDroppedPerSec = CountPerSec(begin.TxDropped, end.TxDropped, elapsed)
			}
		}
		m.Interfaces[name] = n
	}
	return m
}

// Sorted returns the interfaces ordered by the field, ties in name order.
func (m NetworkModel) Sorted(id NetFieldID, reverse bool) []*SingleNetModel {
	names := slices.Sorted(maps.Keys(m.Interfaces))
	ns := make([]*SingleNetModel, len(names))
	for i, name := range names {
		n := m.Interfaces[name]
		ns[i] = &n
	}
	SortQueriables(ns, id, reverse)
	return ns
}

func (id NetFieldID) String() string { return netFields.name(int(id)) }

// Query returns the addressed field of an interface.
func (m *SingleNetModel) Query(id NetFieldID) Field {
	return netFields.query(m, int(id))
}

// ParseNetFieldID parses an interface field name.
func ParseNetFieldID(s string) (NetFieldID, error) {
	return parseLeaf[NetFieldID](netFields, s)
}

// NetFieldIDs lists the fields of a SingleNetModel.
func NetFieldIDs() []NetFieldID {
	return allLeaves[NetFieldID](netFields)
}
