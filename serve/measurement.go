// Copyright © 2025 The Gomon Project.

package serve

import (
	"sync"
	"time"
)

type (
	// measurement records the metrics of the server's own operation.
	measurement struct {
		sync.Mutex
		Address        string
		Endpoints      []string
		Ticks          int
		Errors         int
		SampleTime     time.Duration
		HTTPRequests   int
		Collections    int
		CollectionTime time.Duration
	}
)

var (
	// measures records the metrics for the server's operations.
	measures measurement
)

// record updates the measures under lock.
func (m *measurement) record(fn func(*measurement)) {
	m.Lock()
	defer m.Unlock()
	fn(m)
}

// snapshot copies the current measures.
func (m *measurement) snapshot() (ticks, errors, requests, collections int, sampleTime, collectionTime time.Duration) {
	m.Lock()
	defer m.Unlock()
	return m.Ticks, m.Errors, m.HTTPRequests, m.Collections, m.SampleTime, m.CollectionTime
}
