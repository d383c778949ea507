// Copyright © 2025 The Gomon Project.

package serve

import (
	"context"
	"strconv"
	"time"

	"github.com/zosmac/gocore"
	"github.com/zosmac/gomodel/message"
	"github.com/zosmac/gomodel/model"
	"github.com/zosmac/gomodel/sample"
	"github.com/zosmac/gomodel/store"
	"github.com/zosmac/gomodel/view"
)

type (
	// Sampler collects a sample of the kernel counters.
	Sampler interface {
		Collect(context.Context) (*sample.Sample, error)
	}

	// Loop derives a model from each sample and publishes it.
	Loop struct {
		Sampler Sampler
		Holder  *view.Holder
		Store   *store.Store // optional history
		Retain  time.Duration
		Export  bool // stream each model with the message encoder
		prev    *sample.Sample
	}
)

// Measure samples at each tick of the -sample interval until ctx is cancelled.
func (l *Loop) Measure(ctx context.Context) error {
	ticker := flags.interval.alignTicker(ctx)
	defer ticker.Stop()
	l.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

// tick collects a sample and derives the model of the tick against the previous sample.
func (l *Loop) tick(ctx context.Context) *model.Model {
	start := time.Now()
	cur, err := l.Sampler.Collect(ctx)
	if err != nil {
		measures.record(func(m *measurement) { m.Errors++ })
		gocore.Error("Collect", err).Err()
		return nil
	}

	var last *model.Last
	if l.prev != nil {
		last = &model.Last{Sample: l.prev, Elapsed: cur.Timestamp.Sub(l.prev.Timestamp)}
	}
	m := model.New(cur.Timestamp, cur, last)
	l.prev = cur
	l.Holder.Swap(m)

	if l.Store != nil {
		if err := l.Store.Put(cur); err != nil {
			gocore.Error("store Put", err).Warn()
		}
		if l.Retain > 0 {
			if _, err := l.Store.Prune(cur.Timestamp.Add(-l.Retain)); err != nil {
				gocore.Error("store Prune", err).Warn()
			}
		}
	}
	if l.Export {
		message.Measure(m)
	}

	measures.record(func(ms *measurement) {
		ms.Ticks++
		ms.SampleTime += time.Since(start)
	})
	gocore.Error("tick", nil, map[string]string{
		"cgroups":   strconv.Itoa(m.Cgroup.Count),
		"processes": strconv.Itoa(len(m.Process.Processes)),
		"time":      time.Since(start).String(),
	}).Info()
	return m
}
