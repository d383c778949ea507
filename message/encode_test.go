// Copyright © 2025 The Gomon Project.

package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zosmac/gomodel/model"
	"github.com/zosmac/gomodel/sample"
	"gopkg.in/yaml.v3"
)

func testModel() *model.Model {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	prev := &sample.Sample{
		Timestamp: ts.Add(-time.Second),
		Cgroup: sample.CgroupSample{
			CPUStat:     &sample.CPUStat{UsageUsec: sample.Ptr[uint64](1000)},
			InodeNumber: sample.Ptr[uint64](1),
		},
	}
	cur := &sample.Sample{
		Timestamp: ts,
		Cgroup: sample.CgroupSample{
			CPUStat:       &sample.CPUStat{UsageUsec: sample.Ptr[uint64](501000)},
			MemoryCurrent: sample.Ptr[uint64](4096),
			InodeNumber:   sample.Ptr[uint64](1),
			Children: map[string]*sample.CgroupSample{
				"system.slice": {MemoryCurrent: sample.Ptr[uint64](1024)},
			},
		},
		System: sample.SystemSample{Hostname: "host<1>"},
	}
	return model.New(ts, cur, &model.Last{Sample: prev, Elapsed: time.Second})
}

func TestEncodeJSON(t *testing.T) {
	tests := []struct {
		name   string
		pretty bool
	}{
		{"compact", false},
		{"pretty", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			enc, err := NewEncoder(&buf, FormatJSON, tt.pretty)
			require.NoError(t, err)
			m := testModel()
			require.NoError(t, enc.Encode(m))
			require.NoError(t, enc.Close())

			assert.Contains(t, buf.String(), "host<1>", "html is not escaped")
			assert.Equal(t, tt.pretty, strings.Contains(buf.String(), "\n  "))

			var got model.Model
			dec := json.NewDecoder(&buf)
			dec.DisallowUnknownFields()
			require.NoError(t, dec.Decode(&got))
			assert.Equal(t, m.Cgroup.Count, got.Cgroup.Count)
			assert.Equal(t, *m.Cgroup.CPU.UsagePct, *got.Cgroup.CPU.UsagePct)
			assert.True(t, m.Timestamp.Equal(got.Timestamp))
		})
	}
}

func TestEncodeYAML(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, FormatYAML, false)
	require.NoError(t, err)
	require.NoError(t, enc.Encode(testModel()))
	require.NoError(t, enc.Encode(testModel()))
	require.NoError(t, enc.Close())

	out := buf.String()
	assert.Contains(t, out, "full_path: \"\"")
	assert.Contains(t, out, "cgroup:\n", "block style")

	dec := yaml.NewDecoder(&buf)
	var docs []map[string]any
	for {
		var doc map[string]any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		docs = append(docs, doc)
	}
	require.Len(t, docs, 2)

	cgroup, ok := docs[0]["cgroup"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, model.RootCgroupName, cgroup["name"])
	assert.Equal(t, 2, cgroup["count"])
	cpu, ok := cgroup["cpu"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 50, cpu["usage_pct"])
	assert.Equal(t, "host<1>", docs[1]["system"].(map[string]any)["hostname"])
}

func TestFormatFlag(t *testing.T) {
	var f Format
	require.NoError(t, f.Set("yaml"))
	assert.Equal(t, "yaml", f.String())
	assert.Error(t, f.Set("xml"))
	assert.Equal(t, FormatYAML, f)

	_, err := NewEncoder(io.Discard, Format("xml"), false)
	assert.Error(t, err)
}

func TestRotateFlag(t *testing.T) {
	tests := []struct {
		interval string
		format   string
	}{
		{"24h", "20060102Z"},
		{"1h", "2006010215Z"},
		{"5m", "200601021504Z"},
		{"10ms", "20060102150405Z"},
	}
	for _, tt := range tests {
		t.Run(tt.interval, func(t *testing.T) {
			var r rotate
			require.NoError(t, r.Set(tt.interval))
			assert.Equal(t, tt.format, r.format)
		})
	}
	var r rotate
	assert.Error(t, r.Set("often"))
}

func TestDocuments(t *testing.T) {
	var buf bytes.Buffer
	Documents(&buf)
	out := buf.String()
	for _, s := range []string{
		"Source: cgroup", "Source: process", "Source: network",
		"cpu.usage_pct", "mem.memory_high", "cpus.0.idle_pct", "rx_bytes_per_sec",
	} {
		assert.Contains(t, out, s)
	}
	assert.Equal(t, "percent", kind("pressure.cpu_some_pct"))
	assert.Equal(t, "rate", kind("io.rbytes_per_sec"))
	assert.Equal(t, "value", kind("full_path"))
}
