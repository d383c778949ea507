// Copyright © 2025 The Gomon Project.

package serve

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zosmac/gocore"
	"github.com/zosmac/gomodel/model"
	"github.com/zosmac/gomodel/view"
	"gopkg.in/yaml.v3"
)

type (
	// prometheusCollector complies with the Prometheus Collector interface.
	prometheusCollector struct {
		holder *view.Holder
	}

	// prometheusJson defines the prometheus configuration query response envelope.
	prometheusJson struct {
		Status string `json:"status"`
		Data   struct {
			Yaml string `json:"yaml"` // []byte type unmarshals as base-64 :(
		} `json:"data"`
	}

	// prometheusYaml defines the prometheus configuration query response content.
	prometheusYaml struct {
		Global struct {
			ScrapeInterval string `yaml:"scrape_interval"`
		} `yaml:"global"`
		ScrapeConfigs []struct {
			Jobname        string `yaml:"job_name"`
			ScrapeInterval string `yaml:"scrape_interval"`
		} `yaml:"scrape_configs"`
	}
)

var (
	// descs maps metric names to descriptions.
	descs   = map[string]*prometheus.Desc{}
	descsMu sync.Mutex

	// prometheusConfigRequest is the REST query to retrieve the configuration.
	prometheusConfigRequest = http.Request{
		Method: http.MethodGet,
		URL: &url.URL{
			Scheme: "http",
			Host:   "localhost:9090",
			Path:   "/api/v1/status/config",
		},
	}
)

// Describe returns metric descriptions for prometheusCollector.
// This is irrelevant as Collect() uses prometheus.MustNewConstMetric
func (c *prometheusCollector) Describe(ch chan<- *prometheus.Desc) {}

// Collect reports every present numeric field of the current model to Prometheus.
func (c *prometheusCollector) Collect(ch chan<- prometheus.Metric) {
	start := time.Now()
	count := 0
	emit := func(name string, f model.Field, labels []string, values ...string) {
		v, err := model.ToFloat64(f)
		if f == nil || err != nil {
			return
		}
		ch <- prometheus.MustNewConstMetric(desc(name, labels), prometheus.GaugeValue, v, values...)
		count++
	}

	if m := c.holder.Load(); m != nil {
		collectModel(m, emit)
	}

	ticks, errors, requests, _, sampleTime, _ := measures.snapshot()
	emit("gomodel_serve_ticks", model.I64(ticks), nil)
	emit("gomodel_serve_errors", model.I64(errors), nil)
	emit("gomodel_serve_http_requests", model.I64(requests), nil)
	emit("gomodel_serve_sample_seconds", model.F64(sampleTime.Seconds()), nil)

	measures.record(func(m *measurement) {
		m.Collections += count
		m.CollectionTime += time.Since(start)
	})
}

// collectModel walks the model with the field enumerations of each of its parts.
func collectModel(m *model.Model, emit func(string, model.Field, []string, ...string)) {
	if m.Cgroup != nil {
		ids := model.CgroupFieldIDs()
		m.Cgroup.Walk(func(c *model.CgroupModel) bool {
			path := c.FullPath
			if path == "" {
				path = "/"
			}
			for _, id := range ids {
				emit(metricName("cgroup", id), c.Query(id), []string{"path"}, path)
			}
			return true
		})
	}

	for _, p := range m.Process.Sorted(model.ProcessPid, false) {
		pid := view.Format(p.Query(model.ProcessPid))
		comm := view.Format(p.Query(model.ProcessComm))
		for _, id := range model.ProcessFieldIDs() {
			if id == model.ProcessFieldID(model.ProcessPid) || id == model.ProcessFieldID(model.ProcessPpid) {
				continue
			}
			emit(metricName("process", id), p.Query(id), []string{"pid", "comm"}, pid, comm)
		}
	}

	if s := m.System; s != nil {
		for _, id := range model.SystemFieldIDs(0) {
			emit(metricName("system", id), s.Query(id), nil)
		}
		for _, c := range s.CPUs {
			cpu := view.Format(c.Query(model.CPUIdx))
			for _, id := range model.SingleCPUFieldIDs()[1:] {
				emit(metricName("cpus", id), c.Query(id), []string{"cpu"}, cpu)
			}
		}
		for _, d := range s.SortedDisks(model.DiskName, false) {
			name := view.Format(d.Query(model.DiskName))
			for _, id := range model.DiskFieldIDs() {
				emit(metricName("disk", id), d.Query(id), []string{"disk"}, name)
			}
		}
	}

	for _, n := range m.Network.Sorted(model.NetInterface, false) {
		for _, id := range model.NetFieldIDs() {
			emit(metricName("network", id), n.Query(id), []string{"interface"}, n.Interface)
		}
	}
}

// metricName forms a Prometheus metric name from a field path.
func metricName(source string, id model.FieldID) string {
	return "gomodel_" + source + "_" + strings.ReplaceAll(id.String(), ".", "_")
}

// desc returns the cached description of a metric.
func desc(name string, labels []string) *prometheus.Desc {
	descsMu.Lock()
	defer descsMu.Unlock()
	d, ok := descs[name]
	if !ok {
		source := strings.SplitN(name, "_", 3)[1] // pull out source
		d = prometheus.NewDesc(name, source+" field", labels, prometheus.Labels{"source": source})
		descs[name] = d
	}
	return d
}

// scrapeInterval asks Prometheus for the scrape interval it will query gomodel for metrics.
func scrapeInterval() (time.Duration, error) {
	resp, err := http.DefaultClient.Do(&prometheusConfigRequest)
	if err != nil {
		return 0, gocore.Error("prometheus query", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return 0, gocore.Error("prometheus query", err)
	}

	jsn := prometheusJson{}
	if err := json.Unmarshal(body, &jsn); err != nil || jsn.Status != "success" {
		return 0, gocore.Error("prometheus query "+jsn.Status, err)
	}

	return parseScrapeInterval([]byte(jsn.Data.Yaml))
}

// parseScrapeInterval finds the scrape interval of the gomodel job in a
// Prometheus configuration, or the global interval.
func parseScrapeInterval(config []byte) (time.Duration, error) {
	yml := prometheusYaml{}
	if err := yaml.Unmarshal(config, &yml); err != nil {
		return 0, gocore.Error("prometheus yaml", err)
	}

	for _, config := range yml.ScrapeConfigs {
		if config.Jobname == "gomodel" {
			return time.ParseDuration(config.ScrapeInterval)
		}
	}

	return time.ParseDuration(yml.Global.ScrapeInterval)
}
