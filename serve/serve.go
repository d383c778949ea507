// Copyright © 2025 The Gomon Project.

package serve

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zosmac/gocore"
	"github.com/zosmac/gomodel/model"
	"github.com/zosmac/gomodel/view"
	"golang.org/x/net/websocket"
)

var (
	// scheme is http/s based on whether certicate and key are defined in the user's .ssh directory.
	scheme = "http" // default
)

type (
	// cgroupRow is one cgroup of a sorted /model response.
	cgroupRow struct {
		Name     string      `json:"name"`
		FullPath string      `json:"full_path"`
		Depth    int         `json:"depth"`
		Value    model.Field `json:"value"`
	}
)

// prometheusHandler responds to Prometheus Collect requests.
func prometheusHandler(mux *http.ServeMux, h *view.Holder) {
	// enable Prometheus collection (we don't use the default registry as it adds Go runtime metrics)
	registry := prometheus.NewRegistry()
	registry.MustRegister(&prometheusCollector{holder: h})
	mux.Handle(
		"/metrics",
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	)
	measures.Endpoints = append(measures.Endpoints, "metrics")
}

// modelHandler responds with the current model, or with its cgroups sorted
// by the field path of the sort query parameter.
func modelHandler(mux *http.ServeMux, h *view.Holder) {
	mux.HandleFunc(
		"/model",
		func(w http.ResponseWriter, r *http.Request) {
			measures.record(func(m *measurement) { m.HTTPRequests++ })
			m := h.Load()
			if m == nil {
				http.Error(w, "no model sampled yet", http.StatusServiceUnavailable)
				return
			}

			q := r.URL.Query()
			var body any = m
			if path := q.Get("sort"); path != "" || q.Get("filter") != "" {
				state := view.NewCgroupState()
				if path != "" {
					id, err := model.ParseCgroupFieldID(path)
					if err != nil {
						http.Error(w, err.Error(), http.StatusBadRequest)
						return
					}
					reverse, _ := strconv.ParseBool(q.Get("reverse"))
					state.SetSort(id, reverse)
				}
				state.SetFilter(q.Get("filter"))
				body = cgroupRows(state, m)
			}

			w.Header().Set("Content-Type", "application/json")
			enc := json.NewEncoder(w)
			enc.SetEscapeHTML(false)
			if err := enc.Encode(body); err != nil {
				gocore.Error("model Encode", err).Warn()
			}
		},
	)
	measures.Endpoints = append(measures.Endpoints, "model")
}

// cgroupRows flattens the cgroup tree, reporting the sort field of each cgroup.
func cgroupRows(state *view.CgroupState, m *model.Model) []cgroupRow {
	tag, _, sorted := state.SortTag()
	rows := state.Rows(m.Cgroup)
	crs := make([]cgroupRow, len(rows))
	for i, row := range rows {
		crs[i] = cgroupRow{
			Name:     row.Cgroup.Name,
			FullPath: row.Cgroup.FullPath,
			Depth:    row.Cgroup.Depth(),
		}
		if sorted {
			crs[i].Value = row.Cgroup.Query(tag)
		}
	}
	return crs
}

// wsHandler opens a web socket for delivering the current model on request.
func wsHandler(mux *http.ServeMux, h *view.Holder) {
	wsscheme := "ws"
	if scheme == "https" {
		wsscheme = "wss"
	}
	mux.Handle(
		"/ws",
		websocket.Server{
			Config: websocket.Config{
				Location: &url.URL{
					Scheme: wsscheme,
					Host:   "localhost:" + strconv.Itoa(flags.port),
					Path:   "/ws",
				},
				Origin: &url.URL{
					Scheme: scheme,
					Host:   "localhost",
				},
				Version: websocket.ProtocolVersionHybi,
			},
			Handler: func(ws *websocket.Conn) {
				defer ws.Close()
				var buf []byte
				for {
					if err := websocket.Message.Receive(ws, &buf); err != nil {
						gocore.Error("websocket Receive", err).Warn()
						return
					} else if bytes.HasPrefix(buf, []byte("suspend")) {
						continue
					}

					measures.record(func(m *measurement) { m.HTTPRequests++ })
					if err := websocket.JSON.Send(ws, h.Load()); err != nil {
						gocore.Error("websocket Send", err).Warn()
						return
					}
				}
			},
			Handshake: func(c *websocket.Config, r *http.Request) error {
				return nil
			},
		},
	)
	measures.Endpoints = append(measures.Endpoints, "ws")
}

// pprofHandler enables the server to handle /debug/pprof queries.
func pprofHandler(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	measures.Endpoints = append(measures.Endpoints, "debug/pprof")
}

// handler defines the server's endpoints.
func handler(h *view.Holder) http.Handler {
	mux := http.NewServeMux()
	prometheusHandler(mux, h)
	modelHandler(mux, h)
	wsHandler(mux, h)
	pprofHandler(mux)
	return mux
}

// Serve sets up gomodel's endpoints and starts the server.
func Serve(ctx context.Context, h *view.Holder) {
	if flags.port == 0 {
		return
	}

	if si, err := scrapeInterval(); err == nil && si > 0 {
		flags.interval = interval(si) // sync sample interval with Prometheus'
	}

	// to enable https/wss, place a certificate and key in the user's .ssh directory
	serve := func(server *http.Server) error { return server.ListenAndServe() }
	if u, err := user.Current(); err == nil {
		certfile := filepath.Join(u.HomeDir, ".ssh", "cert.pem")
		keyfile := filepath.Join(u.HomeDir, ".ssh", "key.pem")
		if _, err := os.Stat(certfile); err == nil {
			if _, err := os.Stat(keyfile); err == nil {
				scheme = "https"
				serve = func(server *http.Server) error { return server.ListenAndServeTLS(certfile, keyfile) }
			}
		}
	}

	server := &http.Server{
		Addr:    "localhost:" + strconv.Itoa(flags.port),
		Handler: handler(h),
	}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background()) // let server perform cleanup with timeout
	}()

	go func() {
		gocore.Error("gomodel server", nil, map[string]string{
			"listen": scheme + "://" + server.Addr,
		}).Info()
		if err := serve(server); err != http.ErrServerClosed {
			gocore.Error("gomodel server", err).Err()
		}
	}()
	measures.record(func(m *measurement) { m.Address = scheme + "://" + server.Addr })
}
