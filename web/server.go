// Package web serves sensor readings over HTTP as JSON.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	goutils "go.viam.com/utils"
	"goji.io"
	"goji.io/pat"

	"go.hostsense.dev/hostsense/collect"
	"go.hostsense.dev/hostsense/registry"
	"go.hostsense.dev/hostsense/sensor"
)

// DefaultBindAddress is where the server listens when the config does not
// say otherwise.
const DefaultBindAddress = ":8411"

// Options configure the server.
type Options struct {
	BindAddress string
	Pprof       bool
}

// RunServer serves readings from reg until ctx is done.
func RunServer(ctx context.Context, reg *registry.Registry, options Options, logger golog.Logger) error {
	bindAddress := options.BindAddress
	if bindAddress == "" {
		bindAddress = DefaultBindAddress
	}
	listener, err := net.Listen("tcp", bindAddress)
	if err != nil {
		return errors.Wrapf(err, "cannot listen on %q", bindAddress)
	}

	httpServer := &http.Server{
		Addr:           listener.Addr().String(),
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
		Handler:        Handler(reg, options, logger),
	}

	goutils.PanicCapturingGo(func() {
		<-ctx.Done()
		if err := httpServer.Shutdown(context.Background()); err != nil {
			logger.Errorw("error shutting down", "error", err)
		}
	})

	logger.Infow("serving sensor readings", "url", fmt.Sprintf("http://%s", listener.Addr().String()))
	if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler builds the HTTP routes over the given registry.
func Handler(reg *registry.Registry, options Options, logger golog.Logger) http.Handler {
	mux := goji.NewMux()
	corsHandler := cors.AllowAll()

	mux.Handle(pat.Get("/"), corsHandler.Handler(&indexHandler{reg: reg}))
	mux.Handle(pat.Get("/api/sensors"), corsHandler.Handler(&sensorsHandler{reg: reg}))
	mux.Handle(pat.Get("/api/readings"), corsHandler.Handler(&readingsHandler{
		collector: collect.New(reg, logger),
		logger:    logger,
	}))

	if options.Pprof {
		mux.HandleFunc(pat.New("/debug/pprof/"), pprof.Index)
		mux.HandleFunc(pat.New("/debug/pprof/cmdline"), pprof.Cmdline)
		mux.HandleFunc(pat.New("/debug/pprof/profile"), pprof.Profile)
		mux.HandleFunc(pat.New("/debug/pprof/symbol"), pprof.Symbol)
		mux.HandleFunc(pat.New("/debug/pprof/trace"), pprof.Trace)
	}

	return mux
}

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	goutils.UncheckedError(json.NewEncoder(w).Encode(payload))
}

type indexHandler struct {
	reg *registry.Registry
}

func (h *indexHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":   "hostsense",
		"sensors":   h.reg.Len(),
		"endpoints": []string{"/api/sensors", "/api/readings"},
	})
}

type sensorInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Unit  string `json:"unit,omitempty"`
}

type sensorsHandler struct {
	reg *registry.Registry
}

func (h *sensorsHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	descriptors := h.reg.All()
	infos := make([]sensorInfo, 0, len(descriptors))
	for _, desc := range descriptors {
		info := sensorInfo{Name: desc.Name, Title: desc.Sensor.Title()}
		if withUnit, ok := desc.Sensor.(sensor.UnitProvider); ok {
			info.Unit = withUnit.Unit()
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, infos)
}

type readingsHandler struct {
	collector *collect.Collector
	logger    golog.Logger
}

func (h *readingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	names := r.URL.Query()["name"]
	if len(names) == 0 {
		writeJSON(w, http.StatusOK, h.collector.Collect(r.Context()))
		return
	}
	readings, err := h.collector.CollectNamed(r.Context(), names)
	if err != nil {
		if sensor.IsNotFoundError(err) {
			writeJSON(w, http.StatusNotFound, apiError{Error: err.Error()})
			return
		}
		h.logger.Errorw("cannot collect readings", "error", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, readings)
}
