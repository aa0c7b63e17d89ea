// Command ximserver runs a demonstration XIM input method server. It
// has nothing to connect it to a real X display: x11.Conn is an
// abstract interface by design (spec.md section 9), and wiring a real
// Xlib/XCB binding is left to an embedder. This binary instead pairs
// itself with an in-memory ximtest double and drives one simulated
// client through the full handshake, so the server side can be
// exercised end to end without an X server.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/go-xim/xim"
	"github.com/go-xim/xim/wire"
	"github.com/go-xim/xim/ximtest"
)

// config holds the settings a deployment customizes, loadable from a
// YAML file and overridable by flags.
type config struct {
	Locales    []string `yaml:"locales"`
	MetricsAddr string  `yaml:"metrics_addr"`
}

func defaultConfig() config {
	return config{
		Locales:     []string{"C", "en_US.UTF-8"},
		MetricsAddr: ":9090",
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// serverMetrics is the Prometheus-backed Recorder wired into the
// server's dispatch loop.
type serverMetrics struct {
	messages       *prometheus.CounterVec
	methodsOpen    prometheus.Gauge
	contextsOpen   prometheus.Gauge
	syncReplySecs  prometheus.Histogram
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	return &serverMetrics{
		messages: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ximserver_messages_total",
			Help: "PDUs received by opcode.",
		}, []string{"opcode"}),
		methodsOpen: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "ximserver_input_methods_open",
			Help: "Currently open input method sessions.",
		}),
		contextsOpen: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "ximserver_input_contexts_open",
			Help: "Currently open input contexts.",
		}),
		syncReplySecs: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name: "ximserver_sync_reply_seconds",
			Help: "Latency observed between SYNC and its SYNC_REPLY.",
		}),
	}
}

func (m *serverMetrics) MessageReceived(opcode string)  { m.messages.WithLabelValues(opcode).Inc() }
func (m *serverMetrics) InputMethodOpened()              { m.methodsOpen.Inc() }
func (m *serverMetrics) InputMethodClosed()              { m.methodsOpen.Dec() }
func (m *serverMetrics) InputContextCreated()            { m.contextsOpen.Inc() }
func (m *serverMetrics) InputContextDestroyed()          { m.contextsOpen.Dec() }
func (m *serverMetrics) SyncReplyObserved(seconds float64) { m.syncReplySecs.Observe(seconds) }

func main() {
	var (
		configPath  = pflag.StringP("config-file", "c", "", "YAML configuration file.")
		metricsAddr = pflag.StringP("metrics-addr", "m", "", "Address to serve /metrics and /healthz on.")
		locale      = pflag.StringP("locale", "l", "", "Locale to open the demonstration session with (defaults to config).")
		verbose     = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	)
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal("loading config", "err", err)
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *locale != "" {
		cfg.Locales = []string{*locale}
	}

	registry := prometheus.NewRegistry()
	metrics := newServerMetrics(registry)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	go func() {
		logger.Info("serving debug endpoints", "addr", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, r); err != nil && err != http.ErrServerClosed {
			logger.Error("debug http server stopped", "err", err)
		}
	}()

	clientConn, serverConn := ximtest.NewConnPair(xim.NativeX11ByteOrder())

	serverWindow, err := serverConn.CreateWindow()
	if err != nil {
		logger.Fatal("create server window", "err", err)
	}
	clientWindow, err := clientConn.CreateWindow()
	if err != nil {
		logger.Fatal("create client window", "err", err)
	}

	serverFramer, err := xim.NewFramer(serverConn, serverWindow, clientWindow)
	if err != nil {
		logger.Fatal("new server framer", "err", err)
	}

	handler := xim.KeyHandlerFunc(func(ic *xim.InputContext, serial uint32, event [32]byte, r xim.Responder) error {
		logger.Debug("handling forwarded key event", "ic", ic.ID, "serial", serial)
		return r.Commit("*")
	})

	srv := xim.NewServer(serverFramer, xim.NativeByteOrder(), handler)
	srv.Metrics = metrics

	clientFramer, err := xim.NewFramer(clientConn, clientWindow, serverWindow)
	if err != nil {
		logger.Fatal("new client framer", "err", err)
	}

	go runDemoClient(logger, clientFramer, cfg.Locales[0])

	logger.Info("xim server ready", "locales", cfg.Locales)

	done := make(chan struct{})
	for {
		if err := srv.Serve(done); err != nil {
			logger.Error("serve", "err", err)
			return
		}
	}
}

// runDemoClient exercises a full CONNECT/OPEN/CREATE_IC/forward-key
// session against the server loop above, standing in for the real X
// client an embedder would otherwise run in a separate process.
func runDemoClient(logger *log.Logger, framer *xim.Framer, locale string) {
	c := xim.NewClient(framer)
	c.Callbacks.OnCommit = func(ic *xim.ClientIC, text string) {
		logger.Info("committed text", "ic", ic.ID, "text", text)
	}

	if err := c.Connect(); err != nil {
		logger.Error("demo client connect", "err", err)
		return
	}
	if err := c.Open(locale); err != nil {
		logger.Error("demo client open", "err", err)
		return
	}

	ic, err := c.CreateIC(xim.ICAttrValues{
		InputStyle:   wire.StylePreeditNothing | wire.StyleStatusNothing,
		ClientWindow: 1,
	})
	if err != nil {
		logger.Error("demo client create ic", "err", err)
		return
	}

	if err := c.ForwardKeyEvent(ic, [32]byte{}, false); err != nil {
		logger.Error("demo client forward key", "err", err)
		return
	}

	if err := c.Dispatch(nil); err != nil {
		logger.Error("demo client dispatch", "err", err)
	}
}
