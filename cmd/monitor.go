package cmd

import (
	"expvar"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/CraigKelly/tsample/buffer"
	"github.com/CraigKelly/tsample/sampler"
)

// monitorWindow is the number of recent location samples behind the
// Window-*-Mu values
const monitorWindow = 100

// expvar names are global, so the progress map is published only once and
// every monitor swaps its own map in
var (
	publishOnce sync.Once
	progressVar = new(expvar.Map).Init()
)

type monitor struct {
	info    *expvar.Map
	stopped chan struct{}
	server  *http.Server
	ln      net.Listener
	log     *zap.Logger
	window  *buffer.CircularFloat
	start   time.Time

	BurnIn       *expvar.Int
	SampleSize   *expvar.Int
	Sweeps       *expvar.Int
	Phase        *expvar.String
	RunTime      *expvar.Float
	LastMu       *expvar.Float
	LastSigma2   *expvar.Float
	WindowMeanMu *expvar.Float
	WindowMinMu  *expvar.Float
	WindowMaxMu  *expvar.Float
}

func newMonitor(log *zap.Logger, burnIn int, sampleSize int) *monitor {
	m := &monitor{
		info:         new(expvar.Map).Init(),
		log:          log,
		window:       buffer.NewCircularFloat(monitorWindow),
		start:        time.Now(),
		BurnIn:       new(expvar.Int),
		SampleSize:   new(expvar.Int),
		Sweeps:       new(expvar.Int),
		Phase:        new(expvar.String),
		RunTime:      new(expvar.Float),
		LastMu:       new(expvar.Float),
		LastSigma2:   new(expvar.Float),
		WindowMeanMu: new(expvar.Float),
		WindowMinMu:  new(expvar.Float),
		WindowMaxMu:  new(expvar.Float),
	}

	m.BurnIn.Set(int64(burnIn))
	m.SampleSize.Set(int64(sampleSize))

	m.info.Set("Burn-In", m.BurnIn)
	m.info.Set("Sample-Size", m.SampleSize)
	m.info.Set("Sweeps", m.Sweeps)
	m.info.Set("Phase", m.Phase)
	m.info.Set("Run-Time", m.RunTime)
	m.info.Set("Last-Mu", m.LastMu)
	m.info.Set("Last-Sigma2", m.LastSigma2)
	m.info.Set("Window-Mean-Mu", m.WindowMeanMu)
	m.info.Set("Window-Min-Mu", m.WindowMinMu)
	m.info.Set("Window-Max-Mu", m.WindowMaxMu)

	return m
}

// Update records the progress of one sweep
func (m *monitor) Update(p sampler.Progress) {
	m.Sweeps.Add(1)
	m.Phase.Set(p.Phase)
	m.RunTime.Set(time.Since(m.start).Seconds())
	m.LastMu.Set(p.Mu)
	m.LastSigma2.Set(p.Sigma2)

	m.window.Add(p.Mu)
	m.WindowMeanMu.Set(m.window.Mean())

	lo, hi := math.Inf(1), math.Inf(-1)
	for iter := m.window.Values(); iter.Next(); {
		v := iter.Value()
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	m.WindowMinMu.Set(lo)
	m.WindowMaxMu.Set(hi)
}

// Start begins serving progress at addr
func (m *monitor) Start(addr string) error {
	if m.server != nil {
		return errors.Errorf("BUG: You may only start the process monitor once")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "Could not listen for monitor on %s", addr)
	}

	publishOnce.Do(func() { expvar.Publish("tsample-progress", progressVar) })
	progressVar.Init()
	m.info.Do(func(kv expvar.KeyValue) { progressVar.Set(kv.Key, kv.Value) })

	// Help the user and redirect to the only thing currently available:
	// the handler from the expvar package
	mux := http.NewServeMux()
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/debug/vars", http.StatusTemporaryRedirect)
	})

	m.stopped = make(chan struct{})
	m.server = &http.Server{Handler: mux}
	m.ln = ln

	go func() {
		defer close(m.stopped)
		m.log.Info("progress monitor available", zap.String("url", "http://"+m.addr()+"/debug/vars"))
		if err := m.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			m.log.Warn("progress monitor failed", zap.Error(err))
		}
	}()

	return nil
}

// addr is the address actually being served, empty before Start
func (m *monitor) addr() string {
	if m.ln == nil {
		return ""
	}
	return m.ln.Addr().String()
}

// Stop shuts the monitor down if it was started
func (m *monitor) Stop() {
	if m.server == nil {
		return
	}

	m.server.Close()

	select {
	case <-m.stopped:
		m.log.Debug("progress monitor stopped")
	case <-time.After(2 * time.Second):
		m.log.Warn("progress monitor would NOT stop: just continuing on")
	}
}
