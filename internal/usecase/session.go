// Package usecase contains application business logic.
package usecase

import (
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/proctorhq/proctord/internal/domain"
)

// DetectionEngine is the slice of the engine the controller drives.
type DetectionEngine interface {
	Start() error
	Stop()
}

// Controller owns session identity and the one-way phase machine. It is the
// only component that mutates the phase and the only one touching the
// observer (UI shell) and alert sinks.
//
// Multiple producers race into the violation path: the window tick, the
// keyboard tap, the file watcher, and the blacklist tick. The
// Monitoring->Terminating transition is an atomic compare-and-swap, so
// exactly one arrival spawns the self-destruct sequence; later concurrent
// arrivals are dropped silently.
type Controller struct {
	session     domain.Session
	engine      DetectionEngine
	observer    domain.SessionObserver
	sinks       []domain.AlertSink
	destructor  domain.SelfDestructor
	installPath string
	logger      *zap.Logger

	phase atomic.Int32

	// exit is swappable for tests; production exits the process.
	exit func(code int)
}

// NewController creates a controller in the Idle phase.
func NewController(
	sessionID string,
	engine DetectionEngine,
	observer domain.SessionObserver,
	sinks []domain.AlertSink,
	destructor domain.SelfDestructor,
	installPath string,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		session:     domain.Session{ID: sessionID, StartedAt: time.Now()},
		engine:      engine,
		observer:    observer,
		sinks:       sinks,
		destructor:  destructor,
		installPath: installPath,
		logger:      logger,
		exit:        os.Exit,
	}
}

// WithExitFunc overrides process termination (for tests). Returns c.
func (c *Controller) WithExitFunc(exit func(code int)) *Controller {
	c.exit = exit
	return c
}

// Session returns the session identity.
func (c *Controller) Session() domain.Session {
	return c.session
}

// Phase returns the current phase.
func (c *Controller) Phase() domain.Phase {
	return domain.Phase(c.phase.Load())
}

// Start transitions Idle->Monitoring. The transition requires the engine's
// permission preflight to succeed; on failure the controller stays Idle and
// surfaces a single OnFail to the observer.
func (c *Controller) Start() error {
	if !c.phase.CompareAndSwap(int32(domain.PhaseIdle), int32(domain.PhaseMonitoring)) {
		c.logger.Warn("start ignored", zap.String("phase", c.Phase().String()))
		return nil
	}

	if err := c.engine.Start(); err != nil {
		c.phase.CompareAndSwap(int32(domain.PhaseMonitoring), int32(domain.PhaseIdle))
		c.logger.Error("monitoring failed to start", zap.Error(err))
		if c.observer != nil {
			c.observer.OnFail(c.session, err)
		}
		return err
	}

	c.logger.Info("session monitoring",
		zap.String("session_id", c.session.ID))
	if c.observer != nil {
		c.observer.OnStart(c.session)
	}
	return nil
}

// HandleViolation consumes one event from any producer. Events outside the
// Monitoring phase are dropped: stale callbacks after a stop or a lost
// termination race must be no-ops.
func (c *Controller) HandleViolation(ev domain.ViolationEvent) {
	if c.Phase() != domain.PhaseMonitoring {
		return
	}

	c.logger.Info("violation detected",
		zap.String("session_id", c.session.ID),
		zap.String("kind", ev.Kind.String()),
		zap.String("details", ev.Details),
		zap.Bool("critical", ev.Kind.Critical()))

	if c.observer != nil {
		c.observer.OnViolation(c.session, ev)
	}
	c.emitAlert(domain.NewAlertRecord(c.session.ID, ev))

	if ev.Kind.Critical() {
		c.terminate("critical violation: " + ev.Kind.String())
	}
}

// HandleBlacklistedApp consumes a blacklist match. Equivalent in effect to a
// critical violation, routed through its own coarser path.
func (c *Controller) HandleBlacklistedApp(name string) {
	if c.Phase() != domain.PhaseMonitoring {
		return
	}
	c.logger.Info("blacklisted application detected",
		zap.String("session_id", c.session.ID),
		zap.String("app", name))
	c.terminate("blacklisted application: " + name)
}

// HandleEngineError logs non-fatal detection failures. Silent to the end
// user: the tool must not reveal its detection internals.
func (c *Controller) HandleEngineError(err error) {
	c.logger.Warn("detection failure", zap.Error(err))
}

// RequestQuit handles an explicit user quit during monitoring. Treated
// identically to a critical violation: the scrub helper is spawned before
// the process exits.
func (c *Controller) RequestQuit() {
	c.terminate("user quit during monitoring")
}

// terminate performs the one-way Monitoring->Terminating transition. Only
// the first caller proceeds; the rest return immediately. The sequence is:
// stop all sources (best-effort), log, spawn the detached scrub helper, exit
// without waiting for it.
func (c *Controller) terminate(reason string) {
	if !c.phase.CompareAndSwap(int32(domain.PhaseMonitoring), int32(domain.PhaseTerminating)) {
		return
	}

	c.engine.Stop()

	c.logger.Info("session terminating",
		zap.String("session_id", c.session.ID),
		zap.String("reason", reason))
	if c.observer != nil {
		c.observer.OnStop(c.session)
	}

	if c.destructor != nil {
		if err := c.destructor.Spawn(c.installPath); err != nil {
			// Nothing to do; the process exits either way.
			c.logger.Error("scrub helper spawn failed", zap.Error(err))
		}
	}

	c.exit(0)
}

func (c *Controller) emitAlert(rec domain.AlertRecord) {
	for _, sink := range c.sinks {
		if err := sink.Emit(rec); err != nil {
			c.logger.Warn("alert sink emit failed", zap.Error(err))
		}
	}
}
