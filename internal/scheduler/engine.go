// Package scheduler drives the company through discrete ticks.
//
// Each tick injects the scenario triggers due at that tick, drains every
// agent in a shuffled order and routes what the handlers produced. Messages
// produced during tick N are handled during tick N+1.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/dayuer/virtualco/internal/agent"
	"github.com/dayuer/virtualco/internal/bus"
	"github.com/dayuer/virtualco/internal/console"
	"github.com/dayuer/virtualco/internal/metrics"
	"github.com/dayuer/virtualco/internal/org"
	"github.com/dayuer/virtualco/internal/router"
	"github.com/dayuer/virtualco/internal/scenario"
	"github.com/dayuer/virtualco/internal/tracker"
	"github.com/dayuer/virtualco/internal/utils"
	"github.com/dayuer/virtualco/internal/workflow"
)

// ExternalSender is the sender ID of triggers whose sender is not on the roster.
const ExternalSender = "external"

// Stop reasons reported by Run.
const (
	ReasonBudget      = "tick budget reached"
	ReasonInterrupted = "interrupted"
)

// Options tune a run.
type Options struct {
	MaxTicks    int
	Interval    time.Duration // zero disables pacing
	Seed        int64
	StallTicks  int
	ActivityDir string // when set, every agent's activity log is written here
}

// Report summarizes a finished run.
type Report struct {
	Ticks     int
	Reason    string
	Workflows map[tracker.Status]int
	Routed    int
	Dropped   int
	Misses    int
}

// Engine owns the tick loop of one simulation.
type Engine struct {
	company    *org.Company
	dispatcher agent.Dispatcher
	scenario   *scenario.Scenario
	tracker    *tracker.Tracker
	metrics    *metrics.Metrics
	printer    *console.Printer
	classifier *router.Classifier
	rng        *rand.Rand
	opts       Options
	logger     *log.Logger

	tick    int
	routed  int
	dropped int
	misses  int
}

// New wires an engine. A nil scenario runs without stimuli; nil metrics or
// printer disable them. A nil logger falls back to log.Default().
func New(company *org.Company, d agent.Dispatcher, sc *scenario.Scenario, m *metrics.Metrics, p *console.Printer, opts Options, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	if sc == nil {
		sc = &scenario.Scenario{}
	}
	e := &Engine{
		company:    company,
		scenario:   sc,
		tracker:    tracker.New(opts.StallTicks),
		metrics:    m,
		printer:    p,
		classifier: router.NewClassifier(),
		rng:        rand.New(rand.NewSource(opts.Seed)),
		opts:       opts,
		logger:     logger,
	}
	e.dispatcher = &observedDispatcher{next: d, engine: e}
	company.Bus.Subscribe(e.observe)
	return e
}

// Tracker returns the workflow tracker.
func (e *Engine) Tracker() *tracker.Tracker {
	return e.tracker
}

// Tick returns the tick currently running or last completed.
func (e *Engine) Tick() int {
	return e.tick
}

func (e *Engine) observe(r bus.Receipt) {
	if r.Delivered() {
		e.routed++
		e.tracker.Delivered(r.Msg, e.tick)
	} else {
		e.dropped++
		e.tracker.Dropped(r.Msg, e.tick)
	}
	if e.metrics != nil {
		e.metrics.Observe(r)
	}
}

// Inject routes msg immediately, starting a new workflow when it has no
// correlation ID. Messages without an intent are classified from their
// payload.
func (e *Engine) Inject(msg bus.Message) error {
	if msg.CorrelationID == "" {
		msg = msg.WithCorrelation(bus.NewCorrelationID())
	}
	if msg.Intent.IsZero() {
		msg = msg.WithIntent(e.classifier.Classify(msg.Payload))
	}
	e.logger.Printf("-> Routing msg: %s", msg)
	return e.company.Bus.Route(msg)
}

// Step runs one tick and returns the messages routed at its end.
func (e *Engine) Step(tick int) []bus.Message {
	e.tick = tick
	if e.printer != nil {
		e.printer.Tick(tick)
	}
	e.injectDue(tick)

	agents := make([]*agent.Agent, len(e.company.Agents))
	copy(agents, e.company.Agents)
	e.rng.Shuffle(len(agents), func(i, j int) { agents[i], agents[j] = agents[j], agents[i] })

	var outbound []bus.Message
	for _, a := range agents {
		if a.Pending() == 0 {
			continue
		}
		for _, h := range a.Drain(e.dispatcher) {
			e.tracker.Consumed(h.Msg, h.Result.Complete, h.Matched, tick)
			outbound = append(outbound, h.Result.Out...)
		}
	}

	for _, msg := range outbound {
		e.logger.Printf("-> Routing msg: %s", msg)
		// Failures are logged by the bus and counted by the subscriber.
		_ = e.company.Bus.Route(msg)
	}

	for _, f := range e.tracker.Sweep(tick) {
		e.logger.Printf("[Scheduler] ⚠️ Workflow %s stalled: no progress since tick %d (%s)", f.ID, f.LastSeen, f.Label)
		if e.printer != nil {
			e.printer.Stalled(f, tick)
		}
	}
	if e.metrics != nil {
		e.metrics.ObserveTick(tick, e.tracker.Summary(tick))
		e.observeInboxes()
	}
	return outbound
}

func (e *Engine) observeInboxes() {
	pending := make(map[string]int)
	for _, a := range e.company.Agents {
		pending[a.Category()] += a.Pending()
	}
	for cat, n := range pending {
		e.metrics.Inbox.WithLabelValues(cat).Set(float64(n))
	}
}

func (e *Engine) injectDue(tick int) {
	for _, t := range e.scenario.Due(tick) {
		if t.Banner != "" {
			if e.printer != nil {
				e.printer.Banner(t.Banner)
			}
			e.logger.Printf("[Scenario] %s", t.Banner)
		}
		for _, msg := range t.Build(e.senderID(t), e.receivers(t)) {
			if err := e.Inject(msg); err != nil {
				e.logger.Printf("[Scenario] ⚠️ Trigger from %s dropped: %v", t.From, err)
			}
		}
	}
}

func (e *Engine) senderID(t scenario.Trigger) string {
	if a := e.company.Find(t.From); a != nil {
		return a.ID()
	}
	if t.SenderID != "" {
		return t.SenderID
	}
	return ExternalSender
}

func (e *Engine) receivers(t scenario.Trigger) []string {
	if t.Tier() == "" {
		return []string{t.To}
	}
	var roles []string
	for _, a := range e.company.ByTier(t.Tier()) {
		roles = append(roles, a.Role())
	}
	if len(roles) == 0 {
		e.logger.Printf("[Scenario] ⚠️ No agents at tier %s for trigger from %s", t.Tier(), t.From)
	}
	return roles
}

// Run steps through ticks until the budget is spent or ctx is cancelled.
// Cancellation is not an error: the report records why the run stopped.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	var limiter *rate.Limiter
	if e.opts.Interval > 0 {
		limiter = rate.NewLimiter(rate.Every(e.opts.Interval), 1)
	}

	if e.printer != nil {
		e.printer.Header(e.scenarioName(), len(e.company.Agents), e.opts.MaxTicks)
	}

	reason := ReasonBudget
	ticks := 0
	for tick := 0; tick < e.opts.MaxTicks; tick++ {
		if ctx.Err() != nil {
			reason = ReasonInterrupted
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				reason = ReasonInterrupted
				break
			}
		}
		e.Step(tick)
		ticks = tick + 1
	}

	last := ticks - 1
	if last < 0 {
		last = 0
	}
	report := Report{
		Ticks:     ticks,
		Reason:    reason,
		Workflows: e.tracker.Summary(last),
		Routed:    e.routed,
		Dropped:   e.dropped,
		Misses:    e.misses,
	}
	e.logger.Printf("[Scheduler] ✅ Simulation ended after %d ticks (%s): %d routed, %d dropped, %d unhandled",
		ticks, reason, e.routed, e.dropped, e.misses)
	if e.printer != nil {
		e.printer.Summary(reason, last, report.Workflows, e.tracker.Flows(), func(f tracker.Flow) tracker.Status {
			return e.tracker.StatusOf(f, last)
		})
	}

	if e.opts.ActivityDir != "" {
		if err := e.WriteActivity(e.opts.ActivityDir); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (e *Engine) scenarioName() string {
	if e.scenario.Name == "" {
		return "none"
	}
	return e.scenario.Name
}

// WriteActivity appends every non-empty activity log to <dir>/<role>.md.
func (e *Engine) WriteActivity(dir string) error {
	dir, err := utils.EnsureDir(utils.ExpandHome(dir))
	if err != nil {
		return fmt.Errorf("activity dir: %w", err)
	}
	var errs []error
	for _, a := range e.company.Agents {
		if a.Activity().Len() == 0 {
			continue
		}
		path := filepath.Join(dir, utils.SafeFilename(a.Role())+".md")
		if err := a.Activity().AppendHistory(path); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.Role(), err))
		}
	}
	if len(errs) == 0 {
		e.logger.Printf("[Scheduler] ✅ Activity logs written to %s", dir)
	}
	return errors.Join(errs...)
}

// observedDispatcher counts misses and times handlers.
type observedDispatcher struct {
	next   agent.Dispatcher
	engine *Engine
}

func (o *observedDispatcher) Dispatch(self agent.Profile, msg bus.Message) (agent.Result, bool) {
	start := time.Now()
	res, ok := o.next.Dispatch(self, msg)
	m := o.engine.metrics
	if !ok {
		o.engine.misses++
		if m != nil {
			m.DispatchMisses.WithLabelValues(string(self.Tier), string(msg.Kind)).Inc()
		}
		return res, ok
	}
	if m != nil {
		m.HandlerDuration.WithLabelValues(string(msg.Kind)).Observe(time.Since(start).Seconds())
	}
	return res, ok
}

// Preflight logs the hierarchy warnings and the well-known addresses the
// roster cannot resolve.
func (e *Engine) Preflight() []string {
	var warnings []string
	warnings = append(warnings, e.company.Warnings...)
	for _, addr := range workflow.MissingAddresses(e.company.Bus) {
		w := fmt.Sprintf("No agent answers to '%s'; messages sent there will be dropped", addr)
		e.logger.Printf("[Scheduler] ⚠️ %s", w)
		warnings = append(warnings, w)
	}
	return warnings
}
