package ecs

import (
	"context"

	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// SystemHook is the tick phase a registered system runs in.
type SystemHook uint8

const (
	Init SystemHook = iota
	PreUpdate
	Update
	PostUpdate
)

// System is a unit of per-tick logic operating on caller-defined state T.
// A Runner does not call System directly; callers close over their state
// when registering the func(*RunnerContext) error a Runner schedules.
type System[T any] func(*T) error

// RunnerContext is the {allocator, scratch, model_ref, ...} context a
// registered system receives, adapted to Go: there is no explicit
// allocator parameter because the runtime allocator is implicit, and
// Scratch is a caller-resettable buffer for per-tick temporary allocations.
// The Runner constructs one RunnerContext per Tick and passes the same
// pointer to every system in that tick; systems within a tier run
// concurrently and must not race on Scratch without coordinating themselves.
type RunnerContext struct {
	Model   *Model
	Logger  Logger
	Config  RunnerConfig
	Scratch []byte
}

type registeredSystem struct {
	name   string
	inputs Archetype
	fn     func(*RunnerContext) error
}

// Runner schedules registered systems tier by tier within each hook,
// running systems whose declared inputs do not overlap concurrently within
// a tier. It does not batch structural Model mutations for callers:
// registered systems must treat the Model as read-only for their inputs
// during their own hook's tier and perform inserts, removes, and deletes
// only from a dedicated PostUpdate-hook system.
type Runner struct {
	log     Logger
	config  RunnerConfig
	model   *Model
	scratch []byte
	init    []registeredSystem
	hooks   map[SystemHook][]registeredSystem
}

// NewRunner constructs a Runner driving model, with the given configuration
// and logger. model may be nil for a Runner whose systems don't touch it
// (e.g. pure computation systems in tests).
func NewRunner(model *Model, config RunnerConfig, log Logger) *Runner {
	return &Runner{
		log:    log,
		config: config,
		model:  model,
		hooks:  make(map[SystemHook][]registeredSystem),
	}
}

// Register adds fn to hook, gated on the required-component set inputs.
// Two systems in the same hook whose inputs overlap are ordered relative
// to each other; systems with disjoint inputs may run concurrently.
func (r *Runner) Register(hook SystemHook, name string, inputs Archetype, fn func(*RunnerContext) error) {
	sys := registeredSystem{name: name, inputs: inputs, fn: fn}
	if hook == Init {
		r.init = append(r.init, sys)
		return
	}
	r.hooks[hook] = append(r.hooks[hook], sys)
}

// Tick runs Init systems once across the Runner's lifetime, then PreUpdate,
// Update, and PostUpdate in order, each scheduled tier by tier.
func (r *Runner) Tick(ctx context.Context) error {
	rc := &RunnerContext{Model: r.model, Logger: r.log, Config: r.config, Scratch: r.scratch}
	if len(r.init) > 0 {
		for _, sys := range r.init {
			if err := sys.fn(rc); err != nil {
				return eris.Wrapf(err, "init system %q", sys.name)
			}
		}
		r.init = nil
	}
	for _, hook := range [...]SystemHook{PreUpdate, Update, PostUpdate} {
		if err := r.runHook(ctx, hook, rc); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runHook(ctx context.Context, hook SystemHook, rc *RunnerContext) error {
	systems := r.hooks[hook]
	if len(systems) == 0 {
		return nil
	}
	for tierIdx, tier := range buildTiers(systems) {
		if e := r.log.Debug(); e.Enabled() {
			e.Int("hook", int(hook)).Int("tier", tierIdx).Int("systems", len(tier)).Msg("scheduling tier")
		}
		g, _ := errgroup.WithContext(ctx)
		if r.config.MaxWorkers > 0 {
			g.SetLimit(r.config.MaxWorkers)
		}
		for _, idx := range tier {
			sys := systems[idx]
			g.Go(func() error {
				if err := sys.fn(rc); err != nil {
					return eris.Wrapf(err, "system %q", sys.name)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// buildTiers groups systems into dependency tiers. Two systems whose inputs
// share a component bit are ordered into different tiers, the one registered
// first running first. Each system lands in the first tier after all of its
// overlapping predecessors, so systems with disjoint inputs share a tier
// only when their predecessors allow it; the Runner executes each tier
// concurrently. done and current track node membership as bitmaps rather
// than bool slices since tier membership is set algebra (union of ready
// nodes, subtraction of done nodes) at every level of the graph.
func buildTiers(systems []registeredSystem) [][]int {
	n := len(systems)
	graph := make(map[int][]int, n)
	indegree := make([]int, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if systems[i].inputs.Intersection(systems[j].inputs) != Empty {
				graph[i] = append(graph[i], j)
				indegree[j]++
			}
		}
	}

	var done bitmap.Bitmap
	var tiers [][]int
	for processed := 0; processed < n; {
		var current bitmap.Bitmap
		for i := 0; i < n; i++ {
			if !done.Contains(uint32(i)) && indegree[i] == 0 {
				current.Set(uint32(i))
			}
		}
		tier := make([]int, 0, current.Count())
		current.Range(func(x uint32) {
			tier = append(tier, int(x))
			done.Set(x)
			for _, j := range graph[int(x)] {
				indegree[j]--
			}
		})
		tiers = append(tiers, tier)
		processed += len(tier)
	}
	return tiers
}
