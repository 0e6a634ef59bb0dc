// Package graph builds the module table of a build from its entry points.
package graph

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/semaphore"
)

// Builder resolves every module reachable from the entries into the session table.
type Builder struct {
	resolver ports.ModuleResolver
	logger   ports.Logger
}

// NewBuilder creates a new Builder.
func NewBuilder(resolver ports.ModuleResolver, logger ports.Logger) *Builder {
	return &Builder{
		resolver: resolver,
		logger:   logger,
	}
}

// job is one reference waiting for resolution.
type job struct {
	from    domain.InternedString
	ref     string
	request bool
	// pos is the position of the reference in its source, or the entry index.
	pos int
}

func (j job) entry() bool {
	return j.from.IsZero()
}

type result struct {
	job    job
	module *domain.Module
	err    error
}

type edge struct {
	pos int
	dep domain.Dependency
}

type failure struct {
	job job
	err error
}

// state is owned by the coordinating goroutine of one Build call.
type state struct {
	sess     *domain.Session
	entries  []domain.InternedString
	edges    map[domain.InternedString][]edge
	failures []failure
}

// Build resolves entries and everything they reference.
// Resolution runs concurrently, bounded by the project concurrency; the table is only touched by the calling goroutine.
// Build returns only after every dispatched resolution has settled.
func (b *Builder) Build(ctx context.Context, sess *domain.Session, entries []string) error {
	limit := sess.Project.Concurrency
	if limit <= 0 {
		limit = domain.DefaultConcurrency
	}
	sem := semaphore.NewWeighted(int64(limit))
	results := make(chan result)
	outstanding := 0

	st := &state{
		sess:    sess,
		entries: make([]domain.InternedString, len(entries)),
		edges:   make(map[domain.InternedString][]edge),
	}

	dispatch := func(j job, from *domain.Module) {
		outstanding++
		var snapshot *domain.Module
		if from != nil {
			snapshot = from.Clone()
		}
		go func() {
			if err := sem.Acquire(ctx, 1); err != nil {
				results <- result{job: j, err: err}
				return
			}
			defer sem.Release(1)
			m, err := b.resolver.Resolve(ctx, sess, j.ref, snapshot)
			results <- result{job: j, module: m, err: err}
		}()
	}

	for i, e := range entries {
		dispatch(job{ref: e, pos: i}, nil)
	}

	for outstanding > 0 {
		r := <-results
		outstanding--
		for _, next := range st.settle(r, b.logger) {
			parent, _ := sess.Table.Get(next.from)
			dispatch(next, parent)
		}
	}

	if len(st.failures) > 0 {
		return st.unresolved()
	}
	return st.finalize()
}

// settle records one resolution and returns the references of a newly discovered module.
func (st *state) settle(r result, logger ports.Logger) []job {
	j := r.job
	if r.err != nil {
		if !j.entry() && errors.Is(r.err, domain.ErrModuleNotFound) && isBuiltin(j.ref, st.sess.Project.Builtins) {
			subject := st.display(j.from)
			st.sess.Diagnose(domain.DiagnosticBuiltinSkipped, subject, "skipped built-in %q", j.ref)
			logger.Warn("skipping built-in module", "module", subject, "reference", j.ref)
			return nil
		}
		st.failures = append(st.failures, failure{job: j, err: r.err})
		return nil
	}

	var next []job
	m, known := st.sess.Table.Get(r.module.Name)
	if !known {
		m = r.module
		if err := st.sess.Table.Add(m); err != nil {
			st.failures = append(st.failures, failure{job: j, err: err})
			return nil
		}
		st.sess.KeepRaw(m.Name, m.Contents)
		next = st.references(m)
	}

	if j.entry() {
		m.Entry = true
		st.entries[j.pos] = m.Name
		return next
	}

	if j.request {
		m.Request = true
	}
	st.edges[j.from] = append(st.edges[j.from], edge{
		pos: j.pos,
		dep: domain.Dependency{Name: m.Name, Alias: j.ref, Request: j.request},
	})
	return next
}

// references scans a newly added module.
func (st *state) references(m *domain.Module) []job {
	if m.Kind != domain.KindScript {
		return nil
	}
	refs, err := Scan(m.Contents)
	if err != nil {
		st.failures = append(st.failures, failure{job: job{from: m.Name, pos: -1}, err: err})
		return nil
	}
	jobs := make([]job, len(refs))
	for i, ref := range refs {
		jobs[i] = job{from: m.Name, ref: ref.Path, request: ref.Request, pos: i}
	}
	return jobs
}

func (st *state) display(name domain.InternedString) string {
	if m, ok := st.sess.Table.Get(name); ok {
		return m.DisplayName()
	}
	return name.String()
}

// unresolved aggregates every failure into one error, in a stable order.
func (st *state) unresolved() error {
	errs := make([]error, 0, len(st.failures)+1)
	errs = append(errs, domain.ErrUnresolvedModules)

	wrapped := make([]error, 0, len(st.failures))
	for _, f := range st.failures {
		module := "<entry>"
		if !f.job.entry() {
			module = st.display(f.job.from)
		}
		msg := fmt.Sprintf("%s: cannot resolve %q", module, f.job.ref)
		if f.job.ref == "" {
			msg = module
		}
		wrapped = append(wrapped, zerr.With(zerr.Wrap(f.err, msg), "module", module))
	}
	slices.SortStableFunc(wrapped, func(a, b error) int {
		return cmp.Compare(a.Error(), b.Error())
	})

	errs = append(errs, wrapped...)
	return zerr.With(errors.Join(errs...), "count", len(st.failures))
}

// finalize fixes the discovery order, the edge order and the reverse index, then rewrites asset tokens.
func (st *state) finalize() error {
	table := st.sess.Table

	for name, edges := range st.edges {
		slices.SortStableFunc(edges, func(a, b edge) int { return cmp.Compare(a.pos, b.pos) })
		m, _ := table.Get(name)
		m.Dependencies = make([]domain.Dependency, len(edges))
		for i, e := range edges {
			m.Dependencies[i] = e.dep
		}
	}

	table.Reorder(st.discoveryOrder())

	var errs []error
	for m := range table.All() {
		forms := make(map[domain.InternedString]bool)
		for _, d := range m.Dependencies {
			if request, seen := forms[d.Name]; seen && request != d.Request {
				err := zerr.Wrap(domain.ErrInconsistentReference, m.DisplayName())
				errs = append(errs, zerr.With(zerr.With(err, "module", m.DisplayName()), "target", st.display(d.Name)))
				continue
			}
			forms[d.Name] = d.Request
			target, _ := table.Get(d.Name)
			if !slices.Contains(target.Dependents, m.Name) {
				target.Dependents = append(target.Dependents, m.Name)
			}
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for m := range table.All() {
		if m.Kind != domain.KindJSON {
			rewriteAssets(st.sess.Project, m)
		}
	}
	return nil
}

// discoveryOrder walks the graph breadth-first from the entries, following edges in source order.
// It makes the table order independent of the order resolutions completed in.
func (st *state) discoveryOrder() []domain.InternedString {
	var order []domain.InternedString
	seen := make(map[domain.InternedString]bool)
	queue := make([]domain.InternedString, 0, len(st.entries))
	for _, e := range st.entries {
		if !e.IsZero() && !seen[e] {
			seen[e] = true
			queue = append(queue, e)
		}
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		m, _ := st.sess.Table.Get(name)
		for _, d := range m.Dependencies {
			if !seen[d.Name] {
				seen[d.Name] = true
				queue = append(queue, d.Name)
			}
		}
	}
	return order
}
