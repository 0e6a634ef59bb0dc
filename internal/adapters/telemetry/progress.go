package telemetry

import (
	"sync"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/stitch/internal/core/ports"
)

// Recorder records every stage as a progrock vertex.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder

	mu       sync.Mutex
	vertices map[string]*progrock.VertexRecorder
}

// NewRecorder creates a Recorder on w.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:        w,
		rec:      progrock.NewRecorder(w),
		vertices: make(map[string]*progrock.VertexRecorder),
	}
}

// Started opens a vertex for the stage.
func (r *Recorder) Started(id, _, name string, _ time.Time) {
	v := r.rec.Vertex(digest.FromString(id), name)
	r.mu.Lock()
	r.vertices[id] = v
	r.mu.Unlock()
}

// Completed closes the stage's vertex.
func (r *Recorder) Completed(id string, _ time.Duration, err error) {
	r.mu.Lock()
	v, ok := r.vertices[id]
	delete(r.vertices, id)
	r.mu.Unlock()
	if ok {
		v.Done(err)
	}
}

// Open reports how many stages have started but not completed.
func (r *Recorder) Open() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.vertices)
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// LogProgress logs stage timings.
type LogProgress struct {
	Logger ports.Logger

	mu    sync.Mutex
	names map[string]string
}

// NewLogProgress creates a LogProgress writing to logger.
func NewLogProgress(logger ports.Logger) *LogProgress {
	return &LogProgress{Logger: logger, names: make(map[string]string)}
}

// Started remembers the stage name.
func (p *LogProgress) Started(id, _, name string, _ time.Time) {
	p.mu.Lock()
	p.names[id] = name
	p.mu.Unlock()
}

// Completed logs the stage with its duration.
func (p *LogProgress) Completed(id string, elapsed time.Duration, err error) {
	p.mu.Lock()
	name := p.names[id]
	delete(p.names, id)
	p.mu.Unlock()

	if err != nil {
		p.Logger.Warn("stage failed", "stage", name, "elapsed", elapsed, "error", err)
		return
	}
	p.Logger.Info("stage finished", "stage", name, "elapsed", elapsed)
}

// Fanout forwards events to several Progress receivers.
type Fanout []Progress

// Started forwards to every receiver.
func (f Fanout) Started(id, parentID, name string, at time.Time) {
	for _, p := range f {
		p.Started(id, parentID, name, at)
	}
}

// Completed forwards to every receiver.
func (f Fanout) Completed(id string, elapsed time.Duration, err error) {
	for _, p := range f {
		p.Completed(id, elapsed, err)
	}
}
