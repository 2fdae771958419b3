package actions

import (
	"sync"

	"dirdigest/internal/mirror"
)

// Call is one action seen by a Recorder.
type Call struct {
	Op     mirror.Op
	Source string
	Path   string
}

// Recorder remembers the actions it is asked to perform and performs none
// of them. Directory existence comes from directories it was told about,
// directories it was asked to create, and then Base when set.
type Recorder struct {
	// Base answers existence for paths the recorder knows nothing about.
	Base mirror.Exister

	mu       sync.Mutex
	calls    []Call
	existing map[string]bool
	failures map[Call]error
}

var (
	_ mirror.Actions = (*Recorder)(nil)
	_ mirror.Exister = (*Recorder)(nil)
)

// NewRecorder treats dirs as already existing.
func NewRecorder(dirs ...string) *Recorder {
	r := &Recorder{
		existing: make(map[string]bool),
		failures: make(map[Call]error),
	}
	for _, d := range dirs {
		r.existing[d] = true
	}
	return r
}

// FailOn makes the matching action return err. Source is ignored for
// matching.
func (r *Recorder) FailOn(op mirror.Op, path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[Call{Op: op, Path: path}] = err
}

func (r *Recorder) record(call Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, call)
	if err, ok := r.failures[Call{Op: call.Op, Path: call.Path}]; ok {
		return err
	}
	if call.Op == mirror.OpCreateDirectory {
		r.existing[call.Path] = true
	}
	return nil
}

func (r *Recorder) CreateDirectory(path string) error {
	return r.record(Call{Op: mirror.OpCreateDirectory, Path: path})
}

func (r *Recorder) CopyFile(source, destination string) error {
	return r.record(Call{Op: mirror.OpCopyFile, Source: source, Path: destination})
}

func (r *Recorder) DeleteFile(path string) error {
	return r.record(Call{Op: mirror.OpDeleteFile, Path: path})
}

func (r *Recorder) Exists(path string) (bool, error) {
	r.mu.Lock()
	known := r.existing[path]
	r.mu.Unlock()

	if known || r.Base == nil {
		return known, nil
	}
	return r.Base.Exists(path)
}

// Calls returns every recorded action in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many actions of op were recorded.
func (r *Recorder) Count(op mirror.Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}
