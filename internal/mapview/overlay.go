package mapview

import (
	"sync"

	"github.com/rotisserie/eris"

	"github.com/woozymasta/quakemap/internal/render"
)

// State is the load state of an overlay group.
type State string

// Overlay load states.
const (
	StatePending  State = "pending"
	StateRendered State = "rendered"
	StateFailed   State = "failed"
)

// Overlay is a group holding one styled layer. Only the task loading the
// overlay writes it; visibility is per client and lives on Snapshot.
type Overlay struct {
	mu      sync.RWMutex
	name    string
	title   string
	notice  string
	state   State
	layer   *render.Layer
	encoded []byte
	report  render.Report
	err     error
}

// OverlayStatus is a read-only view of an overlay.
type OverlayStatus struct {
	Name    string        `json:"name"`
	Title   string        `json:"title"`
	State   State         `json:"state"`
	Error   string        `json:"error,omitempty"`
	Report  render.Report `json:"report"`
	Visible bool          `json:"visible"`
}

func newOverlay(name, title, notice string) *Overlay {
	return &Overlay{name: name, title: title, notice: notice, state: StatePending}
}

// Name returns the overlay identifier.
func (o *Overlay) Name() string { return o.name }

// ErrNilLayer is returned when storing a nil layer.
var ErrNilLayer = eris.New("nil layer")

// set stores a rendered layer.
func (o *Overlay) set(layer *render.Layer, rep render.Report) error {
	if layer == nil {
		return eris.Wrapf(ErrNilLayer, "%s overlay", o.name)
	}

	data, err := layer.MarshalJSON()
	if err != nil {
		return eris.Wrapf(err, "encode %s layer", o.name)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.layer = layer
	o.encoded = data
	o.report = rep
	o.state = StateRendered
	o.err = nil

	return nil
}

// fail marks the overlay failed; its layer stays empty.
func (o *Overlay) fail(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = StateFailed
	o.err = err
}

// Status returns a snapshot of the overlay state. A rendered overlay is
// visible by default.
func (o *Overlay) Status() OverlayStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()

	st := OverlayStatus{
		Name:    o.name,
		Title:   o.title,
		State:   o.state,
		Visible: o.state == StateRendered,
		Report:  o.report,
	}
	if o.err != nil {
		st.Error = o.err.Error()
	}
	return st
}

// Notice returns the user facing message for a failed overlay, or "".
func (o *Overlay) Notice() string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.state != StateFailed {
		return ""
	}
	return o.notice
}

// GeoJSON returns the encoded layer and the current state.
// The data is nil unless the state is StateRendered.
func (o *Overlay) GeoJSON() ([]byte, State) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.encoded, o.state
}

// Layer returns the rendered layer, or nil. Callers must not modify it.
func (o *Overlay) Layer() *render.Layer {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.layer
}
