package notify

import (
	"fmt"
	"io"
	"sync"
)

// Variant selects how an alert is presented.
type Variant string

const (
	Danger  Variant = "danger"
	Success Variant = "success"
)

// Alert is a user-visible banner message.
type Alert struct {
	Variant Variant `json:"variant"`
	Message string  `json:"message"`
}

// Notifier is the UI notification mechanism the session store reports to.
type Notifier interface {
	ShowAlert(a Alert)
	StartWorking(message string)
	StopWorking()
}

// Console writes alerts and working messages as plain lines.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	working bool
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) ShowAlert(a Alert) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mark := "!"
	if a.Variant == Success {
		mark = "✓"
	}
	fmt.Fprintf(c.w, "%s %s\n", mark, a.Message)
}

func (c *Console) StartWorking(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.working = true
	fmt.Fprintf(c.w, "… %s\n", message)
}

func (c *Console) StopWorking() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.working = false
}

// Working reports whether a StartWorking is pending its StopWorking.
func (c *Console) Working() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.working
}

// Recorder keeps every alert in memory. Used by tests and by callers that
// render alerts themselves.
type Recorder struct {
	mu      sync.Mutex
	alerts  []Alert
	working []string
	depth   int
}

func (r *Recorder) ShowAlert(a Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
}

func (r *Recorder) StartWorking(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.working = append(r.working, message)
	r.depth++
}

func (r *Recorder) StopWorking() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.depth > 0 {
		r.depth--
	}
}

// Alerts returns a copy of the recorded alerts.
func (r *Recorder) Alerts() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Alert(nil), r.alerts...)
}

// Last returns the most recent alert and whether there is one.
func (r *Recorder) Last() (Alert, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.alerts) == 0 {
		return Alert{}, false
	}
	return r.alerts[len(r.alerts)-1], true
}

// Working reports whether StartWorking calls outnumber StopWorking calls.
func (r *Recorder) Working() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.depth > 0
}

// WorkingMessages returns every message passed to StartWorking.
func (r *Recorder) WorkingMessages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.working...)
}
