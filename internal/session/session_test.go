package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eachlabs/pager/internal/pager"
)

type recordingTransport struct {
	mu      sync.Mutex
	sends   int
	edits   int
	deletes int

	lastControls *pager.Controls
}

type handle struct{}

func (handle) ID() string { return "m" }

func (t *recordingTransport) Send(_ context.Context, _ *pager.Payload, c *pager.Controls) (pager.MessageHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sends++
	t.lastControls = c
	return handle{}, nil
}

func (t *recordingTransport) Edit(_ context.Context, _ pager.MessageHandle, _ *pager.Payload, c *pager.Controls) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.edits++
	t.lastControls = c
	return nil
}

func (t *recordingTransport) Delete(context.Context, pager.MessageHandle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deletes++
	return nil
}

func (t *recordingTransport) counts() (int, int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sends, t.edits, t.deletes
}

type press struct {
	control   pager.ControlID
	optionKey string
}

func (p press) UserID() string           { return "u1" }
func (p press) Control() pager.ControlID { return p.control }
func (p press) OptionKey() string        { return p.optionKey }

func (p press) DeferDelete(context.Context) error { return nil }

func (p press) RespondEdit(context.Context, *pager.Payload, *pager.Controls) error {
	return nil
}

func textFormat(_ context.Context, _ *pager.View, items []int) (*pager.Payload, error) {
	return pager.Text("page"), nil
}

func items(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func newView(t *testing.T, tr pager.Transport) *pager.View {
	t.Helper()
	src, err := pager.NewListSource(items(25), 10, textFormat)
	if err != nil {
		t.Fatalf("NewListSource error: %v", err)
	}
	v, err := pager.NewView(tr, pager.ViewConfig{Sources: []pager.Source{src}})
	if err != nil {
		t.Fatalf("NewView error: %v", err)
	}
	return v
}

func TestBeginAndDispatch(t *testing.T) {
	mgr := NewManager(0)
	tr := &recordingTransport{}
	v := newView(t, tr)

	sess := mgr.NewSession()
	if sess.ID == "" {
		t.Fatal("session ID should be assigned before Begin")
	}

	ctx := context.Background()
	if err := sess.Begin(ctx, v); err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if mgr.Count() != 1 {
		t.Fatalf("Count = %d, want 1", mgr.Count())
	}

	if err := mgr.Dispatch(ctx, sess.ID, press{control: pager.ControlNext}); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if v.CurrentIndex() != 1 {
		t.Errorf("index = %d, want 1", v.CurrentIndex())
	}
}

func TestDispatchUnknownSession(t *testing.T) {
	mgr := NewManager(0)
	err := mgr.Dispatch(context.Background(), "nope", press{control: pager.ControlNext})
	if err == nil {
		t.Error("expected error for unknown session")
	}
}

func TestStopRemovesSession(t *testing.T) {
	mgr := NewManager(time.Minute)
	tr := &recordingTransport{}
	v := newView(t, tr)

	sess := mgr.NewSession()
	ctx := context.Background()
	if err := sess.Begin(ctx, v); err != nil {
		t.Fatalf("Begin error: %v", err)
	}

	if err := mgr.Dispatch(ctx, sess.ID, press{control: pager.ControlStop}); err != nil {
		t.Fatalf("Dispatch stop error: %v", err)
	}
	if mgr.Count() != 0 {
		t.Errorf("Count after stop = %d, want 0", mgr.Count())
	}

	err := mgr.Dispatch(ctx, sess.ID, press{control: pager.ControlNext})
	if err == nil {
		t.Error("expected error dispatching to a stopped session")
	}
}

func TestInactivityTimeout(t *testing.T) {
	mgr := NewManager(30 * time.Millisecond)
	tr := &recordingTransport{}
	v := newView(t, tr)

	sess := mgr.NewSession()
	if err := sess.Begin(context.Background(), v); err != nil {
		t.Fatalf("Begin error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for mgr.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if mgr.Count() != 0 {
		t.Fatal("session was not removed by the timeout")
	}

	// Default timeout action clears the controls with one edit.
	_, edits, _ := tr.counts()
	if edits != 1 {
		t.Errorf("edits = %d, want 1", edits)
	}
	tr.mu.Lock()
	cleared := tr.lastControls == nil
	tr.mu.Unlock()
	if !cleared {
		t.Error("timeout should strip controls from the message")
	}
	if !v.Stopped() {
		t.Error("view should be stopped after timeout")
	}
}

// slowPress is an interaction whose acknowledgment takes a while, long
// enough for the inactivity timer to fire while it is being handled.
type slowPress struct {
	press
	delay time.Duration
}

func (p slowPress) RespondEdit(context.Context, *pager.Payload, *pager.Controls) error {
	time.Sleep(p.delay)
	return nil
}

func TestInteractionRestartsInactivityWindow(t *testing.T) {
	const timeout = 50 * time.Millisecond

	mgr := NewManager(timeout)
	tr := &recordingTransport{}
	v := newView(t, tr)

	sess := mgr.NewSession()
	ctx := context.Background()
	if err := sess.Begin(ctx, v); err != nil {
		t.Fatalf("Begin error: %v", err)
	}

	// Dispatch just before the deadline, with an acknowledgment slow
	// enough that the timer fires while the interaction is in flight.
	time.Sleep(timeout - 5*time.Millisecond)
	in := slowPress{press: press{control: pager.ControlNext}, delay: 3 * timeout}
	if err := mgr.Dispatch(ctx, sess.ID, in); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	// The window restarts when the interaction completes; well inside
	// the fresh window the session must still be alive.
	time.Sleep(timeout / 2)
	if v.Stopped() {
		t.Fatal("timeout action applied right after an interaction completed")
	}
	if mgr.Count() != 1 {
		t.Fatalf("Count = %d, want 1 inside a fresh inactivity window", mgr.Count())
	}

	// Left idle, the session still times out after a full window.
	deadline := time.Now().Add(2 * time.Second)
	for mgr.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if mgr.Count() != 0 {
		t.Fatal("session was not removed after a full idle window")
	}
	if !v.Stopped() {
		t.Error("view should be stopped once the idle window elapses")
	}
}

func TestSelfStoppedViewNotTracked(t *testing.T) {
	mgr := NewManager(time.Minute)
	tr := &recordingTransport{}

	src, err := pager.NewListSource(items(3), 10, textFormat)
	if err != nil {
		t.Fatalf("NewListSource error: %v", err)
	}
	v, err := pager.NewView(tr, pager.ViewConfig{Sources: []pager.Source{src}})
	if err != nil {
		t.Fatalf("NewView error: %v", err)
	}

	sess := mgr.NewSession()
	if err := sess.Begin(context.Background(), v); err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if !errors.Is(errWhenStopped(v), pager.ErrStopped) {
		t.Error("single-page view should have self-stopped")
	}
	if mgr.Count() != 0 {
		t.Errorf("Count = %d, want 0 for a self-stopped view", mgr.Count())
	}
}

func errWhenStopped(v *pager.View) error {
	return v.HandleInteraction(context.Background(), press{control: pager.ControlNext})
}
