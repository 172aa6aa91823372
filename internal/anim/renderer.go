package anim

import "sync"

type Options struct {
	Loop     bool
	Autoplay bool
}

// Instance is one live animation bound to a slot. Implementations must
// tolerate calls after Destroy: the reveal watchdog may fire late.
type Instance interface {
	Play()
	Stop()
	GoToFrame(frame int)
	Destroy()
}

// EventSource is implemented by renderers that report playback
// milestones; reveal animations use it to park on their final frame.
type EventSource interface {
	OnComplete(fn func())
	OnLoopComplete(fn func())
}

// Renderer turns a descriptor blob into a playing instance. The real
// descriptor format is opaque here.
type Renderer interface {
	Load(slotID string, descriptor []byte, opts Options) (Instance, error)
}

// NoopRenderer plays nothing; it backs headless runs where only the
// loaded/disposed bookkeeping matters.
type NoopRenderer struct{}

func (NoopRenderer) Load(slotID string, _ []byte, opts Options) (Instance, error) {
	return &noopInstance{playing: opts.Autoplay}, nil
}

type noopInstance struct {
	mu        sync.Mutex
	playing   bool
	frame     int
	destroyed bool
}

func (n *noopInstance) Play() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.playing = true
}

func (n *noopInstance) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.playing = false
}

func (n *noopInstance) GoToFrame(frame int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.frame = frame
}

func (n *noopInstance) Destroy() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.destroyed = true
	n.playing = false
}
