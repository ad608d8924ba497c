package ghost

import (
	"sync"
)

const inboxSize = 64

// Hub fans poses out between channels in one process, e.g. the SSH
// sessions of a server. It is safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	members map[*HubChannel]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{members: make(map[*HubChannel]struct{})}
}

// Join adds a member.
func (h *Hub) Join() *HubChannel {
	c := &HubChannel{hub: h, inbox: make(chan Pose, inboxSize)}
	h.mu.Lock()
	h.members[c] = struct{}{}
	h.mu.Unlock()
	return c
}

// Members is the number of joined channels.
func (h *Hub) Members() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.members)
}

func (h *Hub) broadcast(from *HubChannel, p Pose) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.members {
		if c == from {
			continue
		}
		select {
		case c.inbox <- p:
		default:
			// slow reader, drop
		}
	}
}

func (h *Hub) leave(c *HubChannel) {
	h.mu.Lock()
	delete(h.members, c)
	h.mu.Unlock()
}

// HubChannel is one member's view of a Hub.
type HubChannel struct {
	hub       *Hub
	inbox     chan Pose
	closeOnce sync.Once
}

func (c *HubChannel) Publish(p Pose) error {
	c.hub.broadcast(c, p)
	return nil
}

func (c *HubChannel) Receive() []Pose {
	var out []Pose
	for {
		select {
		case p := <-c.inbox:
			out = append(out, p)
		default:
			return out
		}
	}
}

func (c *HubChannel) Close() error {
	c.closeOnce.Do(func() { c.hub.leave(c) })
	return nil
}
