package ghost

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/config"
)

func TestRegistry_DropsStaleEntries(t *testing.T) {
	r := NewRegistry(3)
	r.Update(Pose{ID: "a"}, 0)
	r.Update(Pose{ID: "b"}, 2)
	r.Update(Pose{}, 2) // anonymous poses are ignored

	r.Prune(3)
	assert.Equal(t, 2, r.Len())

	r.Prune(3.5)
	poses := r.Poses("")
	require.Len(t, poses, 1)
	assert.Equal(t, "b", poses[0].ID)

	r.Update(Pose{ID: "b", Yaw: 1}, 4)
	r.Prune(6.9)
	assert.Equal(t, 1.0, r.Poses("")[0].Yaw, "refreshed entries survive")
}

func TestRegistry_PosesSortedWithoutSelf(t *testing.T) {
	r := NewRegistry(3)
	for _, id := range []string{"c", "me", "a", "b"} {
		r.Update(Pose{ID: id}, 0)
	}
	var ids []string
	for _, p := range r.Poses("me") {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestHub_FansOutToOthers(t *testing.T) {
	h := NewHub()
	a, b, c := h.Join(), h.Join(), h.Join()
	require.Equal(t, 3, h.Members())

	require.NoError(t, a.Publish(Pose{ID: "a"}))
	assert.Empty(t, a.Receive(), "no echo to the sender")
	assert.Len(t, b.Receive(), 1)
	assert.Len(t, c.Receive(), 1)
	assert.Empty(t, b.Receive(), "receive drains")

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 2, h.Members())
	a.Publish(Pose{ID: "a"})
	assert.Empty(t, c.Receive())
}

func TestHub_SlowReaderDrops(t *testing.T) {
	h := NewHub()
	a, b := h.Join(), h.Join()
	for i := 0; i < inboxSize+10; i++ {
		require.NoError(t, a.Publish(Pose{ID: "a"}))
	}
	assert.Len(t, b.Receive(), inboxSize)
}

type countingChannel struct {
	published []Pose
	incoming  []Pose
	err       error
}

func (c *countingChannel) Publish(p Pose) error {
	c.published = append(c.published, p)
	return c.err
}

func (c *countingChannel) Receive() []Pose {
	out := c.incoming
	c.incoming = nil
	return out
}

func (c *countingChannel) Close() error { return nil }

func TestBroadcaster_PublishesAtInterval(t *testing.T) {
	cfg := config.Default().Ghost
	ch := &countingChannel{}
	b := NewBroadcaster(cfg, ch, zerolog.Nop())

	self := Pose{ID: "me"}
	for i := 0; i < 60; i++ { // one second at 60 fps
		b.Tick(1.0/60, self)
	}
	// first tick plus one every 0.1 s
	assert.InDelta(t, 10, len(ch.published), 1)
}

func TestBroadcaster_ExpiresQuietPilots(t *testing.T) {
	cfg := config.Default().Ghost
	ch := &countingChannel{}
	b := NewBroadcaster(cfg, ch, zerolog.Nop())

	ch.incoming = []Pose{{ID: "other", Position: r3.Vec{X: 5}}, {ID: "me"}}
	ghosts := b.Tick(0.1, Pose{ID: "me"})
	require.Len(t, ghosts, 1)
	assert.Equal(t, 5.0, ghosts[0].Position.X)

	for i := 0; i < 29; i++ {
		ghosts = b.Tick(0.1, Pose{ID: "me"})
	}
	assert.Len(t, ghosts, 1, "still inside the staleness window")

	for i := 0; i < 5; i++ {
		ghosts = b.Tick(0.1, Pose{ID: "me"})
	}
	assert.Empty(t, ghosts)
}

func TestBroadcaster_SurvivesPublishErrors(t *testing.T) {
	ch := &countingChannel{err: errors.New("network down")}
	b := NewBroadcaster(config.Default().Ghost, ch, zerolog.Nop())
	for i := 0; i < 10; i++ {
		b.Tick(0.2, Pose{ID: "me"})
	}
	assert.Len(t, ch.published, 10)
}

func TestUDPChannel_RoundTrip(t *testing.T) {
	recv, err := ListenUDP("127.0.0.1:0", nil, zerolog.Nop())
	require.NoError(t, err)
	defer recv.Close()

	send, err := ListenUDP("127.0.0.1:0", []string{recv.Addr().String()}, zerolog.Nop())
	require.NoError(t, err)
	defer send.Close()

	want := Pose{ID: "p1", Name: "ace", Paint: "ember", Position: r3.Vec{X: 1, Y: 2, Z: -3}, Yaw: 0.5, Bank: -0.25}

	var got []Pose
	require.Eventually(t, func() bool {
		_ = send.Publish(want)
		got = append(got, recv.Receive()...)
		return len(got) > 0
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, want, got[0])
}

func TestUDPChannel_BadPeer(t *testing.T) {
	_, err := ListenUDP("127.0.0.1:0", []string{"not a host:port:x"}, zerolog.Nop())
	assert.Error(t, err)
}
