package ghost

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

const maxDatagram = 1024

// UDPChannel exchanges msgpack-encoded poses with a fixed set of peers.
type UDPChannel struct {
	conn  net.PacketConn
	peers []net.Addr
	inbox chan Pose
	log   zerolog.Logger
	wg    sync.WaitGroup
}

// ListenUDP binds addr and sends every published pose to peers.
func ListenUDP(addr string, peers []string, log zerolog.Logger) (*UDPChannel, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	c := &UDPChannel{conn: conn, inbox: make(chan Pose, inboxSize), log: log}
	for _, p := range peers {
		ua, err := net.ResolveUDPAddr("udp", p)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("resolve peer %s: %w", p, err)
		}
		c.peers = append(c.peers, ua)
	}
	c.wg.Add(1)
	go c.readLoop()
	log.Info().Str("addr", conn.LocalAddr().String()).Int("peers", len(c.peers)).Msg("ghost channel listening")
	return c, nil
}

// Addr is the bound local address.
func (c *UDPChannel) Addr() net.Addr { return c.conn.LocalAddr() }

func (c *UDPChannel) readLoop() {
	defer c.wg.Done()
	buf := make([]byte, maxDatagram)
	for {
		n, from, err := c.conn.ReadFrom(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				c.log.Warn().Err(err).Msg("ghost read failed")
			}
			return
		}
		var p Pose
		if err := msgpack.Unmarshal(buf[:n], &p); err != nil {
			c.log.Debug().Err(err).Str("from", from.String()).Msg("dropping malformed pose")
			continue
		}
		select {
		case c.inbox <- p:
		default:
		}
	}
}

func (c *UDPChannel) Publish(p Pose) error {
	data, err := msgpack.Marshal(&p)
	if err != nil {
		return fmt.Errorf("encode pose: %w", err)
	}
	var errs []error
	for _, peer := range c.peers {
		if _, err := c.conn.WriteTo(data, peer); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *UDPChannel) Receive() []Pose {
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

func (c *UDPChannel) Close() error {
	err := c.conn.Close()
	c.wg.Wait()
	return err
}
