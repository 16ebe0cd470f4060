package mqtt

import (
	"context"
	"io"
	"sync"

	"github.com/robotalks/motor.go/pkg/comm"
)

// Topic suffixes under the name of a relay.
const (
	TopicCmd  = "/cmd"
	TopicMsg  = "/msg"
	TopicMeta = "/meta"
)

// ReadWriter implements PacketReadWriter.
// Packets are published to PubTopic and received from SubTopic.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh  chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 16),
		done:     make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForConnector sets topics using default convention for clients:
// SubTopic = name/msg
// PubTopic = name/cmd
func (p *ReadWriter) ForConnector(ref comm.Ref) *ReadWriter {
	prefix := ref.Name()
	return p.WithTopics(prefix+TopicMsg, prefix+TopicCmd)
}

// ForController sets topics using default convention for relays:
// SubTopic = name/cmd
// PubTopic = name/msg
func (p *ReadWriter) ForController(ref comm.Ref) *ReadWriter {
	prefix := ref.Name()
	return p.WithTopics(prefix+TopicCmd, prefix+TopicMsg)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	select {
	case <-p.done:
		return io.ErrClosedPipe
	default:
	}
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, Handler(p.handleMsg))
	defer sub.Close()
	defer p.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return nil
	}
}

// Close stops reading packets.
func (p *ReadWriter) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	return nil
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.done:
	}
}
