package device

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/motor.go/pkg/transport"
)

// Timeout is applied to every bulk transfer issued by the codecs.
const Timeout = 5000 * time.Millisecond

// Matcher accepts the frame expected as a response.
type Matcher func(Frame) bool

// MatchAddress accepts frames whose leading byte equals addr.
func MatchAddress(addr byte) Matcher {
	return func(f Frame) bool {
		return f.Address() == addr
	}
}

// Send writes a frame.
func Send(t transport.Transport, f Frame) (int, error) {
	glog.V(3).Infof("SND %s", f)
	return t.WriteBulk(f[:], Timeout)
}

// Receive reads frames until one is accepted by match. Rejected frames
// are discarded. A failed read is returned immediately and not retried.
func Receive(t transport.Transport, match Matcher) (Frame, error) {
	for {
		var f Frame
		if _, err := t.ReadBulk(f[:], Timeout); err != nil {
			return f, err
		}
		if match(f) {
			glog.V(3).Infof("RCV %s", f)
			return f, nil
		}
		glog.V(3).Infof("DIS %s", f)
	}
}

// Exchange sends a frame and receives the matching response.
func Exchange(t transport.Transport, f Frame, match Matcher) (Frame, error) {
	if _, err := Send(t, f); err != nil {
		return Frame{}, err
	}
	return Receive(t, match)
}

// SendEmergency broadcasts the emergency stop frame. No response is
// expected so only the write result is reported.
func SendEmergency(t transport.Transport) (int, error) {
	return Send(t, NewFrame(Emergency, Master, 0))
}
