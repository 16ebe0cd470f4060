package mqtt

import (
	"context"
	"encoding/json"

	"github.com/robotalks/motor.go/pkg/comm"
	fx "github.com/robotalks/motor.go/pkg/framework"
)

// Registrar implements comm.Registrar using MQTT.
// The meta is retained under TYPE/ID/meta while connected and cleared
// by the will when the relay disappears.
type Registrar struct {
	Queue *Queue
	Info  comm.Info

	metaJSON  []byte
	registrar comm.PipeRegistrar
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info comm.Info) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+info.Ref.Name()+TopicMeta, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("relay:" + info.Ref.Name())
	}
	r := &Registrar{
		Queue:    NewQueue(opts, topicPrefix),
		Info:     info,
		metaJSON: meta,
	}
	r.Queue.OnConnect = func(*Queue) { r.onConnected() }
	r.registrar.Init(NewPacketReadWriter(r.Queue).ForController(info.Ref))
	return r, nil
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.registrar.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.registrar)
	loop.AddRunnable(fx.NamedRun("mqtt-registrar", r))
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	r.Queue.Connect()
	<-ctx.Done()
	r.Queue.PubWith(r.Info.Ref.Name()+TopicMeta, nil, 1, true).Wait()
	r.Queue.Close()
	return ctx.Err()
}

func (r *Registrar) onConnected() {
	r.Queue.PubWith(r.Info.Ref.Name()+TopicMeta, r.metaJSON, 1, true)
}
