package cereal

import (
	"capnproto.org/go/capnp/v3"
	"github.com/pfeiferj/gomsgq"
	"pfeifer.dev/latmpc/cereal/lateral"
)

type MessageCreator[T any] func(lateral.Event) (T, error)

type Publisher[T any] struct {
	Pub     gomsgq.MsgqPublisher
	creator MessageCreator[T]
}

func (p *Publisher[T]) Send(msg *capnp.Message) error {
	b, err := msg.Marshal()
	if err != nil {
		return err
	}
	p.Pub.Send(b)
	return nil
}

func (p *Publisher[T]) NewMessage(valid bool) (msg *capnp.Message, obj T) {
	msg, obj, err := NewEvent(valid, p.creator)
	if err != nil {
		panic(err)
	}
	return msg, obj
}

// NewEvent builds a single segment message holding one event stamped with the current
// monotonic time.
func NewEvent[T any](valid bool, creator MessageCreator[T]) (msg *capnp.Message, obj T, err error) {
	arena := capnp.SingleSegment(nil)

	msg, seg, err := capnp.NewMessage(arena)
	if err != nil {
		return nil, obj, err
	}

	event, err := lateral.NewRootEvent(seg)
	if err != nil {
		return nil, obj, err
	}

	event.SetLogMonoTime(GetTime())
	event.SetValid(valid)

	obj, err = creator(event)
	if err != nil {
		return nil, obj, err
	}

	return msg, obj, nil
}

func NewPublisher[T any](name string, creator MessageCreator[T]) (publisher Publisher[T]) {
	msgq := gomsgq.Msgq{}
	err := initMsgq(&msgq, name)
	if err != nil {
		panic(err)
	}
	pub := gomsgq.MsgqPublisher{}
	pub.Init(msgq)

	publisher.Pub = pub
	publisher.creator = creator
	return publisher
}
