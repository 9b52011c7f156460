package cereal

import (
	"math"

	"capnproto.org/go/capnp/v3"
	"github.com/pfeiferj/gomsgq"
	"github.com/pkg/errors"
	"pfeifer.dev/latmpc/cereal/lateral"
)

type Reader[T any] func(lateral.Event) (T, error)

type Subscriber[T any] struct {
	Sub    gomsgq.MsgqSubscriber
	reader Reader[T]
}

// Read returns the next message, success is false when nothing new is available or the data
// could not be decoded.
func (s *Subscriber[T]) Read() (obj T, success bool) {
	data := s.Sub.Read()
	if len(data) == 0 {
		return obj, false
	}
	obj, _, err := Decode(data, s.reader)
	if err != nil {
		return obj, false
	}
	return obj, true
}

// Decode unpacks one event and hands it to reader. valid is the envelope valid flag.
func Decode[T any](data []byte, reader Reader[T]) (obj T, valid bool, err error) {
	msg, err := capnp.Unmarshal(data)
	if err != nil {
		return obj, false, errors.Wrap(err, "could not unmarshal event")
	}

	// allow us to read as much as we want
	msg.ResetReadLimit(math.MaxUint64)

	event, err := lateral.ReadRootEvent(msg)
	if err != nil {
		return obj, false, errors.Wrap(err, "could not read root event")
	}

	obj, err = reader(event)
	if err != nil {
		return obj, false, err
	}
	return obj, event.Valid(), nil
}

func NewSubscriber[T any](name string, reader Reader[T], conflate bool) (subscriber Subscriber[T]) {
	msgq := gomsgq.Msgq{}
	err := initMsgq(&msgq, name)
	if err != nil {
		panic(err)
	}
	sub := gomsgq.MsgqSubscriber{}
	sub.Conflate = conflate
	sub.Init(msgq)

	subscriber.Sub = sub
	subscriber.reader = reader
	return subscriber
}
