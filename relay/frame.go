package relay

import (
	"errors"
	"time"
)

// Channel identifies one of the two independent media pipelines.
type Channel int8

const (
	Video Channel = iota
	Audio
)

func (c Channel) String() string {
	switch c {
	case Video:
		return "video"
	case Audio:
		return "audio"
	}
	return "unknown"
}

// ParseChannel maps a route segment like "video" to its Channel.
func ParseChannel(name string) (Channel, error) {
	switch name {
	case "video":
		return Video, nil
	case "audio":
		return Audio, nil
	}
	return 0, ErrUnknownChannel
}

var (
	ErrEmptyPayload    = errors.New("empty payload")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrUnknownChannel  = errors.New("unknown channel")
)

// Frame is one captured unit of data together with its arrival time.
// Payload is shared by reference between the store and all subscribers,
// so it must not be modified after ingestion.
type Frame struct {
	Channel    Channel
	Payload    []byte
	ReceivedAt time.Time
}

// Age reports how long ago the frame arrived. Staleness is always derived
// by the reader, the relay never expires frames itself.
func (f *Frame) Age() time.Duration {
	return time.Since(f.ReceivedAt)
}
