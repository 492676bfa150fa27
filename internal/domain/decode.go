package domain

import "fmt"

// DecodeError describes one stored record that could not be read.
type DecodeError struct {
	Record string
	Index  int
	Reason string
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("decode %s[%d]: %s", e.Record, e.Index, e.Reason)
}

// UnsupportedKind marks a message whose kind is known but whose payload is not
// carried by this service.
type UnsupportedKind struct {
	Index     int
	MessageID string
	Kind      MessageKind
}

// DecodeReport lists what a read had to skip or could only partially decode.
type DecodeReport struct {
	Skipped     []DecodeError
	Unsupported []UnsupportedKind
}

func (r DecodeReport) Clean() bool {
	return len(r.Skipped) == 0 && len(r.Unsupported) == 0
}

// Subscription is a live view of stored state. Close stops delivery.
type Subscription interface {
	Close() error
}
