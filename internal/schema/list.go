package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
)

var errNullRecord = errors.New("null record")

type entry[T any] struct {
	index int
	raw   json.RawMessage
	val   *T
}

// List is a stored JSON array decoded element by element. Elements that did
// not decode are kept verbatim so writing the list back does not lose them.
// A document that is not an array at all cannot be written back.
type List[T any] struct {
	entries    []entry[T]
	encode     func(T) any
	unreadable *domain.DecodeError
}

func decodeList[T any](
	record string,
	value json.RawMessage,
	decode func(json.RawMessage) (T, error),
	encode func(T) any,
) (*List[T], []domain.DecodeError) {

	l := &List[T]{encode: encode}
	if len(bytes.TrimSpace(value)) == 0 {
		return l, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(value, &raws); err != nil {
		derr := domain.DecodeError{Record: record, Index: -1, Reason: "not an array: " + err.Error()}
		l.unreadable = &derr
		return l, []domain.DecodeError{derr}
	}

	var skipped []domain.DecodeError
	for i, raw := range raws {
		e := entry[T]{index: i, raw: raw}
		v, err := decodeElement(raw, decode)
		if err != nil {
			skipped = append(skipped, domain.DecodeError{Record: record, Index: i, Reason: err.Error()})
		} else {
			e.val = &v
		}
		l.entries = append(l.entries, e)
	}
	return l, skipped
}

func decodeElement[T any](raw json.RawMessage, decode func(json.RawMessage) (T, error)) (T, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		var zero T
		return zero, errNullRecord
	}
	return decode(raw)
}

// Values returns every element that decoded, in stored order.
func (l *List[T]) Values() []T {
	out := make([]T, 0, len(l.entries))
	for _, e := range l.entries {
		if e.val != nil {
			out = append(out, *e.val)
		}
	}
	return out
}

func (l *List[T]) Find(match func(T) bool) (T, bool) {
	for _, e := range l.entries {
		if e.val != nil && match(*e.val) {
			return *e.val, true
		}
	}
	var zero T
	return zero, false
}

// Update applies fn to the first decoded element matching and reports
// whether one was found.
func (l *List[T]) Update(match func(T) bool, fn func(*T)) bool {
	for i := range l.entries {
		e := &l.entries[i]
		if e.val != nil && match(*e.val) {
			fn(e.val)
			e.raw = nil
			return true
		}
	}
	return false
}

func (l *List[T]) Append(v T) {
	l.entries = append(l.entries, entry[T]{index: len(l.entries), val: &v})
}

// Writable fails with domain.ErrUnreadableDocument when the list was decoded
// from a document that is not an array. Writing such a list would replace
// that document.
func (l *List[T]) Writable() error {
	if l.unreadable != nil {
		return fmt.Errorf("%w: %w", domain.ErrUnreadableDocument, *l.unreadable)
	}
	return nil
}

func (l *List[T]) Encode() (json.RawMessage, error) {
	if err := l.Writable(); err != nil {
		return nil, err
	}
	out := make([]any, 0, len(l.entries))
	for _, e := range l.entries {
		if e.val == nil {
			out = append(out, e.raw)
			continue
		}
		out = append(out, l.encode(*e.val))
	}
	return json.Marshal(out)
}
