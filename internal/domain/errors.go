package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidMessage       = errors.New("invalid message")
	ErrMessageTooLarge      = errors.New("message too large")
	ErrInvalidInput         = errors.New("invalid input")
	ErrSelfConversation     = errors.New("cannot start a conversation with yourself")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrProfileNotFound      = errors.New("profile not found")
)

// ErrUnreadableDocument refuses a write over a stored document whose layout
// could not be read.
var ErrUnreadableDocument = errors.New("stored document has an unreadable layout")

// StorageError wraps a failed or timed out document store call. Every
// StorageError is safe to retry.
type StorageError struct {
	Op      string
	Path    string
	Timeout bool
	Err     error
}

func (e *StorageError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("storage %s %s: timed out: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Retryable() bool { return true }

func NewStorageError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{
		Op:      op,
		Path:    path,
		Timeout: errors.Is(err, context.DeadlineExceeded),
		Err:     err,
	}
}

// IsRetryable reports whether err, or anything it wraps, is a StorageError.
func IsRetryable(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

type OrphanedConversationError struct {
	ParticipantID  string
	ConversationID string
}

func (e *OrphanedConversationError) Error() string {
	return fmt.Sprintf("conversation %s has no summary in the index of %s", e.ConversationID, e.ParticipantID)
}

type IdentityError struct {
	Reason string
}

func (e *IdentityError) Error() string {
	return "identity: " + e.Reason
}

// Step is one independently retryable part of a send.
type Step string

const (
	StepLogAppend      Step = "log_append"
	StepSenderIndex    Step = "sender_index"
	StepRecipientIndex Step = "recipient_index"
)

var SendSteps = []Step{StepLogAppend, StepSenderIndex, StepRecipientIndex}

type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

type StepOutcome struct {
	Status StepStatus
	Err    error
}

// PartialSendError reports a send where at least one step did not complete.
type PartialSendError struct {
	ConversationID  string
	MessageID       string
	NewConversation bool
	Steps           map[Step]StepOutcome
}

func (e *PartialSendError) Error() string {
	var failed []string
	for _, step := range SendSteps {
		o := e.Steps[step]
		switch o.Status {
		case StepFailed:
			failed = append(failed, fmt.Sprintf("%s failed: %v", step, o.Err))
		case StepSkipped:
			failed = append(failed, string(step)+" skipped")
		}
	}
	return fmt.Sprintf("partial send in %s: %s", e.ConversationID, strings.Join(failed, "; "))
}

func (e *PartialSendError) Unwrap() []error {
	var errs []error
	for _, step := range SendSteps {
		if err := e.Steps[step].Err; err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (e *PartialSendError) Succeeded(step Step) bool {
	return e.Steps[step].Status == StepSucceeded
}

// Pending lists the steps a resumed send still has to run.
func (e *PartialSendError) Pending() []Step {
	var out []Step
	for _, step := range SendSteps {
		if !e.Succeeded(step) {
			out = append(out, step)
		}
	}
	return out
}

// RecipientUnaware reports that the recipient's index does not show the
// message yet.
func (e *PartialSendError) RecipientUnaware() bool {
	return !e.Succeeded(StepRecipientIndex)
}
