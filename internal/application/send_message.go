package application

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/events"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/identity"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/observability"
)

type SendCommand struct {
	Sender    identity.Participant
	Recipient identity.Participant
	// ConversationID is empty when the sender opens a new conversation.
	ConversationID string
	Message        domain.Message
}

type SendResult struct {
	ConversationID  string
	MessageID       string
	NewConversation bool
	Message         domain.Message
}

// SendMessage appends the message to the conversation log and brings both
// participants' summaries up to date. When any step fails the result is
// still returned together with a *domain.PartialSendError naming the steps
// that have to be resumed.
func (s *Service) SendMessage(ctx context.Context, cmd SendCommand) (*SendResult, error) {
	res, err := s.prepare(cmd)
	if err != nil {
		return nil, err
	}

	s.log.Info("SendMessage requested",
		zap.String("conversation_id", res.ConversationID),
		zap.String("message_id", res.MessageID),
		zap.String("sender_id", cmd.Sender.ID),
		zap.Bool("new_conversation", res.NewConversation),
	)

	outcomes := s.runSteps(ctx, cmd, res, domain.SendSteps)
	return s.finish(ctx, cmd, res, outcomes)
}

// ResumeSend runs the steps a previous SendMessage left unfinished. cmd must
// carry the message that was returned with the partial failure.
func (s *Service) ResumeSend(ctx context.Context, cmd SendCommand, partial *domain.PartialSendError) (*SendResult, error) {
	if partial == nil {
		return nil, domain.ErrInvalidInput
	}
	if cmd.Message.ID != partial.MessageID || partial.ConversationID == "" {
		return nil, domain.ErrInvalidInput
	}
	cmd.ConversationID = partial.ConversationID

	res, err := s.prepare(cmd)
	if err != nil {
		return nil, err
	}
	res.NewConversation = partial.NewConversation

	pending := partial.Pending()
	s.log.Info("ResumeSend requested",
		zap.String("conversation_id", res.ConversationID),
		zap.String("message_id", res.MessageID),
		zap.Int("pending_steps", len(pending)),
	)

	outcomes := s.runSteps(ctx, cmd, res, pending)
	for _, step := range domain.SendSteps {
		if _, ok := outcomes[step]; !ok {
			outcomes[step] = domain.StepOutcome{Status: domain.StepSucceeded}
		}
	}
	return s.finish(ctx, cmd, res, outcomes)
}

func (s *Service) prepare(cmd SendCommand) (*SendResult, error) {
	if err := requireIdentity(cmd.Sender, "sender"); err != nil {
		return nil, err
	}
	if err := requireIdentity(cmd.Recipient, "recipient"); err != nil {
		return nil, err
	}
	if cmd.Sender.ID == cmd.Recipient.ID {
		return nil, domain.ErrSelfConversation
	}

	msg := cmd.Message.Normalize(cmd.Sender.ID, cmd.Sender.DisplayName, s.now())
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	res := &SendResult{
		ConversationID: cmd.ConversationID,
		MessageID:      msg.ID,
		Message:        msg,
	}
	if res.ConversationID == "" {
		res.ConversationID = domain.NewConversationID(cmd.Sender.ID, msg.ID)
		res.NewConversation = true
	}
	return res, nil
}

// runSteps executes the requested steps and reports an outcome for each of
// them. Opening a conversation writes both summaries first and then the log;
// continuing one appends to the log first and only then moves the summaries,
// so a summary never previews a message the log does not hold.
func (s *Service) runSteps(ctx context.Context, cmd SendCommand, res *SendResult, steps []domain.Step) map[domain.Step]domain.StepOutcome {
	want := make(map[domain.Step]bool, len(steps))
	for _, step := range steps {
		want[step] = true
	}

	msg := res.Message
	convID := res.ConversationID
	latest := domain.LatestFrom(msg)
	outcomes := make(map[domain.Step]domain.StepOutcome, len(steps))

	appendLog := func() error {
		return s.messages.Append(ctx, convID, msg)
	}

	indexTasks := map[domain.Step]func() error{}
	if res.NewConversation {
		if want[domain.StepSenderIndex] {
			indexTasks[domain.StepSenderIndex] = func() error {
				return s.index.UpsertSummary(ctx, cmd.Sender.ID, domain.ConversationSummary{
					ConversationID:  convID,
					PeerID:          cmd.Recipient.ID,
					PeerDisplayName: cmd.Recipient.DisplayName,
					LatestMessage:   latest,
				})
			}
		}
		if want[domain.StepRecipientIndex] {
			indexTasks[domain.StepRecipientIndex] = func() error {
				return s.index.UpsertSummary(ctx, cmd.Recipient.ID, domain.ConversationSummary{
					ConversationID:  convID,
					PeerID:          cmd.Sender.ID,
					PeerDisplayName: cmd.Sender.DisplayName,
					LatestMessage:   latest,
				})
			}
		}

		for step, err := range runConcurrently(indexTasks) {
			outcomes[step] = outcomeOf(err)
		}
		if want[domain.StepLogAppend] {
			outcomes[domain.StepLogAppend] = outcomeOf(appendLog())
		}
		return outcomes
	}

	if want[domain.StepLogAppend] {
		err := appendLog()
		outcomes[domain.StepLogAppend] = outcomeOf(err)
		if err != nil {
			for _, step := range []domain.Step{domain.StepSenderIndex, domain.StepRecipientIndex} {
				if want[step] {
					outcomes[step] = domain.StepOutcome{Status: domain.StepSkipped}
				}
			}
			return outcomes
		}
	}

	if want[domain.StepSenderIndex] {
		indexTasks[domain.StepSenderIndex] = func() error {
			return s.index.UpdateLatest(ctx, cmd.Sender.ID, convID, latest)
		}
	}
	if want[domain.StepRecipientIndex] {
		indexTasks[domain.StepRecipientIndex] = func() error {
			return s.index.UpdateLatest(ctx, cmd.Recipient.ID, convID, latest)
		}
	}
	for step, err := range runConcurrently(indexTasks) {
		outcomes[step] = outcomeOf(err)
	}
	return outcomes
}

func (s *Service) finish(ctx context.Context, cmd SendCommand, res *SendResult, outcomes map[domain.Step]domain.StepOutcome) (*SendResult, error) {
	path := "existing"
	if res.NewConversation {
		path = "new"
	}

	payload := events.SendPayload{
		ConversationID:  res.ConversationID,
		NewConversation: res.NewConversation,
		Sender:          events.FromParticipant(cmd.Sender),
		Recipient:       events.FromParticipant(cmd.Recipient),
		Message:         events.FromMessage(res.Message),
	}

	complete := true
	for _, step := range domain.SendSteps {
		if outcomes[step].Status != domain.StepSucceeded {
			complete = false
			break
		}
	}

	if complete {
		observability.SendOutcomesTotal.WithLabelValues(path, "ok").Inc()
		s.log.Info("Message sent",
			zap.String("conversation_id", res.ConversationID),
			zap.String("message_id", res.MessageID),
		)
		s.events.Emit(ctx, events.TypeMessageSent, res.ConversationID, payload)
		return res, nil
	}

	perr := &domain.PartialSendError{
		ConversationID:  res.ConversationID,
		MessageID:       res.MessageID,
		NewConversation: res.NewConversation,
		Steps:           outcomes,
	}
	observability.SendOutcomesTotal.WithLabelValues(path, "partial").Inc()
	s.log.Warn("Message send incomplete",
		zap.String("conversation_id", res.ConversationID),
		zap.String("message_id", res.MessageID),
		zap.Any("pending_steps", perr.Pending()),
		zap.Error(perr),
	)

	payload.Steps = events.StepsFrom(perr)
	s.events.Emit(ctx, events.TypeSendPartial, res.ConversationID, payload)
	return res, perr
}

func outcomeOf(err error) domain.StepOutcome {
	if err == nil {
		return domain.StepOutcome{Status: domain.StepSucceeded}
	}
	return domain.StepOutcome{Status: domain.StepFailed, Err: err}
}

func runConcurrently(tasks map[domain.Step]func() error) map[domain.Step]error {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out = make(map[domain.Step]error, len(tasks))
	)
	for step, fn := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := fn()
			mu.Lock()
			out[step] = err
			mu.Unlock()
		}()
	}
	wg.Wait()
	return out
}

// AsPartialSend extracts the partial send failure wrapped in err, if any.
func AsPartialSend(err error) (*domain.PartialSendError, bool) {
	var perr *domain.PartialSendError
	ok := errors.As(err, &perr)
	return perr, ok
}
