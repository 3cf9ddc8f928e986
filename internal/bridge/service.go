package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kazuph/slack-bridge/internal/history"
	"github.com/kazuph/slack-bridge/internal/models"
	"github.com/kazuph/slack-bridge/internal/pending"
	"github.com/kazuph/slack-bridge/internal/slack"
	"github.com/kazuph/slack-bridge/internal/terminal"
)

// ErrNotPending reports that a callback referenced a question batch that
// was already answered or expired. Callers show the user-visible expired
// text for it instead of treating it as a failure.
var ErrNotPending = errors.New("question is no longer pending")

// Service owns the ask/answer lifecycle: it posts question batches to
// Slack, tracks them in the pending table, and turns interactivity
// callbacks into resolutions.
type Service struct {
	slack    *slack.Client
	table    *pending.Table
	history  *history.Store
	terminal *terminal.Activator
	logger   *slog.Logger

	channel string
	timeout time.Duration
}

// New wires a Service. history may be nil when the audit log is disabled.
func New(client *slack.Client, table *pending.Table, store *history.Store, activator *terminal.Activator, channel string, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		slack:    client,
		table:    table,
		history:  store,
		terminal: activator,
		logger:   logger,
		channel:  channel,
		timeout:  timeout,
	}
}

// Pending reports the number of outstanding question batches.
func (s *Service) Pending() int {
	return s.table.Size()
}

// newQuestionID generates a batch id. The timestamp prefix keeps ids
// sortable in logs; the uuid suffix keeps concurrent asks distinct.
func newQuestionID() string {
	return fmt.Sprintf("q_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// AskAndWait posts the question batch to Slack and blocks until a human
// answers, the ask timeout elapses, or ctx is canceled. The timeout
// variant is returned as a normal Answer with Err set, not as an error;
// the error return covers posting and cancellation failures only.
func (s *Service) AskAndWait(ctx context.Context, req models.AskAndWaitRequest) (models.Answer, string, error) {
	questionID := req.QuestionID
	if questionID == "" {
		questionID = newQuestionID()
	}

	messageTS, err := s.postQuestions(ctx, questionID, req.Questions, req.SessionInfo)
	if err != nil {
		return models.Answer{}, questionID, err
	}

	entry := &pending.Entry{
		Questions:   req.Questions,
		MessageTS:   messageTS,
		SessionInfo: req.SessionInfo,
		PaneID:      req.PaneID,
		Mode:        pending.ModeWait,
	}
	if err := s.table.Register(questionID, entry); err != nil {
		return models.Answer{}, questionID, err
	}

	s.logger.Info("question posted, waiting for answer",
		"questionId", questionID,
		"questions", len(req.Questions),
		"timeout", s.timeout,
	)

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case answer := <-entry.Wait():
		return answer, questionID, nil

	case <-timer.C:
		expired, ok := s.table.Expire(questionID)
		if !ok {
			// An answer beat the timeout; it is already buffered.
			return <-entry.Wait(), questionID, nil
		}
		s.finishExpired(expired)
		return <-entry.Wait(), questionID, nil

	case <-ctx.Done():
		expired, ok := s.table.Expire(questionID)
		if !ok {
			return <-entry.Wait(), questionID, nil
		}
		s.finishExpired(expired)
		return models.Answer{}, questionID, ctx.Err()
	}
}

// Ask is the fire-and-forget variant: the batch is posted and registered
// in tmux mode, and the eventual answer is typed into the pane instead of
// returned to a blocked caller. Expiry is enforced by a background timer.
func (s *Service) Ask(ctx context.Context, req models.AskRequest) (string, error) {
	questionID := newQuestionID()

	messageTS, err := s.postQuestions(ctx, questionID, req.Questions, req.SessionID)
	if err != nil {
		return questionID, err
	}

	entry := &pending.Entry{
		Questions:   req.Questions,
		MessageTS:   messageTS,
		SessionInfo: req.SessionID,
		PaneID:      req.TmuxPane,
		Mode:        pending.ModeTmux,
	}
	if err := s.table.Register(questionID, entry); err != nil {
		return questionID, err
	}

	time.AfterFunc(s.timeout, func() {
		if expired, ok := s.table.Expire(questionID); ok {
			s.finishExpired(expired)
		}
	})

	s.logger.Info("question posted in pane mode",
		"questionId", questionID,
		"pane", req.TmuxPane,
	)
	return questionID, nil
}

// postQuestions sends one Slack message per question and returns the
// timestamp of the first, which anchors the answer thread.
func (s *Service) postQuestions(ctx context.Context, questionID string, questions []models.Question, sessionLabel string) (string, error) {
	var firstTS string
	for i, q := range questions {
		if sessionLabel != "" {
			header := q.Header
			if header == "" {
				header = "Claude Code"
			}
			q.Header = header + " [" + sessionLabel + "]"
		}
		blocks := slack.BuildQuestionBlocks(questionID, i, q)
		ts, err := s.slack.PostMessage(ctx, s.channel, "❓ "+q.Question, blocks, "")
		if err != nil {
			return "", fmt.Errorf("post question %d: %w", i, err)
		}
		if firstTS == "" {
			firstTS = ts
		}
	}
	return firstTS, nil
}

// ResolveButton handles an option-button click. It returns the text that
// replaces the original message, or ok=false when the batch is no longer
// pending (already answered or expired).
func (s *Service) ResolveButton(ctx context.Context, value slack.ButtonValue) (string, bool) {
	if value.OptionIndex == nil {
		return "", false
	}
	answer := models.Answer{
		Answer:      value.Label,
		OptionIndex: *value.OptionIndex,
		Timestamp:   time.Now().UnixMilli(),
	}
	entry, ok := s.table.Resolve(value.QuestionID, answer)
	if !ok {
		return "", false
	}
	s.finishResolved(ctx, entry, answer)
	return fmt.Sprintf("✅ Answered: *%s*", value.Label), true
}

// OpenFreeTextModal opens the input modal for a free-text button click.
// The pending entry is only read here, never transitioned; the batch can
// still be answered by a button while the modal is open. Returns
// ErrNotPending when the batch was already answered or expired.
func (s *Service) OpenFreeTextModal(ctx context.Context, triggerID string, value slack.ButtonValue) error {
	if _, ok := s.table.Lookup(value.QuestionID); !ok {
		return fmt.Errorf("question %s: %w", value.QuestionID, ErrNotPending)
	}
	view := slack.BuildFreeTextModal(value.QuestionID, value.QuestionIndex, value.Question)
	if err := s.slack.OpenModal(ctx, triggerID, view); err != nil {
		return fmt.Errorf("open free-text modal: %w", err)
	}
	return nil
}

// ResolveModal handles a free-text modal submission. ok=false means the
// batch was answered or expired while the modal was open.
func (s *Service) ResolveModal(ctx context.Context, metadata slack.ModalMetadata, text string) bool {
	answer := models.Answer{
		Answer:      text,
		OptionIndex: -1,
		FreeText:    true,
		Timestamp:   time.Now().UnixMilli(),
	}
	entry, ok := s.table.Resolve(metadata.QuestionID, answer)
	if !ok {
		return false
	}
	s.finishResolved(ctx, entry, answer)
	return true
}

// finishResolved runs the side effects of a successful resolution. All of
// them are best-effort: the answer has already been delivered to the
// waiter, so nothing here may fail the resolution.
func (s *Service) finishResolved(ctx context.Context, entry *pending.Entry, answer models.Answer) {
	s.logger.Info("question answered",
		"questionId", entry.QuestionID,
		"answer", answer.Answer,
		"freeText", answer.FreeText,
	)

	s.recordAnswer(entry, answer)

	if entry.MessageTS != "" {
		confirmation := fmt.Sprintf("✅ Answer recorded: *%s*", answer.Answer)
		if _, err := s.slack.PostMessage(ctx, s.channel, confirmation, nil, entry.MessageTS); err != nil {
			s.logger.Warn("thread confirmation failed", "questionId", entry.QuestionID, "error", err)
		}
	}

	s.terminal.Activate(entry.PaneID)
	if entry.Mode == pending.ModeTmux {
		s.terminal.SendKeys(entry.PaneID, answer.Answer)
	}
}

// finishExpired runs the side effects of a timeout. The thread note uses a
// short background context because the asking request is already gone.
func (s *Service) finishExpired(entry *pending.Entry) {
	s.logger.Warn("question timed out",
		"questionId", entry.QuestionID,
		"age", time.Since(entry.CreatedAt),
	)

	s.recordAnswer(entry, models.Answer{
		Err:         "timeout",
		Message:     "No answer received within the response timeout",
		OptionIndex: -1,
		Timestamp:   time.Now().UnixMilli(),
	})

	if entry.MessageTS != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		note := fmt.Sprintf("⏰ Timed out after %s with no answer", s.timeout)
		if _, err := s.slack.PostMessage(ctx, s.channel, note, nil, entry.MessageTS); err != nil {
			s.logger.Warn("timeout note failed", "questionId", entry.QuestionID, "error", err)
		}
	}
}

func (s *Service) recordAnswer(entry *pending.Entry, answer models.Answer) {
	if s.history == nil {
		return
	}
	rec := models.AnswerRecord{
		QuestionID:  entry.QuestionID,
		Question:    firstQuestionText(entry.Questions),
		Answer:      answer.Answer,
		OptionIndex: answer.OptionIndex,
		FreeText:    answer.FreeText,
		Source:      answer.Source(),
		SessionInfo: entry.SessionInfo,
		PaneID:      entry.PaneID,
		AskedAt:     entry.CreatedAt.UnixMilli(),
		AnsweredAt:  answer.Timestamp,
	}
	if err := s.history.Record(rec); err != nil {
		s.logger.Warn("history record failed", "questionId", entry.QuestionID, "error", err)
	}
}

func firstQuestionText(questions []models.Question) string {
	texts := make([]string, 0, len(questions))
	for _, q := range questions {
		texts = append(texts, q.Question)
	}
	return strings.Join(texts, " / ")
}
