package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"neuroassist/internal/detection"
	"neuroassist/internal/upstream"
)

// ErrNoAnalysis is returned when a user query arrives while no successful
// classification exists. The input is disabled in that state, but the
// session guards the invariant itself.
var ErrNoAnalysis = errors.New("no successful analysis available")

// Sender is the remote assistant call the session depends on.
// Implemented by *upstream.ChatClient.
type Sender interface {
	Send(ctx context.Context, message string, chatCtx upstream.ChatContext) (string, error)
}

// Session owns the conversation transcript. It subscribes to classification
// outcomes: every fresh success resets the transcript, logs a system notice
// and fires the automatic query; user questions are accepted while a
// success is current.
//
// Every transcript reset bumps the generation counter. Outbound chat
// requests carry the generation at issue time, and a reply whose generation
// is no longer current is discarded, so a stale reply can never land in a
// transcript that belongs to a newer analysis. Replies within one
// generation append in arrival order.
type Session struct {
	sender Sender
	logger *zap.Logger

	mu             sync.Mutex
	messages       []Message
	lastErr        string
	current        detection.Outcome
	lastAnalysisID string
	generation     int64
	autoPending    int
	userPending    int

	updates chan Update
}

func NewSession(sender Sender, logger *zap.Logger) *Session {
	return &Session{
		sender:  sender,
		logger:  logger,
		current: detection.Absent(),
		updates: make(chan Update, 100),
	}
}

// HandleOutcome is the bridge subscription. Failure and Absent outcomes
// update the current snapshot but never reset the transcript; a success
// with a previously seen analysis id is a republish and is ignored.
func (s *Session) HandleOutcome(outcome detection.Outcome) {
	s.mu.Lock()
	s.current = outcome

	if outcome.Kind != detection.KindSuccess {
		s.mu.Unlock()
		return
	}
	if outcome.Result.AnalysisID == s.lastAnalysisID {
		s.mu.Unlock()
		return
	}

	result := outcome.Result
	s.lastAnalysisID = result.AnalysisID
	s.messages = nil
	s.lastErr = ""
	s.generation++
	gen := s.generation
	s.autoPending = 1
	s.userPending = 0

	notice := fmt.Sprintf("Brain scan analyzed. %s detected with %s%% confidence.",
		result.Tumor, formatPercent(result.Confidence))
	s.messages = append(s.messages, newMessage(RoleSystem, notice))

	query := ComposeQuery(result)
	payload := contextFor(result, true)

	s.logger.Info("starting new chat session for analysis",
		zap.String("analysisId", result.AnalysisID),
		zap.String("tumor", result.Tumor))
	s.emitLocked()
	s.mu.Unlock()

	go s.runQuery(gen, true, query, payload)
}

// Ask submits a user question. Blank input is a no-op. A question while a
// request is already pending is accepted as a second independent request;
// replies append in arrival order.
func (s *Session) Ask(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	s.mu.Lock()
	if s.current.Kind != detection.KindSuccess {
		s.mu.Unlock()
		return ErrNoAnalysis
	}

	gen := s.generation
	payload := contextFor(s.current.Result, false)
	s.messages = append(s.messages, newMessage(RoleUser, text))
	s.userPending++
	s.lastErr = ""
	s.emitLocked()
	s.mu.Unlock()

	go s.runQuery(gen, false, text, payload)
	return nil
}

// runQuery performs one chat round-trip. There is deliberately no
// cancellation: superseding an in-flight request does not abort it, the
// reply is simply discarded when its generation has moved on.
func (s *Session) runQuery(gen int64, automatic bool, text string, payload upstream.ChatContext) {
	reply, err := s.sender.Send(context.Background(), text, payload)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("discarding reply for superseded analysis",
			zap.Int64("generation", gen),
			zap.Bool("automatic", automatic))
		return
	}

	if automatic {
		if s.autoPending > 0 {
			s.autoPending--
		}
	} else if s.userPending > 0 {
		s.userPending--
	}

	if err != nil {
		apiErr := upstream.Classify(err)
		s.lastErr = apiErr.UserMessage()
		s.logger.Warn("chat query failed",
			zap.Bool("automatic", automatic),
			zap.String("kind", apiErr.Kind.String()),
			zap.Error(err))
	} else {
		s.messages = append(s.messages, newMessage(RoleAssistant, reply))
	}
	s.emitLocked()
}

// Snapshot returns a copy of the visible session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State reports the session's lifecycle position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// LastError returns the user-facing message of the most recent failed
// chat request, or "" when the last request succeeded.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Updates exposes the stream of snapshots for SSE consumers. Slow readers
// miss intermediate snapshots rather than blocking the session.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

func (s *Session) stateLocked() State {
	switch {
	case s.userPending > 0:
		return StateUserPending
	case s.autoPending > 0:
		return StateAutoPending
	case len(s.messages) == 0:
		return StateEmpty
	default:
		return StateIdle
	}
}

func (s *Session) snapshotLocked() Snapshot {
	messages := make([]Message, len(s.messages))
	copy(messages, s.messages)
	return Snapshot{
		State:     s.stateLocked(),
		Messages:  messages,
		LastError: s.lastErr,
	}
}

func (s *Session) emitLocked() {
	select {
	case s.updates <- Update{Type: "transcript", Data: s.snapshotLocked()}:
	default:
	}
}

func contextFor(result *detection.Result, automatic bool) upstream.ChatContext {
	return upstream.ChatContext{
		TumorType:        result.Tumor,
		Confidence:       result.Confidence,
		Probabilities:    result.Probabilities,
		IsAutomaticQuery: automatic,
	}
}
