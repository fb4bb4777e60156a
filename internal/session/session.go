package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"elevare.io/sitegen/internal/logger"
	"elevare.io/sitegen/internal/upstream"
)

var (
	// ErrBusy means a message exchange is already in flight for this
	// session; the caller must wait for it to settle before sending again.
	ErrBusy = errors.New("a message is already being processed")

	// ErrNotEligible means the session's quota is exhausted; the message
	// is rejected locally, no collaborator call is made.
	ErrNotEligible = errors.New("customization quota exhausted")
)

// Customizer is the slice of the collaborator surface a session consumes.
type Customizer interface {
	Customize(ctx context.Context, businessID, message string) (*upstream.CustomizeResult, error)
	RemainingMessages(ctx context.Context, businessID string) (*upstream.QuotaStatus, error)
}

type State string

const (
	StateIdle      State = "idle"
	StateSending   State = "sending"
	StateRevealing State = "revealing"
)

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// ChatMessage is one entry in the session transcript. While an assistant
// reply is being revealed, Revealing is true and Revealed holds the
// visible prefix; Content always holds the full text.
type ChatMessage struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Revealed  string `json:"revealed"`
	Revealing bool   `json:"revealing"`
}

// View is an immutable snapshot of a session for rendering.
type View struct {
	BusinessID   string        `json:"businessId"`
	State        State         `json:"state"`
	Messages     []ChatMessage `json:"messages"`
	Remaining    int           `json:"remaining"`
	CanCustomize bool          `json:"canCustomize"`
	NeedsUpgrade bool          `json:"needsUpgrade"`
	PreviewSeq   int           `json:"previewSeq"`
}

// Session is the customization conversation for one business. One
// exchange may be in flight at a time; the preview sequence number
// increments exactly once per applied change, when its reveal completes.
type Session struct {
	mu sync.Mutex

	businessID string
	customizer Customizer
	scheduler  *Scheduler
	log        logger.Logger

	state        State
	messages     []ChatMessage
	remaining    int
	eligible     bool
	needsUpgrade bool
	previewSeq   int
	reveal       *Reveal
}

func New(businessID string, customizer Customizer, scheduler *Scheduler, quota *upstream.QuotaStatus, log logger.Logger) *Session {
	return &Session{
		businessID: businessID,
		customizer: customizer,
		scheduler:  scheduler,
		log:        log,
		state:      StateIdle,
		remaining:  quota.Remaining,
		eligible:   quota.CanCustomize,
	}
}

// Send runs one customization exchange: the user message is appended
// immediately, the collaborator is consulted, and a successful reply is
// revealed character by character before the preview refreshes. Returns
// ErrBusy when an exchange is already in flight.
func (s *Session) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	if !s.eligible {
		s.mu.Unlock()
		return ErrNotEligible
	}
	s.state = StateSending
	s.messages = append(s.messages, ChatMessage{
		ID:       uuid.NewString(),
		Sender:   SenderUser,
		Content:  text,
		Revealed: text,
	})
	s.mu.Unlock()

	res, err := s.customizer.Customize(ctx, s.businessID, text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		// Transport failure: quota state is left untouched because no
		// response arrived to update it from.
		s.log.Warn("customization exchange failed", map[string]interface{}{
			"business_id": s.businessID,
			"error":       err.Error(),
		})
		s.appendAssistantLocked("Something went wrong while applying your change. Please try again.", false)
		s.state = StateIdle
		return err
	}

	if !res.Success {
		// A failed exchange leaves the quota count untouched; only a
		// successful response carries an authoritative new value.
		if isQuotaFailure(res.AssistantMessage) {
			s.needsUpgrade = true
			s.eligible = false
		}
		s.appendAssistantLocked(res.AssistantMessage, false)
		s.state = StateIdle
		return nil
	}

	s.remaining = res.MessagesRemaining
	s.eligible = res.MessagesRemaining > 0

	msgID := s.appendAssistantLocked(res.AssistantMessage, true)
	s.state = StateRevealing
	s.reveal = s.scheduler.Start(res.AssistantMessage,
		func(revealed string) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.updateMessageLocked(msgID, func(m *ChatMessage) { m.Revealed = revealed })
		},
		func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.updateMessageLocked(msgID, func(m *ChatMessage) {
				m.Revealed = m.Content
				m.Revealing = false
			})
			s.previewSeq++
			s.state = StateIdle
			s.reveal = nil
		},
	)
	return nil
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]ChatMessage, len(s.messages))
	copy(messages, s.messages)
	return View{
		BusinessID:   s.businessID,
		State:        s.state,
		Messages:     messages,
		Remaining:    s.remaining,
		CanCustomize: s.eligible && s.state == StateIdle,
		NeedsUpgrade: s.needsUpgrade,
		PreviewSeq:   s.previewSeq,
	}
}

// Close cancels any running reveal. A cancelled reveal settles its
// message to fully revealed without refreshing the preview.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reveal != nil {
		s.reveal.Stop()
		s.reveal = nil
	}
	for i := range s.messages {
		if s.messages[i].Revealing {
			s.messages[i].Revealed = s.messages[i].Content
			s.messages[i].Revealing = false
		}
	}
	if s.state == StateRevealing {
		s.state = StateIdle
	}
}

func (s *Session) appendAssistantLocked(content string, revealing bool) string {
	msg := ChatMessage{
		ID:        uuid.NewString(),
		Sender:    SenderAssistant,
		Content:   content,
		Revealing: revealing,
	}
	if !revealing {
		msg.Revealed = content
	}
	s.messages = append(s.messages, msg)
	return msg.ID
}

func (s *Session) updateMessageLocked(id string, fn func(*ChatMessage)) {
	for i := range s.messages {
		if s.messages[i].ID == id {
			fn(&s.messages[i])
			return
		}
	}
}

// isQuotaFailure classifies a failed exchange by its message: quota
// exhaustion is phrased in terms of a reached limit and a plan upgrade,
// and routes the user to the upgrade surface instead of the transcript.
func isQuotaFailure(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "limit reached") || strings.Contains(lower, "upgrade")
}
