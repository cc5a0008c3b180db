package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
	"github.com/pkg/errors"
)

var (
	ErrEmptyMessage        = errors.New("message is empty")
	ErrTurnInFlight        = errors.New("a message is already being sent")
	ErrResponseDiscarded   = errors.New("response arrived for a turn that is no longer current")
	ErrUnknownConversation = errors.New("conversation is not in the local list")
)

type Transport interface {
	ContinueConversation(ctx context.Context, text, conversationID string) (ContinueResponse, error)
	ListConversations(ctx context.Context) ([]model.Conversation, error)
	DeleteConversation(ctx context.Context, conversationID uuid.UUID) error
	DeleteAllConversations(ctx context.Context) error
}

type TurnStatus int

const (
	TurnIdle TurnStatus = iota
	TurnSent
	TurnCompleted
	TurnFailed
)

func (s TurnStatus) String() string {
	switch s {
	case TurnSent:
		return "sent"
	case TurnCompleted:
		return "completed"
	case TurnFailed:
		return "failed"
	default:
		return "idle"
	}
}

// PendingTurn tracks the one outstanding send. CorrelationID never leaves the client.
// ConversationID is the conversation the turn was typed into, uuid.Nil for a new one.
type PendingTurn struct {
	Status         TurnStatus
	CorrelationID  uuid.UUID
	ConversationID uuid.UUID
	Err            error
}

type snapshot struct {
	transcript    []model.Message
	conversations []model.Conversation
}

// Session is the local view of the chat: the conversation list, the selected
// conversation and its transcript. It is safe for concurrent use; transport calls
// run outside the lock.
type Session struct {
	transport Transport
	now       func() time.Time

	mu            sync.Mutex
	conversations []model.Conversation
	activeID      uuid.UUID
	transcript    []model.Message
	pending       PendingTurn
	rollback      snapshot
	stale         bool
}

func NewSession(transport Transport) *Session {
	return &Session{
		transport: transport,
		now:       time.Now,
	}
}

// Load replaces the list with the server's and selects its first conversation.
func (s *Session) Load(ctx context.Context) error {
	conversations, err := s.transport.ListConversations(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = cloneConversations(conversations)
	s.stale = false
	s.invalidatePending()
	if len(s.conversations) == 0 {
		s.activeID = uuid.Nil
		s.transcript = nil
		return nil
	}
	s.activeID = s.conversations[0].ID
	s.transcript = cloneMessages(s.conversations[0].Messages)
	return nil
}

// Refresh reconciles the list with the server and keeps the selection when it
// still exists.
func (s *Session) Refresh(ctx context.Context) error {
	conversations, err := s.transport.ListConversations(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = cloneConversations(conversations)
	s.stale = false
	if i := s.indexOf(s.activeID); i >= 0 {
		if s.pending.Status != TurnSent {
			s.transcript = cloneMessages(s.conversations[i].Messages)
		}
		return nil
	}
	if s.activeID != uuid.Nil {
		s.activeID = uuid.Nil
		s.transcript = nil
		s.invalidatePending()
	}
	return nil
}

// Submit echoes text into the transcript and opens a pending turn.
func (s *Session) Submit(text string) (uuid.UUID, error) {
	pending, err := s.submit(text)
	if err != nil {
		return uuid.Nil, err
	}
	return pending.CorrelationID, nil
}

func (s *Session) submit(text string) (PendingTurn, error) {
	if strings.TrimSpace(text) == "" {
		return PendingTurn{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending.Status == TurnSent {
		return PendingTurn{}, ErrTurnInFlight
	}
	s.rollback = snapshot{
		transcript:    cloneMessages(s.transcript),
		conversations: cloneConversations(s.conversations),
	}
	s.transcript = append(s.transcript, model.NewMessage(model.MessageRoleUser, text, s.now()))
	s.pending = PendingTurn{
		Status:         TurnSent,
		CorrelationID:  uuid.New(),
		ConversationID: s.activeID,
	}
	return s.pending, nil
}

// Resolve applies a successful response. It reports false and changes nothing when
// correlationID is no longer the pending turn.
func (s *Session) Resolve(correlationID uuid.UUID, resp ContinueResponse) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isCurrent(correlationID) {
		return false
	}

	s.transcript = cloneMessages(resp.Chats)
	if i := s.indexOf(resp.ConversationID); i >= 0 && resp.ConversationID == s.activeID {
		s.conversations[i].Messages = cloneMessages(resp.Chats)
		s.conversations[i].Name = resp.ConversationName
	} else {
		if i >= 0 {
			s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
		}
		s.activeID = resp.ConversationID
		conv := model.Conversation{
			ID:        resp.ConversationID,
			Name:      resp.ConversationName,
			Messages:  cloneMessages(resp.Chats),
			CreatedAt: s.now(),
		}
		s.conversations = append([]model.Conversation{conv}, s.conversations...)
	}
	s.pending = PendingTurn{
		Status:         TurnCompleted,
		CorrelationID:  correlationID,
		ConversationID: resp.ConversationID,
	}
	s.rollback = snapshot{}
	return true
}

// Fail rolls the transcript and list back to their state before Submit. A failure
// whose user turn was persisted marks the list stale.
func (s *Session) Fail(correlationID uuid.UUID, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isCurrent(correlationID) {
		return false
	}

	s.transcript = s.rollback.transcript
	s.conversations = s.rollback.conversations
	s.rollback = snapshot{}
	s.pending = PendingTurn{
		Status:         TurnFailed,
		CorrelationID:  correlationID,
		ConversationID: s.pending.ConversationID,
		Err:            err,
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.UserTurnPersisted {
		s.stale = true
	}
	return true
}

// Send runs a whole turn: Submit, the transport call and Resolve or Fail.
func (s *Session) Send(ctx context.Context, text string) (ContinueResponse, error) {
	pending, err := s.submit(text)
	if err != nil {
		return ContinueResponse{}, err
	}
	correlationID := pending.CorrelationID

	var target string
	if pending.ConversationID != uuid.Nil {
		target = pending.ConversationID.String()
	}
	resp, err := s.transport.ContinueConversation(ctx, text, target)
	if err != nil {
		if !s.Fail(correlationID, err) {
			return ContinueResponse{}, ErrResponseDiscarded
		}
		return ContinueResponse{}, err
	}
	if !s.Resolve(correlationID, resp) {
		return ContinueResponse{}, ErrResponseDiscarded
	}
	return resp, nil
}

// SelectConversation switches the view. A turn still in flight is abandoned.
func (s *Session) SelectConversation(conversationID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(conversationID)
	if i < 0 {
		return ErrUnknownConversation
	}
	s.invalidatePending()
	s.activeID = conversationID
	s.transcript = cloneMessages(s.conversations[i].Messages)
	return nil
}

// NewConversation clears the view so the next send starts a conversation.
func (s *Session) NewConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidatePending()
	s.activeID = uuid.Nil
	s.transcript = nil
}

func (s *Session) DeleteConversation(ctx context.Context, conversationID uuid.UUID) error {
	if err := s.transport.DeleteConversation(ctx, conversationID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = removeConversation(s.conversations, conversationID)
	s.rollback.conversations = removeConversation(s.rollback.conversations, conversationID)
	if s.activeID == conversationID {
		s.invalidatePending()
		s.activeID = uuid.Nil
		s.transcript = nil
	}
	return nil
}

func (s *Session) DeleteAllConversations(ctx context.Context) error {
	if err := s.transport.DeleteAllConversations(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidatePending()
	s.conversations = nil
	s.activeID = uuid.Nil
	s.transcript = nil
	return nil
}

// Search matches query case-insensitively against names and message contents.
func (s *Session) Search(query string) []model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return cloneConversations(s.conversations)
	}

	var found []model.Conversation
	for _, conv := range s.conversations {
		if matchesQuery(conv, query) {
			found = append(found, conv.Clone())
		}
	}
	return found
}

func (s *Session) Conversations() []model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneConversations(s.conversations)
}

func (s *Session) Transcript() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMessages(s.transcript)
}

// ActiveConversationID is uuid.Nil while no conversation is selected.
func (s *Session) ActiveConversationID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

func (s *Session) Pending() PendingTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// IsStale reports that the server holds turns the local list does not show.
func (s *Session) IsStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

func (s *Session) isCurrent(correlationID uuid.UUID) bool {
	return s.pending.Status == TurnSent && s.pending.CorrelationID == correlationID
}

// invalidatePending drops the in-flight turn so its response is discarded.
func (s *Session) invalidatePending() {
	s.pending = PendingTurn{Status: TurnIdle}
	s.rollback = snapshot{}
}

func (s *Session) indexOf(conversationID uuid.UUID) int {
	if conversationID == uuid.Nil {
		return -1
	}
	for i := range s.conversations {
		if s.conversations[i].ID == conversationID {
			return i
		}
	}
	return -1
}

func removeConversation(conversations []model.Conversation, conversationID uuid.UUID) []model.Conversation {
	for i := range conversations {
		if conversations[i].ID == conversationID {
			return append(conversations[:i], conversations[i+1:]...)
		}
	}
	return conversations
}

func matchesQuery(conv model.Conversation, query string) bool {
	if strings.Contains(strings.ToLower(conv.Name), query) {
		return true
	}
	for _, msg := range conv.Messages {
		if strings.Contains(strings.ToLower(msg.Content), query) {
			return true
		}
	}
	return false
}

func cloneMessages(messages []model.Message) []model.Message {
	if messages == nil {
		return nil
	}
	clone := make([]model.Message, len(messages))
	copy(clone, messages)
	return clone
}

func cloneConversations(conversations []model.Conversation) []model.Conversation {
	if conversations == nil {
		return nil
	}
	clone := make([]model.Conversation, len(conversations))
	for i, conv := range conversations {
		clone[i] = conv.Clone()
	}
	return clone
}
