// Package client talks to the chat API and keeps the local view of a chat session
// consistent with the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
	"github.com/pkg/errors"
)

const (
	pathSignUp             = "/api/user/signup"
	pathLogIn              = "/api/user/login"
	pathContinue           = "/api/chat/new"
	pathListConversations  = "/api/chat/all-chats"
	pathDeleteConversation = "/api/chat/conversation/"
	pathDeleteAll          = "/api/chat/delete"
)

// APIError is a non-2xx answer. ConversationID and UserTurnPersisted are only set
// for failed turns.
type APIError struct {
	StatusCode        int
	Message           string
	ConversationID    uuid.UUID
	UserTurnPersisted bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type ContinueResponse struct {
	Chats            []model.Message `json:"chats"`
	ConversationID   uuid.UUID       `json:"conversationId"`
	ConversationName string          `json:"conversationName"`
}

type API struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func NewAPI(baseURL string, timeout time.Duration) (*API, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, errors.Wrapf(err, "invalid base url %q", baseURL)
	}
	return &API{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (a *API) SignUp(ctx context.Context, name, email, password string) error {
	return a.authenticate(
		ctx, pathSignUp, map[string]string{
			"name":     name,
			"email":    email,
			"password": password,
		},
	)
}

func (a *API) LogIn(ctx context.Context, email, password string) error {
	return a.authenticate(
		ctx, pathLogIn, map[string]string{
			"email":    email,
			"password": password,
		},
	)
}

// ContinueConversation sends one turn. An empty conversationID starts a new conversation.
func (a *API) ContinueConversation(ctx context.Context, text, conversationID string) (ContinueResponse, error) {
	body := map[string]string{"message": text}
	if conversationID != "" {
		body["conversationId"] = conversationID
	}
	var resp ContinueResponse
	if err := a.do(ctx, http.MethodPost, pathContinue, body, &resp); err != nil {
		return ContinueResponse{}, err
	}
	return resp, nil
}

func (a *API) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	var resp struct {
		Conversations []model.Conversation `json:"conversations"`
	}
	if err := a.do(ctx, http.MethodGet, pathListConversations, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

func (a *API) DeleteConversation(ctx context.Context, conversationID uuid.UUID) error {
	return a.do(ctx, http.MethodDelete, pathDeleteConversation+conversationID.String(), nil, nil)
}

func (a *API) DeleteAllConversations(ctx context.Context) error {
	return a.do(ctx, http.MethodDelete, pathDeleteAll, nil, nil)
}

func (a *API) authenticate(ctx context.Context, path string, body map[string]string) error {
	var resp struct {
		Token string `json:"token"`
	}
	if err := a.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return err
	}
	a.mu.Lock()
	a.token = resp.Token
	a.mu.Unlock()
	return nil
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	a.mu.RLock()
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	a.mu.RUnlock()

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to call %s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err = json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

func decodeAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}
	var body struct {
		Message           string `json:"message"`
		ConversationID    string `json:"conversationId"`
		UserTurnPersisted bool   `json:"userTurnPersisted"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return apiErr
	}
	if body.Message != "" {
		apiErr.Message = body.Message
	}
	if id, err := uuid.Parse(body.ConversationID); err == nil {
		apiErr.ConversationID = id
	}
	apiErr.UserTurnPersisted = body.UserTurnPersisted
	return apiErr
}
