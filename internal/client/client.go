package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/manglemix/pony-express/internal/domain"
	pkglog "github.com/manglemix/pony-express/pkg/log"
)

const (
	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "
)

// Client is the single data-access layer for the Pony Express backend.
// Every call returns either a decoded value or an error that Classify maps
// to KindNotFound or KindGeneric.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client with a logging transport and the given timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{
		Timeout:   timeout,
		Transport: pkglog.NewTransport(nil),
	})
}

// NewWithHTTPClient creates a client around an existing http.Client.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
	}
}

// ListChats fetches GET /chats.
func (c *Client) ListChats(ctx context.Context, token string) ([]domain.Chat, error) {
	var out domain.ChatCollection
	if err := c.doJSON(ctx, "list chats", http.MethodGet, "/chats", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Chats, nil
}

// GetChat fetches GET /chats/{id}?include=users.
func (c *Client) GetChat(ctx context.Context, token string, chatID int64) (*domain.ChatDetail, error) {
	var out domain.ChatDetail
	path := "/chats/" + id(chatID) + "?include=users"
	if err := c.doJSON(ctx, "get chat", http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMessages fetches GET /chats/{id}/messages.
func (c *Client) ListMessages(ctx context.Context, token string, chatID int64) ([]domain.Message, error) {
	var out domain.MessageCollection
	if err := c.doJSON(ctx, "list messages", http.MethodGet, messagesPath(chatID), token, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// SendMessage posts a new message and returns the stored one.
func (c *Client) SendMessage(ctx context.Context, token string, chatID int64, text string) (*domain.Message, error) {
	var out domain.MessageEnvelope
	body := domain.MessageText{Text: text}
	if err := c.doJSON(ctx, "send message", http.MethodPost, messagesPath(chatID), token, body, &out); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

// EditMessage replaces the text of a message.
func (c *Client) EditMessage(ctx context.Context, token string, chatID, messageID int64, text string) (*domain.Message, error) {
	var out domain.MessageEnvelope
	body := domain.MessageText{Text: text}
	path := messagesPath(chatID) + "/" + id(messageID)
	if err := c.doJSON(ctx, "edit message", http.MethodPut, path, token, body, &out); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

// DeleteMessage deletes a message. The backend answers 204.
func (c *Client) DeleteMessage(ctx context.Context, token string, chatID, messageID int64) error {
	path := messagesPath(chatID) + "/" + id(messageID)
	return c.doJSON(ctx, "delete message", http.MethodDelete, path, token, nil, nil)
}

// CurrentUser fetches GET /users/me.
func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	var out domain.UserEnvelope
	if err := c.doJSON(ctx, "current user", http.MethodGet, "/users/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login exchanges credentials for a bearer token (OAuth2 password form).
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error) {
	const op = "login"

	form := url.Values{}
	form.Set("username", req.Username)
	form.Set("password", req.Password)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, NewStatusError(op, 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out domain.TokenResponse
	if err := c.do(op, httpReq, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, NewStatusError(op, 0, fmt.Errorf("empty access token"))
	}
	return &out, nil
}

// Register creates a new account. It does not log in.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	var out domain.UserEnvelope
	if err := c.doJSON(ctx, "register", http.MethodPost, "/auth/registration", "", req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return NewStatusError(op, 0, fmt.Errorf("failed to encode request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return NewStatusError(op, 0, fmt.Errorf("failed to create request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(headerAuthorization, bearerPrefix+token)
	}

	return c.do(op, req, out)
}

func (c *Client) do(op string, req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return NewStatusError(op, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return NewStatusError(op, resp.StatusCode, nil)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewStatusError(op, 0, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func messagesPath(chatID int64) string {
	return "/chats/" + id(chatID) + "/messages"
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}
