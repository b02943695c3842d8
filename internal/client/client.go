// Package client talks to the helpdesk HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// APIError is the decoded error envelope of a failed request.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Code, e.Message)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client is safe for concurrent use.
type Client struct {
	base string
	http *http.Client

	mu    sync.RWMutex
	token string
}

// New returns a client for the API at baseURL.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.base
}

// SetToken sets the bearer token sent with every request; empty clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges credentials for a session. Bad credentials surface as an
// APIError with status 401.
func (c *Client) Login(ctx context.Context, username, password string) (dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: username, Password: password}, &out)
	return out, err
}

// Logout revokes the current session on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return domain.User{}, err
	}
	return out.ToDomain(), nil
}

// Submit files a new ticket through the public form endpoint.
func (c *Client) Submit(ctx context.Context, req dto.SubmitTicketRequest) (domain.Ticket, error) {
	return c.ticket(ctx, http.MethodPost, "/api/tickets", req)
}

// ListTickets fetches tickets newest first, filtered server side.
func (c *Client) ListTickets(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	q := url.Values{}
	set := func(dim domain.FilterDimension, v string) {
		if v != "" {
			q.Set(string(dim), v)
		}
	}
	set(domain.FilterStatus, string(filter.Status))
	set(domain.FilterPriority, string(filter.Priority))
	set(domain.FilterAssignedTo, string(filter.AssignedTo))
	set(domain.FilterCategory, string(filter.Category))

	path := "/api/tickets"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []dto.TicketResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	tickets := make([]domain.Ticket, 0, len(out))
	for _, t := range out {
		tickets = append(tickets, t.ToDomain())
	}
	return tickets, nil
}

// GetTicket fetches one ticket.
func (c *Client) GetTicket(ctx context.Context, id string) (domain.Ticket, error) {
	return c.ticket(ctx, http.MethodGet, "/api/tickets/"+url.PathEscape(id), nil)
}

// ToggleStatus advances the quick-toggle cycle.
func (c *Client) ToggleStatus(ctx context.Context, id string) (domain.Ticket, error) {
	return c.ticket(ctx, http.MethodPost, "/api/tickets/"+url.PathEscape(id)+"/toggle", nil)
}

// UpdateTicket applies a full edit.
func (c *Client) UpdateTicket(ctx context.Context, id string, req dto.UpdateTicketRequest) (domain.Ticket, error) {
	return c.ticket(ctx, http.MethodPut, "/api/tickets/"+url.PathEscape(id), req)
}

// DeleteTicket removes a ticket.
func (c *Client) DeleteTicket(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tickets/"+url.PathEscape(id), nil, nil)
}

// Cleanup runs the retention sweep and returns how many tickets were removed.
func (c *Client) Cleanup(ctx context.Context) (int64, error) {
	var out dto.CleanupResponse
	err := c.do(ctx, http.MethodPost, "/api/tickets/cleanup", nil, &out)
	return out.Removed, err
}

// Report fetches the dashboard snapshot.
func (c *Client) Report(ctx context.Context) (dto.ReportResponse, error) {
	var out dto.ReportResponse
	err := c.do(ctx, http.MethodGet, "/api/reports", nil, &out)
	return out, err
}

func (c *Client) ticket(ctx context.Context, method, path string, body any) (domain.Ticket, error) {
	var out dto.TicketResponse
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return domain.Ticket{}, err
	}
	return out.ToDomain(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.Details = envelope.Error.Details
	}
	return apiErr
}
