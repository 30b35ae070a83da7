package daemon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	rwerrors "github.com/replywatch/replywatch/errors"
	"github.com/replywatch/replywatch/pkg/models"
)

// RemoteClient implements Client by calling the daemon's HTTP API over a
// Unix socket.
type RemoteClient struct {
	httpClient *http.Client
	socketPath string
}

// NewRemoteClient creates a new RemoteClient connected to the daemon socket.
func NewRemoteClient(socketPath string) (*RemoteClient, error) {
	// Create HTTP client that dials Unix socket
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
		DisableKeepAlives: false,
		MaxIdleConns:      10,
		IdleConnTimeout:   90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   10 * time.Second,
	}

	return &RemoteClient{
		httpClient: client,
		socketPath: socketPath,
	}, nil
}

// baseURL is the dummy host used for Unix socket HTTP requests.
// The actual connection goes through the Unix socket, not this URL.
const baseURL = "http://unix"

func (c *RemoteClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rwerrors.DaemonResponse(resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *RemoteClient) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rwerrors.DaemonResponse(resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetConversations returns the full conversation snapshot from the daemon.
func (c *RemoteClient) GetConversations(ctx context.Context) ([]*models.Conversation, error) {
	var conversations []*models.Conversation
	if err := c.getJSON(ctx, "/api/conversations", &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// DeleteConversation removes a conversation by id.
func (c *RemoteClient) DeleteConversation(ctx context.Context, id string) (models.Ack, error) {
	var ack models.Ack
	err := c.doJSON(ctx, http.MethodDelete, "/api/conversations/"+url.PathEscape(id), nil, &ack)
	return ack, err
}

// SetEditedContent stores a user override for a conversation's display text.
func (c *RemoteClient) SetEditedContent(ctx context.Context, id, content string) (models.Ack, error) {
	var ack models.Ack
	body := map[string]string{"content": content}
	err := c.doJSON(ctx, http.MethodPut, "/api/conversations/"+url.PathEscape(id)+"/edited", body, &ack)
	return ack, err
}

// ClearEditedContent removes the user override.
func (c *RemoteClient) ClearEditedContent(ctx context.Context, id string) (models.Ack, error) {
	var ack models.Ack
	err := c.doJSON(ctx, http.MethodDelete, "/api/conversations/"+url.PathEscape(id)+"/edited", nil, &ack)
	return ack, err
}

// ListPrompts returns all prompt templates.
func (c *RemoteClient) ListPrompts(ctx context.Context) ([]*models.PromptTemplate, error) {
	var prompts []*models.PromptTemplate
	if err := c.getJSON(ctx, "/api/prompts", &prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}

// CreatePrompt adds a new prompt template.
func (c *RemoteClient) CreatePrompt(ctx context.Context, title, content string) (*models.PromptTemplate, error) {
	var prompt models.PromptTemplate
	body := map[string]string{"title": title, "content": content}
	if err := c.doJSON(ctx, http.MethodPost, "/api/prompts", body, &prompt); err != nil {
		return nil, err
	}
	return &prompt, nil
}

// UpdatePrompt replaces a template's title and content.
func (c *RemoteClient) UpdatePrompt(ctx context.Context, id, title, content string) (models.Ack, error) {
	var ack models.Ack
	body := map[string]string{"title": title, "content": content}
	err := c.doJSON(ctx, http.MethodPut, "/api/prompts/"+url.PathEscape(id), body, &ack)
	return ack, err
}

// DeletePrompt removes a template.
func (c *RemoteClient) DeletePrompt(ctx context.Context, id string) (models.Ack, error) {
	var ack models.Ack
	err := c.doJSON(ctx, http.MethodDelete, "/api/prompts/"+url.PathEscape(id), nil, &ack)
	return ack, err
}

// TogglePromptPin flips a template's pinned flag.
func (c *RemoteClient) TogglePromptPin(ctx context.Context, id string) (models.Ack, error) {
	var ack models.Ack
	err := c.doJSON(ctx, http.MethodPost, "/api/prompts/"+url.PathEscape(id)+"/pin", nil, &ack)
	return ack, err
}

// IsRunning returns true if the daemon is available and responding.
func (c *RemoteClient) IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Attach establishes the named websocket channel for a UI surface. The
// first message on the returned channel is the initial snapshot; live
// events follow. The channel closes when the context is cancelled or the
// connection is lost.
func (c *RemoteClient) Attach(ctx context.Context, clientName string) (<-chan models.Event, error) {
	dialer := websocket.Dialer{
		NetDialContext: func(dialCtx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(dialCtx, "unix", c.socketPath)
		},
		HandshakeTimeout: 5 * time.Second,
	}

	conn, resp, err := dialer.DialContext(ctx, "ws://unix/api/attach?client="+url.QueryEscape(clientName), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to attach to daemon: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	ch := make(chan models.Event, 10)

	go func() {
		defer close(ch)
		defer conn.Close()

		// Tear the connection down when the context ends so ReadJSON
		// unblocks.
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-done:
			}
		}()

		for {
			var ev models.Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// StreamEvents subscribes to the daemon's SSE broadcast. The channel is
// closed when the context is cancelled or the connection is lost.
func (c *RemoteClient) StreamEvents(ctx context.Context) (<-chan models.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/stream", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}

	// Use a separate client with no timeout for streaming
	streamTransport := &http.Transport{
		DialContext: func(dialCtx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(dialCtx, "unix", c.socketPath)
		},
	}
	streamClient := &http.Client{
		Transport: streamTransport,
		Timeout:   0, // No timeout for streaming
	}

	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, rwerrors.DaemonResponse(resp.StatusCode)
	}

	ch := make(chan models.Event, 10)

	go func() {
		defer resp.Body.Close()
		defer close(ch)
		defer streamTransport.CloseIdleConnections()

		scanner := bufio.NewScanner(resp.Body)
		// Increase buffer size to handle large snapshot lines (default is 64KB)
		buf := make([]byte, 0, 1024*1024)
		scanner.Buffer(buf, 10*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()

			// Skip comments and empty lines
			if strings.HasPrefix(line, ":") || line == "" {
				continue
			}

			// Parse SSE data lines
			if strings.HasPrefix(line, "data: ") {
				jsonStr := strings.TrimPrefix(line, "data: ")
				var ev models.Event
				if err := json.Unmarshal([]byte(jsonStr), &ev); err != nil {
					continue // Skip malformed data
				}

				select {
				case ch <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// Close cleans up any resources used by the client.
func (c *RemoteClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Ensure RemoteClient implements Client interface.
var _ Client = (*RemoteClient)(nil)
