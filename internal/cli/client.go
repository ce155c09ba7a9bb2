package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// RunResponse — run из API.
type RunResponse struct {
	ID          string                    `json:"id"`
	GraphID     string                    `json:"graph_id"`
	Status      string                    `json:"status"`
	StartedAt   string                    `json:"started_at"`
	CompletedAt string                    `json:"completed_at,omitempty"`
	TotalCost   float64                   `json:"total_cost"`
	Results     map[string]NodeResultView `json:"results,omitempty"`
	Error       string                    `json:"error,omitempty"`
}

// NodeResultView — результат узла из API.
type NodeResultView struct {
	NodeID string         `json:"node_id"`
	Status string         `json:"status"`
	Output map[string]any `json:"output,omitempty"`
	Error  string         `json:"error,omitempty"`
	Cost   float64        `json:"cost"`
}

// RunSummary — сокращённый run из списков API.
type RunSummary struct {
	ID          string  `json:"id"`
	GraphID     string  `json:"graph_id"`
	Status      string  `json:"status"`
	StartedAt   string  `json:"started_at"`
	CompletedAt string  `json:"completed_at,omitempty"`
	TotalCost   float64 `json:"total_cost"`
	Nodes       int     `json:"nodes"`
	Error       string  `json:"error,omitempty"`
}

// StreamEvent — одно событие SSE-потока выполнения.
type StreamEvent struct {
	Type   string         `json:"type"`
	RunID  string         `json:"run_id,omitempty"`
	NodeID string         `json:"node_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// --- Request types ---

// RunGraphRequest — запрос на выполнение графа.
type RunGraphRequest struct {
	Graph    json.RawMessage `json:"graph"`
	CallerID string          `json:"caller_id,omitempty"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

// --- Client ---

// Client — HTTP-клиент для Cascade API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RunGraph запускает граф. spec — сырой JSON графа из файла.
func (c *Client) RunGraph(spec json.RawMessage, callerID string) (*RunResponse, error) {
	var run RunResponse
	err := c.post("/api/v1/graphs/run", RunGraphRequest{Graph: spec, CallerID: callerID}, &run)
	return &run, err
}

// GetRun возвращает run по ID.
func (c *Client) GetRun(id string) (*RunResponse, error) {
	var run RunResponse
	err := c.get("/api/v1/runs/"+id, &run)
	return &run, err
}

// ListRuns возвращает известные серверу runs.
func (c *Client) ListRuns() ([]RunSummary, error) {
	var runs []RunSummary
	err := c.list("/api/v1/runs", &runs)
	return runs, err
}

// Stream подписывается на SSE-поток событий run и вызывает fn для
// каждого события. Возвращается после события complete, закрытия
// потока сервером или отмены контекста.
func (c *Client) Stream(ctx context.Context, runID string, fn func(StreamEvent)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/runs/"+runID+"/stream", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	// Отдельный клиент без таймаута: поток живёт, пока жив run.
	streamClient := &http.Client{}
	resp, err := streamClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var eventType string
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")

		case strings.HasPrefix(line, "data: "):
			var ev StreamEvent
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
				continue
			}
			if ev.Type == "" {
				ev.Type = eventType
			}
			fn(ev)
			if eventType == "complete" {
				return nil
			}

		case line == "":
			eventType = ""
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream read: %w", err)
	}
	return ctx.Err()
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) list(path string, result any) error {
	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	if len(er.Problems) > 0 {
		return fmt.Errorf("%s: %s (%s)", er.Error.Code, er.Error.Message, strings.Join(er.Problems, "; "))
	}
	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
