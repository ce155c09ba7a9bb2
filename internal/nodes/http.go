package nodes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// NodeTypeHTTP — тип узла HTTP запроса.
	NodeTypeHTTP = "http_request"

	// Значения по умолчанию.
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBody    = 10 * 1024 * 1024 // 10 MB
)

// Ключи конфигурации HTTP узла.
const (
	configMethod     = "method"
	configURL        = "url"
	configHeaders    = "headers"
	configBody       = "body"
	configTimeoutSec = "timeout_sec"
)

// HTTPNode — узел HTTP запроса к внешнему API.
//
// Конфигурация:
//
//	{
//	    "method": "POST",
//	    "url": "https://api.example.com/data",
//	    "headers": {"Authorization": "Bearer xxx"},
//	    "body": {"key": "value"},
//	    "timeout_sec": 30
//	}
//
// Outputs:
//
//	{
//	    "status_code": 200,
//	    "headers": {"Content-Type": "application/json"},
//	    "body": {...}  // parsed JSON или string
//	}
//
// Статусы >= 400 — ожидаемая ошибка: возвращается результат с полем
// "error" и "status_code", run продолжается.
type HTTPNode struct {
	client *http.Client
}

// NewHTTPNode создаёт новый HTTPNode.
func NewHTTPNode() *HTTPNode {
	return &HTTPNode{
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Type возвращает тип узла.
func (n *HTTPNode) Type() string {
	return NodeTypeHTTP
}

// ExecuteSafe выполняет HTTP запрос.
func (n *HTTPNode) ExecuteSafe(ctx context.Context, inputs, config map[string]any) (map[string]any, error) {
	url := GetConfigString(config, configURL)
	if url == "" {
		url = GetConfigString(inputs, configURL)
	}
	if url == "" {
		return Failure("http_request: url is required"), nil
	}

	method := strings.ToUpper(GetConfigString(config, configMethod))
	if method == "" {
		method = http.MethodGet
	}

	headers := GetConfigMapString(config, configHeaders)
	if headers == nil {
		headers = make(map[string]string)
	}

	body := config[configBody]
	if body == nil {
		// Тело может приходить от узла-предшественника.
		body = inputs[configBody]
	}

	req, err := n.buildRequest(ctx, method, url, headers, body)
	if err != nil {
		return Failure(fmt.Sprintf("http_request: build request: %v", err)), nil
	}

	client := n.client
	if sec := GetConfigInt(config, configTimeoutSec); sec > 0 {
		client = &http.Client{Timeout: time.Duration(sec) * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrNodeCancelled, ctx.Err())
		}
		return Failure(fmt.Sprintf("http_request: %v", err)), nil
	}
	defer resp.Body.Close()

	outputs, err := n.parseResponse(resp)
	if err != nil {
		return Failure(fmt.Sprintf("http_request: %v", err)), nil
	}

	if resp.StatusCode >= 400 {
		outputs["error"] = fmt.Sprintf("http_request: HTTP %d", resp.StatusCode)
	}

	return outputs, nil
}

// EstimateCost возвращает 0 — стоимость HTTP запросов не тарифицируется.
func (n *HTTPNode) EstimateCost(inputs, config map[string]any) float64 {
	return 0
}

// buildRequest создаёт HTTP запрос.
func (n *HTTPNode) buildRequest(ctx context.Context, method, url string, headers map[string]string, body any) (*http.Request, error) {
	var bodyReader io.Reader

	if body != nil {
		bodyBytes, err := serializeBody(body)
		if err != nil {
			return nil, fmt.Errorf("serialize body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)

		if _, hasContentType := headers["Content-Type"]; !hasContentType {
			headers["Content-Type"] = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// serializeBody сериализует body в bytes.
func serializeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// parseResponse парсит HTTP ответ в outputs.
func (n *HTTPNode) parseResponse(resp *http.Response) (map[string]any, error) {
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var body any
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if err := json.Unmarshal(bodyBytes, &body); err != nil {
			// Не удалось распарсить JSON — возвращаем как строку.
			body = string(bodyBytes)
		}
	} else {
		body = string(bodyBytes)
	}

	headers := make(map[string]string)
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	return map[string]any{
		"status_code": resp.StatusCode,
		"headers":     headers,
		"body":        body,
	}, nil
}
