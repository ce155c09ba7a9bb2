package display

import (
	"fmt"
	"strings"

	"github.com/shaiso/Cascade/internal/domain"
)

// chunkFormatter — таблица фрагментов: узлы, возвращающие список chunks.
type chunkFormatter struct{}

func (f *chunkFormatter) CanFormat(nodeType string, output map[string]any) bool {
	_, ok := output["chunks"].([]any)
	return ok
}

func (f *chunkFormatter) Format(nodeType string, output map[string]any) *domain.Envelope {
	chunks, _ := output["chunks"].([]any)

	meta := map[string]any{
		"chunk_count": len(chunks),
	}
	if len(chunks) > 0 {
		if s, ok := chunks[0].(string); ok {
			meta["preview"] = s
		}
	}

	return &domain.Envelope{
		DisplayType: "table",
		Metadata:    meta,
		Actions:     []string{"expand"},
		Attachments: []string{"chunks"},
	}
}

// llmFormatter — результаты генераторов с учётом токенов.
type llmFormatter struct{}

func (f *llmFormatter) CanFormat(nodeType string, output map[string]any) bool {
	t := strings.ToLower(nodeType)
	if !strings.Contains(t, "llm") && !strings.Contains(t, "chat") && !strings.Contains(t, "completion") {
		return false
	}
	_, ok := output["text"].(string)
	return ok
}

func (f *llmFormatter) Format(nodeType string, output map[string]any) *domain.Envelope {
	meta := map[string]any{
		"text": output["text"],
	}
	if model, ok := output["model"].(string); ok {
		meta["model"] = model
	}
	if tokens, ok := output["tokens_used"].(map[string]any); ok {
		if total, ok := tokens["total_tokens"]; ok {
			meta["total_tokens"] = total
		}
	}

	return &domain.Envelope{
		DisplayType: "text",
		Metadata:    meta,
		Actions:     []string{"copy", "rerun"},
		Attachments: []string{"text"},
	}
}

// httpFormatter — ответы HTTP-узлов.
type httpFormatter struct{}

func (f *httpFormatter) CanFormat(nodeType string, output map[string]any) bool {
	_, ok := output["status_code"]
	return ok
}

func (f *httpFormatter) Format(nodeType string, output map[string]any) *domain.Envelope {
	meta := map[string]any{
		"status_code": output["status_code"],
	}
	if body, ok := output["body"].(string); ok {
		meta["body"] = body
	}

	return &domain.Envelope{
		DisplayType: "document",
		Metadata:    meta,
		Actions:     []string{"expand"},
		Attachments: []string{"body"},
	}
}

// textFormatter — любой результат с непустым строковым text.
type textFormatter struct{}

func (f *textFormatter) CanFormat(nodeType string, output map[string]any) bool {
	s, ok := output["text"].(string)
	return ok && s != ""
}

func (f *textFormatter) Format(nodeType string, output map[string]any) *domain.Envelope {
	return &domain.Envelope{
		DisplayType: "text",
		Metadata:    map[string]any{"text": output["text"]},
		Actions:     []string{"copy"},
		Attachments: []string{"text"},
	}
}

// genericFormatter — фоллбэк: подходит для любого результата.
type genericFormatter struct{}

func (f *genericFormatter) CanFormat(nodeType string, output map[string]any) bool {
	return true
}

func (f *genericFormatter) Format(nodeType string, output map[string]any) *domain.Envelope {
	meta := make(map[string]any, len(output))
	for k, v := range output {
		switch t := v.(type) {
		case string, bool, int, int64, float64:
			meta[k] = t
		case []any:
			meta[k] = fmt.Sprintf("list (%d items)", len(t))
		case map[string]any:
			meta[k] = fmt.Sprintf("object (%d fields)", len(t))
		}
	}
	if len(meta) == 0 {
		meta = nil
	}

	return &domain.Envelope{
		DisplayType: "generic",
		Metadata:    meta,
	}
}
