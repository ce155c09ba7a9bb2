package nodes

import "context"

const (
	// NodeTypeChunk — тип узла разбиения текста.
	NodeTypeChunk = "chunk"

	// Значения по умолчанию.
	defaultChunkSize    = 512
	defaultChunkOverlap = 0
)

// ChunkNode — узел разбиения текста на чанки.
//
// Конфигурация:
//
//	{
//	    "size": 512,      // максимальная длина чанка в символах
//	    "overlap": 64     // перекрытие соседних чанков
//	}
//
// Вход: {"text": "..."}
//
// Outputs:
//
//	{
//	    "chunks": ["...", "..."],
//	    "chunk_count": 2
//	}
type ChunkNode struct{}

// NewChunkNode создаёт новый ChunkNode.
func NewChunkNode() *ChunkNode {
	return &ChunkNode{}
}

// Type возвращает тип узла.
func (n *ChunkNode) Type() string {
	return NodeTypeChunk
}

// ExecuteSafe разбивает входной текст на чанки.
func (n *ChunkNode) ExecuteSafe(ctx context.Context, inputs, config map[string]any) (map[string]any, error) {
	text := GetConfigString(inputs, "text")
	if text == "" {
		return Failure("chunk: input text is required"), nil
	}

	size := GetConfigInt(config, "size")
	if size <= 0 {
		size = defaultChunkSize
	}
	overlap := GetConfigInt(config, "overlap")
	if overlap < 0 || overlap >= size {
		overlap = defaultChunkOverlap
	}

	chunks := splitText(text, size, overlap)

	out := make([]any, len(chunks))
	for i, c := range chunks {
		out[i] = c
	}

	return map[string]any{
		"chunks":      out,
		"chunk_count": len(chunks),
	}, nil
}

// EstimateCost возвращает 0 — разбиение локальное.
func (n *ChunkNode) EstimateCost(inputs, config map[string]any) float64 {
	return 0
}

// splitText разбивает текст на чанки по рунам с перекрытием.
func splitText(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	step := size - overlap
	chunks := make([]string, 0, (len(runes)+step-1)/step)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
