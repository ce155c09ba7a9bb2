package collect

// InputMap — собранные входы узла: string-keyed "мешок полей" с
// узким набором типизированных аксессоров для общеизвестных
// семантических полей.
type InputMap map[string]any

// Общеизвестные семантические поля.
const (
	FieldText           = "text"
	FieldTopic          = "topic"
	FieldQuery          = "query"
	FieldContext        = "context"
	FieldContent        = "content"
	FieldFileContent    = "file_content"
	FieldSummary        = "summary"
	FieldAnalysis       = "analysis"
	FieldBody           = "body"
	FieldMessage        = "message"
	FieldChunks         = "chunks"
	FieldEmbeddings     = "embeddings"
	FieldQueryEmbedding = "query_embedding"
	FieldIndexID        = "index_id"
	FieldResults        = "results"
)

// Text возвращает семантическое поле text.
func (m InputMap) Text() string { return m.String(FieldText) }

// Query возвращает семантическое поле query.
func (m InputMap) Query() string { return m.String(FieldQuery) }

// Topic возвращает семантическое поле topic.
func (m InputMap) Topic() string { return m.String(FieldTopic) }

// Content возвращает семантическое поле content.
func (m InputMap) Content() string { return m.String(FieldContent) }

// IndexID возвращает семантическое поле index_id.
func (m InputMap) IndexID() string { return m.String(FieldIndexID) }

// Chunks возвращает семантическое поле chunks.
func (m InputMap) Chunks() []any { return m.List(FieldChunks) }

// Embeddings возвращает семантическое поле embeddings.
func (m InputMap) Embeddings() []any { return m.List(FieldEmbeddings) }

// Results возвращает семантическое поле results.
func (m InputMap) Results() []any { return m.List(FieldResults) }

// String возвращает строковое значение поля или "".
func (m InputMap) String(key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// List возвращает списочное значение поля или nil.
func (m InputMap) List(key string) []any {
	if v, ok := m[key]; ok {
		if l, ok := v.([]any); ok {
			return l
		}
	}
	return nil
}

// Has проверяет наличие поля.
func (m InputMap) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Raw возвращает InputMap как обычную карту (generic passthrough).
func (m InputMap) Raw() map[string]any {
	return map[string]any(m)
}
