package costs

import "strings"

// Category — категория платной операции.
type Category string

const (
	CategoryEmbedding    Category = "embedding"
	CategoryRerank       Category = "rerank"
	CategoryVectorSearch Category = "vector_search"
	CategoryLLM          Category = "llm"
	CategoryOther        Category = "other"
)

// categoryPatterns — подстроки типа узла по категориям.
// Порядок важен: первое совпадение выигрывает.
var categoryPatterns = []struct {
	category Category
	patterns []string
}{
	{CategoryEmbedding, []string{"embed"}},
	{CategoryRerank, []string{"rerank"}},
	{CategoryVectorSearch, []string{"vector_search", "search"}},
	{CategoryLLM, []string{"llm", "chat", "completion", "generate", "agent"}},
}

// Classify определяет категорию операции по типу узла.
func Classify(nodeType string) Category {
	t := strings.ToLower(nodeType)
	for _, entry := range categoryPatterns {
		for _, p := range entry.patterns {
			if strings.Contains(t, p) {
				return entry.category
			}
		}
	}
	return CategoryOther
}

// providerPrefixes — известные префиксы имён моделей.
var providerPrefixes = []struct {
	provider string
	prefixes []string
}{
	{"openai", []string{"gpt-", "o1", "o3", "text-embedding-", "davinci"}},
	{"anthropic", []string{"claude-"}},
	{"google", []string{"gemini-", "palm-"}},
	{"mistral", []string{"mistral-", "mixtral-"}},
	{"cohere", []string{"command-", "rerank-", "embed-"}},
	{"mock", []string{"mock-"}},
}

// InferProvider определяет провайдера по имени модели.
// Возвращает "unknown", если модель не распознана.
func InferProvider(model string) string {
	m := strings.ToLower(model)
	for _, entry := range providerPrefixes {
		for _, p := range entry.prefixes {
			if strings.HasPrefix(m, p) {
				return entry.provider
			}
		}
	}
	return "unknown"
}
