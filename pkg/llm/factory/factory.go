package factory

import (
	"fmt"

	"tai-backend/pkg/llm"
	"tai-backend/pkg/llm/ollama"
	"tai-backend/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, apiKey, openaiBaseURL, ollamaBaseURL string) (llm.LLMProvider, error) {
	switch providerType {
	case "openai":
		return openai.NewOpenAIProvider(apiKey, openaiBaseURL, modelName), nil
	case "ollama":
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
