package factory

import (
	"fmt"
	"net/http"

	"quran-irc-bot/pkg/llm"
	"quran-irc-bot/pkg/llm/chatcompletions"
)

var defaultEndpoints = map[string]string{
	"mistral": "https://api.mistral.ai/v1/chat/completions",
	"openai":  "https://api.openai.com/v1/chat/completions",
}

// NewLLMProvider returns a chat-completions provider. An empty endpoint
// picks the provider's public default.
func NewLLMProvider(providerType, apiKey, endpoint, model string) (llm.LLMProvider, error) {
	switch providerType {
	case "mistral", "openai", "chatcompletions":
		if endpoint == "" {
			endpoint = defaultEndpoints[providerType]
		}
		if endpoint == "" {
			return nil, fmt.Errorf("provider %s requires an endpoint", providerType)
		}
		return chatcompletions.NewProvider(apiKey, endpoint, model, &http.Client{}), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
