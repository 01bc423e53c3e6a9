package generation

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tahazakir/corpusqa/internal/models"
	"github.com/tahazakir/corpusqa/internal/utils/clientcache"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// MessagesService handles Anthropic Messages API calls using the Anthropic SDK
type MessagesService struct {
	cfg         models.GenerationConfig
	clientCache *clientcache.Cache[*anthropic.Client]
}

// NewMessagesService creates a new MessagesService
func NewMessagesService(cfg models.GenerationConfig) *MessagesService {
	return &MessagesService{
		cfg:         cfg,
		clientCache: clientcache.NewCache[*anthropic.Client](),
	}
}

// generateConfigHash creates a hash of the provider config to detect changes
func (ms *MessagesService) generateConfigHash() (string, error) {
	type configForHash struct {
		BaseURL    string
		Headers    map[string]string
		APIKeyHash string
	}

	apiKeyHash := sha256.Sum256([]byte(ms.cfg.APIKey))
	hashConfig := configForHash{
		BaseURL:    ms.cfg.BaseURL,
		Headers:    ms.cfg.Headers,
		APIKeyHash: fmt.Sprintf("%x", apiKeyHash[:8]),
	}

	configJSON, err := json.Marshal(hashConfig)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(configJSON)
	return fmt.Sprintf("%x", hash[:16]), nil
}

// client creates or retrieves a cached Anthropic client
func (ms *MessagesService) client() *anthropic.Client {
	configHash, err := ms.generateConfigHash()
	if err != nil {
		fiberlog.Warnf("Failed to generate config hash: %v, creating new client without caching", err)
		return ms.buildClient()
	}

	client, err := ms.clientCache.GetOrCreate(configHash, func() (*anthropic.Client, error) {
		fiberlog.Debugf("Creating new Anthropic client (config hash: %s)", configHash[:8])
		return ms.buildClient(), nil
	})
	if err != nil {
		fiberlog.Warnf("Unexpected error from cache: %v, creating new client", err)
		return ms.buildClient()
	}

	return client
}

func (ms *MessagesService) buildClient() *anthropic.Client {
	clientOpts := []option.RequestOption{
		option.WithAPIKey(ms.cfg.APIKey),
	}
	if ms.cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(ms.cfg.BaseURL))
	}
	for key, value := range ms.cfg.Headers {
		clientOpts = append(clientOpts, option.WithHeader(key, value))
	}

	client := anthropic.NewClient(clientOpts...)
	return &client
}

// SendMessage sends a non-streaming message request to Anthropic and
// returns the concatenated text content of the response.
func (ms *MessagesService) SendMessage(ctx context.Context, model, system, user string, maxTokens int64, requestID string) (string, error) {
	fiberlog.Infof("[%s] Making Anthropic API request - model: %s, max_tokens: %d", requestID, model, maxTokens)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}

	startTime := time.Now()
	message, err := ms.client().Messages.New(ctx, params)
	duration := time.Since(startTime)

	if err != nil {
		fiberlog.Errorf("[%s] Anthropic API request failed after %v: %v", requestID, duration, err)
		return "", models.NewProviderError("anthropic", "message request failed", err)
	}

	fiberlog.Infof("[%s] Anthropic API request completed in %v - usage: input:%d, output:%d",
		requestID, duration, message.Usage.InputTokens, message.Usage.OutputTokens)

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}
