package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sashabaranov/go-openai"

	"github.com/kamusis/skillcat/internal/logger"
)

const systemPrompt = `你是一个专业的技术文档翻译专家。你的任务是将英文软件工具描述翻译成简洁、自然的简体中文。

翻译规则：
1. 保留所有专有名词不翻译（如：GitHub, Docker, Kubernetes, OAuth, REST API, Node.js, React, ComfyUI, Discord, Slack, Notion, Claude, Figma, FFmpeg 等）
2. 保留所有技术缩写不翻译（如：API, CLI, SDK, URL, HTML, CSS, SQL, JWT, SSH, MCP, AI, LLM 等）
3. 翻译要简洁自然，符合中文技术文档的表达习惯
4. 不要添加原文没有的信息
5. 如果原文非常短或只包含专有名词，可以保持原样

你将收到一组编号的英文描述，请返回一个JSON数组，每个元素是对应编号描述的中文翻译。
只返回JSON数组，不要返回其他内容。格式：["翻译1", "翻译2", "翻译3"]`

type openAITranslator struct {
	client    *openai.Client
	model     string
	maxTokens int
	attempts  uint
	delay     time.Duration
}

// NewOpenAI constructs a translator for any OpenAI-compatible endpoint.
func NewOpenAI(cfg *Config) Translator {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientConfig.HTTPClient = &http.Client{Timeout: 5 * time.Minute}

	attempts := cfg.RetryAttempts
	if attempts < 0 {
		attempts = 0
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &openAITranslator{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		maxTokens: maxTokens,
		// RetryAttempts counts retries; retry-go counts the first call too.
		attempts: uint(attempts) + 1,
		delay:    delay,
	}
}

func (t *openAITranslator) ModelID() string {
	return "openai:" + t.model
}

func (t *openAITranslator) Translate(ctx context.Context, descriptions []string) ([]string, error) {
	if len(descriptions) == 0 {
		return []string{}, nil
	}

	req := openai.ChatCompletionRequest{
		Model:     t.model,
		MaxTokens: t.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(descriptions)},
		},
	}

	var resp openai.ChatCompletionResponse
	err := retry.Do(
		func() error {
			var apiErr error
			resp, apiErr = t.client.CreateChatCompletion(ctx, req)
			return apiErr
		},
		retry.RetryIf(isRetryableError),
		retry.Attempts(t.attempts),
		retry.Delay(t.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).WithField("attempt", n+1).WithField("max_attempts", t.attempts).Warn("retrying translation request")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("translation request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("translation response has no choices")
	}
	return parseTranslations(resp.Choices[0].Message.Content, len(descriptions))
}

func userPrompt(descriptions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "请翻译以下%d条工具描述：\n\n", len(descriptions))
	for i, d := range descriptions {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, d)
	}
	return b.String()
}

// parseTranslations decodes the model's JSON array reply, tolerating a
// surrounding markdown code fence.
func parseTranslations(content string, want int) ([]string, error) {
	content = stripFence(strings.TrimSpace(content))
	var out []string
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("cannot parse translation reply: %w", err)
	}
	if len(out) != want {
		return nil, fmt.Errorf("expected %d translations, got %d", want, len(out))
	}
	return out, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSuffix(s, "\n")
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return true
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
