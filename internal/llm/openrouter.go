package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	// OpenRouter 对话补全接口
	defaultOpenRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"
)

// OpenRouterClient OpenRouter（OpenAI 兼容协议）客户端实现
type OpenRouterClient struct {
	apiKey      string       // API密钥
	baseURL     string       // 接口地址
	model       string       // 模型名称
	referer     string       // HTTP-Referer
	appName     string       // X-Title
	httpClient  *http.Client // HTTP客户端
	maxRetries  int          // 最大重试次数
	maxTokens   int          // 最大生成Token数
	temperature float32      // 温度参数
	topP        float32      // topP参数
}

// NewOpenRouterClient 创建新的 OpenRouter 客户端
func NewOpenRouterClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)

	// 验证API密钥
	if cfg.APIKey == "" {
		return nil, NewLLMError(ErrCodeInvalidAPIKey, ErrMsgInvalidAPIKey)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterEndpoint
	}

	return &OpenRouterClient{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       cfg.Model,
		referer:     cfg.Referer,
		appName:     cfg.AppName,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		maxRetries:  cfg.MaxRetries,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
	}, nil
}

// Name 返回模型名称
func (c *OpenRouterClient) Name() string {
	return c.model
}

// Generate 根据提示词生成文本
func (c *OpenRouterClient) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error) {
	if prompt == "" {
		return nil, NewLLMError(ErrCodeEmptyPrompt, ErrMsgEmptyPrompt)
	}

	opts := &GenerateOptions{}
	for _, opt := range options {
		opt(opts)
	}

	messages := make([]Message, 0, 2)
	if opts.System != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: opts.System})
	}
	messages = append(messages, Message{Role: RoleUser, Content: prompt})

	// 转换为ChatOptions后复用Chat方法
	var chatOpts []ChatOption
	if opts.MaxTokens != nil {
		chatOpts = append(chatOpts, WithChatMaxTokens(*opts.MaxTokens))
	}
	if opts.Temperature != nil {
		chatOpts = append(chatOpts, WithChatTemperature(*opts.Temperature))
	}
	if opts.TopP != nil {
		chatOpts = append(chatOpts, WithChatTopP(*opts.TopP))
	}

	return c.Chat(ctx, messages, chatOpts...)
}

// Chat 进行多轮对话
func (c *OpenRouterClient) Chat(ctx context.Context, messages []Message, options ...ChatOption) (*Response, error) {
	if len(messages) == 0 {
		return nil, NewLLMError(ErrCodeInvalidRequest, "messages cannot be empty")
	}

	opts := &ChatOptions{}
	for _, opt := range options {
		opt(opts)
	}

	req := &ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}

	// 请求级选项优先，其次是客户端默认值
	if opts.MaxTokens != nil {
		req.MaxTokens = opts.MaxTokens
	} else if c.maxTokens > 0 {
		maxTokens := c.maxTokens
		req.MaxTokens = &maxTokens
	}

	if opts.Temperature != nil {
		req.Temperature = opts.Temperature
	} else if c.temperature > 0 {
		temp := c.temperature
		req.Temperature = &temp
	}

	if opts.TopP != nil {
		req.TopP = opts.TopP
	} else if c.topP > 0 {
		topP := c.topP
		req.TopP = &topP
	}

	resp, err := c.sendRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	return c.processResponse(resp)
}

// sendRequest 发送请求并解析响应，网络错误和5xx会按指数退避重试
func (c *OpenRouterClient) sendRequest(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, NewLLMError(ErrCodeInvalidRequest, fmt.Sprintf("failed to marshal request: %v", err))
	}

	var (
		status  int
		body    []byte
		lastErr error
	)

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, contextError(ctx)
			case <-time.After(time.Duration(1<<attempt) * 100 * time.Millisecond):
			}
		}

		status, body, lastErr = c.doRequest(ctx, jsonData)
		if lastErr == nil && status < http.StatusInternalServerError {
			// 成功或客户端错误，不需要重试
			break
		}
		if lastErr != nil && isTimeout(ctx, lastErr) {
			return nil, LLMError{Code: ErrCodeTimeout, Message: fmt.Sprintf("%s: %v", ErrMsgTimeout, lastErr), Err: lastErr}
		}
		if lastErr != nil && ctx.Err() != nil {
			return nil, contextError(ctx)
		}
	}

	if lastErr != nil {
		return nil, LLMError{Code: ErrCodeNetworkError, Message: fmt.Sprintf("request failed: %v", lastErr), Err: lastErr}
	}

	if status != http.StatusOK {
		return nil, c.statusError(status, body)
	}

	var completion ChatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, NewLLMError(ErrCodeServerError, fmt.Sprintf("failed to parse response: %v", err))
	}

	// OpenRouter 在部分上游错误时仍返回200，错误放在error字段
	if completion.Error != nil && completion.Error.Message != "" {
		return nil, NewLLMError(ErrCodeServerError, "API error: "+completion.Error.Message)
	}

	return &completion, nil
}

// doRequest 执行一次HTTP请求
func (c *OpenRouterClient) doRequest(ctx context.Context, payload []byte) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if c.appName != "" {
		httpReq.Header.Set("X-Title", c.appName)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// statusError 把非200响应转换为LLMError
func (c *OpenRouterClient) statusError(status int, body []byte) error {
	message := fmt.Sprintf("API error (status %d): %s", status, string(body))
	var errResp APIErrorResponse
	if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Error.Message != "" {
		message = "API error: " + errResp.Error.Message
	}

	code := ErrCodeServerError
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = ErrCodeInvalidAPIKey
	case status == http.StatusTooManyRequests:
		code = ErrCodeRateLimited
	case status == http.StatusRequestTimeout:
		code = ErrCodeTimeout
	case status >= 400 && status < 500:
		code = ErrCodeInvalidRequest
	}

	return LLMError{Code: code, Message: message, StatusCode: status}
}

// processResponse 取第一个候选结果
func (c *OpenRouterClient) processResponse(resp *ChatCompletionResponse) (*Response, error) {
	if len(resp.Choices) == 0 {
		return nil, NewLLMError(ErrCodeEmptyResponse, ErrMsgEmptyResponse)
	}

	choice := resp.Choices[0]
	modelName := resp.Model
	if modelName == "" {
		modelName = c.model
	}

	return &Response{
		Text:         choice.Message.Content,
		Messages:     []Message{choice.Message},
		TokenCount:   resp.Usage.TotalTokens,
		ModelName:    modelName,
		FinishReason: choice.FinishReason,
		FinishTime:   time.Now(),
	}, nil
}

// isTimeout 判断是否为超时错误
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// contextError 按 context 结束原因映射错误：超过截止时间为超时，主动取消为网络错误
func contextError(ctx context.Context) LLMError {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return LLMError{Code: ErrCodeTimeout, Message: fmt.Sprintf("%s: %v", ErrMsgTimeout, err), Err: err}
	}
	return LLMError{Code: ErrCodeNetworkError, Message: fmt.Sprintf("request canceled: %v", err), Err: err}
}

// 在包初始化时注册 OpenRouter 客户端
func init() {
	RegisterClient("openrouter", NewOpenRouterClient)
}
