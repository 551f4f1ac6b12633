package llm

import "time"

// MessageRole 消息角色类型
type MessageRole string

const (
	// RoleSystem 系统角色
	RoleSystem MessageRole = "system"
	// RoleUser 用户角色
	RoleUser MessageRole = "user"
	// RoleAssistant 助手角色
	RoleAssistant MessageRole = "assistant"
)

// Message 对话消息结构
type Message struct {
	Role    MessageRole `json:"role"`           // 角色
	Content string      `json:"content"`        // 内容
	Name    string      `json:"name,omitempty"` // 可选名称标识
}

// ChatCompletionRequest OpenAI 兼容的对话补全请求
type ChatCompletionRequest struct {
	Model       string    `json:"model"`                 // 模型名称
	Messages    []Message `json:"messages"`              // 对话消息
	MaxTokens   *int      `json:"max_tokens,omitempty"`  // 最大生成Token数
	Temperature *float32  `json:"temperature,omitempty"` // 采样温度
	TopP        *float32  `json:"top_p,omitempty"`       // 核采样概率阈值
}

// ChatCompletionResponse OpenAI 兼容的对话补全响应
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`              // 请求ID
	Model   string                 `json:"model"`           // 实际使用的模型
	Choices []ChatCompletionChoice `json:"choices"`         // 候选结果
	Usage   ChatCompletionUsage    `json:"usage"`           // 资源使用情况
	Error   *APIErrorBody          `json:"error,omitempty"` // 错误信息（部分错误以200返回）
}

// ChatCompletionChoice 候选结果
type ChatCompletionChoice struct {
	Index        int     `json:"index"`
	FinishReason string  `json:"finish_reason"`
	Message      Message `json:"message"`
}

// ChatCompletionUsage 资源使用情况
type ChatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// APIErrorBody 服务端返回的错误结构
type APIErrorBody struct {
	Message string      `json:"message"`
	Code    interface{} `json:"code,omitempty"` // OpenRouter 返回数字，部分兼容服务返回字符串
}

// APIErrorResponse 错误响应
type APIErrorResponse struct {
	Error APIErrorBody `json:"error"`
}

// Response 统一的响应结构
type Response struct {
	Text         string    // 生成的文本
	Messages     []Message // 消息列表（如果是对话）
	TokenCount   int       // 使用的token数
	ModelName    string    // 使用的模型名称
	FinishReason string    // 结束原因
	FinishTime   time.Time // 完成时间
}

// 常用模型名称
const (
	ModelDeepSeekR1ZeroFree = "deepseek/deepseek-r1-zero:free" // DeepSeek R1 Zero 免费版
	ModelDeepSeekChat       = "deepseek/deepseek-chat"         // DeepSeek V3
	ModelGPT4oMini          = "openai/gpt-4o-mini"             // GPT-4o mini
	ModelClaudeHaiku        = "anthropic/claude-3.5-haiku"     // Claude 3.5 Haiku
)
