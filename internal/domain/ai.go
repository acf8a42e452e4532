package domain

// ProviderType is the closed set of supported LLM vendors.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderClaude ProviderType = "claude"
	ProviderGemini ProviderType = "gemini"
)

// Valid reports whether p names a known vendor.
func (p ProviderType) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderClaude, ProviderGemini:
		return true
	}
	return false
}

// AIConfig is supplied by the caller per request and never cached by the
// engine beyond the request lifetime.
type AIConfig struct {
	Provider    ProviderType `json:"provider"`
	APIKey      string       `json:"api_key"`
	Model       string       `json:"model,omitempty"`
	Temperature float64      `json:"temperature,omitempty"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
}

// Task selects which prompt template family to render.
type Task string

const (
	TaskAnalysis        Task = "analysis"
	TaskRecommendations Task = "recommendations"
	TaskMarketing       Task = "marketing"
	TaskScenario        Task = "scenario"
)

// PromptTemplate is immutable configuration data, selected by business type
// and task. Every name in Variables must appear as a {{name}} substitution
// point in System or User.
type PromptTemplate struct {
	System    string
	User      string
	Variables []string
}

// RenderedPrompt is a template with all variables substituted.
type RenderedPrompt struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// AIResponse is the validated, parsed result of one provider call.
type AIResponse struct {
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence"` // 0..1
	Reasoning       string   `json:"reasoning,omitempty"`
	Sources         []string `json:"sources,omitempty"`
	Provider        string   `json:"provider,omitempty"`
	Model           string   `json:"model,omitempty"`
}

// Recommendation is the assembler's final output: the statistical context
// plus the AI step's result, or a degraded statistics-only result when the
// provider call failed after retry.
type Recommendation struct {
	Context       BusinessContext `json:"context"`
	AI            *AIResponse     `json:"ai,omitempty"`
	Degraded      bool            `json:"degraded"`
	FailureReason string          `json:"failure_reason,omitempty"`
}
