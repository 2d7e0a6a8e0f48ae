package api

// Tier tells whether a provider is usable on a free key.
type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

type Model struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Provider is one entry of GET /api/providers. The backend always sends the
// full list; clients replace their copy instead of merging.
type Provider struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Tier       Tier    `json:"tier"`
	Configured bool    `json:"configured"`
	Models     []Model `json:"models"`
}

type ChatRequest struct {
	Message      string  `json:"message"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	SystemPrompt string  `json:"system_prompt"`
	Temperature  float64 `json:"temperature"`
	UseHistory   bool    `json:"use_history"`
}

type CodeRequest struct {
	Code     string `json:"code"`
	Task     string `json:"task"`
	Language string `json:"language"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type ImageRequest struct {
	Prompt  string `json:"prompt"`
	Model   string `json:"model"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
}

// Credentials is the body of POST /api/configure. Empty keys are ignored by
// the backend.
type Credentials struct {
	GroqKey        string `json:"groq_key"`
	GeminiKey      string `json:"gemini_key"`
	HuggingFaceKey string `json:"huggingface_key"`
	OpenAIKey      string `json:"openai_key"`
	AnthropicKey   string `json:"anthropic_key"`
}

// Reply is the envelope shared by /api/chat and /api/code.
type Reply struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Model    string `json:"model,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ImageReply struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"image_url,omitempty"`
	Model    string `json:"model,omitempty"`
	Note     string `json:"note,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Ack answers /api/configure and /api/clear.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
