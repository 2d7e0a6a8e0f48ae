package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"sync"
)

const mockProviders = `[
	{"id":"openai","name":"OpenAI","tier":"paid","configured":true,
	 "models":[{"id":"gpt-4o","name":"GPT-4o"},{"id":"gpt-4o-mini","name":"GPT-4o mini"}]},
	{"id":"groq","name":"Groq","tier":"free","configured":true,
	 "models":[{"id":"llama3-70b-8192","name":"LLaMA-3 70B"},{"id":"llama3-8b-8192","name":"LLaMA-3 8B"}]},
	{"id":"huggingface","name":"HuggingFace","tier":"free","configured":false,"models":[]},
	{"id":"image","name":"Image Generation","tier":"free","configured":true,
	 "models":[{"id":"pollinations","name":"Pollinations"},{"id":"dall-e-3","name":"DALL-E 3"}]}
]`

// failMessage makes the mock reject a chat or code request.
const failMessage = "please fail"

// mockBackend serves the chatbot API. Chat and code replies echo the request
// body so tests can read what the client sent.
type mockBackend struct {
	mu        sync.Mutex
	providers string
	bodies    map[string][]string
}

func newMockBackend() *mockBackend {
	return &mockBackend{providers: mockProviders, bodies: make(map[string][]string)}
}

func (b *mockBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.bodies[r.URL.Path] = append(b.bodies[r.URL.Path], string(body))
	providers := b.providers
	b.mu.Unlock()

	var req map[string]interface{}
	json.Unmarshal(body, &req)

	reply := func(v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}

	switch r.URL.Path {
	case "/api/providers":
		w.Write([]byte(providers))
	case "/api/chat", "/api/code":
		if req["message"] == failMessage || req["code"] == failMessage {
			reply(map[string]interface{}{"success": false, "error": "rate limited"})
			return
		}
		reply(map[string]interface{}{"success": true, "response": string(body)})
	case "/api/image":
		reply(map[string]interface{}{
			"success":   true,
			"image_url": "http://" + r.Host + "/generated.png",
			"model":     req["model"],
		})
	case "/generated.png":
		w.Header().Set("Content-Type", "image/png")
		w.Write(mockPNG())
	case "/api/clear":
		reply(map[string]interface{}{"success": true, "message": "Conversation cleared"})
	case "/api/configure":
		reply(map[string]interface{}{"success": true, "message": "API keys updated successfully!"})
	case "/api/history":
		reply([]map[string]string{
			{"role": "user", "content": "earlier question"},
			{"role": "assistant", "content": "earlier answer"},
		})
	default:
		http.NotFound(w, r)
	}
}

func (b *mockBackend) setProviders(js string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.providers = js
}

// last returns the newest request body received on path.
func (b *mockBackend) last(path string) map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	bodies := b.bodies[path]
	if len(bodies) == 0 {
		return nil
	}
	var v map[string]interface{}
	json.Unmarshal([]byte(bodies[len(bodies)-1]), &v)
	return v
}

func (b *mockBackend) hits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bodies[path])
}

func mockPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, G: 40, B: 90, A: 255})
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}
