package generator

import (
	"context"
	"encoding/json"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	out := make(Mapping, len(prompt.Domains))
	for _, d := range prompt.Domains {
		out[d] = d + " is a company website. Placeholder description generated locally."
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
