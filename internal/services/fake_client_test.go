package services

import (
	"context"

	"github.com/capitanfeeder/BotDespensa/pkg/llm"
)

// fakeClient replays scripted completions in order and records every prompt
// it receives.
type fakeClient struct {
	replies []string
	err     error
	prompts []string
}

func (f *fakeClient) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.prompts) <= len(f.replies) {
		return f.replies[len(f.prompts)-1], nil
	}
	return "", nil
}

func (f *fakeClient) GetModelInfo() llm.ModelInfo {
	return llm.ModelInfo{Name: "fake-model", Provider: "fake"}
}
