package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/credit-cli/internal/model"
	"github.com/sells-group/credit-cli/pkg/anthropic"
	"github.com/sells-group/credit-cli/pkg/registry"
	"github.com/sells-group/credit-cli/pkg/tavily"
)

// --- Registry Mock ---

type mockRegistryClient struct {
	mock.Mock
}

func (m *mockRegistryClient) Lookup(ctx context.Context, taxID string) (*registry.Company, error) {
	args := m.Called(ctx, taxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Company), args.Error(1)
}

// --- Tavily Mock ---

type mockSearchClient struct {
	mock.Mock
}

func (m *mockSearchClient) Search(ctx context.Context, req tavily.SearchRequest) (*tavily.SearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tavily.SearchResponse), args.Error(1)
}

// --- Anthropic Mock ---

type mockLLMClient struct {
	mock.Mock
}

func (m *mockLLMClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// --- Extractor Mock ---

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) ExtractText(ctx context.Context, doc model.RawDocument) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}
