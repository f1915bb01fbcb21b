package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/credit-cli/internal/resilience"
)

type mockProvider struct {
	mock.Mock
	name string
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Fetch(ctx context.Context, taxID string) (*Company, error) {
	args := m.Called(ctx, taxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Company), args.Error(1)
}

func TestLookup_FirstProviderWins(t *testing.T) {
	first := &mockProvider{name: "first"}
	first.On("Fetch", mock.Anything, "11222333000181").
		Return(&Company{TaxID: "11222333000181", CorporateName: "Padaria Estrela LTDA"}, nil)

	second := &mockProvider{name: "second"}

	c := NewClient([]Provider{first, second})
	company, err := c.Lookup(context.Background(), "11.222.333/0001-81")

	require.NoError(t, err)
	require.NotNil(t, company)
	assert.Equal(t, "Padaria Estrela LTDA", company.CorporateName)
	second.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestLookup_FallsBackOnProviderError(t *testing.T) {
	first := &mockProvider{name: "first"}
	first.On("Fetch", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	second := &mockProvider{name: "second"}
	second.On("Fetch", mock.Anything, mock.Anything).
		Return(&Company{TaxID: "11222333000181"}, nil)

	c := NewClient([]Provider{first, second})
	company, err := c.Lookup(context.Background(), "11222333000181")

	require.NoError(t, err)
	require.NotNil(t, company)
	second.AssertExpectations(t)
}

func TestLookup_ContinuesPastEmptyResult(t *testing.T) {
	first := &mockProvider{name: "first"}
	first.On("Fetch", mock.Anything, mock.Anything).Return(nil, nil)

	second := &mockProvider{name: "second"}
	second.On("Fetch", mock.Anything, mock.Anything).
		Return(&Company{TaxID: "11222333000181"}, nil)

	c := NewClient([]Provider{first, second})
	company, err := c.Lookup(context.Background(), "11222333000181")

	require.NoError(t, err)
	assert.NotNil(t, company)
}

func TestLookup_AbsentOnlyWhenAllExhausted(t *testing.T) {
	first := &mockProvider{name: "first"}
	first.On("Fetch", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	second := &mockProvider{name: "second"}
	second.On("Fetch", mock.Anything, mock.Anything).Return(nil, nil)

	c := NewClient([]Provider{first, second})
	company, err := c.Lookup(context.Background(), "11222333000181")

	assert.NoError(t, err)
	assert.Nil(t, company)
}

func TestLookup_StopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	first := &mockProvider{name: "first"}
	first.On("Fetch", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)

	second := &mockProvider{name: "second"}

	c := NewClient([]Provider{first, second})
	_, err := c.Lookup(ctx, "11222333000181")

	assert.Error(t, err)
	second.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestLookup_RetriesTransientProviderFailure(t *testing.T) {
	flaky := &mockProvider{name: "flaky"}
	flaky.On("Fetch", mock.Anything, mock.Anything).
		Return(nil, resilience.NewTransientError(assert.AnError, 429)).Once()
	flaky.On("Fetch", mock.Anything, mock.Anything).
		Return(&Company{TaxID: "11222333000181"}, nil).Once()

	c := &chainClient{
		providers: []Provider{flaky},
		retry: resilience.RetryConfig{
			MaxAttempts:    2,
			InitialBackoff: time.Millisecond,
		},
	}

	company, err := c.Lookup(context.Background(), "11222333000181")

	require.NoError(t, err)
	require.NotNil(t, company)
	flaky.AssertNumberOfCalls(t, "Fetch", 2)
}

func TestLookup_NoRetryOnPermanentFailure(t *testing.T) {
	broken := &mockProvider{name: "broken"}
	broken.On("Fetch", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	fallback := &mockProvider{name: "fallback"}
	fallback.On("Fetch", mock.Anything, mock.Anything).
		Return(&Company{TaxID: "11222333000181"}, nil)

	c := NewClient([]Provider{broken, fallback}, WithLookupRetries(3))
	company, err := c.Lookup(context.Background(), "11222333000181")

	require.NoError(t, err)
	require.NotNil(t, company)
	broken.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "11222333000181", digitsOnly("11.222.333/0001-81"))
	assert.Equal(t, "", digitsOnly("no digits"))
}
