package client

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// scriptedExecutor returns the scripted results in order.
type scriptedExecutor struct {
	results []scriptedResult
	calls   int
}

type scriptedResult struct {
	resp *Response
	err  error
}

func (s *scriptedExecutor) Execute(_ context.Context, _ string, _ map[string]any) (*Response, error) {
	s.calls++
	r := s.results[min(s.calls, len(s.results))-1]
	return r.resp, r.err
}

func okResponse(data string) scriptedResult {
	return scriptedResult{resp: &Response{Data: json.RawMessage(data)}}
}

func throttled() scriptedResult {
	return scriptedResult{err: &ThrottledError{Message: "Throttled"}}
}

// recordSleeps installs a sleep func that records durations without waiting.
func recordSleeps(f *Fetcher) *[]time.Duration {
	var sleeps []time.Duration
	f.SetSleepFunc(func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	})
	return &sleeps
}

func TestRetryConfig_Backoff(t *testing.T) {
	cfg := DefaultRetryConfig()

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{attempt: 1, expected: 2 * time.Second},
		{attempt: 2, expected: 4 * time.Second},
		{attempt: 3, expected: 8 * time.Second},
	}

	for _, tt := range tests {
		if got := cfg.Backoff(tt.attempt); got != tt.expected {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
		}
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.BaseDelay != time.Second {
		t.Errorf("BaseDelay = %v, want 1s", cfg.BaseDelay)
	}
}

func TestFetcher_SucceedsAfterThrottling(t *testing.T) {
	exec := &scriptedExecutor{results: []scriptedResult{
		throttled(),
		throttled(),
		okResponse(`{"shop":{}}`),
	}}
	f := NewFetcher(exec, DefaultRetryConfig())
	sleeps := recordSleeps(f)

	resp, err := f.Execute(context.Background(), "query Shop { shop { id } }", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if string(resp.Data) != `{"shop":{}}` {
		t.Errorf("Data = %s", resp.Data)
	}

	if exec.calls != 3 {
		t.Errorf("calls = %d, want 3", exec.calls)
	}

	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *sleeps, want)
	}
	for i := range want {
		if (*sleeps)[i] != want[i] {
			t.Errorf("sleeps[%d] = %v, want %v", i, (*sleeps)[i], want[i])
		}
	}
}

func TestFetcher_RetryExhausted(t *testing.T) {
	exec := &scriptedExecutor{results: []scriptedResult{throttled()}}
	f := NewFetcher(exec, DefaultRetryConfig())
	sleeps := recordSleeps(f)

	_, err := f.Execute(context.Background(), "query Products { id }", nil)
	if err == nil {
		t.Fatal("Execute() should fail when every attempt is throttled")
	}

	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("error = %v, want ErrRetryExhausted", err)
	}
	if !errors.Is(err, ErrThrottled) {
		t.Errorf("error = %v, should wrap the throttling signal", err)
	}

	var throttledErr *ThrottledError
	if !errors.As(err, &throttledErr) {
		t.Error("errors.As should find *ThrottledError")
	}

	if exec.calls != 3 {
		t.Errorf("calls = %d, want 3", exec.calls)
	}
	// No wait after the final attempt
	if len(*sleeps) != 2 {
		t.Errorf("sleeps = %d, want 2", len(*sleeps))
	}
}

func TestFetcher_QueryErrorNotRetried(t *testing.T) {
	exec := &scriptedExecutor{results: []scriptedResult{{
		resp: &Response{Errors: []GraphQLError{{Message: "Field 'foo' doesn't exist on type 'Product'"}}},
	}}}
	f := NewFetcher(exec, DefaultRetryConfig())
	sleeps := recordSleeps(f)

	_, err := f.Execute(context.Background(), "query Products { foo }", nil)

	var queryErr *QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("error = %v, want *QueryError", err)
	}
	if queryErr.Error() != "graphql errors: Field 'foo' doesn't exist on type 'Product'" {
		t.Errorf("message = %q", queryErr.Error())
	}
	if exec.calls != 1 {
		t.Errorf("calls = %d, want 1", exec.calls)
	}
	if len(*sleeps) != 0 {
		t.Errorf("sleeps = %d, want 0", len(*sleeps))
	}
}

func TestFetcher_TransportErrorNotRetried(t *testing.T) {
	exec := &scriptedExecutor{results: []scriptedResult{{
		err: &APIError{StatusCode: 500, Message: "Internal Server Error"},
	}}}
	f := NewFetcher(exec, DefaultRetryConfig())
	recordSleeps(f)

	_, err := f.Execute(context.Background(), "query Markets { id }", nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if exec.calls != 1 {
		t.Errorf("calls = %d, want 1", exec.calls)
	}
}

func TestFetcher_ContextCancelledDuringBackoff(t *testing.T) {
	exec := &scriptedExecutor{results: []scriptedResult{throttled()}}
	f := NewFetcher(exec, DefaultRetryConfig())
	f.SetSleepFunc(func(_ context.Context, _ time.Duration) error {
		return context.Canceled
	})

	_, err := f.Execute(context.Background(), "query Shop { id }", nil)
	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("error = %v, want ErrContextCancelled", err)
	}
	if exec.calls != 1 {
		t.Errorf("calls = %d, want 1", exec.calls)
	}
}

func TestFetcher_RealSleepHonoursContext(t *testing.T) {
	exec := &scriptedExecutor{results: []scriptedResult{throttled()}}
	f := NewFetcher(exec, RetryConfig{MaxAttempts: 3, BaseDelay: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Execute(ctx, "query Shop { id }", nil)
	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("error = %v, want ErrContextCancelled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("backoff should stop when the context is done")
	}
}

func TestNewFetcher_MinimumOneAttempt(t *testing.T) {
	exec := &scriptedExecutor{results: []scriptedResult{throttled()}}
	f := NewFetcher(exec, RetryConfig{MaxAttempts: 0, BaseDelay: time.Second})
	recordSleeps(f)

	_, err := f.Execute(context.Background(), "query Shop { id }", nil)
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("error = %v, want ErrRetryExhausted", err)
	}
	if exec.calls != 1 {
		t.Errorf("calls = %d, want 1", exec.calls)
	}
}

func TestFetcher_Query(t *testing.T) {
	exec := &scriptedExecutor{results: []scriptedResult{
		okResponse(`{"shop":{"primaryDomain":{"url":"https://shop.example.com"}}}`),
	}}
	f := NewFetcher(exec, DefaultRetryConfig())

	var out struct {
		Shop struct {
			PrimaryDomain struct {
				URL string `json:"url"`
			} `json:"primaryDomain"`
		} `json:"shop"`
	}
	if err := f.Query(context.Background(), "query Shop { shop { primaryDomain { url } } }", nil, &out); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if out.Shop.PrimaryDomain.URL != "https://shop.example.com" {
		t.Errorf("url = %q", out.Shop.PrimaryDomain.URL)
	}
}

func TestFetcher_QueryNullData(t *testing.T) {
	exec := &scriptedExecutor{results: []scriptedResult{okResponse(`null`)}}
	f := NewFetcher(exec, DefaultRetryConfig())

	var out map[string]any
	if err := f.Query(context.Background(), "query Shop { id }", nil, &out); err == nil {
		t.Error("Query() should fail on null data")
	}
}
