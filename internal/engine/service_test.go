package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type stubModel struct {
	name string
}

func (m stubModel) Name() string {
	return m.name
}

type stubBackend struct {
	mu    sync.Mutex
	calls int
	fail  error
	panic bool
}

func (b *stubBackend) Load(spec ModelSpec) (Model, error) {
	return stubModel{name: spec.Name}, nil
}

func (b *stubBackend) Translate(_ context.Context, model Model, text string) (string, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()

	if b.panic {
		panic("boom")
	}
	if b.fail != nil {
		return "", b.fail
	}
	return model.Name() + ":" + strings.ToUpper(text), nil
}

func waitResponse(t *testing.T, ch <-chan Response) Response {
	t.Helper()
	select {
	case resp := <-ch:
		return resp
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for engine callback")
		return Response{}
	}
}

func TestServiceTranslateInvokesCallback(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubBackend{}, Config{Workers: 2}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	model, err := svc.LoadModel(ModelSpec{Name: "enfr"})
	if err != nil {
		t.Fatalf("load model: %v", err)
	}

	ch := make(chan Response, 1)
	svc.Translate(model, "hello", func(resp Response) { ch <- resp })

	resp := waitResponse(t, ch)
	if resp.Err != nil {
		t.Fatalf("unexpected error: %v", resp.Err)
	}
	if resp.Text != "enfr:HELLO" {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
}

func TestServiceDefaultsWorkersToCPUCount(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubBackend{}, Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	if svc.Workers() < 1 {
		t.Fatalf("expected at least one worker, got %d", svc.Workers())
	}
}

func TestServicePropagatesBackendError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("compute failed")
	svc, err := NewService(&stubBackend{fail: wantErr}, Config{Workers: 1}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	ch := make(chan Response, 1)
	svc.Translate(stubModel{name: "deen"}, "hallo", func(resp Response) { ch <- resp })

	resp := waitResponse(t, ch)
	if !errors.Is(resp.Err, wantErr) {
		t.Fatalf("expected backend error, got %v", resp.Err)
	}
}

func TestServiceRecoversBackendPanic(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubBackend{panic: true}, Config{Workers: 1}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	ch := make(chan Response, 2)
	svc.Translate(stubModel{name: "enfr"}, "x", func(resp Response) { ch <- resp })

	resp := waitResponse(t, ch)
	if resp.Err == nil || !strings.Contains(resp.Err.Error(), "panicked") {
		t.Fatalf("expected panic to surface as error, got %v", resp.Err)
	}

	// The worker must survive the panic.
	svc.Translate(stubModel{name: "enfr"}, "y", func(resp Response) { ch <- resp })
	if resp := waitResponse(t, ch); resp.Err == nil {
		t.Fatalf("expected second job to run and fail with panic error")
	}
}

func TestServiceRejectsJobsAfterClose(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	svc, err := NewService(backend, Config{Workers: 1}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.Close()
	svc.Close()

	ch := make(chan Response, 1)
	svc.Translate(stubModel{name: "enfr"}, "late", func(resp Response) { ch <- resp })

	resp := waitResponse(t, ch)
	if !errors.Is(resp.Err, ErrServiceClosed) {
		t.Fatalf("expected ErrServiceClosed, got %v", resp.Err)
	}
	if backend.calls != 0 {
		t.Fatalf("did not expect backend calls, got %d", backend.calls)
	}
}

func TestServiceConcurrentJobsEachCompleteOnce(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	svc, err := NewService(backend, Config{Workers: 4, QueueSize: 2}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	const jobs = 64
	var (
		mu     sync.Mutex
		counts = map[string]int{}
		wg     sync.WaitGroup
	)
	wg.Add(jobs)
	for i := 0; i < jobs; i++ {
		text := strings.Repeat("a", i+1)
		go svc.Translate(stubModel{name: "m"}, text, func(resp Response) {
			mu.Lock()
			counts[resp.Text]++
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()

	if len(counts) != jobs {
		t.Fatalf("expected %d distinct results, got %d", jobs, len(counts))
	}
	for text, n := range counts {
		if n != 1 {
			t.Fatalf("callback for %q fired %d times", text, n)
		}
	}
}

func TestNewServiceRequiresBackend(t *testing.T) {
	t.Parallel()

	if _, err := NewService(nil, Config{}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for nil backend")
	}
}
