package inmemory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/avolkov/fintrack/internal/jobs"
)

func TestQueue_ProcessesJobs(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	queue := NewQueue(10, 2, store)

	var wg sync.WaitGroup
	var mu sync.Mutex
	processed := make(map[string]bool)

	handler := func(ctx context.Context, job jobs.Job) error {
		defer wg.Done()
		mu.Lock()
		processed[job.GetID()] = true
		mu.Unlock()
		return nil
	}

	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	const jobCount = 5
	wg.Add(jobCount)
	for i := 0; i < jobCount; i++ {
		job := &jobs.ExtractDocumentJob{
			FilePath:  "statement.pdf",
			MediaType: "application/pdf",
		}
		if err := queue.PublishExtractDocument(ctx, job); err != nil {
			t.Fatalf("PublishExtractDocument failed: %v", err)
		}
	}

	wg.Wait()
	if err := queue.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if len(processed) != jobCount {
		t.Errorf("processed %d jobs, want %d", len(processed), jobCount)
	}

	done, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(done) != jobCount {
		t.Errorf("store has %d completed jobs, want %d", len(done), jobCount)
	}
}

func TestQueue_FailedJobExhaustsRetries(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	queue := NewQueue(1, 1, store)

	var mu sync.Mutex
	attempts := 0

	handler := func(ctx context.Context, job jobs.Job) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return errors.New("unreadable document")
	}

	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.ExtractDocumentJob{FilePath: "corrupt.pdf", MediaType: "application/pdf", MaxRetries: 1}
	if err := queue.PublishExtractDocument(ctx, job); err != nil {
		t.Fatalf("PublishExtractDocument failed: %v", err)
	}

	var final *jobs.ExtractDocumentJob
	select {
	case final = <-queue.Terminal():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the job to exhaust its retries")
	}
	if err := queue.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if final.Status != jobs.JobStatusFailed {
		t.Errorf("Status = %q, want %q", final.Status, jobs.JobStatusFailed)
	}
	if final.Error == "" {
		t.Error("expected error message on failed job")
	}
	if final.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", final.RetryCount)
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 2 {
		t.Errorf("handler ran %d times, want 2", attempts)
	}

	saved, err := store.GetJob(ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if saved.Status != jobs.JobStatusFailed {
		t.Errorf("stored Status = %q, want %q", saved.Status, jobs.JobStatusFailed)
	}
}

func TestQueue_RetriedJobRecovers(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	queue := NewQueue(1, 1, store)

	var mu sync.Mutex
	attempts := 0

	// Fails on the first attempt, succeeds on the re-enqueued one.
	handler := func(ctx context.Context, job jobs.Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return errors.New("transient model error")
		}
		return nil
	}

	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.ExtractDocumentJob{FilePath: "statement.pdf", MediaType: "application/pdf"}
	if err := queue.PublishExtractDocument(ctx, job); err != nil {
		t.Fatalf("PublishExtractDocument failed: %v", err)
	}

	var final *jobs.ExtractDocumentJob
	select {
	case final = <-queue.Terminal():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the retried job to finish")
	}
	if err := queue.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if final.Status != jobs.JobStatusCompleted {
		t.Errorf("Status = %q, want %q", final.Status, jobs.JobStatusCompleted)
	}
	if final.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", final.RetryCount)
	}
	if final.Error != "" {
		t.Errorf("Error = %q, want it cleared after the successful attempt", final.Error)
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 2 {
		t.Errorf("handler ran %d times, want 2", attempts)
	}
}

func TestQueue_PublishDefaults(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	queue := NewQueue(1, 1, store)

	job := &jobs.ExtractDocumentJob{FilePath: "a.pdf", MediaType: "application/pdf"}
	if err := queue.PublishExtractDocument(ctx, job); err != nil {
		t.Fatalf("PublishExtractDocument failed: %v", err)
	}

	if job.JobID == "" {
		t.Error("expected a generated job ID")
	}
	if job.Status != jobs.JobStatusPending {
		t.Errorf("Status = %q, want pending", job.Status)
	}
	if job.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if job.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want the default of 3", job.MaxRetries)
	}

	_ = queue.Close()
}

func TestQueue_ClosedRejectsPublish(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue(1, 1, nil)

	if err := queue.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	err := queue.PublishExtractDocument(ctx, &jobs.ExtractDocumentJob{FilePath: "a.pdf"})
	if err == nil {
		t.Error("expected publish on a closed queue to fail")
	}
}

func TestQueue_StopWaitsForInflight(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue(1, 1, nil)

	started := make(chan struct{})
	var finished bool
	var mu sync.Mutex

	handler := func(ctx context.Context, job jobs.Job) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		mu.Lock()
		finished = true
		mu.Unlock()
		return nil
	}

	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := queue.PublishExtractDocument(ctx, &jobs.ExtractDocumentJob{FilePath: "a.pdf"}); err != nil {
		t.Fatalf("PublishExtractDocument failed: %v", err)
	}

	<-started
	if err := queue.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !finished {
		t.Error("Stop returned before the in-flight job finished")
	}
}
