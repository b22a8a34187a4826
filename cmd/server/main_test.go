package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/godeposit/internal/infrastructure/metrics"
	"github.com/iho/godeposit/internal/usecase"
)

type fakeInterestRunner struct {
	postCalls    int
	maturedCalls int
	postErr      error
}

func (f *fakeInterestRunner) PostInterestForAccounts(ctx context.Context, upTo time.Time) (usecase.BatchResult, error) {
	f.postCalls++
	if f.postErr != nil {
		return usecase.BatchResult{}, f.postErr
	}
	return usecase.BatchResult{Processed: 2, Succeeded: 2}, nil
}

func (f *fakeInterestRunner) UpdateMaturedAccounts(ctx context.Context, asOf time.Time) (usecase.BatchResult, error) {
	f.maturedCalls++
	return usecase.BatchResult{Processed: 1, Succeeded: 1}, nil
}

type fakeChargeRunner struct {
	applyCalls int
}

func (f *fakeChargeRunner) ApplyChargesDueForAccounts(ctx context.Context, asOf time.Time) (usecase.BatchResult, error) {
	f.applyCalls++
	return usecase.BatchResult{
		Processed: 2,
		Succeeded: 1,
		Failures:  []usecase.BatchFailure{{AccountID: "acc-1", Err: errors.New("account is not active")}},
	}, nil
}

var testMetrics = metrics.New()

func TestRunBatchCycle_RunsAllJobs(t *testing.T) {
	interest := &fakeInterestRunner{}
	charges := &fakeChargeRunner{}

	runBatchCycle(context.Background(), zerolog.Nop(), testMetrics, interest, charges)

	if interest.postCalls != 1 {
		t.Fatalf("expected 1 interest run, got %d", interest.postCalls)
	}
	if charges.applyCalls != 1 {
		t.Fatalf("expected 1 charge run, got %d", charges.applyCalls)
	}
	if interest.maturedCalls != 1 {
		t.Fatalf("expected 1 maturity run, got %d", interest.maturedCalls)
	}
}

func TestRunBatchCycle_ContinuesPastJobError(t *testing.T) {
	interest := &fakeInterestRunner{postErr: errors.New("database unavailable")}
	charges := &fakeChargeRunner{}

	runBatchCycle(context.Background(), zerolog.Nop(), testMetrics, interest, charges)

	if charges.applyCalls != 1 {
		t.Fatalf("expected charge job to run after interest failure, got %d runs", charges.applyCalls)
	}
	if interest.maturedCalls != 1 {
		t.Fatalf("expected maturity job to run after interest failure, got %d runs", interest.maturedCalls)
	}
}
