package console_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/dalemusser/ccbportal/internal/app/console"
	"github.com/dalemusser/ccbportal/internal/domain/models"
	"go.uber.org/goleak"
)

type stubLister struct {
	fail  models.Kind
	err   error
	calls atomic.Int32
}

func (s *stubLister) List(ctx context.Context, k models.Kind) ([]models.Record, error) {
	s.calls.Add(1)
	if k == s.fail {
		return nil, s.err
	}
	if s.fail != "" {
		// Everyone else waits until the failure cancels them.
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if k == models.KindNews {
		return nil, nil
	}
	return []models.Record{{"id": int64(1), "kind": string(k)}}, nil
}

func TestLoadAll_Success(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &stubLister{}
	lists, err := console.NewLoader(api).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if got := api.calls.Load(); got != 10 {
		t.Errorf("expected 10 fetches, got %d", got)
	}
	if len(lists) != 10 {
		t.Errorf("expected 10 lists, got %d", len(lists))
	}
	if got := lists[models.KindSteps][0].String("kind"); got != string(models.KindSteps) {
		t.Errorf("results landed under the wrong kind: %q", got)
	}
}

func TestLoadAll_FirstErrorShortCircuits(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("boom")
	api := &stubLister{fail: models.KindPersonnel, err: boom}
	lists, err := console.NewLoader(api).LoadAll(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if lists != nil {
		t.Error("no results on failure")
	}
}

func TestLoadAll_ParentCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	api := &stubLister{fail: "none-match", err: errors.New("unused")}
	if _, err := console.NewLoader(api).LoadAll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
