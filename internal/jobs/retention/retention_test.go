package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eduymaz/aller-mind/internal/pkg/dbctx"
	"github.com/eduymaz/aller-mind/internal/platform/logger"
)

type fakePruner struct {
	cutoff time.Time
	calls  int
	err    error
}

func (f *fakePruner) DeleteOlderThan(_ dbctx.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

func TestRunOnceUsesRetentionWindow(t *testing.T) {
	p := &fakePruner{}
	j := NewJob(p, 48*time.Hour, logger.Nop())
	fixed := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return fixed }

	n, err := j.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if n != 3 {
		t.Fatalf("n=%d", n)
	}
	if want := fixed.Add(-48 * time.Hour); !p.cutoff.Equal(want) {
		t.Fatalf("cutoff=%v want %v", p.cutoff, want)
	}
}

func TestRunOnceDisabledAndFailing(t *testing.T) {
	p := &fakePruner{}
	if n, err := NewJob(p, 0, logger.Nop()).RunOnce(context.Background()); n != 0 || err != nil || p.calls != 0 {
		t.Fatalf("disabled job ran: n=%d err=%v calls=%d", n, err, p.calls)
	}

	boom := errors.New("boom")
	p = &fakePruner{err: boom}
	if _, err := NewJob(p, time.Hour, logger.Nop()).RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	j := NewJob(&fakePruner{}, time.Hour, logger.Nop())
	if _, err := j.Start("not a schedule"); err == nil {
		t.Fatalf("bad spec accepted")
	}
	c, err := j.Start("15 3 * * *")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Fatalf("entries=%d", len(c.Entries()))
	}
	c.Stop()
}
