package protected

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/sync/errgroup"

	warperrors "github.com/mirkobrombin/go-protected/v1/errors"
	"github.com/mirkobrombin/go-protected/v1/lock"
	"github.com/mirkobrombin/go-protected/v1/metrics"
)

func lockers() map[string]lock.Factory {
	return map[string]lock.Factory{
		"default":    lock.New,
		"errorcheck": func() lock.Locker { return lock.NewErrorCheck("test") },
		"fast":       func() lock.Locker { return lock.NewFast() },
	}
}

func TestConcurrentSum(t *testing.T) {
	for name, f := range lockers() {
		t.Run(name, func(t *testing.T) {
			sum := New(0, WithLocker(f))
			var g errgroup.Group
			for i := 0; i < 1000; i++ {
				g.Go(func() error {
					sum.Write(func(v *int) { *v += i })
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				t.Fatal(err)
			}
			if got := sum.Get(); got != 499500 {
				t.Fatalf("sum = %d, want 499500", got)
			}
		})
	}
}

func TestConcurrentGetSet(t *testing.T) {
	p := New("value")
	var wg sync.WaitGroup
	for i := 0; i < 10000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Get()
			p.Set(fmt.Sprint(i))
		}()
	}
	wg.Wait()
	if p.Get() == "value" {
		t.Fatal("expected value to be replaced")
	}
}

func TestConcurrentReadWrite(t *testing.T) {
	p := New("value")
	var wg sync.WaitGroup
	for i := 0; i < 10000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = Read(p, func(s string) string { return s })
			p.Write(func(s *string) { *s = fmt.Sprint(i) })
		}()
	}
	wg.Wait()
	if p.Get() == "value" {
		t.Fatal("expected value to be replaced")
	}
}

type pair struct {
	A, B int
}

func TestNoTornReads(t *testing.T) {
	p := New(pair{})
	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 500; i++ {
				p.Write(func(v *pair) {
					v.A = w*1000 + i
					v.B = w*1000 + i
				})
			}
			return nil
		})
	}
	for r := 0; r < 8; r++ {
		g.Go(func() error {
			for i := 0; i < 500; i++ {
				if err := Read(p, func(v pair) error {
					if v.A != v.B {
						return fmt.Errorf("torn read: %+v", v)
					}
					return nil
				}); err != nil {
					return err
				}
				if v := p.Get(); v.A != v.B {
					return fmt.Errorf("torn get: %+v", v)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestWritePassesErrorThrough(t *testing.T) {
	errBoom := errors.New("boom")
	p := New(1)
	err := Write(p, func(v *int) error {
		*v = 2
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}
	if p.Get() != 2 {
		t.Fatal("mutation before the error must be kept")
	}
}

func TestPanicReleasesLock(t *testing.T) {
	for name, f := range lockers() {
		t.Run(name, func(t *testing.T) {
			p := New(0, WithLocker(f))
			func() {
				defer func() {
					if r := recover(); r != "read failed" {
						t.Fatalf("expected panic to propagate, got %v", r)
					}
				}()
				p.Read(func(int) { panic("read failed") })
			}()
			func() {
				defer func() {
					if r := recover(); r != "write failed" {
						t.Fatalf("expected panic to propagate, got %v", r)
					}
				}()
				Write(p, func(v *int) int { panic("write failed") })
			}()

			done := make(chan int)
			go func() {
				p.Set(42)
				done <- p.Get()
			}()
			select {
			case v := <-done:
				if v != 42 {
					t.Fatalf("got %d, want 42", v)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("lock was not released after panic")
			}
		})
	}
}

func TestReentrantReadPanicsWithErrorCheck(t *testing.T) {
	p := New(0, WithLocker(func() lock.Locker { return lock.NewErrorCheck("reentrant") }))
	defer func() {
		me, ok := warperrors.AsMisuse(recover())
		if !ok || !errors.Is(me, warperrors.ErrRecursiveLock) {
			t.Fatalf("expected recursive lock misuse, got %v", me)
		}
		// still usable afterwards
		p.Set(1)
	}()
	p.Read(func(int) { _ = p.Get() })
}

func TestSwap(t *testing.T) {
	p := New("a")
	if old := p.Swap("b"); old != "a" {
		t.Fatalf("Swap returned %q, want a", old)
	}
	if p.Get() != "b" {
		t.Fatalf("Get = %q, want b", p.Get())
	}
}

func TestString(t *testing.T) {
	p := New(pair{A: 1, B: 2})
	if got := p.String(); got != "{1 2}" {
		t.Fatalf("String = %q", got)
	}
}

func TestWithMetrics(t *testing.T) {
	p := New(0, WithName("with-metrics"), WithMetrics())
	for i := 0; i < 5; i++ {
		p.Set(i)
	}
	_ = p.Get()
	if got := testutil.ToFloat64(metrics.AcquireCounter.WithLabelValues("with-metrics")); got != 6 {
		t.Fatalf("acquisitions = %v, want 6", got)
	}
}

func TestWithLockerCalledOnce(t *testing.T) {
	calls := 0
	p := New(0, WithLocker(func() lock.Locker {
		calls++
		return lock.NewFast()
	}))
	p.Set(1)
	_ = p.Get()
	if calls != 1 {
		t.Fatalf("factory called %d times, want 1", calls)
	}
}
