package ic

import (
	"sync/atomic"
	"testing"
)

func TestSortOnChangeCallbacks(t *testing.T) {
	noop := func(string) error { return nil }
	sorted := sortOnChangeCallbacks([]OnChange{
		{Func: noop},
		{Strategy: OnChangeStrategyPre, Func: noop},
		{Strategy: OnChangeStrategyConcurrent, Func: noop},
		{Strategy: OnChangeStrategyPost, Func: noop},
		{Strategy: "bogus", Func: noop},
	})

	if len(sorted.stratPre) != 2 || len(sorted.stratConcurrent) != 1 || len(sorted.stratPost) != 1 {
		t.Errorf("sortOnChangeCallbacks() = pre %d, concurrent %d, post %d; want 2, 1, 1",
			len(sorted.stratPre), len(sorted.stratConcurrent), len(sorted.stratPost))
	}
}

func TestRunConcurrentOnChangeCallbacks(t *testing.T) {
	c := &Config{Logger: nopLogger{}}

	var count atomic.Int32
	inc := func(string) error {
		count.Add(1)
		return nil
	}

	wait := c.runConcurrentOnChangeCallbacks([]OnChange{
		{Func: inc},
		{Func: inc},
		{Func: inc, ExcludedPatterns: []string{"**/*.css"}},
	}, "styles/main.css")
	wait()

	if got := count.Load(); got != 2 {
		t.Errorf("ran %d callbacks, want 2", got)
	}
}
