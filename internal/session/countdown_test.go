package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCountdownKey(t *testing.T) {
	exerciseID := primitive.NewObjectID()
	require.Equal(t, exerciseID.Hex()+"-0", CountdownKey(exerciseID, 0))
	require.Equal(t, exerciseID.Hex()+"-12", CountdownKey(exerciseID, 12))
}

func TestRestSchedulerCountsDownAndSignalsOnce(t *testing.T) {
	var completions []string
	sched := NewRestScheduler(func(key string) {
		completions = append(completions, key)
	})

	sched.Start("a-0", 30)
	for i := 0; i < 29; i++ {
		sched.Tick()
	}
	require.Equal(t, map[string]int{"a-0": 1}, sched.Active())
	require.Empty(t, completions)

	sched.Tick()
	require.Empty(t, sched.Active())
	require.Equal(t, []string{"a-0"}, completions)

	// Further ticks must not re-fire a finished countdown.
	sched.Tick()
	sched.Tick()
	require.Equal(t, []string{"a-0"}, completions)
}

func TestRestSchedulerIgnoresNonPositiveDurations(t *testing.T) {
	sched := NewRestScheduler(nil)
	sched.Start("a-0", 0)
	sched.Start("a-1", -5)
	require.Empty(t, sched.Active())
}

func TestRestSchedulerRunsCountdownsIndependently(t *testing.T) {
	var completions []string
	sched := NewRestScheduler(func(key string) {
		completions = append(completions, key)
	})

	sched.Start("a-0", 2)
	sched.Start("b-0", 4)

	sched.Tick()
	sched.Tick()
	require.Equal(t, []string{"a-0"}, completions)
	require.Equal(t, map[string]int{"b-0": 2}, sched.Active())

	sched.Tick()
	sched.Tick()
	require.Equal(t, []string{"a-0", "b-0"}, completions)
	require.Empty(t, sched.Active())
}

func TestRestSchedulerAdjustClampsAtZero(t *testing.T) {
	var completions []string
	sched := NewRestScheduler(func(key string) {
		completions = append(completions, key)
	})

	sched.Start("a-0", 10)
	sched.Adjust("a-0", -100)
	require.Equal(t, map[string]int{"a-0": 0}, sched.Active())
	require.Empty(t, completions)

	// A countdown adjusted to zero completes on the next tick.
	sched.Tick()
	require.Equal(t, []string{"a-0"}, completions)
}

func TestRestSchedulerAdjustExtends(t *testing.T) {
	sched := NewRestScheduler(nil)
	sched.Start("a-0", 10)
	sched.Adjust("a-0", 15)
	require.Equal(t, map[string]int{"a-0": 25}, sched.Active())
}

func TestRestSchedulerAdjustNeverResurrects(t *testing.T) {
	sched := NewRestScheduler(nil)
	sched.Start("a-0", 1)
	sched.Tick()
	require.Empty(t, sched.Active())

	sched.Adjust("a-0", 30)
	require.Empty(t, sched.Active())
}

func TestRestSchedulerCancelSkipsCompletionSignal(t *testing.T) {
	var completions []string
	sched := NewRestScheduler(func(key string) {
		completions = append(completions, key)
	})

	sched.Start("a-0", 5)
	sched.Cancel("a-0")
	require.Empty(t, sched.Active())

	sched.Tick()
	require.Empty(t, completions)
}

func TestRestSchedulerStopHaltsTickLoop(t *testing.T) {
	var mu sync.Mutex
	var completions []string
	sched := NewRestScheduler(func(key string) {
		mu.Lock()
		completions = append(completions, key)
		mu.Unlock()
	})

	sched.Run()
	sched.Start("a-0", 1)
	sched.Stop()

	mu.Lock()
	fired := len(completions)
	mu.Unlock()
	require.Empty(t, sched.Active())

	// Stop joins the tick loop, so no completion can land after it returns.
	time.Sleep(1500 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, completions, fired)
}

func TestRestSchedulerStopWithoutRun(t *testing.T) {
	sched := NewRestScheduler(nil)
	sched.Start("a-0", 5)
	sched.Stop()
	sched.Stop()
	require.Empty(t, sched.Active())
}

func TestRestSchedulerStartOverwritesRunningCountdown(t *testing.T) {
	sched := NewRestScheduler(nil)
	sched.Start("a-0", 10)
	sched.Tick()
	sched.Start("a-0", 60)
	require.Equal(t, map[string]int{"a-0": 60}, sched.Active())
}
