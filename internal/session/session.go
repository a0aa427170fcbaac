// Package session implements the live workout engine: the in-memory state
// machine tracking an active workout (per-exercise set lists, rest
// countdowns, live statistics), the synchronizer that writes edited routine
// compositions back to the store, and the manager that owns one session per
// user.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mstolbov/liftlog/internal/domain"
	"mstolbov/liftlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// State is the lifecycle phase of a session. Loading precedes the first
// successful Load/StartEmpty; Finished and Discarded are terminal.
type State string

const (
	StateLoading   State = "loading"
	StateActive    State = "active"
	StateFinished  State = "finished"
	StateDiscarded State = "discarded"
)

// Mode selects between a live workout and a routine edit. An edit session is
// the same machine minus the parts that only make sense mid-workout: no
// elapsed clock, no rest countdowns, no Finish — its terminal transition is
// Save, which runs the synchronizer.
type Mode int

const (
	ModeWorkout Mode = iota
	ModeRoutineEdit
)

// --- Error Definitions ---
var (
	ErrNoCompletedSets = errors.New("cannot finish a workout with no completed sets")
	ErrNotActive       = errors.New("session is not active")
	ErrAlreadyLoaded   = errors.New("session is already loaded")
	ErrFinishInFlight  = errors.New("a finish is already in progress")
	ErrNotWorkout      = errors.New("operation requires a workout session")
	ErrNotRoutineEdit  = errors.New("operation requires a routine edit session")
	ErrNoRoutine       = errors.New("session has no routine to save to")
)

// Store bundles the repositories a session reads from and writes to.
type Store struct {
	Routines         repository.RoutineRepository
	RoutineExercises repository.RoutineExerciseRepository
	RoutineSets      repository.RoutineSetRepository
	Workouts         repository.WorkoutRepository
	Exercises        repository.ExerciseRepository
}

// EntryView pairs an exercise entry with its display metadata, in the order
// the session shows it.
type EntryView struct {
	Exercise domain.ExerciseMeta  `json:"exercise"`
	Entry    domain.ExerciseEntry `json:"entry"`
}

// Session is the aggregate root of one live workout or routine edit. All
// state is guarded by one mutex; mutators replace pointer values instead of
// writing through them, so snapshots taken for persistence stay stable while
// the user keeps editing.
type Session struct {
	mu    sync.Mutex
	store Store
	synch *Synchronizer
	mode  Mode

	userID    primitive.ObjectID
	state     State
	routineID *primitive.ObjectID
	title     string

	entries map[primitive.ObjectID]*domain.ExerciseEntry
	meta    map[primitive.ObjectID]domain.ExerciseMeta
	order   []primitive.ObjectID
	elapsed int  // seconds, workout mode only
	started bool // set on the first completion toggle

	finishing bool // single-flight latch for Finish/Save

	sched       *RestScheduler
	clockTicker *time.Ticker
	clockStop   chan struct{}
	runOnce     sync.Once
	closeOnce   sync.Once
}

// New creates a session in the Loading state. onRestComplete receives the
// countdown key of every rest timer that runs out (the hook for audio/haptic
// cues); it may be nil and is never called in routine edit mode.
func New(store Store, userID primitive.ObjectID, mode Mode, onRestComplete func(key string)) *Session {
	return &Session{
		store:     store,
		synch:     NewSynchronizer(store.Routines, store.RoutineExercises, store.RoutineSets),
		mode:      mode,
		userID:    userID,
		state:     StateLoading,
		entries:   make(map[primitive.ObjectID]*domain.ExerciseEntry),
		meta:      make(map[primitive.ObjectID]domain.ExerciseMeta),
		sched:     NewRestScheduler(onRestComplete),
		clockStop: make(chan struct{}),
	}
}

// Load pulls a routine's composition from the store and materializes it as
// session state, then transitions to Active. On any failure the session
// stays in Loading with no partial state applied.
func (s *Session) Load(ctx context.Context, routineID primitive.ObjectID) error {
	s.mu.Lock()
	if s.state != StateLoading {
		s.mu.Unlock()
		return ErrAlreadyLoaded
	}
	s.mu.Unlock()

	routine, err := s.store.Routines.GetByID(ctx, routineID)
	if err != nil {
		return fmt.Errorf("loading routine: %w", err)
	}

	rexs, err := s.store.RoutineExercises.ListByRoutineID(ctx, routineID)
	if err != nil {
		return fmt.Errorf("loading routine exercises: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(rexs))
	for _, rex := range rexs {
		ids = append(ids, rex.ExerciseID)
	}

	routineSets, err := s.store.RoutineSets.ListByRoutineID(ctx, routineID, ids)
	if err != nil {
		return fmt.Errorf("loading routine sets: %w", err)
	}

	metas, err := s.store.Exercises.GetMetaByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("loading exercise metadata: %w", err)
	}

	setsByExercise := make(map[primitive.ObjectID][]domain.Set)
	for _, rs := range routineSets {
		set := rs.Set
		if s.mode == ModeWorkout {
			// Workout sets always carry explicit numbers so progress can be
			// tracked; routine edits keep unset fields unset so previous-value
			// placeholders show through.
			set = sessionSet(set)
		} else {
			set.Completed = false
		}
		setsByExercise[rs.ExerciseID] = append(setsByExercise[rs.ExerciseID], set)
	}

	entries := make(map[primitive.ObjectID]*domain.ExerciseEntry, len(rexs))
	order := make([]primitive.ObjectID, 0, len(rexs))
	for _, rex := range rexs {
		if _, dup := entries[rex.ExerciseID]; dup {
			continue
		}
		sets := setsByExercise[rex.ExerciseID]
		if sets == nil {
			sets = []domain.Set{}
		}
		entries[rex.ExerciseID] = &domain.ExerciseEntry{
			ExerciseID:       rex.ExerciseID,
			Notes:            rex.Notes,
			RestTimerSeconds: rex.RestTimerSeconds,
			Unit:             rex.Unit,
			RepsType:         rex.RepsType,
			Sets:             sets,
		}
		order = append(order, rex.ExerciseID)
	}

	metaByID := make(map[primitive.ObjectID]domain.ExerciseMeta, len(metas))
	for _, m := range metas {
		metaByID[m.ID] = m
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading {
		return ErrAlreadyLoaded
	}
	s.routineID = &routineID
	s.title = routine.Name
	s.entries = entries
	s.meta = metaByID
	s.order = order
	s.state = StateActive
	return nil
}

// StartEmpty begins a workout session with no routine behind it. Exercises
// are added ad hoc; the finished workout records no routine backlink.
func (s *Session) StartEmpty(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading {
		return ErrAlreadyLoaded
	}
	if s.mode != ModeWorkout {
		return ErrNotWorkout
	}
	s.title = title
	s.state = StateActive
	return nil
}

// sessionSet coerces a persisted set's unset numerics to explicit zeros and
// clears any stray completion flag.
func sessionSet(s domain.Set) domain.Set {
	out := s
	out.Completed = false
	if out.Weight == nil {
		out.Weight = domain.FloatPtr(0)
	}
	if out.Reps == nil {
		out.Reps = domain.IntPtr(0)
	}
	if out.MinReps == nil {
		out.MinReps = domain.IntPtr(0)
	}
	if out.MaxReps == nil {
		out.MaxReps = domain.IntPtr(0)
	}
	if out.Duration == nil {
		out.Duration = domain.IntPtr(0)
	}
	if out.Type == "" {
		out.Type = domain.SetTypeNormal
	}
	return out
}

// Run starts the two periodic tickers: the elapsed-duration clock and the
// rest countdown tick. They mutate disjoint state (elapsed vs the countdown
// map) off independent one-second intervals. No-op for routine edits.
func (s *Session) Run() {
	if s.mode != ModeWorkout {
		return
	}
	s.runOnce.Do(func() {
		s.sched.Run()
		s.clockTicker = time.NewTicker(time.Second)
		go func() {
			for {
				select {
				case <-s.clockTicker.C:
					s.tickElapsed()
				case <-s.clockStop:
					return
				}
			}
		}()
	})
}

// Close tears both tickers down. After Close returns no timer callback will
// mutate the session again. Safe to call more than once; Finish and Discard
// call it themselves.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.clockStop)
		if s.clockTicker != nil {
			s.clockTicker.Stop()
		}
		s.sched.Stop()
	})
}

func (s *Session) tickElapsed() {
	s.mu.Lock()
	if s.state == StateActive {
		s.elapsed++
	}
	s.mu.Unlock()
}

// AddExercises loads display metadata for the given catalog ids and appends
// default entries for any not already in the session. Duplicate or empty id
// sets are a no-op.
func (s *Session) AddExercises(ctx context.Context, ids []primitive.ObjectID) error {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return ErrNotActive
	}
	fresh := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, loaded := s.entries[id]; !loaded {
			fresh = append(fresh, id)
		}
	}
	s.mu.Unlock()

	if len(fresh) == 0 {
		return nil
	}

	metas, err := s.store.Exercises.GetMetaByIDs(ctx, fresh)
	if err != nil {
		return fmt.Errorf("loading exercise metadata: %w", err)
	}
	metaByID := make(map[primitive.ObjectID]domain.ExerciseMeta, len(metas))
	for _, m := range metas {
		metaByID[m.ID] = m
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return ErrNotActive
	}
	for _, id := range fresh {
		if _, loaded := s.entries[id]; loaded {
			continue
		}
		s.entries[id] = domain.NewExerciseEntry(id)
		s.order = append(s.order, id)
		if m, ok := metaByID[id]; ok {
			s.meta[id] = m
		}
	}
	return nil
}

// withSet runs fn against one set under the session lock. A missing entry or
// out-of-range index is silently absorbed: rapid UI edits race removals and
// must never crash the session.
func (s *Session) withSet(exerciseID primitive.ObjectID, setIndex int, fn func(*domain.Set)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return
	}
	entry, ok := s.entries[exerciseID]
	if !ok || setIndex < 0 || setIndex >= len(entry.Sets) {
		return
	}
	fn(&entry.Sets[setIndex])
}

// withEntry is withSet for entry-level configuration fields.
func (s *Session) withEntry(exerciseID primitive.ObjectID, fn func(*domain.ExerciseEntry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return
	}
	if entry, ok := s.entries[exerciseID]; ok {
		fn(entry)
	}
}

// UpdateSetWeight sets or clears one set's weight. nil means "unset".
func (s *Session) UpdateSetWeight(exerciseID primitive.ObjectID, setIndex int, weight *float64) {
	s.withSet(exerciseID, setIndex, func(set *domain.Set) { set.Weight = weight })
}

// UpdateSetReps sets or clears one set's fixed rep count.
func (s *Session) UpdateSetReps(exerciseID primitive.ObjectID, setIndex int, reps *int) {
	s.withSet(exerciseID, setIndex, func(set *domain.Set) { set.Reps = reps })
}

// UpdateSetRepRange sets one set's rep range bounds.
func (s *Session) UpdateSetRepRange(exerciseID primitive.ObjectID, setIndex int, minReps, maxReps *int) {
	s.withSet(exerciseID, setIndex, func(set *domain.Set) {
		set.MinReps = minReps
		set.MaxReps = maxReps
	})
}

// UpdateSetDuration sets one set's duration in seconds.
func (s *Session) UpdateSetDuration(exerciseID primitive.ObjectID, setIndex int, duration *int) {
	s.withSet(exerciseID, setIndex, func(set *domain.Set) { set.Duration = duration })
}

// ChangeSetType reclassifies one set (warmup, normal, drop set, failure).
func (s *Session) ChangeSetType(exerciseID primitive.ObjectID, setIndex int, setType domain.SetType) {
	s.withSet(exerciseID, setIndex, func(set *domain.Set) { set.Type = setType })
}

// UpdateNotes replaces the free-text notes of an exercise entry.
func (s *Session) UpdateNotes(exerciseID primitive.ObjectID, notes string) {
	s.withEntry(exerciseID, func(entry *domain.ExerciseEntry) { entry.Notes = notes })
}

// UpdateRestTimer reconfigures an entry's rest duration. 0 disables the
// timer; countdowns already running keep their remaining time.
func (s *Session) UpdateRestTimer(exerciseID primitive.ObjectID, seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	s.withEntry(exerciseID, func(entry *domain.ExerciseEntry) { entry.RestTimerSeconds = seconds })
}

// UpdateUnit switches an entry between kg and lbs. The unit applies to every
// set of the entry.
func (s *Session) UpdateUnit(exerciseID primitive.ObjectID, unit domain.WeightUnit) {
	s.withEntry(exerciseID, func(entry *domain.ExerciseEntry) { entry.Unit = unit })
}

// UpdateRepsType switches an entry between fixed reps and a rep range.
func (s *Session) UpdateRepsType(exerciseID primitive.ObjectID, repsType domain.RepsType) {
	s.withEntry(exerciseID, func(entry *domain.ExerciseEntry) { entry.RepsType = repsType })
}

// AddSet appends a default set to an entry, shaped by the exercise's type.
func (s *Session) AddSet(exerciseID primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return
	}
	entry, ok := s.entries[exerciseID]
	if !ok {
		return
	}
	entry.Sets = append(entry.Sets, domain.DefaultSet(s.meta[exerciseID].Type))
}

// RemoveSet deletes one set by index and cancels any rest countdown keyed to
// it. Countdowns keyed to later indexes of the same exercise become stale;
// the scheduler tolerates them and they run out on their own.
func (s *Session) RemoveSet(exerciseID primitive.ObjectID, setIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return
	}
	entry, ok := s.entries[exerciseID]
	if !ok || setIndex < 0 || setIndex >= len(entry.Sets) {
		return
	}
	entry.Sets = append(entry.Sets[:setIndex], entry.Sets[setIndex+1:]...)
	s.sched.Cancel(CountdownKey(exerciseID, setIndex))
}

// ToggleSetComplete flips one set's completion. Completing a set starts a
// rest countdown when the entry has one configured; un-completing cancels
// it. The first completion marks the session as started, which surrounding
// UI uses to decide whether leaving needs a prompt.
func (s *Session) ToggleSetComplete(exerciseID primitive.ObjectID, setIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return
	}
	entry, ok := s.entries[exerciseID]
	if !ok || setIndex < 0 || setIndex >= len(entry.Sets) {
		return
	}

	set := &entry.Sets[setIndex]
	set.Completed = !set.Completed

	key := CountdownKey(exerciseID, setIndex)
	if set.Completed {
		s.started = true
		if s.mode == ModeWorkout && entry.RestTimerSeconds > 0 {
			s.sched.Start(key, entry.RestTimerSeconds)
		}
	} else {
		s.sched.Cancel(key)
	}
}

// AdjustRest shifts a running countdown, clamped at zero.
func (s *Session) AdjustRest(key string, deltaSeconds int) {
	s.sched.Adjust(key, deltaSeconds)
}

// SkipRest cancels a running countdown without a completion signal.
func (s *Session) SkipRest(key string) {
	s.sched.Cancel(key)
}

// ActiveCountdowns returns the remaining seconds of every running countdown.
func (s *Session) ActiveCountdowns() map[string]int {
	return s.sched.Active()
}

// Stats recomputes the session's derived statistics from current state.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeStats(s.entries)
}

// State returns the lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mode reports whether this is a workout or a routine edit session.
func (s *Session) Mode() Mode {
	return s.mode
}

// Elapsed returns the session duration in seconds.
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Started reports whether any set has ever been completed in this session.
func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Title returns the session title (the routine name it loaded from, unless
// overridden).
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// SetTitle overrides the title used for the finished workout or saved routine.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

// RoutineID returns the backing routine id, nil for empty workouts.
func (s *Session) RoutineID() *primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routineID
}

// Entries returns the session's exercise entries in display order, deep
// copied so callers can render without holding the session lock.
func (s *Session) Entries() []EntryView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]EntryView, 0, len(s.order))
	for _, id := range s.order {
		entry, ok := s.entries[id]
		if !ok {
			continue
		}
		views = append(views, EntryView{
			Exercise: s.meta[id],
			Entry:    copyEntry(entry),
		})
	}
	return views
}

// snapshotLocked deep-copies entries and order for use outside the lock.
// Pointer targets are shared but never written through (mutators always
// assign fresh pointers), so the snapshot stays stable.
func (s *Session) snapshotLocked() (map[primitive.ObjectID]*domain.ExerciseEntry, []primitive.ObjectID) {
	entries := make(map[primitive.ObjectID]*domain.ExerciseEntry, len(s.entries))
	for id, entry := range s.entries {
		copied := copyEntry(entry)
		entries[id] = &copied
	}
	order := make([]primitive.ObjectID, len(s.order))
	copy(order, s.order)
	return entries, order
}

func copyEntry(entry *domain.ExerciseEntry) domain.ExerciseEntry {
	out := *entry
	out.Sets = make([]domain.Set, len(entry.Sets))
	copy(out.Sets, entry.Sets)
	return out
}

// Finish validates, persists the workout record and transitions to
// Finished. With propagate set and a backing routine, session edits are
// synced back to the routine after the insert; the insert is the commit
// point, so a propagation failure still finishes the session and is
// reported alongside the created workout. A failed insert leaves the
// session Active with nothing written.
func (s *Session) Finish(ctx context.Context, propagate bool) (*domain.Workout, error) {
	s.mu.Lock()
	if s.mode != ModeWorkout {
		s.mu.Unlock()
		return nil, ErrNotWorkout
	}
	if s.state != StateActive {
		s.mu.Unlock()
		return nil, ErrNotActive
	}
	if s.finishing {
		s.mu.Unlock()
		return nil, ErrFinishInFlight
	}

	stats := ComputeStats(s.entries)
	if stats.TotalCompletedSets == 0 {
		s.mu.Unlock()
		return nil, ErrNoCompletedSets
	}

	s.finishing = true
	title := s.title
	if title == "" {
		title = "Workout"
	}
	workout := &domain.Workout{
		UserID:    s.userID,
		RoutineID: s.routineID,
		Date:      time.Now().UTC().Format(time.RFC3339),
		Title:     title,
		Duration:  s.elapsed,
		Volume:    stats.TotalVolume,
		Sets:      stats.TotalCompletedSets,
	}
	entries, order := s.snapshotLocked()
	routineID := s.routineID
	s.mu.Unlock()

	if _, err := s.store.Workouts.Create(ctx, workout); err != nil {
		s.mu.Lock()
		s.finishing = false
		s.mu.Unlock()
		return nil, fmt.Errorf("inserting workout: %w", err)
	}

	var syncErr error
	if propagate && routineID != nil {
		syncErr = s.synch.Sync(ctx, *routineID, title, order, entries)
	}

	s.mu.Lock()
	s.state = StateFinished
	s.mu.Unlock()
	s.Close()
	return workout, syncErr
}

// Save is the terminal transition of a routine edit session: it runs the
// synchronizer against the backing routine and transitions to Finished.
// On failure the session stays Active so the edit can be retried.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.mode != ModeRoutineEdit {
		s.mu.Unlock()
		return ErrNotRoutineEdit
	}
	if s.state != StateActive {
		s.mu.Unlock()
		return ErrNotActive
	}
	if s.finishing {
		s.mu.Unlock()
		return ErrFinishInFlight
	}
	if s.routineID == nil {
		s.mu.Unlock()
		return ErrNoRoutine
	}

	s.finishing = true
	routineID := *s.routineID
	title := s.title
	entries, order := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.synch.Sync(ctx, routineID, title, order, entries); err != nil {
		s.mu.Lock()
		s.finishing = false
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.state = StateFinished
	s.mu.Unlock()
	s.Close()
	return nil
}

// Discard drops all session state and transitions to Discarded. A discarded
// session cannot be resumed; nothing is written to the store. A Discard
// racing an in-flight Finish or Save yields: the commit in progress owns the
// terminal transition.
func (s *Session) Discard() {
	s.mu.Lock()
	if s.finishing {
		s.mu.Unlock()
		return
	}
	s.entries = make(map[primitive.ObjectID]*domain.ExerciseEntry)
	s.meta = make(map[primitive.ObjectID]domain.ExerciseMeta)
	s.order = nil
	s.elapsed = 0
	s.state = StateDiscarded
	s.mu.Unlock()
	s.Close()
}
