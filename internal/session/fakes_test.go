package session

import (
	"context"
	"sort"
	"sync"

	"mstolbov/liftlog/internal/domain"
	"mstolbov/liftlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the repository interfaces. Error fields, when set, make
// the corresponding operation fail so failure paths can be exercised.

type fakeRoutineRepo struct {
	mu            sync.Mutex
	routines      map[primitive.ObjectID]*domain.Routine
	updateNameErr error
}

func newFakeRoutineRepo() *fakeRoutineRepo {
	return &fakeRoutineRepo{routines: make(map[primitive.ObjectID]*domain.Routine)}
}

func (f *fakeRoutineRepo) Create(_ context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *routine
	stored.ID = id
	f.routines[id] = &stored
	return id, nil
}

func (f *fakeRoutineRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	routine, ok := f.routines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *routine
	return &copied, nil
}

func (f *fakeRoutineRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) ([]domain.Routine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Routine
	for _, routine := range f.routines {
		if routine.UserID != nil && *routine.UserID == userID {
			out = append(out, *routine)
		}
	}
	return out, nil
}

func (f *fakeRoutineRepo) UpdateName(_ context.Context, id primitive.ObjectID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateNameErr != nil {
		return f.updateNameErr
	}
	routine, ok := f.routines[id]
	if !ok {
		return repository.ErrNotFound
	}
	routine.Name = name
	return nil
}

func (f *fakeRoutineRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.routines[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.routines, id)
	return nil
}

type rexKey struct {
	routineID  primitive.ObjectID
	exerciseID primitive.ObjectID
}

type fakeRoutineExerciseRepo struct {
	mu        sync.Mutex
	rows      map[rexKey]*domain.RoutineExercise
	upsertErr map[primitive.ObjectID]error // keyed by exercise id
}

func newFakeRoutineExerciseRepo() *fakeRoutineExerciseRepo {
	return &fakeRoutineExerciseRepo{
		rows:      make(map[rexKey]*domain.RoutineExercise),
		upsertErr: make(map[primitive.ObjectID]error),
	}
}

func (f *fakeRoutineExerciseRepo) ListByRoutineID(_ context.Context, routineID primitive.ObjectID) ([]domain.RoutineExercise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RoutineExercise
	for key, row := range f.rows {
		if key.routineID == routineID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeRoutineExerciseRepo) Upsert(_ context.Context, rex *domain.RoutineExercise) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.upsertErr[rex.ExerciseID]; err != nil {
		return err
	}
	stored := *rex
	if stored.ID.IsZero() {
		stored.ID = primitive.NewObjectID()
	}
	f.rows[rexKey{rex.RoutineID, rex.ExerciseID}] = &stored
	return nil
}

func (f *fakeRoutineExerciseRepo) DeleteByRoutineID(_ context.Context, routineID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.rows {
		if key.routineID == routineID {
			delete(f.rows, key)
		}
	}
	return nil
}

type fakeRoutineSetRepo struct {
	mu         sync.Mutex
	sets       map[rexKey][]domain.Set
	replaceErr map[primitive.ObjectID]error // keyed by exercise id
}

func newFakeRoutineSetRepo() *fakeRoutineSetRepo {
	return &fakeRoutineSetRepo{
		sets:       make(map[rexKey][]domain.Set),
		replaceErr: make(map[primitive.ObjectID]error),
	}
}

func (f *fakeRoutineSetRepo) ListByRoutineID(_ context.Context, routineID primitive.ObjectID, exerciseIDs []primitive.ObjectID) ([]domain.RoutineSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RoutineSet
	for _, exerciseID := range exerciseIDs {
		for pos, set := range f.sets[rexKey{routineID, exerciseID}] {
			out = append(out, domain.RoutineSet{
				ID:         primitive.NewObjectID(),
				RoutineID:  routineID,
				ExerciseID: exerciseID,
				Position:   pos,
				Set:        set,
			})
		}
	}
	return out, nil
}

func (f *fakeRoutineSetRepo) ReplaceForExercise(_ context.Context, routineID, exerciseID primitive.ObjectID, sets []domain.Set) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.replaceErr[exerciseID]; err != nil {
		return err
	}
	stored := make([]domain.Set, 0, len(sets))
	for _, set := range sets {
		stored = append(stored, materializedSet(set))
	}
	f.sets[rexKey{routineID, exerciseID}] = stored
	return nil
}

// materializedSet mirrors what the Mongo repository persists: explicit zeros
// for unset numerics, no completion flag, normal set type by default.
func materializedSet(s domain.Set) domain.Set {
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

func (f *fakeRoutineSetRepo) DeleteByRoutineID(_ context.Context, routineID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.sets {
		if key.routineID == routineID {
			delete(f.sets, key)
		}
	}
	return nil
}

type fakeWorkoutRepo struct {
	mu        sync.Mutex
	workouts  []domain.Workout
	createErr error
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{}
}

func (f *fakeWorkoutRepo) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return primitive.NilObjectID, f.createErr
	}
	id := primitive.NewObjectID()
	stored := *workout
	stored.ID = id
	f.workouts = append(f.workouts, stored)
	return id, nil
}

func (f *fakeWorkoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.workouts {
		if f.workouts[i].ID == id {
			copied := f.workouts[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeWorkoutRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Workout
	for _, w := range f.workouts {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWorkoutRepo) UpdateTitle(_ context.Context, id primitive.ObjectID, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.workouts {
		if f.workouts[i].ID == id {
			f.workouts[i].Title = title
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeWorkoutRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.workouts)
}

type fakeExerciseRepo struct {
	mu        sync.Mutex
	exercises map[primitive.ObjectID]*domain.Exercise
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: make(map[primitive.ObjectID]*domain.Exercise)}
}

func (f *fakeExerciseRepo) add(name string, exerciseType domain.ExerciseType) primitive.ObjectID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	f.exercises[id] = &domain.Exercise{ID: id, Name: name, Type: exerciseType}
	return id
}

func (f *fakeExerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *exercise
	stored.ID = id
	f.exercises[id] = &stored
	return id, nil
}

func (f *fakeExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	exercise, ok := f.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *exercise
	return &copied, nil
}

func (f *fakeExerciseRepo) GetMetaByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.ExerciseMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ExerciseMeta
	for _, id := range ids {
		if exercise, ok := f.exercises[id]; ok {
			out = append(out, domain.ExerciseMeta{ID: exercise.ID, Name: exercise.Name, Type: exercise.Type})
		}
	}
	return out, nil
}

func (f *fakeExerciseRepo) GetAll(_ context.Context) ([]domain.Exercise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Exercise
	for _, exercise := range f.exercises {
		out = append(out, *exercise)
	}
	return out, nil
}

func (f *fakeExerciseRepo) Update(_ context.Context, exercise *domain.Exercise) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *exercise
	f.exercises[exercise.ID] = &stored
	return nil
}

func (f *fakeExerciseRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.exercises, id)
	return nil
}

// testStore bundles the fakes with a Store wired over them.
type testStore struct {
	Store
	routines         *fakeRoutineRepo
	routineExercises *fakeRoutineExerciseRepo
	routineSets      *fakeRoutineSetRepo
	workouts         *fakeWorkoutRepo
	exercises        *fakeExerciseRepo
}

func newTestStore() *testStore {
	ts := &testStore{
		routines:         newFakeRoutineRepo(),
		routineExercises: newFakeRoutineExerciseRepo(),
		routineSets:      newFakeRoutineSetRepo(),
		workouts:         newFakeWorkoutRepo(),
		exercises:        newFakeExerciseRepo(),
	}
	ts.Store = Store{
		Routines:         ts.routines,
		RoutineExercises: ts.routineExercises,
		RoutineSets:      ts.routineSets,
		Workouts:         ts.workouts,
		Exercises:        ts.exercises,
	}
	return ts
}

// seedRoutine persists a routine with one configuration row and set list per
// exercise, in the order given.
func (ts *testStore) seedRoutine(userID primitive.ObjectID, name string, exercises []seededExercise) primitive.ObjectID {
	routineID, _ := ts.routines.Create(context.Background(), &domain.Routine{
		UserID: &userID,
		Name:   name,
	})
	for pos, ex := range exercises {
		repsType := ex.repsType
		if repsType == "" {
			repsType = domain.RepsTypeFixed
		}
		_ = ts.routineExercises.Upsert(context.Background(), &domain.RoutineExercise{
			RoutineID:        routineID,
			ExerciseID:       ex.id,
			RestTimerSeconds: ex.restSeconds,
			Unit:             domain.UnitKg,
			RepsType:         repsType,
			Position:         pos,
		})
		_ = ts.routineSets.ReplaceForExercise(context.Background(), routineID, ex.id, ex.sets)
	}
	return routineID
}

type seededExercise struct {
	id          primitive.ObjectID
	restSeconds int
	repsType    domain.RepsType
	sets        []domain.Set
}
