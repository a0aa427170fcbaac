package mongo

import (
	"context"
	"errors"
	"fmt"

	"mstolbov/liftlog/internal/domain"
	"mstolbov/liftlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const routineSetCollectionName = "routine_sets"

// mongoRoutineSetRepository implements repository.RoutineSetRepository
type mongoRoutineSetRepository struct {
	collection *mongo.Collection
}

// NewMongoRoutineSetRepository creates a new RoutineSet repository backed by MongoDB.
func NewMongoRoutineSetRepository(db *mongo.Database) repository.RoutineSetRepository {
	return &mongoRoutineSetRepository{
		collection: db.Collection(routineSetCollectionName),
	}
}

// ListByRoutineID retrieves persisted target sets for a routine, optionally
// narrowed to the given exercise ids, ordered by exercise and position.
func (r *mongoRoutineSetRepository) ListByRoutineID(ctx context.Context, routineID primitive.ObjectID, exerciseIDs []primitive.ObjectID) ([]domain.RoutineSet, error) {
	filter := bson.M{"routineId": routineID}
	if len(exerciseIDs) > 0 {
		filter["exerciseId"] = bson.M{"$in": exerciseIDs}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "exerciseId", Value: 1}, {Key: "position", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sets []domain.RoutineSet
	if err = cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}

// ReplaceForExercise deletes every set row for (routineId, exerciseId) and
// inserts the new list in order, as one unit. Set lists are short and rows
// carry no identity worth diffing, so positional replacement avoids
// id-matching bugs around insertion, deletion and reordering.
func (r *mongoRoutineSetRepository) ReplaceForExercise(ctx context.Context, routineID, exerciseID primitive.ObjectID, sets []domain.Set) error {
	if routineID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return errors.New("routine ID and exercise ID are required")
	}

	filter := bson.M{"routineId": routineID, "exerciseId": exerciseID}
	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("deleting routine sets: %w", err)
	}

	if len(sets) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(sets))
	for i, set := range sets {
		// Persisted rows always carry explicit numbers; completion is a
		// session-only flag and is never stored on a routine.
		row := domain.RoutineSet{
			ID:         primitive.NewObjectID(),
			RoutineID:  routineID,
			ExerciseID: exerciseID,
			Position:   i,
			Set:        materialize(set),
		}
		docs = append(docs, row)
	}

	if _, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("inserting routine sets: %w", err)
	}
	return nil
}

// materialize coerces unset numeric fields to explicit zeros for storage.
func materialize(s domain.Set) domain.Set {
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

// DeleteByRoutineID removes every set row of a routine.
func (r *mongoRoutineSetRepository) DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) error {
	if routineID == primitive.NilObjectID {
		return errors.New("routine ID is required for deletion")
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"routineId": routineID})
	return err
}

// EnsureRoutineSetIndexes creates necessary indexes. Call during startup.
func EnsureRoutineSetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "routineId", Value: 1}, {Key: "exerciseId", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
