package mongo

import (
	"context"
	"errors"
	"time"

	"mstolbov/liftlog/internal/domain"
	"mstolbov/liftlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const routineExerciseCollectionName = "routine_exercises"

// mongoRoutineExerciseRepository implements repository.RoutineExerciseRepository
type mongoRoutineExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoRoutineExerciseRepository creates a new RoutineExercise repository backed by MongoDB.
func NewMongoRoutineExerciseRepository(db *mongo.Database) repository.RoutineExerciseRepository {
	return &mongoRoutineExerciseRepository{
		collection: db.Collection(routineExerciseCollectionName),
	}
}

// ListByRoutineID retrieves the per-exercise configuration rows of a routine,
// in display order.
func (r *mongoRoutineExerciseRepository) ListByRoutineID(ctx context.Context, routineID primitive.ObjectID) ([]domain.RoutineExercise, error) {
	filter := bson.M{"routineId": routineID}
	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []domain.RoutineExercise
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Upsert inserts the configuration row for (routineId, exerciseId) or updates
// it in place when one already exists. The unique compound index guarantees
// at most one row per pair even under concurrent saves.
func (r *mongoRoutineExerciseRepository) Upsert(ctx context.Context, rex *domain.RoutineExercise) error {
	if rex.RoutineID == primitive.NilObjectID || rex.ExerciseID == primitive.NilObjectID {
		return errors.New("routine ID and exercise ID are required for upsert")
	}

	filter := bson.M{"routineId": rex.RoutineID, "exerciseId": rex.ExerciseID}
	updateDoc := bson.M{
		"$set": bson.M{
			"notes":            rex.Notes,
			"restTimerSeconds": rex.RestTimerSeconds,
			"unit":             rex.Unit,
			"repsType":         rex.RepsType,
			"position":         rex.Position,
			"updatedAt":        time.Now().UTC(),
		},
		"$setOnInsert": bson.M{
			"routineId":  rex.RoutineID,
			"exerciseId": rex.ExerciseID,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, updateDoc, options.Update().SetUpsert(true))
	return err
}

// DeleteByRoutineID removes every configuration row of a routine.
func (r *mongoRoutineExerciseRepository) DeleteByRoutineID(ctx context.Context, routineID primitive.ObjectID) error {
	if routineID == primitive.NilObjectID {
		return errors.New("routine ID is required for deletion")
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"routineId": routineID})
	return err
}

// EnsureRoutineExerciseIndexes creates necessary indexes. Call during startup.
func EnsureRoutineExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "routineId", Value: 1}, {Key: "exerciseId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
