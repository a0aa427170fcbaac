package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"mstolbov/liftlog/internal/domain"
	"mstolbov/liftlog/internal/repository"
	"mstolbov/liftlog/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrValidationFailed = errors.New("exercise validation failed")
	ErrMediaURLError    = errors.New("failed to generate media URL")
)

// MediaUploadResponse carries the presigned URL a client PUTs demo media to,
// plus the object key it must report back on confirm.
type MediaUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// --- Service Interface ---
type ExerciseService interface {
	CreateExercise(ctx context.Context, name string, exerciseType domain.ExerciseType, muscleGroup, description string) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	GetAllExercises(ctx context.Context) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, exerciseID primitive.ObjectID, name string, exerciseType domain.ExerciseType, muscleGroup, description string) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, exerciseID primitive.ObjectID) error

	// Demo media upload flow: request a presigned PUT URL, upload out of
	// band, then confirm with the object key to attach it to the exercise.
	RequestMediaUploadURL(ctx context.Context, exerciseID primitive.ObjectID, contentType string) (*MediaUploadResponse, error)
	ConfirmMediaUpload(ctx context.Context, exerciseID primitive.ObjectID, objectKey string) (*domain.Exercise, error)
	GetMediaDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, fileStorage storage.FileStorage) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		fileStorage:  fileStorage,
	}
}

// CreateExercise adds a new catalog exercise.
func (s *exerciseService) CreateExercise(ctx context.Context, name string, exerciseType domain.ExerciseType, muscleGroup, description string) (*domain.Exercise, error) {
	if name == "" || !validExerciseType(exerciseType) {
		return nil, ErrValidationFailed
	}

	exercise := &domain.Exercise{
		Name:        name,
		Type:        exerciseType,
		MuscleGroup: muscleGroup,
		Description: description,
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	// Fetch again so CreatedAt/UpdatedAt come back populated.
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// GetExerciseByID retrieves a single catalog exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// GetAllExercises retrieves the full catalog.
func (s *exerciseService) GetAllExercises(ctx context.Context) ([]domain.Exercise, error) {
	return s.exerciseRepo.GetAll(ctx)
}

// UpdateExercise modifies a catalog exercise's editable fields.
func (s *exerciseService) UpdateExercise(ctx context.Context, exerciseID primitive.ObjectID, name string, exerciseType domain.ExerciseType, muscleGroup, description string) (*domain.Exercise, error) {
	if name == "" || !validExerciseType(exerciseType) {
		return nil, ErrValidationFailed
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	exercise.Name = name
	exercise.Type = exerciseType
	exercise.MuscleGroup = muscleGroup
	exercise.Description = description

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// DeleteExercise removes a catalog exercise and its stored media, if any.
func (s *exerciseService) DeleteExercise(ctx context.Context, exerciseID primitive.ObjectID) error {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}

	if err := s.exerciseRepo.Delete(ctx, exerciseID); err != nil {
		return err
	}

	if exercise.MediaObjectKey != "" && s.fileStorage != nil {
		// The catalog row is gone; losing the orphaned object is acceptable.
		_ = s.fileStorage.DeleteObject(ctx, exercise.MediaObjectKey)
	}
	return nil
}

// RequestMediaUploadURL generates a presigned PUT URL for an exercise's demo
// image or video.
func (s *exerciseService) RequestMediaUploadURL(ctx context.Context, exerciseID primitive.ObjectID, contentType string) (*MediaUploadResponse, error) {
	if s.fileStorage == nil {
		return nil, ErrMediaURLError
	}
	lower := strings.ToLower(contentType)
	if !strings.HasPrefix(lower, "image/") && !strings.HasPrefix(lower, "video/") {
		return nil, ErrValidationFailed
	}

	if _, err := s.GetExerciseByID(ctx, exerciseID); err != nil {
		return nil, err
	}

	objectKey := path.Join("exercises", exerciseID.Hex(), uuid.NewString())
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaURLError, err)
	}

	return &MediaUploadResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmMediaUpload attaches a previously uploaded object to the exercise,
// replacing (and deleting) the old media if there was one.
func (s *exerciseService) ConfirmMediaUpload(ctx context.Context, exerciseID primitive.ObjectID, objectKey string) (*domain.Exercise, error) {
	if objectKey == "" {
		return nil, ErrValidationFailed
	}

	exercise, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	oldKey := exercise.MediaObjectKey
	exercise.MediaObjectKey = objectKey
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, err
	}

	if oldKey != "" && oldKey != objectKey && s.fileStorage != nil {
		_ = s.fileStorage.DeleteObject(ctx, oldKey)
	}
	return exercise, nil
}

// GetMediaDownloadURL returns a temporary URL for viewing an exercise's
// demo media. Empty string when the exercise has none.
func (s *exerciseService) GetMediaDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error) {
	exercise, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return "", err
	}
	if exercise.MediaObjectKey == "" || s.fileStorage == nil {
		return "", nil
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.MediaObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaURLError, err)
	}
	return url, nil
}

func validExerciseType(t domain.ExerciseType) bool {
	switch t {
	case domain.ExerciseTypeWeighted, domain.ExerciseTypeBodyweight, domain.ExerciseTypeDuration:
		return true
	}
	return false
}
