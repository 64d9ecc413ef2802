package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/securevote/election-system/internal/core/domain"
)

const candidateCollection = "candidates"

// CandidateRepository implements ports.CandidateRepository on MongoDB.
type CandidateRepository struct {
	coll *mongo.Collection
}

func NewCandidateRepository(db *mongo.Database) *CandidateRepository {
	return &CandidateRepository{coll: db.Collection(candidateCollection)}
}

func (r *CandidateRepository) Create(ctx context.Context, c *domain.Candidate) (*domain.Candidate, error) {
	created := *c
	if created.ID == "" {
		created.ID = uuid.NewString()
	}

	if _, err := r.coll.InsertOne(ctx, created); err != nil {
		return nil, fmt.Errorf("insert candidate: %w", err)
	}
	return &created, nil
}

func (r *CandidateRepository) FindByID(ctx context.Context, id string) (*domain.Candidate, error) {
	var c domain.Candidate
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("find candidate: %w", err)
	}
	return &c, nil
}

func (r *CandidateRepository) List(ctx context.Context) ([]*domain.Candidate, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer cursor.Close(ctx)

	var candidates []*domain.Candidate
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	return candidates, nil
}

func (r *CandidateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCandidateNotFound
	}
	return nil
}
