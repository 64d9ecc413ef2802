package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/securevote/election-system/internal/core/domain"
)

const ballotCollection = "ballots"

// BallotRepository implements ports.BallotRepository on MongoDB. The unique
// index on voter_id is the single-vote gate: under any interleaving of
// concurrent CastVote calls for the same voter, exactly one insert succeeds.
type BallotRepository struct {
	coll *mongo.Collection
}

func NewBallotRepository(db *mongo.Database) *BallotRepository {
	return &BallotRepository{coll: db.Collection(ballotCollection)}
}

type ballotDoc struct {
	ID            string    `bson:"_id"`
	VoterID       string    `bson:"voter_id"`
	VoterEmail    string    `bson:"voter_email"`
	CandidateID   string    `bson:"candidate_id"`
	CandidateName string    `bson:"candidate_name"`
	CastAt        time.Time `bson:"cast_at"`
}

func (r *BallotRepository) Create(ctx context.Context, b *domain.Ballot) error {
	doc := ballotDoc{
		ID:            b.ID,
		VoterID:       b.VoterID,
		VoterEmail:    b.VoterEmail,
		CandidateID:   b.CandidateID,
		CandidateName: b.CandidateName,
		CastAt:        b.CastAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyVoted
		}
		return fmt.Errorf("insert ballot: %w", err)
	}
	return nil
}

func (r *BallotRepository) FindByVoterID(ctx context.Context, voterID string) (*domain.Ballot, error) {
	var d ballotDoc
	if err := r.coll.FindOne(ctx, bson.M{"voter_id": voterID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVoterNotFound
		}
		return nil, fmt.Errorf("find ballot: %w", err)
	}
	return &domain.Ballot{
		ID:            d.ID,
		VoterID:       d.VoterID,
		VoterEmail:    d.VoterEmail,
		CandidateID:   d.CandidateID,
		CandidateName: d.CandidateName,
		CastAt:        d.CastAt,
	}, nil
}

// Tally groups ballots by candidate. Pure read.
func (r *BallotRepository) Tally(ctx context.Context) ([]domain.TallyEntry, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$candidate_id"},
			{Key: "votes", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("tally: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []domain.TallyEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("tally decode: %w", err)
	}
	return entries, nil
}

// EnsureIndexes creates the unique voter_id index the ledger relies on.
func (r *BallotRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "voter_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
