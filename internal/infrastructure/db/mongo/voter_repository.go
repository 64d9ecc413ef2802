package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/securevote/election-system/internal/core/domain"
)

const voterCollection = "voters"

// VoterRepository implements ports.VoterRepository on MongoDB. The unique
// indexes created by EnsureIndexes are the authoritative uniqueness guard; the
// repository only translates their violations into per-field domain errors.
type VoterRepository struct {
	coll *mongo.Collection
}

func NewVoterRepository(db *mongo.Database) *VoterRepository {
	return &VoterRepository{coll: db.Collection(voterCollection)}
}

type voterDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	FirstName    string             `bson:"first_name"`
	LastName     string             `bson:"last_name"`
	Email        string             `bson:"email"`
	Mobile       string             `bson:"mobile"`
	NationalID   string             `bson:"national_id"`
	VoterID      string             `bson:"voter_id"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	Gender       string             `bson:"gender,omitempty"`
	DateOfBirth  time.Time          `bson:"date_of_birth"`
	Embedding    []float64          `bson:"embedding"`
	HasVoted     bool               `bson:"has_voted"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func toDoc(v *domain.Voter) voterDoc {
	return voterDoc{
		FirstName:    v.FirstName,
		LastName:     v.LastName,
		Email:        v.Email,
		Mobile:       v.Mobile,
		NationalID:   v.NationalID,
		VoterID:      v.VoterID,
		PasswordHash: v.PasswordHash,
		Role:         v.Role,
		Gender:       v.Gender,
		DateOfBirth:  v.DateOfBirth,
		Embedding:    v.Embedding,
		HasVoted:     v.HasVoted,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func (d voterDoc) toDomain() *domain.Voter {
	return &domain.Voter{
		ID:           d.ID.Hex(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		Mobile:       d.Mobile,
		NationalID:   d.NationalID,
		VoterID:      d.VoterID,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		Gender:       d.Gender,
		DateOfBirth:  d.DateOfBirth,
		Embedding:    d.Embedding,
		HasVoted:     d.HasVoted,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *VoterRepository) Create(ctx context.Context, voter *domain.Voter) (*domain.Voter, error) {
	res, err := r.coll.InsertOne(ctx, toDoc(voter))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateFieldError(err)
		}
		return nil, fmt.Errorf("insert voter: %w", err)
	}

	created := *voter
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *VoterRepository) FindByID(ctx context.Context, id string) (*domain.Voter, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrVoterNotFound
	}

	var d voterDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVoterNotFound
		}
		return nil, fmt.Errorf("find voter: %w", err)
	}
	return d.toDomain(), nil
}

func (r *VoterRepository) FindByEmailAndRole(ctx context.Context, email, role string) (*domain.Voter, error) {
	var d voterDoc
	if err := r.coll.FindOne(ctx, bson.M{"email": email, "role": role}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVoterNotFound
		}
		return nil, fmt.Errorf("find voter: %w", err)
	}
	return d.toDomain(), nil
}

// CheckUnique runs the friendly pre-checks. Empty fields are skipped so the
// caller can probe a single field (e.g. email before issuing a code).
func (r *VoterRepository) CheckUnique(ctx context.Context, email, mobile, nationalID, voterID string) error {
	checks := []struct {
		field    string
		value    string
		conflict error
	}{
		{"email", email, domain.ErrEmailTaken},
		{"mobile", mobile, domain.ErrMobileTaken},
		{"national_id", nationalID, domain.ErrNationalIDTaken},
		{"voter_id", voterID, domain.ErrVoterIDTaken},
	}

	for _, c := range checks {
		if c.value == "" {
			continue
		}
		n, err := r.coll.CountDocuments(ctx, bson.M{c.field: c.value}, options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("uniqueness check %s: %w", c.field, err)
		}
		if n > 0 {
			return c.conflict
		}
	}
	return nil
}

// MarkVoted flips has_voted false→true as a compare-and-swap: the filter
// matches only the not-voted document, so two concurrent flips cannot both
// observe a transition.
func (r *VoterRepository) MarkVoted(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrVoterNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "has_voted": false},
		bson.M{"$set": bson.M{"has_voted": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("mark voted: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("mark voted: %w", err)
		}
		if n == 0 {
			return domain.ErrVoterNotFound
		}
		return domain.ErrAlreadyVoted
	}
	return nil
}

// EnsureIndexes creates the unique indexes the enrollment invariants rely on.
func (r *VoterRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "mobile", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "national_id", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "voter_id", Value: 1}}, Options: unique},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// duplicateFieldError maps a duplicate-key error to the per-field conflict by
// the index name embedded in the server message (e.g. "index: email_1").
func duplicateFieldError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email_1"):
		return domain.ErrEmailTaken
	case strings.Contains(msg, "mobile_1"):
		return domain.ErrMobileTaken
	case strings.Contains(msg, "national_id_1"):
		return domain.ErrNationalIDTaken
	case strings.Contains(msg, "voter_id_1"):
		return domain.ErrVoterIDTaken
	}
	return fmt.Errorf("insert voter: %w", err)
}
