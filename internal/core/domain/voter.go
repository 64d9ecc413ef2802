package domain

import "time"

const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
)

// Embedding is a fixed-length face descriptor. Two embeddings of the same
// person are expected to lie within the match threshold of each other.
type Embedding []float64

// Voter is the enrolled identity record. The embedding is written exactly once
// by the enrollment pipeline and never updated afterwards.
type Voter struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	FirstName    string    `json:"first_name" bson:"first_name"`
	LastName     string    `json:"last_name" bson:"last_name"`
	Email        string    `json:"email" bson:"email"`
	Mobile       string    `json:"mobile" bson:"mobile"`
	NationalID   string    `json:"national_id" bson:"national_id"`
	VoterID      string    `json:"voter_id" bson:"voter_id"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         string    `json:"role" bson:"role"`
	Gender       string    `json:"gender,omitempty" bson:"gender,omitempty"`
	DateOfBirth  time.Time `json:"date_of_birth" bson:"date_of_birth"`
	Embedding    Embedding `json:"-" bson:"embedding"`
	HasVoted     bool      `json:"has_voted" bson:"has_voted"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// Enrolled reports whether the voter completed enrollment with a usable
// reference embedding.
func (v *Voter) Enrolled() bool {
	return len(v.Embedding) > 0
}
