package domain

import "time"

// Ballot records a single cast vote. The store enforces a unique index on
// VoterID, which is the gate that makes double voting impossible: the insert
// either lands once or fails with a duplicate-key error.
type Ballot struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	VoterID       string    `json:"voter_id" bson:"voter_id"`
	VoterEmail    string    `json:"voter_email" bson:"voter_email"`
	CandidateID   string    `json:"candidate_id" bson:"candidate_id"`
	CandidateName string    `json:"candidate_name" bson:"candidate_name"`
	CastAt        time.Time `json:"cast_at" bson:"cast_at"`
}

// TallyEntry is the per-candidate vote count produced by the ledger.
type TallyEntry struct {
	CandidateID string `json:"candidate_id" bson:"_id"`
	Votes       int64  `json:"votes" bson:"votes"`
}

// CandidateResult is a tally entry joined with candidate details for the
// public results view.
type CandidateResult struct {
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name"`
	Party       string  `json:"party"`
	Votes       int64   `json:"votes"`
	Percentage  float64 `json:"percentage"`
	Status      string  `json:"status,omitempty"`
}
