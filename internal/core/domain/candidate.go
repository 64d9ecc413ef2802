package domain

import "time"

// ImageBlob stores a small image inline with its MIME type.
type ImageBlob struct {
	Data        []byte `json:"-" bson:"data"`
	ContentType string `json:"content_type" bson:"content_type"`
}

// Candidate is a ballot option managed by admins.
type Candidate struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name"`
	Party       string    `json:"party" bson:"party"`
	Email       string    `json:"email,omitempty" bson:"email,omitempty"`
	Mobile      string    `json:"mobile,omitempty" bson:"mobile,omitempty"`
	Agenda      string    `json:"agenda,omitempty" bson:"agenda,omitempty"`
	Photo       ImageBlob `json:"photo" bson:"photo"`
	PartySymbol ImageBlob `json:"party_symbol" bson:"party_symbol"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
