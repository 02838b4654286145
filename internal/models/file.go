package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoredFile describes an uploaded blob.
type StoredFile struct {
	ID          primitive.ObjectID
	Filename    string
	ContentType string
	Size        int64
}

// URL is the public reference stored on users.
func (f StoredFile) URL() string {
	return "/files/" + f.ID.Hex()
}
