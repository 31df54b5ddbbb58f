package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Content is a study material entry in the catalog.
type Content struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Subject     string             `bson:"subject" json:"subject"`
	Class       int                `bson:"class" json:"class"`
	Board       string             `bson:"board" json:"board"`
	Chapter     string             `bson:"chapter" json:"chapter"`
	Topic       string             `bson:"topic,omitempty" json:"topic,omitempty"`
	ContentType string             `bson:"contentType" json:"contentType"` // video, pdf, notes, quiz
	StoragePath string             `bson:"storagePath" json:"-"`
	IsPremium   bool               `bson:"isPremium" json:"isPremium"`
	Views       int                `bson:"views" json:"views"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ContentURL is a computed-on-read projection of the delivery URL for the
// stored asset; the path itself is never exposed.
func (c *Content) ContentURL(cdnBase string) string {
	if c.StoragePath == "" {
		return ""
	}
	return cdnBase + "/" + c.StoragePath
}
