package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// XPTransaction records a single XP award for auditing. The reason is a
// free-text label and is never parsed for logic.
type XPTransaction struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Points    int                `bson:"points" json:"points"`
	Reason    string             `bson:"reason" json:"reason"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
