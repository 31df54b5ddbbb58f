package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Doubt lifecycle states.
const (
	DoubtStatusPending  = "pending"
	DoubtStatusAnswered = "answered"
	DoubtStatusResolved = "resolved"
)

// Doubt types accepted from students.
var doubtTypes = map[string]bool{
	"conceptual": true,
	"numerical":  true,
	"theory":     true,
	"practical":  true,
	"other":      true,
}

// DoubtAnswer is a single answer attached to a doubt.
type DoubtAnswer struct {
	AnsweredBy primitive.ObjectID `bson:"answeredBy,omitempty" json:"answeredBy,omitempty"`
	AnswerType string             `bson:"answerType" json:"answerType"` // ai, teacher, admin
	Content    string             `bson:"content" json:"content"`
	Helpful    int                `bson:"helpful" json:"helpful"`
	NotHelpful int                `bson:"notHelpful" json:"notHelpful"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// Doubt is a question asked by a student.
type Doubt struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Student     primitive.ObjectID `bson:"student" json:"student"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Subject     string             `bson:"subject" json:"subject"`
	Class       int                `bson:"class" json:"class"`
	Chapter     string             `bson:"chapter" json:"chapter"`
	Topic       string             `bson:"topic,omitempty" json:"topic,omitempty"`
	Type        string             `bson:"type" json:"type"`
	Status      string             `bson:"status" json:"status"`
	Answers     []DoubtAnswer      `bson:"answers" json:"answers"`
	ResolvedAt  time.Time          `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CreateDoubtRequest is the payload for submitting a doubt.
type CreateDoubtRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Subject     string `json:"subject"`
	Chapter     string `json:"chapter"`
	Topic       string `json:"topic"`
	Type        string `json:"type"`
}

// Validate checks every field and reports all violations at once.
func (r *CreateDoubtRequest) Validate() error {
	var ve ValidationError
	if l := len(strings.TrimSpace(r.Title)); l < 5 || l > 200 {
		ve.add("title", "title must be between 5 and 200 characters")
	}
	if l := len(strings.TrimSpace(r.Description)); l < 10 || l > 2000 {
		ve.add("description", "description must be between 10 and 2000 characters")
	}
	if l := len(strings.TrimSpace(r.Subject)); l < 2 || l > 50 {
		ve.add("subject", "subject is required")
	}
	if l := len(strings.TrimSpace(r.Chapter)); l < 2 || l > 100 {
		ve.add("chapter", "chapter is required")
	}
	if !doubtTypes[r.Type] {
		ve.add("type", "invalid doubt type")
	}
	return ve.orNil()
}

// AddAnswer appends an answer and moves a pending doubt to answered.
func (d *Doubt) AddAnswer(answer DoubtAnswer) {
	d.Answers = append(d.Answers, answer)
	if d.Status == DoubtStatusPending {
		d.Status = DoubtStatusAnswered
	}
}

// MarkResolved closes the doubt.
func (d *Doubt) MarkResolved(now time.Time) {
	d.Status = DoubtStatusResolved
	d.ResolvedAt = now
}
