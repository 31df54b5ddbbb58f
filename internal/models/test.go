package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestQuestion is a single question inside a test.
type TestQuestion struct {
	Question      string   `bson:"question" json:"question"`
	Options       []string `bson:"options" json:"options"`
	CorrectOption int      `bson:"correctOption" json:"-"`
	Marks         int      `bson:"marks" json:"marks"`
}

// Test is a published assessment for a class/board.
type Test struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Subject     string             `bson:"subject" json:"subject"`
	Class       int                `bson:"class" json:"class"`
	Board       string             `bson:"board" json:"board"`
	Questions   []TestQuestion     `bson:"questions" json:"questions"`
	Duration    int                `bson:"duration" json:"duration"` // minutes
	IsPublished bool               `bson:"isPublished" json:"isPublished"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TestAttempt records one submission of a test by a student.
type TestAttempt struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Test      primitive.ObjectID `bson:"test" json:"test"`
	Student   primitive.ObjectID `bson:"student" json:"student"`
	Answers   []int              `bson:"answers" json:"answers"`
	Score     float64            `bson:"score" json:"score"` // percentage
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Grade scores a set of answers against the test. Answers beyond the
// question count are ignored; missing answers count as wrong.
func (t *Test) Grade(answers []int) float64 {
	totalMarks := 0
	earned := 0
	for i, q := range t.Questions {
		totalMarks += q.Marks
		if i < len(answers) && answers[i] == q.CorrectOption {
			earned += q.Marks
		}
	}
	if totalMarks == 0 {
		return 0
	}
	return float64(earned) / float64(totalMarks) * 100
}
