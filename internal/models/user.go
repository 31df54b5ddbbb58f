package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionTier identifies a subscription plan.
type SubscriptionTier string

const (
	TierDemo    SubscriptionTier = "demo"
	TierBasic   SubscriptionTier = "basic"
	TierPremium SubscriptionTier = "premium"
)

// Education boards supported by the platform.
const (
	BoardCBSE  = "CBSE"
	BoardICSE  = "ICSE"
	BoardState = "State"
)

// User roles.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// DemoPeriod is the free trial window granted at registration.
const DemoPeriod = 7 * 24 * time.Hour

// XPPerLevel is the amount of XP that spans one level.
const XPPerLevel = 100

// Subscription holds the plan state stored on a user. The isActive flag is a
// stored switch separate from time-based expiry; both must be consulted to
// decide whether the subscription is usable right now.
type Subscription struct {
	Type      SubscriptionTier `bson:"type" json:"type"`
	StartDate time.Time        `bson:"startDate" json:"startDate"`
	EndDate   time.Time        `bson:"endDate" json:"endDate"`
	IsActive  bool             `bson:"isActive" json:"isActive"`
}

// Badge is an achievement earned by a user. Badges are append-only.
type Badge struct {
	Name        string    `bson:"name" json:"name"`
	EarnedAt    time.Time `bson:"earnedAt" json:"earnedAt"`
	Description string    `bson:"description" json:"description"`
}

// CompletedChapter records the best result for a (subject, chapter) pair.
type CompletedChapter struct {
	Subject     string    `bson:"subject" json:"subject"`
	Chapter     string    `bson:"chapter" json:"chapter"`
	CompletedAt time.Time `bson:"completedAt" json:"completedAt"`
	Score       float64   `bson:"score" json:"score"`
}

// Bookmark marks a (subject, chapter, topic) the user saved for later.
type Bookmark struct {
	Subject      string    `bson:"subject" json:"subject"`
	Chapter      string    `bson:"chapter" json:"chapter"`
	Topic        string    `bson:"topic" json:"topic"`
	BookmarkedAt time.Time `bson:"bookmarkedAt" json:"bookmarkedAt"`
}

// Progress holds the gamified progression state of a user.
type Progress struct {
	TotalXP           int                `bson:"totalXP" json:"totalXP"`
	CurrentLevel      int                `bson:"currentLevel" json:"currentLevel"`
	Badges            []Badge            `bson:"badges" json:"badges"`
	CompletedChapters []CompletedChapter `bson:"completedChapters" json:"completedChapters"`
	Bookmarks         []Bookmark         `bson:"bookmarks" json:"bookmarks"`
}

// Stats holds activity counters for a user.
type Stats struct {
	TotalTestsAttempted int       `bson:"totalTestsAttempted" json:"totalTestsAttempted"`
	TotalDoubtsAsked    int       `bson:"totalDoubtsAsked" json:"totalDoubtsAsked"`
	AverageScore        float64   `bson:"averageScore" json:"averageScore"`
	StudyStreak         int       `bson:"studyStreak" json:"studyStreak"`
	LastActiveDate      time.Time `bson:"lastActiveDate" json:"lastActiveDate"`
}

// User represents a student account in the system.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Password     string             `bson:"password" json:"-"`
	Name         string             `bson:"name" json:"name"`
	Class        int                `bson:"class" json:"class"`
	Board        string             `bson:"board" json:"board"`
	State        string             `bson:"state,omitempty" json:"state,omitempty"`
	Subscription Subscription       `bson:"subscription" json:"subscription"`
	Progress     Progress           `bson:"progress" json:"progress"`
	Stats        Stats              `bson:"stats" json:"stats"`
	Role         string             `bson:"role" json:"role"`
	IsVerified   bool               `bson:"isVerified" json:"isVerified"`
	LastLogin    time.Time          `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewDemoSubscription returns the trial subscription granted at registration.
func NewDemoSubscription(now time.Time) Subscription {
	return Subscription{
		Type:      TierDemo,
		StartDate: now,
		EndDate:   now.Add(DemoPeriod),
		IsActive:  true,
	}
}

// HasActiveSubscription reports whether the subscription is usable at the
// given instant. The comparison against EndDate is strict: a subscription
// ending exactly now is already expired.
func (u *User) HasActiveSubscription(now time.Time) bool {
	return u.Subscription.IsActive && u.Subscription.EndDate.After(now)
}

// RemainingDays returns the number of subscription days left, rounded up.
// Returns 0 whenever the subscription is not active.
func (u *User) RemainingDays(now time.Time) int {
	if !u.HasActiveSubscription(now) {
		return 0
	}
	remaining := u.Subscription.EndDate.Sub(now)
	days := int((remaining + 24*time.Hour - 1) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days
}

// SubscriptionStatus is a computed-on-read projection, never stored.
func (u *User) SubscriptionStatus(now time.Time) string {
	if !u.Subscription.IsActive {
		return "inactive"
	}
	if !u.Subscription.EndDate.After(now) {
		return "expired"
	}
	return "active"
}

// AddXP applies an XP award to the progression state and recomputes the
// level. Non-positive awards are ignored. When the recomputed level crosses
// into a new level that is a multiple of 5 (and greater than 1), a milestone
// badge is appended; only the landed-on level is checked, so a single large
// award never backfills intermediate milestones. Returns the appended badge,
// or nil.
func (u *User) AddXP(points int, now time.Time) *Badge {
	if points <= 0 {
		return nil
	}
	previousLevel := u.Progress.CurrentLevel
	u.Progress.TotalXP += points
	u.Progress.CurrentLevel = u.Progress.TotalXP/XPPerLevel + 1

	level := u.Progress.CurrentLevel
	if level > previousLevel && level > 1 && level%5 == 0 {
		badge := Badge{
			Name:        fmt.Sprintf("Level %d Achiever", level),
			EarnedAt:    now,
			Description: fmt.Sprintf("Reached level %d!", level),
		}
		u.Progress.Badges = append(u.Progress.Badges, badge)
		return &u.Progress.Badges[len(u.Progress.Badges)-1]
	}
	return nil
}

// HasBookmark reports whether a bookmark exists for the compound key.
func (u *User) HasBookmark(subject, chapter, topic string) bool {
	for _, b := range u.Progress.Bookmarks {
		if b.Subject == subject && b.Chapter == chapter && b.Topic == topic {
			return true
		}
	}
	return false
}

// AddBookmark stores a bookmark for the compound (subject, chapter, topic)
// key. Re-adding an existing key refreshes its timestamp instead of creating
// a duplicate. Returns true when a new bookmark was created.
func (u *User) AddBookmark(subject, chapter, topic string, now time.Time) bool {
	for i, b := range u.Progress.Bookmarks {
		if b.Subject == subject && b.Chapter == chapter && b.Topic == topic {
			u.Progress.Bookmarks[i].BookmarkedAt = now
			return false
		}
	}
	u.Progress.Bookmarks = append(u.Progress.Bookmarks, Bookmark{
		Subject:      subject,
		Chapter:      chapter,
		Topic:        topic,
		BookmarkedAt: now,
	})
	return true
}

// RemoveBookmark deletes the bookmark for the compound key, if present.
// Returns true when a bookmark was removed.
func (u *User) RemoveBookmark(subject, chapter, topic string) bool {
	for i, b := range u.Progress.Bookmarks {
		if b.Subject == subject && b.Chapter == chapter && b.Topic == topic {
			u.Progress.Bookmarks = append(u.Progress.Bookmarks[:i], u.Progress.Bookmarks[i+1:]...)
			return true
		}
	}
	return false
}

// CompletionResult describes the effect of recording a chapter completion.
type CompletionResult int

const (
	// CompletionNone means an entry already existed with an equal or better score.
	CompletionNone CompletionResult = iota
	// CompletionFirst means the chapter was completed for the first time.
	CompletionFirst
	// CompletionImproved means an existing entry was updated with a higher score.
	CompletionImproved
)

// CompleteChapter records a chapter completion keyed by (subject, chapter).
// The first completion creates an entry; afterwards only a strictly higher
// score overwrites the stored best.
func (u *User) CompleteChapter(subject, chapter string, score float64, now time.Time) CompletionResult {
	for i, c := range u.Progress.CompletedChapters {
		if c.Subject == subject && c.Chapter == chapter {
			if score > c.Score {
				u.Progress.CompletedChapters[i].Score = score
				u.Progress.CompletedChapters[i].CompletedAt = now
				return CompletionImproved
			}
			return CompletionNone
		}
	}
	u.Progress.CompletedChapters = append(u.Progress.CompletedChapters, CompletedChapter{
		Subject:     subject,
		Chapter:     chapter,
		CompletedAt: now,
		Score:       score,
	})
	return CompletionFirst
}

// TouchActivity records activity at the given instant and maintains the
// study streak: a second hit on the same day changes nothing, activity on
// the day after the previous one extends the streak, and a longer gap
// restarts it at 1. LastActiveDate comes back from storage as a UTC
// instant, so it is converted into now's location first; otherwise the
// two midnights being compared belong to different zones and never match.
func (u *User) TouchActivity(now time.Time) {
	today := StartOfDay(now)
	lastDay := StartOfDay(u.Stats.LastActiveDate.In(now.Location()))

	switch {
	case u.Stats.LastActiveDate.IsZero():
		u.Stats.StudyStreak = 1
	case lastDay.Equal(today):
		// already counted today
	case lastDay.Equal(today.AddDate(0, 0, -1)):
		u.Stats.StudyStreak++
	default:
		u.Stats.StudyStreak = 1
	}
	u.Stats.LastActiveDate = now
}

// RecordTestScore folds a new test score into the running average and bumps
// the attempt counter.
func (u *User) RecordTestScore(score float64) {
	total := u.Stats.AverageScore * float64(u.Stats.TotalTestsAttempted)
	u.Stats.TotalTestsAttempted++
	u.Stats.AverageScore = (total + score) / float64(u.Stats.TotalTestsAttempted)
}

// StartOfDay truncates t to midnight in t's location. Quota and streak day
// boundaries all go through this helper so the day definition lives in one
// place.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
