package services

import (
	"context"
	"errors"
	"time"

	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository stand-ins shared by the service tests.

type fakeUserRepo struct {
	users       map[primitive.ObjectID]*models.User
	failUpdates bool
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	for _, u := range r.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if r.failUpdates {
		return errors.New("update failed")
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) IncrementXP(_ context.Context, id primitive.ObjectID, points int) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	user.Progress.TotalXP += points
	snapshot := *user
	return &snapshot, nil
}

func (r *fakeUserRepo) UpdateProgressDerived(_ context.Context, id primitive.ObjectID, level int, badge *models.Badge) error {
	user, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Progress.CurrentLevel = level
	if badge != nil {
		user.Progress.Badges = append(user.Progress.Badges, *badge)
	}
	return nil
}

func (r *fakeUserRepo) UpdateProgress(_ context.Context, id primitive.ObjectID, progress models.Progress) error {
	if r.failUpdates {
		return errors.New("update failed")
	}
	user, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Progress = progress
	return nil
}

func (r *fakeUserRepo) UpdateStats(_ context.Context, id primitive.ObjectID, stats models.Stats) error {
	user, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Stats = stats
	return nil
}

func (r *fakeUserRepo) Leaderboard(_ context.Context, class int, board string, limit int) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		if u.Class == class && u.Board == board {
			out = append(out, u)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) CountWithMoreXP(_ context.Context, class int, board string, totalXP int) (int64, error) {
	var count int64
	for _, u := range r.users {
		if u.Class == class && u.Board == board && u.Progress.TotalXP > totalXP {
			count++
		}
	}
	return count, nil
}

type fakeDoubtRepo struct {
	doubts     map[primitive.ObjectID]*models.Doubt
	failCreate bool
}

var _ repositories.DoubtRepository = (*fakeDoubtRepo)(nil)

func newFakeDoubtRepo() *fakeDoubtRepo {
	return &fakeDoubtRepo{doubts: map[primitive.ObjectID]*models.Doubt{}}
}

func (r *fakeDoubtRepo) Create(_ context.Context, doubt *models.Doubt) error {
	if r.failCreate {
		return errors.New("insert failed")
	}
	doubt.ID = primitive.NewObjectID()
	doubt.CreatedAt = time.Now()
	r.doubts[doubt.ID] = doubt
	return nil
}

func (r *fakeDoubtRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Doubt, error) {
	doubt, ok := r.doubts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return doubt, nil
}

func (r *fakeDoubtRepo) FindByStudent(_ context.Context, studentID primitive.ObjectID, status, subject string, page, limit int) ([]*models.Doubt, error) {
	var out []*models.Doubt
	for _, d := range r.doubts {
		if d.Student != studentID {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		if subject != "" && d.Subject != subject {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeDoubtRepo) Update(_ context.Context, doubt *models.Doubt) error {
	if _, ok := r.doubts[doubt.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.doubts[doubt.ID] = doubt
	return nil
}

func (r *fakeDoubtRepo) CountByStudentSince(_ context.Context, studentID primitive.ObjectID, since time.Time) (int64, error) {
	var count int64
	for _, d := range r.doubts {
		if d.Student == studentID && !d.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

type fakeQuotaRepo struct {
	consumed int
	released int
}

var _ repositories.DoubtQuotaRepository = (*fakeQuotaRepo)(nil)

func (r *fakeQuotaRepo) TryConsume(_ context.Context, _ primitive.ObjectID, _ time.Time, limit int) (bool, error) {
	if r.consumed >= limit {
		return false, nil
	}
	r.consumed++
	return true, nil
}

func (r *fakeQuotaRepo) Release(_ context.Context, _ primitive.ObjectID, _ time.Time) error {
	r.released++
	if r.consumed > 0 {
		r.consumed--
	}
	return nil
}

type fakeXPRepo struct {
	transactions []*models.XPTransaction
}

var _ repositories.XPTransactionRepository = (*fakeXPRepo)(nil)

func (r *fakeXPRepo) Create(_ context.Context, tx *models.XPTransaction) error {
	tx.ID = primitive.NewObjectID()
	tx.CreatedAt = time.Now()
	r.transactions = append(r.transactions, tx)
	return nil
}

func (r *fakeXPRepo) FindByUserID(_ context.Context, userID primitive.ObjectID, limit int) ([]*models.XPTransaction, error) {
	var out []*models.XPTransaction
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeContentRepo struct {
	contents map[primitive.ObjectID]*models.Content
}

var _ repositories.ContentRepository = (*fakeContentRepo)(nil)

func newFakeContentRepo(contents ...*models.Content) *fakeContentRepo {
	repo := &fakeContentRepo{contents: map[primitive.ObjectID]*models.Content{}}
	for _, c := range contents {
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		repo.contents[c.ID] = c
	}
	return repo
}

func (r *fakeContentRepo) Create(_ context.Context, content *models.Content) error {
	content.ID = primitive.NewObjectID()
	r.contents[content.ID] = content
	return nil
}

func (r *fakeContentRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Content, error) {
	content, ok := r.contents[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return content, nil
}

func (r *fakeContentRepo) FindByFilter(_ context.Context, class int, board, subject string, page, limit int) ([]*models.Content, error) {
	var out []*models.Content
	for _, c := range r.contents {
		if c.Class != class || c.Board != board {
			continue
		}
		if subject != "" && c.Subject != subject {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeContentRepo) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	content, ok := r.contents[id]
	if !ok {
		return repositories.ErrNotFound
	}
	content.Views++
	return nil
}

type fakeAI struct {
	answer string
	err    error
	calls  int
}

func (f *fakeAI) SolveDoubt(_ context.Context, _ *models.Doubt) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}
