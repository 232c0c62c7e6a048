package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lshigami/prepbank/internal/model"
	"github.com/lshigami/prepbank/internal/repository"
)

// memStore backs the fake repositories below with plain maps.
type memStore struct {
	users     map[string]*model.User
	tests     map[string]*model.Test
	questions map[string]*model.Question
	attempts  map[string]*model.TestAttempt
	responses map[string]*model.QuestionResponse
	seq       int
	writes    int
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]*model.User{},
		tests:     map[string]*model.Test{},
		questions: map[string]*model.Question{},
		attempts:  map[string]*model.TestAttempt{},
		responses: map[string]*model.QuestionResponse{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) addUser(id string) {
	m.users[id] = &model.User{Base: model.Base{ID: id}, Email: id + "@example.com", Role: model.RoleStudent}
}

// addQuestion stores a question with options labelled A, B, C.
func (m *memStore) addQuestion(id, title string, correct *string) *model.Question {
	q := &model.Question{Base: model.Base{ID: id}, UniqueCode: "code-" + id, Title: title, CorrectLabel: correct}
	for _, label := range []string{"A", "B", "C"} {
		q.Options = append(q.Options, model.Option{Base: model.Base{ID: id + "-" + label}, Label: label, QuestionID: id})
	}
	m.questions[id] = q
	return q
}

func (m *memStore) addTest(id string, questions ...*model.Question) {
	t := &model.Test{Base: model.Base{ID: id}, Name: "test " + id}
	for _, q := range questions {
		t.Questions = append(t.Questions, *q)
	}
	m.tests[id] = t
}

func (m *memStore) assembleResponse(r *model.QuestionResponse) model.QuestionResponse {
	out := *r
	if q, ok := m.questions[r.QuestionID]; ok {
		qc := *q
		out.Question = &qc
		if r.SelectedOptionID != nil {
			if o, ok := qc.OptionByID(*r.SelectedOptionID); ok {
				oc := *o
				out.SelectedOption = &oc
			}
		}
	}
	return out
}

func (m *memStore) assembleAttempt(id string) (*model.TestAttempt, bool) {
	a, ok := m.attempts[id]
	if !ok {
		return nil, false
	}
	out := *a
	out.Responses = nil
	for _, r := range m.responses {
		if r.AttemptID == id {
			out.Responses = append(out.Responses, m.assembleResponse(r))
		}
	}
	sort.Slice(out.Responses, func(i, j int) bool { return out.Responses[i].Position < out.Responses[j].Position })
	if t, ok := m.tests[a.TestID]; ok {
		tc := *t
		out.Test = &tc
	}
	return &out, true
}

type fakeUserRepo struct {
	repository.UserRepository
	store *memStore
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string, preloads ...string) (*model.User, error) {
	u, ok := f.store.users[id]
	if !ok {
		return nil, repository.NewNotFound("User", id)
	}
	return u, nil
}

type fakeTestRepo struct {
	repository.TestRepository
	store *memStore
}

func (f *fakeTestRepo) FindByIDWithQuestions(ctx context.Context, id string) (*model.Test, error) {
	t, ok := f.store.tests[id]
	if !ok {
		return nil, repository.NewNotFound("Test", id)
	}
	return t, nil
}

type fakeAttemptRepo struct {
	repository.TestAttemptRepository
	store *memStore

	cutoff, abandonedAt time.Time
	responseLoads       int
}

func (f *fakeAttemptRepo) GetByID(ctx context.Context, id string, preloads ...string) (*model.TestAttempt, error) {
	a, ok := f.store.attempts[id]
	if !ok {
		return nil, repository.NewNotFound("TestAttempt", id)
	}
	out := *a
	return &out, nil
}

func (f *fakeAttemptRepo) CreateWithResponses(ctx context.Context, attempt *model.TestAttempt) error {
	if _, ok := f.store.tests[attempt.TestID]; !ok {
		return repository.NewNotFound("Test", attempt.TestID)
	}
	attempt.ID = f.store.nextID("attempt")
	stored := *attempt
	stored.Responses = nil
	f.store.attempts[attempt.ID] = &stored
	for i := range attempt.Responses {
		r := &attempt.Responses[i]
		r.ID = f.store.nextID("response")
		r.AttemptID = attempt.ID
		rc := *r
		f.store.responses[r.ID] = &rc
	}
	return nil
}

func (f *fakeAttemptRepo) FindByIDWithDetails(ctx context.Context, id string) (*model.TestAttempt, error) {
	a, ok := f.store.assembleAttempt(id)
	if !ok {
		return nil, repository.NewNotFound("TestAttempt", id)
	}
	return a, nil
}

func (f *fakeAttemptRepo) FindByIDWithResponses(ctx context.Context, id string) (*model.TestAttempt, error) {
	f.responseLoads++
	return f.FindByIDWithDetails(ctx, id)
}

func (f *fakeAttemptRepo) FindAllByUser(ctx context.Context, userID string) ([]model.TestAttempt, error) {
	var out []model.TestAttempt
	for id, a := range f.store.attempts {
		if a.UserID == userID {
			full, _ := f.store.assembleAttempt(id)
			out = append(out, *full)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAttemptRepo) Finish(ctx context.Context, id string, grade repository.AttemptGrader) error {
	a, ok := f.store.assembleAttempt(id)
	if !ok {
		return repository.NewNotFound("TestAttempt", id)
	}
	completion, err := grade(a)
	if err != nil || completion == nil {
		return err
	}
	stored := f.store.attempts[id]
	if stored.Status != model.AttemptInProgress {
		return nil
	}
	finishedAt := completion.FinishedAt
	score := completion.Score
	stored.Status = model.AttemptCompleted
	stored.FinishedAt = &finishedAt
	stored.Score = &score
	for responseID, isCorrect := range completion.Grades {
		f.store.responses[responseID].IsCorrect = isCorrect
	}
	return nil
}

func (f *fakeAttemptRepo) AbandonStartedBefore(ctx context.Context, cutoff, now time.Time) (int64, error) {
	f.cutoff, f.abandonedAt = cutoff, now
	var n int64
	for _, a := range f.store.attempts {
		if a.Status == model.AttemptInProgress && a.StartedAt.Before(cutoff) {
			a.Status = model.AttemptAbandoned
			finished := now
			a.FinishedAt = &finished
			n++
		}
	}
	return n, nil
}

type fakeResponseRepo struct {
	repository.QuestionResponseRepository
	store *memStore
}

func (f *fakeResponseRepo) find(attemptID, questionID string) (*model.QuestionResponse, bool) {
	for _, r := range f.store.responses {
		if r.AttemptID == attemptID && r.QuestionID == questionID {
			return r, true
		}
	}
	return nil, false
}

func (f *fakeResponseRepo) FindByAttemptAndQuestion(ctx context.Context, attemptID, questionID string) (*model.QuestionResponse, error) {
	r, ok := f.find(attemptID, questionID)
	if !ok {
		return nil, repository.NewNotFound("QuestionResponse", attemptID+"/"+questionID)
	}
	out := f.store.assembleResponse(r)
	return &out, nil
}

func (f *fakeResponseRepo) FindAllByAttempt(ctx context.Context, attemptID string) ([]model.QuestionResponse, error) {
	a, ok := f.store.assembleAttempt(attemptID)
	if !ok {
		return []model.QuestionResponse{}, nil
	}
	return a.Responses, nil
}

func (f *fakeResponseRepo) Modify(ctx context.Context, attemptID, questionID string, mutate repository.ResponseMutation) (*model.QuestionResponse, error) {
	attempt, ok := f.store.attempts[attemptID]
	if !ok {
		return nil, repository.NewNotFound("TestAttempt", attemptID)
	}
	stored, ok := f.find(attemptID, questionID)
	if !ok {
		return nil, repository.NewNotFound("QuestionResponse", attemptID+"/"+questionID)
	}
	current := f.store.assembleResponse(stored)
	ac := *attempt
	current.Attempt = &ac

	changes, err := mutate(&current)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		f.store.writes++
	}
	for col, v := range changes {
		switch col {
		case "flagged":
			stored.Flagged = v.(bool)
		case "time_spent":
			stored.TimeSpent = v.(int)
		case "switch_count":
			stored.SwitchCount = v.(int)
		case "selected_option_id":
			if v == nil {
				stored.SelectedOptionID = nil
			} else {
				id := v.(string)
				stored.SelectedOptionID = &id
			}
		case "is_correct":
			if v == nil {
				stored.IsCorrect = nil
			} else {
				b := v.(bool)
				stored.IsCorrect = &b
			}
		default:
			panic("unexpected column " + col)
		}
	}
	return f.FindByAttemptAndQuestion(ctx, attemptID, questionID)
}
