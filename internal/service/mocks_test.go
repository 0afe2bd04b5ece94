package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/sakif/prep-tracker/internal/ai"
	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/model"
	"github.com/sakif/prep-tracker/internal/repository"
)

// Hand-written in-memory fakes. The repository interfaces are small enough
// that a mocking framework would cost more than it saves, and a map keyed by
// id gives us real ownership semantics for free.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---- problem repo ----

type mockProblemRepo struct {
	problems map[string]*model.Problem
	nextID   int

	dates    []string            // PracticeDates reply, scripted per test
	stats    *model.ProblemStats // Stats reply
	statsErr error
}

var _ repository.ProblemRepository = (*mockProblemRepo)(nil)

func newMockProblemRepo() *mockProblemRepo {
	return &mockProblemRepo{problems: map[string]*model.Problem{}, stats: &model.ProblemStats{}}
}

func (m *mockProblemRepo) Create(_ context.Context, p *model.Problem) error {
	m.nextID++
	p.ID = fmt.Sprintf("problem-%d", m.nextID)
	cp := *p
	m.problems[p.ID] = &cp
	return nil
}

func (m *mockProblemRepo) GetByID(_ context.Context, userID, id string) (*model.Problem, error) {
	p, ok := m.problems[id]
	if !ok || p.UserID != userID {
		return nil, apperror.NotFound("problem", id)
	}
	cp := *p
	return &cp, nil
}

func (m *mockProblemRepo) List(_ context.Context, userID string, filter repository.ProblemFilter, _ repository.ListOptions) ([]model.Problem, error) {
	var out []model.Problem
	for _, p := range m.problems {
		if p.UserID != userID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Difficulty != "" && p.Difficulty != filter.Difficulty {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProblemRepo) Update(_ context.Context, p *model.Problem) error {
	stored, ok := m.problems[p.ID]
	if !ok || stored.UserID != p.UserID {
		return apperror.NotFound("problem", p.ID)
	}
	cp := *p
	m.problems[p.ID] = &cp
	return nil
}

func (m *mockProblemRepo) Delete(_ context.Context, userID, id string) error {
	p, ok := m.problems[id]
	if !ok || p.UserID != userID {
		return apperror.NotFound("problem", id)
	}
	delete(m.problems, id)
	return nil
}

func (m *mockProblemRepo) PracticeDates(_ context.Context, _ string) ([]string, error) {
	return m.dates, nil
}

func (m *mockProblemRepo) Stats(_ context.Context, _ string) (*model.ProblemStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	cp := *m.stats
	return &cp, nil
}

// ---- mock test repo ----

type mockMockTestRepo struct {
	tests  map[string]*model.MockTest
	nextID int
}

var _ repository.MockTestRepository = (*mockMockTestRepo)(nil)

func newMockMockTestRepo() *mockMockTestRepo {
	return &mockMockTestRepo{tests: map[string]*model.MockTest{}}
}

func (m *mockMockTestRepo) Create(_ context.Context, t *model.MockTest) error {
	m.nextID++
	t.ID = fmt.Sprintf("test-%d", m.nextID)
	cp := *t
	m.tests[t.ID] = &cp
	return nil
}

func (m *mockMockTestRepo) GetByID(_ context.Context, userID, id string) (*model.MockTest, error) {
	t, ok := m.tests[id]
	if !ok || t.UserID != userID {
		return nil, apperror.NotFound("mock test", id)
	}
	cp := *t
	return &cp, nil
}

func (m *mockMockTestRepo) List(_ context.Context, userID string, _ repository.ListOptions) ([]model.MockTest, error) {
	var out []model.MockTest
	for _, t := range m.tests {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockMockTestRepo) Update(_ context.Context, t *model.MockTest) error {
	stored, ok := m.tests[t.ID]
	if !ok || stored.UserID != t.UserID {
		return apperror.NotFound("mock test", t.ID)
	}
	cp := *t
	m.tests[t.ID] = &cp
	return nil
}

func (m *mockMockTestRepo) Delete(_ context.Context, userID, id string) error {
	t, ok := m.tests[id]
	if !ok || t.UserID != userID {
		return apperror.NotFound("mock test", id)
	}
	delete(m.tests, id)
	return nil
}

// ---- interview repo ----

type mockInterviewRepo struct {
	interviews map[string]*model.MockInterview
	nextID     int
	updates    int // counts Update calls, for persist-on-failure assertions
}

var _ repository.InterviewRepository = (*mockInterviewRepo)(nil)

func newMockInterviewRepo() *mockInterviewRepo {
	return &mockInterviewRepo{interviews: map[string]*model.MockInterview{}}
}

func (m *mockInterviewRepo) Create(_ context.Context, iv *model.MockInterview) error {
	m.nextID++
	iv.ID = fmt.Sprintf("interview-%d", m.nextID)
	cp := *iv
	m.interviews[iv.ID] = &cp
	return nil
}

func (m *mockInterviewRepo) GetByID(_ context.Context, userID, id string) (*model.MockInterview, error) {
	iv, ok := m.interviews[id]
	if !ok || iv.UserID != userID {
		return nil, apperror.NotFound("mock interview", id)
	}
	cp := *iv
	return &cp, nil
}

func (m *mockInterviewRepo) List(_ context.Context, userID string, _ repository.ListOptions) ([]model.MockInterview, error) {
	var out []model.MockInterview
	for _, iv := range m.interviews {
		if iv.UserID == userID {
			out = append(out, *iv)
		}
	}
	return out, nil
}

func (m *mockInterviewRepo) Update(_ context.Context, iv *model.MockInterview) error {
	stored, ok := m.interviews[iv.ID]
	if !ok || stored.UserID != iv.UserID {
		return apperror.NotFound("mock interview", iv.ID)
	}
	m.updates++
	cp := *iv
	m.interviews[iv.ID] = &cp
	return nil
}

func (m *mockInterviewRepo) Delete(_ context.Context, userID, id string) error {
	iv, ok := m.interviews[id]
	if !ok || iv.UserID != userID {
		return apperror.NotFound("mock interview", id)
	}
	delete(m.interviews, id)
	return nil
}

// ---- user repo ----

type mockUserRepo struct {
	users  map[string]*model.User // keyed by id
	nextID int
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*model.User{}}
}

func (m *mockUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperror.Conflict("user", "email already registered")
		}
	}
	m.nextID++
	u.ID = fmt.Sprintf("user-%d", m.nextID)
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) UpsertGitHub(_ context.Context, u *model.User) error {
	for id, existing := range m.users {
		if existing.GitHubID == u.GitHubID {
			u.ID = id
			existing.Name = u.Name
			existing.AvatarURL = u.AvatarURL
			return nil
		}
	}
	m.nextID++
	u.ID = fmt.Sprintf("user-%d", m.nextID)
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

// ---- AI completer ----

// fakeCompleter scripts the AI gateway. Complete pops replies from a queue;
// Stream emits deltas and can end with an error to simulate a dropped
// upstream connection.
type fakeCompleter struct {
	replies     []string // consumed front to back by Complete
	completeErr error

	streamDeltas []string
	streamErr    error

	completeCalls int
	lastMessages  []ai.Message
}

var _ ai.Completer = (*fakeCompleter)(nil)

func (f *fakeCompleter) Complete(_ context.Context, messages []ai.Message) (string, error) {
	f.completeCalls++
	f.lastMessages = messages
	if f.completeErr != nil {
		return "", f.completeErr
	}
	if len(f.replies) == 0 {
		return "", fmt.Errorf("fakeCompleter: no scripted reply left")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func (f *fakeCompleter) Stream(_ context.Context, messages []ai.Message, onDelta func(string) error) (string, error) {
	f.lastMessages = messages
	var full string
	for _, d := range f.streamDeltas {
		full += d
		if err := onDelta(d); err != nil {
			return full, err
		}
	}
	return full, f.streamErr
}

// requireValidation fails the test unless err is a validation error.
func requireValidation(t *testing.T, err error, context string) {
	t.Helper()
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("%s: want validation error, got %v", context, err)
	}
}
