package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/notify"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
	err   error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (m *mockUserRepo) add(name, email string, role domain.Role) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &domain.User{ID: primitive.NewObjectID(), Name: name, Email: email, Role: role, Status: domain.UserStatusActive}
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return primitive.NilObjectID, m.err
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	user.ID = primitive.NewObjectID()
	stored := *user
	m.users[user.ID] = &stored
	return user.ID, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) List(_ context.Context, role domain.Role, skip, limit int64) ([]domain.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	var all []domain.User
	for _, u := range m.users {
		if role == "" || u.Role == role {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	return window(all, skip, limit), int64(len(all)), nil
}

func (m *mockUserRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.UserStatus) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Status = status
	c := *u
	return &c, nil
}

func window[T any](all []T, skip, limit int64) []T {
	if skip >= int64(len(all)) {
		return nil
	}
	end := min(skip+limit, int64(len(all)))
	return all[skip:end]
}

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	mu       sync.Mutex
	trainers map[primitive.ObjectID]*domain.TrainerProfile
	clients  map[primitive.ObjectID]*domain.ClientProfile
	err      error
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{
		trainers: make(map[primitive.ObjectID]*domain.TrainerProfile),
		clients:  make(map[primitive.ObjectID]*domain.ClientProfile),
	}
}

func (m *mockProfileRepo) addTrainer(userID primitive.ObjectID) *domain.TrainerProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &domain.TrainerProfile{ID: primitive.NewObjectID(), UserID: userID}
	m.trainers[p.ID] = p
	return p
}

func (m *mockProfileRepo) addClient(userID primitive.ObjectID) *domain.ClientProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &domain.ClientProfile{ID: primitive.NewObjectID(), UserID: userID}
	m.clients[p.ID] = p
	return p
}

func (m *mockProfileRepo) GetTrainerByUserID(_ context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.trainers {
		if p.UserID == userID {
			c := *p
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockProfileRepo) GetTrainerByID(_ context.Context, id primitive.ObjectID) (*domain.TrainerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.trainers[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockProfileRepo) ListTrainers(_ context.Context) ([]domain.TrainerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.TrainerProfile
	for _, p := range m.trainers {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProfileRepo) EnsureTrainer(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error) {
	p, err := m.GetTrainerByUserID(ctx, userID)
	if err == repository.ErrNotFound {
		c := *m.addTrainer(userID)
		return &c, nil
	}
	return p, err
}

func (m *mockProfileRepo) SaveTrainer(_ context.Context, profile *domain.TrainerProfile) (*domain.TrainerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for id, p := range m.trainers {
		if p.UserID == profile.UserID {
			profile.ID = id
			break
		}
	}
	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	stored := *profile
	m.trainers[stored.ID] = &stored
	return profile, nil
}

func (m *mockProfileRepo) GetClientByUserID(_ context.Context, userID primitive.ObjectID) (*domain.ClientProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.clients {
		if p.UserID == userID {
			c := *p
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockProfileRepo) GetClientByID(_ context.Context, id primitive.ObjectID) (*domain.ClientProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.clients[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockProfileRepo) GetClientsByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.ClientProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.ClientProfile
	for _, id := range ids {
		if p, ok := m.clients[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProfileRepo) EnsureClient(ctx context.Context, userID primitive.ObjectID) (*domain.ClientProfile, error) {
	p, err := m.GetClientByUserID(ctx, userID)
	if err == repository.ErrNotFound {
		c := *m.addClient(userID)
		return &c, nil
	}
	return p, err
}

func (m *mockProfileRepo) SaveClient(_ context.Context, profile *domain.ClientProfile) (*domain.ClientProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for id, p := range m.clients {
		if p.UserID == profile.UserID {
			profile.ID = id
			break
		}
	}
	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	stored := *profile
	m.clients[stored.ID] = &stored
	return profile, nil
}

// ── Mock MappingRepository ──

type mockMappingRepo struct {
	mu       sync.Mutex
	mappings map[primitive.ObjectID]*domain.TrainerClientMapping
	err      error
}

func newMockMappingRepo() *mockMappingRepo {
	return &mockMappingRepo{mappings: make(map[primitive.ObjectID]*domain.TrainerClientMapping)}
}

// link stores an active mapping without the duplicate check, so tests can
// set up inconsistent data.
func (m *mockMappingRepo) link(trainerID, clientID primitive.ObjectID, typ domain.MappingType) *domain.TrainerClientMapping {
	m.mu.Lock()
	defer m.mu.Unlock()
	mp := &domain.TrainerClientMapping{
		ID:        primitive.NewObjectID(),
		TrainerID: trainerID,
		ClientID:  clientID,
		Type:      typ,
		IsPrimary: typ == domain.MappingPrimary,
		IsActive:  true,
		StartDate: time.Now().UTC(),
	}
	m.mappings[mp.ID] = mp
	return mp
}

func (m *mockMappingRepo) Create(_ context.Context, mapping *domain.TrainerClientMapping) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return primitive.NilObjectID, m.err
	}
	for _, mp := range m.mappings {
		if mp.IsActive && mp.TrainerID == mapping.TrainerID && mp.ClientID == mapping.ClientID {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	mapping.ID = primitive.NewObjectID()
	mapping.IsActive = true
	mapping.IsPrimary = mapping.Type == domain.MappingPrimary
	mapping.StartDate = time.Now().UTC()
	stored := *mapping
	m.mappings[mapping.ID] = &stored
	return mapping.ID, nil
}

func (m *mockMappingRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TrainerClientMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if mp, ok := m.mappings[id]; ok {
		c := *mp
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockMappingRepo) CountActive(_ context.Context, trainerID, clientID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, mp := range m.mappings {
		if mp.IsActive && mp.TrainerID == trainerID && mp.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

func (m *mockMappingRepo) CountActiveByTrainer(_ context.Context, trainerID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, mp := range m.mappings {
		if mp.IsActive && mp.TrainerID == trainerID {
			n++
		}
	}
	return n, nil
}

func (m *mockMappingRepo) ListActiveByTrainer(_ context.Context, trainerID primitive.ObjectID) ([]domain.TrainerClientMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.TrainerClientMapping
	for _, mp := range m.mappings {
		if mp.IsActive && mp.TrainerID == trainerID {
			out = append(out, *mp)
		}
	}
	return out, nil
}

func (m *mockMappingRepo) GetActivePrimaryByClient(_ context.Context, clientID primitive.ObjectID) (*domain.TrainerClientMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, mp := range m.mappings {
		if mp.IsActive && mp.IsPrimary && mp.ClientID == clientID {
			c := *mp
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockMappingRepo) List(_ context.Context, activeOnly bool, skip, limit int64) ([]domain.TrainerClientMapping, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	var all []domain.TrainerClientMapping
	for _, mp := range m.mappings {
		if !activeOnly || mp.IsActive {
			all = append(all, *mp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.Hex() < all[j].ID.Hex() })
	return window(all, skip, limit), int64(len(all)), nil
}

func (m *mockMappingRepo) Deactivate(_ context.Context, id primitive.ObjectID, reason string, at time.Time) (*domain.TrainerClientMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	mp, ok := m.mappings[id]
	if !ok || !mp.IsActive {
		return nil, repository.ErrNotFound
	}
	mp.IsActive = false
	mp.EndDate = &at
	mp.Reason = reason
	c := *mp
	return &c, nil
}

// ── Mock ExerciseRepository ──

type mockExerciseRepo struct {
	mu        sync.Mutex
	exercises map[primitive.ObjectID]*domain.Exercise
	err       error
}

func newMockExerciseRepo() *mockExerciseRepo {
	return &mockExerciseRepo{exercises: make(map[primitive.ObjectID]*domain.Exercise)}
}

func (m *mockExerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return primitive.NilObjectID, m.err
	}
	exercise.ID = primitive.NewObjectID()
	stored := *exercise
	m.exercises[exercise.ID] = &stored
	return exercise.ID, nil
}

func (m *mockExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if e, ok := m.exercises[id]; ok {
		c := *e
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockExerciseRepo) List(_ context.Context, filter domain.ExerciseFilter, skip, limit int64) ([]domain.Exercise, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	var all []domain.Exercise
	for _, e := range m.exercises {
		switch {
		case filter.PrimaryMuscle != "" && e.PrimaryMuscle != filter.PrimaryMuscle,
			filter.Category != "" && e.Category != filter.Category,
			filter.Difficulty != "" && e.Difficulty != filter.Difficulty,
			filter.Search != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(filter.Search)):
			continue
		}
		all = append(all, *e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return window(all, skip, limit), int64(len(all)), nil
}

func (m *mockExerciseRepo) Update(_ context.Context, exercise *domain.Exercise) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *exercise
	m.exercises[exercise.ID] = &stored
	return nil
}

func (m *mockExerciseRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.exercises, id)
	return nil
}

// ── Mock WorkoutRepository ──

type mockWorkoutRepo struct {
	mu       sync.Mutex
	workouts map[primitive.ObjectID]*domain.WorkoutLog
	err      error
}

func newMockWorkoutRepo() *mockWorkoutRepo {
	return &mockWorkoutRepo{workouts: make(map[primitive.ObjectID]*domain.WorkoutLog)}
}

// add stores a workout as is and returns its ID.
func (m *mockWorkoutRepo) add(w domain.WorkoutLog) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	m.workouts[w.ID] = &w
	return w.ID
}

func (m *mockWorkoutRepo) completed(clientID primitive.ObjectID, date time.Time) primitive.ObjectID {
	return m.add(domain.WorkoutLog{ClientID: clientID, Status: domain.WorkoutCompleted, Date: date})
}

func (m *mockWorkoutRepo) Create(_ context.Context, workout *domain.WorkoutLog) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return primitive.NilObjectID, m.err
	}
	workout.ID = primitive.NewObjectID()
	stored := *workout
	m.workouts[workout.ID] = &stored
	return workout.ID, nil
}

func (m *mockWorkoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if w, ok := m.workouts[id]; ok {
		c := *w
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockWorkoutRepo) byClient(clientID primitive.ObjectID, status domain.WorkoutStatus) []domain.WorkoutLog {
	var out []domain.WorkoutLog
	for _, w := range m.workouts {
		if w.ClientID == clientID && (status == "" || w.Status == status) {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (m *mockWorkoutRepo) ListByClient(_ context.Context, clientID primitive.ObjectID, skip, limit int64) ([]domain.WorkoutLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	all := m.byClient(clientID, "")
	return window(all, skip, limit), int64(len(all)), nil
}

func (m *mockWorkoutRepo) LatestCompleted(_ context.Context, clientID primitive.ObjectID, limit int64) ([]domain.WorkoutLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return window(m.byClient(clientID, domain.WorkoutCompleted), 0, limit), nil
}

func (m *mockWorkoutRepo) CompletedDates(_ context.Context, clientID primitive.ObjectID) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var dates []time.Time
	for _, w := range m.byClient(clientID, domain.WorkoutCompleted) {
		dates = append(dates, w.Date)
	}
	return dates, nil
}

func (m *mockWorkoutRepo) CountCompleted(_ context.Context, clientID primitive.ObjectID, from, to *time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, w := range m.byClient(clientID, domain.WorkoutCompleted) {
		if from != nil && w.Date.Before(*from) {
			continue
		}
		if to != nil && w.Date.After(*to) {
			continue
		}
		n++
	}
	return n, nil
}

func (m *mockWorkoutRepo) SetsForWorkout(_ context.Context, workoutID primitive.ObjectID) ([]domain.WorkoutSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	w, ok := m.workouts[workoutID]
	if !ok {
		return []domain.WorkoutSet{}, nil
	}
	return w.Sets(), nil
}

func (m *mockWorkoutRepo) CountUsingExercise(_ context.Context, exerciseID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, w := range m.workouts {
		if slices.ContainsFunc(w.Exercises, func(e domain.WorkoutExercise) bool { return e.ExerciseID == exerciseID }) {
			n++
		}
	}
	return n, nil
}

func (m *mockWorkoutRepo) Transition(_ context.Context, id, clientID primitive.ObjectID, from []domain.WorkoutStatus, t domain.WorkoutTransition) (*domain.WorkoutLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	w, ok := m.workouts[id]
	if !ok || w.ClientID != clientID || !slices.Contains(from, w.Status) {
		return nil, repository.ErrNotFound
	}
	w.Status = t.To
	if t.Date != nil {
		w.Date = *t.Date
	}
	if t.DurationMin != nil {
		w.DurationMin = t.DurationMin
	}
	if t.Exercises != nil {
		w.Exercises = t.Exercises
	}
	c := *w
	return &c, nil
}

func (m *mockWorkoutRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	w, ok := m.workouts[id]
	if !ok || w.Status == domain.WorkoutCompleted {
		return repository.ErrNotFound
	}
	delete(m.workouts, id)
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	mu    sync.Mutex
	items []domain.Notification // ascending by ID
	err   error
}

func (m *mockNotificationRepo) Create(_ context.Context, n *domain.Notification) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return primitive.NilObjectID, m.err
	}
	n.ID = primitive.NewObjectID()
	m.items = append(m.items, *n)
	return n.ID, nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID primitive.ObjectID, cursor *primitive.ObjectID, limit int64) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Notification
	for i := len(m.items) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		n := m.items[i]
		if n.UserID != userID {
			continue
		}
		if cursor != nil && n.ID.Hex() >= cursor.Hex() {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, item := range m.items {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID primitive.ObjectID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].UserID == userID {
			m.items[i].IsRead = true
			m.items[i].ReadAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID primitive.ObjectID, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for i := range m.items {
		if m.items[i].UserID == userID && !m.items[i].IsRead {
			m.items[i].IsRead = true
			m.items[i].ReadAt = &at
			n++
		}
	}
	return n, nil
}

// ── Mock HabitRepository ──

type mockHabitRepo struct {
	mu     sync.Mutex
	habits []domain.Habit
	err    error
}

// Upsert mirrors the stored semantics: label only on insert, empty unit and
// notes keep the previous values.
func (m *mockHabitRepo) Upsert(_ context.Context, h *domain.Habit) (*domain.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.habits {
		e := &m.habits[i]
		if e.ClientID == h.ClientID && e.Type == h.Type && e.Date.Equal(h.Date) {
			e.Value = h.Value
			if h.Unit != "" {
				e.Unit = h.Unit
			}
			if h.Notes != "" {
				e.Notes = h.Notes
			}
			c := *e
			return &c, nil
		}
	}
	stored := *h
	stored.ID = primitive.NewObjectID()
	m.habits = append(m.habits, stored)
	return &stored, nil
}

func (m *mockHabitRepo) ListByClient(_ context.Context, clientID primitive.ObjectID, from, to time.Time) ([]domain.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Habit{}
	for _, h := range m.habits {
		if h.ClientID == clientID && !h.Date.Before(from) && !h.Date.After(to) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// ── Mock ChallengeRepository ──

type mockChallengeRepo struct {
	mu           sync.Mutex
	challenges   map[primitive.ObjectID]*domain.Challenge
	participants []domain.ChallengeParticipant
	err          error
}

func newMockChallengeRepo() *mockChallengeRepo {
	return &mockChallengeRepo{challenges: make(map[primitive.ObjectID]*domain.Challenge)}
}

func (m *mockChallengeRepo) Create(_ context.Context, c *domain.Challenge) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return primitive.NilObjectID, m.err
	}
	c.ID = primitive.NewObjectID()
	stored := *c
	m.challenges[c.ID] = &stored
	return c.ID, nil
}

func (m *mockChallengeRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.challenges[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockChallengeRepo) ListByStatus(_ context.Context, status domain.ChallengeStatus) ([]domain.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Challenge{}
	for _, c := range m.challenges {
		if c.Status == status {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (m *mockChallengeRepo) AddParticipant(_ context.Context, p *domain.ChallengeParticipant) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return primitive.NilObjectID, m.err
	}
	for _, e := range m.participants {
		if e.ChallengeID == p.ChallengeID && e.UserID == p.UserID {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	p.ID = primitive.NewObjectID()
	m.participants = append(m.participants, *p)
	return p.ID, nil
}

func (m *mockChallengeRepo) CountParticipants(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	counts := make(map[primitive.ObjectID]int64)
	for _, p := range m.participants {
		if slices.Contains(ids, p.ChallengeID) {
			counts[p.ChallengeID]++
		}
	}
	return counts, nil
}

// ── Recording Publisher ──

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(e notify.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) ofType(t domain.NotificationType) []notify.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []notify.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func ptr[T any](v T) *T { return &v }
