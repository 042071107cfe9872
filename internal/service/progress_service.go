package service

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// ProgressStore is the read side of the workout log storage used for statistics.
type ProgressStore interface {
	CompletedDates(ctx context.Context, clientID primitive.ObjectID) ([]time.Time, error)
	CountCompleted(ctx context.Context, clientID primitive.ObjectID, from, to *time.Time) (int64, error)
	SetsForWorkout(ctx context.Context, workoutID primitive.ObjectID) ([]domain.WorkoutSet, error)
}

// Stats is the dashboard summary of a client.
type Stats struct {
	Streak        int   `json:"streak"`
	WeeklyCount   int64 `json:"weeklyCount"`
	TotalWorkouts int64 `json:"totalWorkouts"`
}

// ProgressService derives read-only statistics from workout history.
// Empty history yields zeros; storage faults wrap ErrDataUnavailable.
type ProgressService interface {
	CalculateStreak(ctx context.Context, clientID primitive.ObjectID) (int, error)
	GetWeeklyCount(ctx context.Context, clientID primitive.ObjectID) (int64, error)
	GetTotalVolume(ctx context.Context, workoutID primitive.ObjectID) (float64, error)
	GetTotalWorkouts(ctx context.Context, clientID primitive.ObjectID) (int64, error)
	GetStats(ctx context.Context, clientID primitive.ObjectID) (*Stats, error)
}

type progressService struct {
	store ProgressStore
	now   func() time.Time
}

// NewProgressService creates a progress service. A nil clock uses time.Now.
func NewProgressService(store ProgressStore, now func() time.Time) ProgressService {
	if now == nil {
		now = time.Now
	}
	return &progressService{store: store, now: now}
}

func (s *progressService) CalculateStreak(ctx context.Context, clientID primitive.ObjectID) (int, error) {
	dates, err := s.store.CompletedDates(ctx, clientID)
	if err != nil {
		return 0, unavailable("calculate streak", err)
	}
	return Streak(dates, s.now()), nil
}

func (s *progressService) GetWeeklyCount(ctx context.Context, clientID primitive.ObjectID) (int64, error) {
	from, to := WeekRange(s.now())
	count, err := s.store.CountCompleted(ctx, clientID, &from, &to)
	if err != nil {
		return 0, unavailable("weekly count", err)
	}
	return count, nil
}

func (s *progressService) GetTotalVolume(ctx context.Context, workoutID primitive.ObjectID) (float64, error) {
	sets, err := s.store.SetsForWorkout(ctx, workoutID)
	if err != nil {
		return 0, unavailable("total volume", err)
	}
	return Volume(sets), nil
}

func (s *progressService) GetTotalWorkouts(ctx context.Context, clientID primitive.ObjectID) (int64, error) {
	count, err := s.store.CountCompleted(ctx, clientID, nil, nil)
	if err != nil {
		return 0, unavailable("total workouts", err)
	}
	return count, nil
}

// GetStats runs the three independent queries concurrently.
func (s *progressService) GetStats(ctx context.Context, clientID primitive.ObjectID) (*Stats, error) {
	var stats Stats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.Streak, err = s.CalculateStreak(gctx, clientID)
		return err
	})
	g.Go(func() (err error) {
		stats.WeeklyCount, err = s.GetWeeklyCount(gctx, clientID)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalWorkouts, err = s.GetTotalWorkouts(gctx, clientID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func dayKey(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Streak counts consecutive UTC calendar days with a completed workout,
// walking back from today. While nothing has been counted a workout
// yesterday starts the run; once the run has started the first gap ends it.
func Streak(dates []time.Time, now time.Time) int {
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		key := dayKey(d)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, key)
	}
	slices.SortFunc(days, func(a, b time.Time) int { return b.Compare(a) })

	today := dayKey(now)
	yesterday := today.AddDate(0, 0, -1)
	expected := today
	streak := 0

	for _, day := range days {
		switch {
		case day.Equal(expected):
			streak++
			expected = expected.AddDate(0, 0, -1)
		case day.Before(expected):
			if streak == 0 && day.Equal(yesterday) {
				streak = 1
				expected = yesterday.AddDate(0, 0, -1)
				continue
			}
			return streak
		}
		// Days after expected (future-dated logs) are skipped.
	}
	return streak
}

// WeekRange returns Monday 00:00:00.000 and Sunday 23:59:59.999 UTC of the
// ISO week containing now. Both bounds are inclusive.
func WeekRange(now time.Time) (from, to time.Time) {
	now = now.UTC()
	dow := (int(now.Weekday()) + 6) % 7 // Monday = 0
	from = time.Date(now.Year(), now.Month(), now.Day()-dow, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 0, 7).Add(-time.Millisecond)
	return from, to
}

// Volume sums reps × weight over sets that record both.
func Volume(sets []domain.WorkoutSet) float64 {
	var total float64
	for _, set := range sets {
		if set.Reps == nil || set.WeightKg == nil {
			continue
		}
		total += float64(*set.Reps) * *set.WeightKg
	}
	return total
}
