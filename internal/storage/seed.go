package storage

import (
	"context"
	"time"

	"github.com/yourname/sleepdiary/internal"
)

const (
	fixtureUsers   = 10
	fixtureDiaries = 5
)

// Seed inserts demo users, and one diary for each of the first few, when the
// store holds no users yet. It reports whether anything was written.
func Seed(ctx context.Context, store Store, now time.Time, logger internal.Logger) (bool, error) {
	seeded := false
	err := RunInTx(ctx, store, func(tx Tx) error {
		n, err := tx.CountUsers(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		ids := make([]int64, 0, fixtureUsers)
		for i := 0; i < fixtureUsers; i++ {
			id, err := tx.CreateUser(ctx)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		today := internal.DateOf(now.UTC())
		into := now.UTC().Truncate(time.Second)
		for i := 0; i < fixtureDiaries; i++ {
			d := &internal.Diary{
				UserID:       ids[i],
				Date:         today.AddDays(i),
				TimeIntoBed:  into,
				TimeOutOfBed: into.Add(time.Hour),
				SleepQuality: 9,
			}
			if err := tx.CreateDiary(ctx, d); err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		logger.Errorf("storage: failed to seed fixtures: %v", err)
		return false, err
	}
	if seeded {
		logger.Infof("storage: seeded %d users and %d diaries", fixtureUsers, fixtureDiaries)
	}
	return seeded, nil
}
