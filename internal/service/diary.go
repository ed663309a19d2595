package service

import (
	"context"
	"errors"

	"github.com/yourname/sleepdiary/internal"
	"github.com/yourname/sleepdiary/internal/metrics"
	"github.com/yourname/sleepdiary/internal/storage"
)

const (
	opList   = "list"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// DiaryService runs each diary operation in its own transaction.
type DiaryService struct {
	store  storage.Store
	logger internal.Logger
}

func NewDiaryService(store storage.Store, logger internal.Logger) *DiaryService {
	return &DiaryService{store: store, logger: logger}
}

func (s *DiaryService) List(ctx context.Context, userID int64) (diaries []internal.Diary, err error) {
	defer func() { s.observe(opList, err) }()

	err = storage.RunInTx(ctx, s.store, func(tx storage.Tx) error {
		if err := requireUser(ctx, tx, userID); err != nil {
			return err
		}
		var err error
		diaries, err = tx.ListDiaries(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return diaries, nil
}

func (s *DiaryService) Create(ctx context.Context, userID int64, body []byte) (diary *internal.Diary, err error) {
	defer func() { s.observe(opCreate, err) }()

	err = storage.RunInTx(ctx, s.store, func(tx storage.Tx) error {
		if err := requireUser(ctx, tx, userID); err != nil {
			return err
		}
		patch, err := ValidateDiary(ctx, tx, body, ModeFull, ValidationContext{UserID: userID})
		if err != nil {
			return err
		}

		d := &internal.Diary{UserID: userID}
		patch.Apply(d)
		if err := tx.CreateDiary(ctx, d); err != nil {
			return err
		}
		diary = d
		return nil
	})
	if err != nil {
		return nil, s.translate(err)
	}
	s.logger.Infof("created diary %d for user %d on %s", diary.ID, userID, diary.Date)
	return diary, nil
}

func (s *DiaryService) Update(ctx context.Context, userID, diaryID int64, body []byte) (diary *internal.Diary, err error) {
	defer func() { s.observe(opUpdate, err) }()

	err = storage.RunInTx(ctx, s.store, func(tx storage.Tx) error {
		current, err := findDiary(ctx, tx, diaryID, userID)
		if err != nil {
			return err
		}
		patch, err := ValidateDiary(ctx, tx, body, ModePartial, ValidationContext{
			UserID:    userID,
			ExcludeID: diaryID,
			Current:   current,
		})
		if err != nil {
			return err
		}
		if patch.Empty() {
			diary = current
			return nil
		}

		n, err := tx.UpdateDiary(ctx, diaryID, patch)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrConcurrencyConflict
		}

		diary, err = tx.FindDiary(ctx, diaryID, userID)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrConcurrencyConflict
		}
		return err
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return diary, nil
}

func (s *DiaryService) Delete(ctx context.Context, userID, diaryID int64) (err error) {
	defer func() { s.observe(opDelete, err) }()

	err = storage.RunInTx(ctx, s.store, func(tx storage.Tx) error {
		if _, err := findDiary(ctx, tx, diaryID, userID); err != nil {
			return err
		}
		n, err := tx.DeleteDiary(ctx, diaryID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrDiaryNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Infof("deleted diary %d of user %d", diaryID, userID)
	return nil
}

func requireUser(ctx context.Context, tx storage.Tx, userID int64) error {
	ok, err := tx.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func findDiary(ctx context.Context, tx storage.Tx, diaryID, userID int64) (*internal.Diary, error) {
	d, err := tx.FindDiary(ctx, diaryID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrDiaryNotFound
	}
	return d, err
}

// translate turns a write rejected by the database into the same shape the
// validation layer would have produced.
func (s *DiaryService) translate(err error) error {
	var cerr *storage.ConstraintError
	if !errors.As(err, &cerr) {
		return err
	}
	s.logger.Warnf("write rejected by constraint %s", cerr.Constraint)

	fe := FieldErrors{}
	switch cerr.Constraint {
	case storage.ConstraintDiaryPerDay:
		fe.Add(fieldDate, MsgOnePerDay)
	case storage.ConstraintSleepQuality:
		fe.Add(fieldSleepQuality, MsgInvalidValue)
	case storage.ConstraintTimeSlept:
		fe.Add(fieldTimeOutOfBed, MsgTimeOrder)
	case storage.ConstraintUserRef:
		return ErrUserNotFound
	default:
		return err
	}
	return &ValidationError{Fields: fe}
}

func (s *DiaryService) observe(op string, err error) {
	metrics.ObserveOperation(op, Outcome(err))
}

// Outcome names the result class of err for metrics and logs.
func Outcome(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrDiaryNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformedJSON), errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, ErrConcurrencyConflict):
		return "conflict"
	default:
		return "error"
	}
}
