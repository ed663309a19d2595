package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/yourname/sleepdiary/internal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Timestamps are stored as fixed-width UTC text so that the ordering CHECK
// constraint can compare them lexically.
const sqliteTimestampLayout = "2006-01-02T15:04:05.000000Z"

var sqliteDialect = dialect{
	placeholder: sq.Question,
	date:        func(d internal.Date) any { return d.String() },
	timestamp:   func(t time.Time) any { return t.UTC().Format(sqliteTimestampLayout) },
}

// SQLiteStorage is the embedded backend. It serializes access over a single
// connection.
type SQLiteStorage struct {
	db     *sql.DB
	logger internal.Logger
}

func NewSQLiteStorage(ctx context.Context, path string, logger internal.Logger) (*SQLiteStorage, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Errorf("failed to open sqlite database %s: %v", path, err)
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		logger.Errorf("failed to ping sqlite database %s: %v", path, err)
		return nil, err
	}
	if err := migrateSQLite(db); err != nil {
		db.Close()
		logger.Errorf("failed to migrate sqlite database %s: %v", path, err)
		return nil, err
	}
	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Errorf("failed to begin transaction: %v", err)
		return nil, err
	}
	return &sqliteTx{tx: tx, logger: s.logger}, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type sqliteTx struct {
	tx     *sql.Tx
	logger internal.Logger
}

func (t *sqliteTx) Commit(ctx context.Context) error {
	return classifySQLiteError(t.tx.Commit())
}

func (t *sqliteTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// --- Users ---
func (t *sqliteTx) UserExists(ctx context.Context, userID int64) (bool, error) {
	query, args, err := sqliteDialect.userExists(userID)
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}
	var n int64
	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		t.logger.Errorf("failed to check user %d: %v", userID, err)
		return false, fmt.Errorf("failed to get user '%d' exists: %w", userID, err)
	}
	return n > 0, nil
}

func (t *sqliteTx) CreateUser(ctx context.Context) (int64, error) {
	var id int64
	if err := t.tx.QueryRowContext(ctx, insertUserSQL).Scan(&id); err != nil {
		t.logger.Errorf("failed to insert user: %v", err)
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

func (t *sqliteTx) CountUsers(ctx context.Context) (int64, error) {
	query, args, err := sqliteDialect.countUsers()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	var n int64
	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// --- Diaries ---
func (t *sqliteTx) CreateDiary(ctx context.Context, d *internal.Diary) error {
	query, args, err := sqliteDialect.insertDiary(d)
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&d.ID); err != nil {
		t.logger.Errorf("failed to insert diary: %v", err)
		return classifySQLiteError(err)
	}
	return nil
}

func (t *sqliteTx) ListDiaries(ctx context.Context, userID int64) ([]internal.Diary, error) {
	query, args, err := sqliteDialect.listDiaries(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		t.logger.Errorf("failed to query diaries: %v", err)
		return nil, err
	}
	defer rows.Close()

	diaries := []internal.Diary{}
	for rows.Next() {
		d, err := scanSQLiteDiary(rows)
		if err != nil {
			t.logger.Errorf("failed to scan diary: %v", err)
			return nil, err
		}
		diaries = append(diaries, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate diaries: %w", err)
	}
	return diaries, nil
}

func (t *sqliteTx) FindDiary(ctx context.Context, diaryID, userID int64) (*internal.Diary, error) {
	query, args, err := sqliteDialect.findDiary(diaryID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	d, err := scanSQLiteDiary(t.tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get diary '%d' for user '%d': %w", diaryID, userID, err)
	}
	return d, nil
}

func (t *sqliteTx) DiaryDateTaken(ctx context.Context, userID int64, date internal.Date, excludeID int64) (bool, error) {
	query, args, err := sqliteDialect.diaryDateTaken(userID, date, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}
	var n int64
	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to count diaries on %s: %w", date, err)
	}
	return n > 0, nil
}

func (t *sqliteTx) UpdateDiary(ctx context.Context, diaryID int64, patch internal.DiaryPatch) (int64, error) {
	query, args, err := sqliteDialect.updateDiary(diaryID, patch)
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		t.logger.Errorf("failed to update diary %d: %v", diaryID, err)
		return 0, classifySQLiteError(err)
	}
	return res.RowsAffected()
}

func (t *sqliteTx) DeleteDiary(ctx context.Context, diaryID int64) (int64, error) {
	query, args, err := sqliteDialect.deleteDiary(diaryID)
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		t.logger.Errorf("failed to delete diary %d: %v", diaryID, err)
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteDiary(row rowScanner) (*internal.Diary, error) {
	var (
		d                 internal.Diary
		date, into, outOf string
	)
	if err := row.Scan(&d.ID, &d.UserID, &date, &into, &outOf, &d.SleepQuality); err != nil {
		return nil, err
	}

	var err error
	if d.Date, err = internal.ParseDate(date); err != nil {
		return nil, fmt.Errorf("diary %d: bad date %q: %w", d.ID, date, err)
	}
	if d.TimeIntoBed, err = time.Parse(sqliteTimestampLayout, into); err != nil {
		return nil, fmt.Errorf("diary %d: bad time_into_bed %q: %w", d.ID, into, err)
	}
	if d.TimeOutOfBed, err = time.Parse(sqliteTimestampLayout, outOf); err != nil {
		return nil, fmt.Errorf("diary %d: bad time_out_of_bed %q: %w", d.ID, outOf, err)
	}
	return &d, nil
}

func classifySQLiteError(err error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	var c Constraint
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		c = ConstraintDiaryPerDay
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		c = ConstraintUserRef
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		// sqlite reports the CHECK constraint by name in the message.
		msg := sqliteErr.Error()
		switch {
		case strings.Contains(msg, string(ConstraintSleepQuality)):
			c = ConstraintSleepQuality
		case strings.Contains(msg, string(ConstraintTimeSlept)):
			c = ConstraintTimeSlept
		default:
			c = ConstraintUnknown
		}
	default:
		return err
	}
	return &ConstraintError{Constraint: c, Err: err}
}

// --- Compile-time assertions ---
var _ Store = (*SQLiteStorage)(nil)
var _ Tx = (*sqliteTx)(nil)
