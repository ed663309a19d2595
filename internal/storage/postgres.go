package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourname/sleepdiary/internal"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

var postgresDialect = dialect{
	placeholder: sq.Dollar,
	date:        func(d internal.Date) any { return d.Time() },
	timestamp:   func(t time.Time) any { return t.UTC() },
}

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(ctx context.Context, dsn string, logger internal.Logger) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Errorf("failed to ping postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		p.logger.Errorf("failed to begin transaction: %v", err)
		return nil, err
	}
	return &postgresTx{tx: tx, logger: p.logger}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

type postgresTx struct {
	tx     pgx.Tx
	logger internal.Logger
}

func (t *postgresTx) Commit(ctx context.Context) error {
	return classifyPostgresError(t.tx.Commit(ctx))
}

func (t *postgresTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// --- Users ---
func (t *postgresTx) UserExists(ctx context.Context, userID int64) (bool, error) {
	query, args, err := postgresDialect.userExists(userID)
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}
	var n int64
	if err := t.tx.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		t.logger.Errorf("failed to check user %d: %v", userID, err)
		return false, fmt.Errorf("failed to get user '%d' exists: %w", userID, err)
	}
	return n > 0, nil
}

func (t *postgresTx) CreateUser(ctx context.Context) (int64, error) {
	var id int64
	if err := t.tx.QueryRow(ctx, insertUserSQL).Scan(&id); err != nil {
		t.logger.Errorf("failed to insert user: %v", err)
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

func (t *postgresTx) CountUsers(ctx context.Context) (int64, error) {
	query, args, err := postgresDialect.countUsers()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	var n int64
	if err := t.tx.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// --- Diaries ---
func (t *postgresTx) CreateDiary(ctx context.Context, d *internal.Diary) error {
	query, args, err := postgresDialect.insertDiary(d)
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if err := t.tx.QueryRow(ctx, query, args...).Scan(&d.ID); err != nil {
		t.logger.Errorf("failed to insert diary: %v", err)
		return classifyPostgresError(err)
	}
	return nil
}

func (t *postgresTx) ListDiaries(ctx context.Context, userID int64) ([]internal.Diary, error) {
	query, args, err := postgresDialect.listDiaries(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		t.logger.Errorf("failed to query diaries: %v", err)
		return nil, err
	}
	defer rows.Close()

	diaries := []internal.Diary{}
	for rows.Next() {
		d, err := scanPostgresDiary(rows)
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

func (t *postgresTx) FindDiary(ctx context.Context, diaryID, userID int64) (*internal.Diary, error) {
	query, args, err := postgresDialect.findDiary(diaryID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	d, err := scanPostgresDiary(t.tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get diary '%d' for user '%d': %w", diaryID, userID, err)
	}
	return d, nil
}

func (t *postgresTx) DiaryDateTaken(ctx context.Context, userID int64, date internal.Date, excludeID int64) (bool, error) {
	query, args, err := postgresDialect.diaryDateTaken(userID, date, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}
	var n int64
	if err := t.tx.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to count diaries on %s: %w", date, err)
	}
	return n > 0, nil
}

func (t *postgresTx) UpdateDiary(ctx context.Context, diaryID int64, patch internal.DiaryPatch) (int64, error) {
	query, args, err := postgresDialect.updateDiary(diaryID, patch)
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		t.logger.Errorf("failed to update diary %d: %v", diaryID, err)
		return 0, classifyPostgresError(err)
	}
	return tag.RowsAffected(), nil
}

func (t *postgresTx) DeleteDiary(ctx context.Context, diaryID int64) (int64, error) {
	query, args, err := postgresDialect.deleteDiary(diaryID)
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		t.logger.Errorf("failed to delete diary %d: %v", diaryID, err)
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanPostgresDiary(row pgx.Row) (*internal.Diary, error) {
	var (
		d    internal.Diary
		date time.Time
	)
	if err := row.Scan(&d.ID, &d.UserID, &date, &d.TimeIntoBed, &d.TimeOutOfBed, &d.SleepQuality); err != nil {
		return nil, err
	}
	d.Date = internal.DateOf(date)
	d.TimeIntoBed = d.TimeIntoBed.UTC()
	d.TimeOutOfBed = d.TimeOutOfBed.UTC()
	return &d, nil
}

func classifyPostgresError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation, pgForeignKeyViolation, pgCheckViolation:
	default:
		return err
	}

	c := Constraint(pgErr.ConstraintName)
	switch c {
	case ConstraintSleepQuality, ConstraintTimeSlept, ConstraintDiaryPerDay, ConstraintUserRef:
	default:
		switch pgErr.Code {
		case pgUniqueViolation:
			c = ConstraintDiaryPerDay
		case pgForeignKeyViolation:
			c = ConstraintUserRef
		default:
			c = ConstraintUnknown
		}
	}
	return &ConstraintError{Constraint: c, Err: err}
}

// --- Compile-time assertions ---
var _ Store = (*PostgresStorage)(nil)
var _ Tx = (*postgresTx)(nil)
