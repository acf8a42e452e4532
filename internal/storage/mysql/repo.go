package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"review_pulse/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// Open window ends become wide sentinels so one query shape serves both
// bounded and unbounded reads.
var (
	minTime = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	maxTime = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertBusiness(ctx context.Context, b domain.Business) error {
	_, err := r.db.ExecContext(ctx, upsertBusinessSQL, b.ID, b.Name, strings.ToLower(b.Type), 0.0)
	return err
}

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*8)
	for _, rv := range rs {
		values = append(values, "(?,?,?,?,?,?,?,?)")
		args = append(args,
			rv.BusinessID,
			rv.ID,
			valStr(rv.Reviewer),
			rv.Rating,
			rv.Text,
			rv.Timestamp.UTC(),
			valStr(rv.Source),
			valJSON(rv.RawJSON),
		)
	}
	_, err := r.db.ExecContext(ctx, insertReviewsPrefix+strings.Join(values, ",")+insertReviewsOnDup, args...)
	return err
}

func (r *Repo) SaveSnapshot(ctx context.Context, s domain.AnalysisSnapshot) error {
	analysis, err := json.Marshal(s.Analysis)
	if err != nil {
		return err
	}
	enhanced, err := json.Marshal(s.Enhanced)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertSnapshotSQL,
		s.BusinessID, s.ComputedAt.UTC(), s.ReviewCount, string(analysis), string(enhanced))
	return err
}

func (r *Repo) GetBusiness(ctx context.Context, id int64) (domain.Business, error) {
	var b domain.Business
	err := r.db.QueryRowContext(ctx, selectBusinessSQL, id).Scan(&b.ID, &b.Name, &b.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Business{}, domain.ErrNotFound
	}
	return b, err
}

func (r *Repo) ListBusinessIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, selectBusinessIDsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repo) ListReviews(ctx context.Context, businessID int64, from, to time.Time) ([]domain.Review, error) {
	if from.IsZero() {
		from = minTime
	}
	if to.IsZero() {
		to = maxTime
	}

	rows, err := r.db.QueryContext(ctx, selectReviewsSQL, businessID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var reviewer, source sql.NullString
		if err := rows.Scan(&rv.ID, &reviewer, &rv.Rating, &rv.Text, &rv.Timestamp, &source); err != nil {
			return nil, err
		}
		rv.BusinessID = businessID
		if reviewer.Valid {
			rv.Reviewer = &reviewer.String
		}
		if source.Valid {
			rv.Source = &source.String
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) LatestSnapshot(ctx context.Context, businessID int64) (domain.AnalysisSnapshot, error) {
	var s domain.AnalysisSnapshot
	var analysis, enhanced []byte
	err := r.db.QueryRowContext(ctx, selectLatestSnapshotSQL, businessID).
		Scan(&s.BusinessID, &s.ComputedAt, &s.ReviewCount, &analysis, &enhanced)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AnalysisSnapshot{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.AnalysisSnapshot{}, err
	}
	if err := json.Unmarshal(analysis, &s.Analysis); err != nil {
		return domain.AnalysisSnapshot{}, err
	}
	if err := json.Unmarshal(enhanced, &s.Enhanced); err != nil {
		return domain.AnalysisSnapshot{}, err
	}
	return s, nil
}
