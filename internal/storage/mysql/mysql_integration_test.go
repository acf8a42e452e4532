//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"review_pulse/internal/domain"
	mysqlrepo "review_pulse/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string { return &s }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// ---------- the test ----------
func TestRepo_MySQL_UpsertAndQuery(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=reviewpulse",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "reviewpulse")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Arrange
	if err := repo.UpsertBusiness(ctx, domain.Business{ID: 10001, Name: "Blue Fork", Type: "Restaurant"}); err != nil {
		t.Fatalf("UpsertBusiness: %v", err)
	}

	r1 := domain.Review{
		ID:         "s-1",
		BusinessID: 10001,
		Rating:     5,
		Text:       "great staff",
		Timestamp:  time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
		Reviewer:   pstr("Ana"),
		Source:     pstr("google"),
		RawJSON:    []byte(`{}`),
	}
	r2 := domain.Review{
		ID:         "s-2",
		BusinessID: 10001,
		Rating:     2,
		Text:       "long wait time",
		Timestamp:  time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC),
		Reviewer:   pstr("Bob"),
		Source:     pstr("yelp"),
		RawJSON:    []byte(`{}`),
	}
	if err := repo.UpsertReviews(ctx, []domain.Review{r1, r2}); err != nil {
		t.Fatalf("UpsertReviews: %v", err)
	}
	// Upsert again with updated text; the unique (business_id, source_id)
	// key must dedupe rather than duplicate.
	r2.Text = "long wait time, still"
	if err := repo.UpsertReviews(ctx, []domain.Review{r2}); err != nil {
		t.Fatalf("UpsertReviews again: %v", err)
	}

	// Assert business read; type is normalized to lower case on write
	biz, err := repo.GetBusiness(ctx, 10001)
	if err != nil {
		t.Fatalf("GetBusiness: %v", err)
	}
	if biz.Name != "Blue Fork" || biz.Type != "restaurant" {
		t.Fatalf("unexpected business: %+v", biz)
	}

	ids, err := repo.ListBusinessIDs(ctx)
	if err != nil {
		t.Fatalf("ListBusinessIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != 10001 {
		t.Fatalf("ids: %v", ids)
	}

	// Unbounded window returns both, ascending
	all, err := repo.ListReviews(ctx, 10001, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("reviews: %d", len(all))
	}
	if all[0].ID != "s-1" || all[1].ID != "s-2" {
		t.Fatalf("order: %s, %s", all[0].ID, all[1].ID)
	}
	if all[1].Text != "long wait time, still" {
		t.Fatalf("upsert did not update text: %q", all[1].Text)
	}
	if all[0].Reviewer == nil || *all[0].Reviewer != "Ana" {
		t.Fatalf("reviewer: %v", all[0].Reviewer)
	}

	// Bounded window excludes the January review
	feb, err := repo.ListReviews(ctx, 10001,
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListReviews bounded: %v", err)
	}
	if len(feb) != 1 || feb[0].ID != "s-2" {
		t.Fatalf("bounded window: %+v", feb)
	}

	// Snapshot round trip
	snap := domain.AnalysisSnapshot{
		BusinessID:  10001,
		ComputedAt:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		ReviewCount: 2,
	}
	snap.Analysis.Sentiment.Breakdown = domain.SentimentBreakdown{Positive: 1, Negative: 1}
	if err := repo.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	got, err := repo.LatestSnapshot(ctx, 10001)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if got.ReviewCount != 2 || got.Analysis.Sentiment.Breakdown.Positive != 1 {
		t.Fatalf("snapshot: %+v", got)
	}

	// Unknown business maps to the domain sentinel
	if _, err := repo.GetBusiness(ctx, 99999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetBusiness missing: %v", err)
	}
	if _, err := repo.LatestSnapshot(ctx, 99999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("LatestSnapshot missing: %v", err)
	}
}
