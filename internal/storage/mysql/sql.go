package mysql

const upsertBusinessSQL = `
INSERT INTO businesses
  (id, name, type, response_rate)
VALUES
  (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name          = VALUES(name),
  type          = VALUES(type),
  response_rate = VALUES(response_rate),
  updated_at    = CURRENT_TIMESTAMP
`

// Note: `text` is reserved; keep it quoted everywhere.
const insertReviewsPrefix = "INSERT INTO reviews\n  (business_id, source_id, reviewer, rating, `text`, created_at, source, raw)\nVALUES "

// COALESCE keeps the old value when a re-ingested record carries NULL.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  reviewer   = COALESCE(VALUES(reviewer), reviews.reviewer),\n" +
	"  rating     = VALUES(rating),\n" +
	"  `text`     = VALUES(`text`),\n" +
	"  created_at = VALUES(created_at),\n" +
	"  source     = COALESCE(VALUES(source), reviews.source),\n" +
	"  raw        = COALESCE(VALUES(raw), reviews.raw)\n"

const insertSnapshotSQL = `
INSERT INTO analysis_snapshots
  (business_id, computed_at, review_count, analysis, enhanced)
VALUES
  (?, ?, ?, ?, ?)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const selectBusinessSQL = `
SELECT id, name, type
FROM businesses
WHERE id = ?
`

const selectBusinessIDsSQL = `
SELECT id FROM businesses ORDER BY id
`

// Bounds are optional; the repo substitutes sentinels for open ends.
const selectReviewsSQL = "SELECT source_id, reviewer, rating, `text`, created_at, source\n" +
	"FROM reviews\n" +
	"WHERE business_id = ? AND created_at >= ? AND created_at < ?\n" +
	"ORDER BY created_at ASC, id ASC"

const selectLatestSnapshotSQL = `
SELECT business_id, computed_at, review_count, analysis, enhanced
FROM analysis_snapshots
WHERE business_id = ?
ORDER BY computed_at DESC, id DESC
LIMIT 1
`
