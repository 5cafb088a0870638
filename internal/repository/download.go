package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/downloadzone/internal/model"
)

const (
	DownloadSortDateDesc      = "date_desc"
	DownloadSortDateAsc       = "date_asc"
	DownloadSortDownloadsDesc = "downloads_desc"
	DownloadSortDownloadsAsc  = "downloads_asc"
	DownloadSortNameAsc       = "name_asc"
	DownloadSortNameDesc      = "name_desc"
	DownloadSortSizeDesc      = "size_desc"
	DownloadSortSizeAsc       = "size_asc"
)

var downloadOrderBy = map[string]string{
	DownloadSortDateDesc:      "created_at DESC, id DESC",
	DownloadSortDateAsc:       "created_at ASC, id ASC",
	DownloadSortDownloadsDesc: "download_count DESC, created_at DESC, id DESC",
	DownloadSortDownloadsAsc:  "download_count ASC, created_at DESC, id DESC",
	DownloadSortNameAsc:       "LOWER(name) ASC, id ASC",
	DownloadSortNameDesc:      "LOWER(name) DESC, id DESC",
	// Unknown sizes sort last in both directions
	DownloadSortSizeDesc: "CASE WHEN file_size_bytes IS NULL THEN 1 ELSE 0 END, file_size_bytes DESC, id DESC",
	DownloadSortSizeAsc:  "CASE WHEN file_size_bytes IS NULL THEN 1 ELSE 0 END, file_size_bytes ASC, id ASC",
}

// ValidDownloadSort reports whether sort is a known sort key.
func ValidDownloadSort(sort string) bool {
	_, ok := downloadOrderBy[sort]
	return ok
}

var (
	ErrDownloadNotFound = errors.New("download not found")
)

// DownloadFilter narrows a catalog listing. Zero values mean "no filter".
type DownloadFilter struct {
	Type     string
	Search   string
	Category string
	Tags     []string // folded; an entry matches if it has any of them
	DateFrom string
	DateTo   string
	SizeMin  *int64
	SizeMax  *int64
}

func (f DownloadFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, f.Type)
	}
	if f.Search != "" {
		conds = append(conds, `LOWER(name) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(f.Search))+"%")
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if len(f.Tags) > 0 {
		conds = append(conds, "EXISTS (SELECT 1 FROM download_tags dt WHERE dt.download_id = downloads.id AND dt.tag IN (?))")
		args = append(args, f.Tags)
	}
	if f.DateFrom != "" {
		conds = append(conds, "submission_date >= ?")
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		conds = append(conds, "submission_date <= ?")
		args = append(args, f.DateTo)
	}
	if f.SizeMin != nil {
		conds = append(conds, "file_size_bytes IS NOT NULL AND file_size_bytes >= ?")
		args = append(args, *f.SizeMin)
	}
	if f.SizeMax != nil {
		conds = append(conds, "file_size_bytes IS NOT NULL AND file_size_bytes <= ?")
		args = append(args, *f.SizeMax)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type DownloadRepository interface {
	Create(ctx context.Context, download *model.Download) error
	CreateBatch(ctx context.Context, downloads []*model.Download) error
	ByID(ctx context.Context, id string) (*model.Download, error)
	ByIDs(ctx context.Context, ids []string) ([]*model.Download, error)
	List(ctx context.Context, filter DownloadFilter, sort string, page, limit int) ([]*model.Download, int, error)
	Count(ctx context.Context) (int, error)
	IncrementCount(ctx context.Context, id string) error
	TrackActivity(ctx context.Context, activity *model.DownloadActivity) error
	TopByDownloads(ctx context.Context, limit int, excludeIDs []string) ([]*model.Download, error)
	TrendingIDs(ctx context.Context, since time.Time, limit int) ([]string, error)
	PopularTags(ctx context.Context, limit int) ([]model.TagCount, error)
	CountByType(ctx context.Context) (map[string]int, error)
	TotalDownloads(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
}

type downloadRepository struct {
	db *sqlx.DB
}

func NewDownloadRepository(db *sqlx.DB) DownloadRepository {
	return &downloadRepository{db: db}
}

const insertDownloadQuery = `
	INSERT INTO downloads (id, name, download_link, type, submission_date, approved, created_at,
		download_count, file_size, file_size_bytes, description, category, site_name, site_url, tags)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

func insertDownload(ctx context.Context, tx *sqlx.Tx, d *model.Download) error {
	_, err := tx.ExecContext(ctx, insertDownloadQuery,
		d.ID,
		d.Name,
		d.DownloadLink,
		d.Type,
		d.SubmissionDate,
		d.Approved,
		d.CreatedAt,
		d.DownloadCount,
		d.FileSize,
		d.FileSizeBytes,
		d.Description,
		d.Category,
		d.SiteName,
		d.SiteURL,
		d.Tags,
	)
	if err != nil {
		return err
	}

	for i, tag := range d.Tags {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO download_tags (download_id, tag, position) VALUES ($1, $2, $3)`,
			d.ID, model.FoldTag(tag), i,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *downloadRepository) Create(ctx context.Context, download *model.Download) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return insertDownload(ctx, tx, download)
	})
}

func (r *downloadRepository) CreateBatch(ctx context.Context, downloads []*model.Download) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, d := range downloads {
			if err := insertDownload(ctx, tx, d); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *downloadRepository) ByID(ctx context.Context, id string) (*model.Download, error) {
	download := &model.Download{}
	query := `SELECT * FROM downloads WHERE id = $1`

	err := r.db.GetContext(ctx, download, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrDownloadNotFound
	}
	if err != nil {
		return nil, err
	}
	return download, nil
}

// ByIDs returns the matching downloads in no particular order.
func (r *downloadRepository) ByIDs(ctx context.Context, ids []string) ([]*model.Download, error) {
	downloads := []*model.Download{}
	if len(ids) == 0 {
		return downloads, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM downloads WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &downloads, r.db.Rebind(query), args...)
	return downloads, err
}

func (r *downloadRepository) List(ctx context.Context, filter DownloadFilter, sort string, page, limit int) ([]*model.Download, int, error) {
	orderBy, ok := downloadOrderBy[sort]
	if !ok {
		orderBy = downloadOrderBy[DownloadSortDateDesc]
	}

	where, args := filter.where()

	countQuery, countArgs, err := sqlx.In(`SELECT COUNT(*) FROM downloads`+where, args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	err = r.db.GetContext(ctx, &total, r.db.Rebind(countQuery), countArgs...)
	if err != nil {
		return nil, 0, err
	}

	listArgs := append(args, limit, offsetFor(page, limit))
	listQuery, listArgs, err := sqlx.In(`SELECT * FROM downloads`+where+` ORDER BY `+orderBy+` LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, err
	}

	downloads := []*model.Download{}
	err = r.db.SelectContext(ctx, &downloads, r.db.Rebind(listQuery), listArgs...)
	if err != nil {
		return nil, 0, err
	}
	return downloads, total, nil
}

func (r *downloadRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM downloads`)
	return count, err
}

func (r *downloadRepository) IncrementCount(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE downloads SET download_count = download_count + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrDownloadNotFound
	}
	return nil
}

// TrackActivity increments the download count and records an activity row
// in one transaction.
func (r *downloadRepository) TrackActivity(ctx context.Context, activity *model.DownloadActivity) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE downloads SET download_count = download_count + 1 WHERE id = $1`,
			activity.DownloadID,
		)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrDownloadNotFound
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO download_activity (id, download_id, created_at) VALUES ($1, $2, $3)`,
			activity.ID, activity.DownloadID, activity.CreatedAt,
		)
		return err
	})
}

func (r *downloadRepository) TopByDownloads(ctx context.Context, limit int, excludeIDs []string) ([]*model.Download, error) {
	downloads := []*model.Download{}
	if limit <= 0 {
		return downloads, nil
	}

	query := `SELECT * FROM downloads WHERE approved = TRUE`
	args := []any{}
	if len(excludeIDs) > 0 {
		query += ` AND id NOT IN (?)`
		args = append(args, excludeIDs)
	}
	query += ` ORDER BY download_count DESC, created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &downloads, r.db.Rebind(query), args...)
	return downloads, err
}

// TrendingIDs ranks downloads by activity since the given time.
func (r *downloadRepository) TrendingIDs(ctx context.Context, since time.Time, limit int) ([]string, error) {
	ids := []string{}
	query := `
		SELECT download_id
		FROM download_activity
		WHERE created_at >= $1
		GROUP BY download_id
		ORDER BY COUNT(*) DESC, MAX(created_at) DESC
		LIMIT $2
	`
	err := r.db.SelectContext(ctx, &ids, query, since.UTC(), limit)
	return ids, err
}

func (r *downloadRepository) PopularTags(ctx context.Context, limit int) ([]model.TagCount, error) {
	tags := []model.TagCount{}
	query := `
		SELECT tag, COUNT(*) AS count
		FROM download_tags
		GROUP BY tag
		ORDER BY count DESC, tag ASC
		LIMIT $1
	`
	err := r.db.SelectContext(ctx, &tags, query, limit)
	return tags, err
}

func (r *downloadRepository) CountByType(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Type  string `db:"type"`
		Count int    `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows, `SELECT type, COUNT(*) AS count FROM downloads GROUP BY type`)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}

func (r *downloadRepository) TotalDownloads(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total, `SELECT CAST(COALESCE(SUM(download_count), 0) AS BIGINT) FROM downloads`)
	return total, err
}

func (r *downloadRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM downloads WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrDownloadNotFound
	}
	return nil
}
