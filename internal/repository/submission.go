package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/downloadzone/internal/model"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	CreateBatch(ctx context.Context, submissions []*model.Submission) error
	ByID(ctx context.Context, id string) (*model.Submission, error)
	List(ctx context.Context, status model.SubmissionStatus, page, limit int) ([]*model.Submission, int, error)
	MarkSeen(ctx context.Context, ids []string) error
	UpdateStatus(ctx context.Context, id string, status model.SubmissionStatus, markSeen bool) error
	Publish(ctx context.Context, id string, download *model.Download) error
	CountUnseenPending(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

type submissionRepository struct {
	db *sqlx.DB
}

func NewSubmissionRepository(db *sqlx.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

const insertSubmissionQuery = `
	INSERT INTO submissions (id, name, download_link, type, submission_date, status, seen_by_admin,
		created_at, file_size, file_size_bytes, description, category, site_name, site_url, tags,
		submitter_email, submitter_user_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
`

func (r *submissionRepository) Create(ctx context.Context, s *model.Submission) error {
	return insertSubmission(ctx, r.db, s)
}

// CreateBatch inserts all submissions or none.
func (r *submissionRepository) CreateBatch(ctx context.Context, submissions []*model.Submission) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, s := range submissions {
			if err := insertSubmission(ctx, tx, s); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertSubmission(ctx context.Context, db sqlx.ExecerContext, s *model.Submission) error {
	_, err := db.ExecContext(ctx, insertSubmissionQuery,
		s.ID,
		s.Name,
		s.DownloadLink,
		s.Type,
		s.SubmissionDate,
		s.Status,
		s.SeenByAdmin,
		s.CreatedAt,
		s.FileSize,
		s.FileSizeBytes,
		s.Description,
		s.Category,
		s.SiteName,
		s.SiteURL,
		s.Tags,
		s.SubmitterEmail,
		s.SubmitterUserID,
	)
	return err
}

func (r *submissionRepository) ByID(ctx context.Context, id string) (*model.Submission, error) {
	submission := &model.Submission{}
	query := `SELECT * FROM submissions WHERE id = $1`

	err := r.db.GetContext(ctx, submission, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return submission, nil
}

// List returns submissions newest first. An empty status lists all.
func (r *submissionRepository) List(ctx context.Context, status model.SubmissionStatus, page, limit int) ([]*model.Submission, int, error) {
	where := ""
	args := []any{}
	if status != "" {
		where = ` WHERE status = ?`
		args = append(args, status)
	}

	var total int
	err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM submissions`+where), args...)
	if err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(`SELECT * FROM submissions` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	args = append(args, limit, offsetFor(page, limit))

	submissions := []*model.Submission{}
	err = r.db.SelectContext(ctx, &submissions, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return submissions, total, nil
}

// MarkSeen flags the given pending submissions as seen by the admin.
func (r *submissionRepository) MarkSeen(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(
		`UPDATE submissions SET seen_by_admin = TRUE WHERE status = ? AND id IN (?)`,
		model.SubmissionStatusPending, ids,
	)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id string, status model.SubmissionStatus, markSeen bool) error {
	query := `UPDATE submissions SET status = $1 WHERE id = $2`
	if markSeen {
		query = `UPDATE submissions SET status = $1, seen_by_admin = TRUE WHERE id = $2`
	}

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// Publish marks the submission approved and seen and inserts its catalog
// entry in one transaction. Nothing is written when the submission is gone.
func (r *submissionRepository) Publish(ctx context.Context, id string, download *model.Download) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE submissions SET status = $1, seen_by_admin = TRUE WHERE id = $2`,
			model.SubmissionStatusApproved, id,
		)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrSubmissionNotFound
		}
		return insertDownload(ctx, tx, download)
	})
}

func (r *submissionRepository) CountUnseenPending(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM submissions WHERE status = $1 AND seen_by_admin = FALSE`
	err := r.db.GetContext(ctx, &count, query, model.SubmissionStatusPending)
	return count, err
}

func (r *submissionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}
