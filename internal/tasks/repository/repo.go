package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taskverse/taskverse-backend/internal/aggregate"
	"github.com/taskverse/taskverse-backend/internal/tasks/domain"
)

// taskSelect flattens each task's assignee junction rows into two congruent
// aggregated columns: a comma-joined id list and a comma-joined list of
// id:name:email:avatar tuples. Both aggregates share the same ORDER BY so
// position i of one corresponds to position i of the other; the aggregate
// decoder relies on that.
const taskSelect = `
SELECT pt.id, pt.project_id, pt.title, pt.description, pt.due_date::text, pt.is_completed, pt.created_at, pt.updated_at,
       COALESCE(string_agg(ptm.user_id::text, ',' ORDER BY ptm.user_id), '') AS assignee_ids,
       COALESCE(string_agg(u.id::text || ':' || u.name || ':' || u.email || ':' || COALESCE(u.avatar, ''), ',' ORDER BY ptm.user_id), '') AS assignee_details
FROM project_tasks pt
LEFT JOIN project_task_members ptm ON pt.id = ptm.task_id
LEFT JOIN users u ON ptm.user_id = u.id
`

// Repo provides persistence for project tasks and their assignee junction
// rows, keeping the parent project's task_count in step inside the same
// transaction as every task mutation.
type Repo struct {
	db  *sql.DB
	log *zap.Logger
}

func NewRepo(db *sql.DB, log *zap.Logger) *Repo {
	return &Repo{db: db, log: log}
}

// CreateInput carries a task creation request.
type CreateInput struct {
	Title       string
	Description *string
	DueDate     *string
	IsCompleted bool
	AssigneeIDs []int64
}

// UpdateInput carries a partial task update. Nil fields are left untouched.
// A non-nil AssigneeIDs — even an empty one — replaces the full assignee set.
type UpdateInput struct {
	Title       *string
	Description *string
	DueDate     *string
	IsCompleted *bool
	AssigneeIDs *[]int64
}

// List returns all tasks of a project with their assignees, newest first.
func (r *Repo) List(ctx context.Context, projectID int64) ([]domain.Task, error) {
	q := taskSelect + `
WHERE pt.project_id = $1
GROUP BY pt.id
ORDER BY pt.created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Task, 0, 16)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// GetByID returns one task scoped to its project.
func (r *Repo) GetByID(ctx context.Context, projectID, taskID int64) (*domain.Task, error) {
	q := taskSelect + `
WHERE pt.id = $1 AND pt.project_id = $2
GROUP BY pt.id;
`
	t, err := scanTask(r.db.QueryRowContext(ctx, q, taskID, projectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Create inserts the task, its assignee rows, and bumps the parent project's
// task_count — all in one transaction. The counter update is a relative
// increment so concurrent creates never lose a count.
func (r *Repo) Create(ctx context.Context, projectID int64, in CreateInput) (*domain.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, r.txFailed("begin create task", err)
	}
	defer tx.Rollback()

	const insertTask = `
INSERT INTO project_tasks (project_id, title, description, due_date, is_completed, created_at, updated_at)
VALUES ($1, $2, $3, $4::date, $5, now(), now())
RETURNING id;
`
	var taskID int64
	err = tx.QueryRowContext(ctx, insertTask,
		projectID, in.Title, in.Description, in.DueDate, in.IsCompleted,
	).Scan(&taskID)
	if err != nil {
		return nil, r.txFailed("insert task", err)
	}

	const insertAssignee = `
INSERT INTO project_task_members (task_id, user_id, assigned_at)
VALUES ($1, $2, now());
`
	for _, userID := range in.AssigneeIDs {
		if _, err := tx.ExecContext(ctx, insertAssignee, taskID, userID); err != nil {
			return nil, r.txFailed("insert assignee", err)
		}
	}

	const bumpCount = `
UPDATE projects SET task_count = task_count + 1, updated_at = now() WHERE id = $1;
`
	if _, err := tx.ExecContext(ctx, bumpCount, projectID); err != nil {
		return nil, r.txFailed("increment task count", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, r.txFailed("commit create task", err)
	}

	return r.GetByID(ctx, projectID, taskID)
}

// Update verifies the task belongs to the project, applies only the supplied
// columns, and — when an assignee list is supplied, even an empty one —
// replaces the whole assignee set.
func (r *Repo) Update(ctx context.Context, projectID, taskID int64, in UpdateInput) (*domain.Task, error) {
	if err := r.mustBelong(ctx, projectID, taskID); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, r.txFailed("begin update task", err)
	}
	defer tx.Rollback()

	sets := []string{}
	args := []any{}
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if in.Title != nil {
		add("title", *in.Title)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.DueDate != nil {
		args = append(args, *in.DueDate)
		sets = append(sets, fmt.Sprintf("due_date = $%d::date", len(args)))
	}
	if in.IsCompleted != nil {
		add("is_completed", *in.IsCompleted)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = now()")
		args = append(args, taskID, projectID)
		q := fmt.Sprintf(
			`UPDATE project_tasks SET %s WHERE id = $%d AND project_id = $%d;`,
			strings.Join(sets, ", "), len(args)-1, len(args),
		)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return nil, r.txFailed("update task", err)
		}
	}

	if in.AssigneeIDs != nil {
		const clear = `DELETE FROM project_task_members WHERE task_id = $1;`
		if _, err := tx.ExecContext(ctx, clear, taskID); err != nil {
			return nil, r.txFailed("clear assignees", err)
		}

		const insertAssignee = `
INSERT INTO project_task_members (task_id, user_id, assigned_at)
VALUES ($1, $2, now());
`
		for _, userID := range *in.AssigneeIDs {
			if _, err := tx.ExecContext(ctx, insertAssignee, taskID, userID); err != nil {
				return nil, r.txFailed("insert assignee", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, r.txFailed("commit update task", err)
	}

	return r.GetByID(ctx, projectID, taskID)
}

// Delete removes the task and its assignee rows and decrements the parent
// project's task_count, floored at zero — one transaction.
func (r *Repo) Delete(ctx context.Context, projectID, taskID int64) error {
	if err := r.mustBelong(ctx, projectID, taskID); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return r.txFailed("begin delete task", err)
	}
	defer tx.Rollback()

	const clear = `DELETE FROM project_task_members WHERE task_id = $1;`
	if _, err := tx.ExecContext(ctx, clear, taskID); err != nil {
		return r.txFailed("clear assignees", err)
	}

	const deleteTask = `DELETE FROM project_tasks WHERE id = $1 AND project_id = $2;`
	if _, err := tx.ExecContext(ctx, deleteTask, taskID, projectID); err != nil {
		return r.txFailed("delete task", err)
	}

	const dropCount = `
UPDATE projects SET task_count = GREATEST(task_count - 1, 0), updated_at = now() WHERE id = $1;
`
	if _, err := tx.ExecContext(ctx, dropCount, projectID); err != nil {
		return r.txFailed("decrement task count", err)
	}

	if err := tx.Commit(); err != nil {
		return r.txFailed("commit delete task", err)
	}
	return nil
}

func (r *Repo) mustBelong(ctx context.Context, projectID, taskID int64) error {
	const q = `SELECT id FROM project_tasks WHERE id = $1 AND project_id = $2;`
	var found int64
	if err := r.db.QueryRowContext(ctx, q, taskID, projectID).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var desc, dueDate sql.NullString
	var idsCSV, detailsCSV string

	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Title, &desc, &dueDate, &t.IsCompleted,
		&t.CreatedAt, &t.UpdatedAt, &idsCSV, &detailsCSV,
	)
	if err != nil {
		return nil, err
	}

	if desc.Valid {
		t.Description = &desc.String
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.String
	}
	t.AssigneeIDs, t.Assignees = aggregate.Decode(idsCSV, detailsCSV)
	return &t, nil
}

func (r *Repo) txFailed(op string, err error) error {
	r.log.Error("task transaction failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, domain.ErrTxFailed)
}
