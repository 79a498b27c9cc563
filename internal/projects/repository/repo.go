package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/taskverse/taskverse-backend/internal/aggregate"
	"github.com/taskverse/taskverse-backend/internal/projects/domain"
)

// Repo provides persistence for projects and their membership junction rows.
// Every multi-statement write runs inside one database transaction; a failure
// at any step rolls back the whole unit and surfaces as domain.ErrTxFailed.
type Repo struct {
	db  *sql.DB
	log *zap.Logger
}

func NewRepo(db *sql.DB, log *zap.Logger) *Repo {
	return &Repo{db: db, log: log}
}

// CreateInput carries a project creation request. CreatedAt/UpdatedAt are the
// client-supplied timestamp strings; MemberRoles maps optional extra member
// ids to roles, defaulting to "member".
type CreateInput struct {
	Name        string
	Description *string
	CreatorID   int64
	Status      string
	CreatedAt   string
	UpdatedAt   string
	MemberIDs   []int64
	MemberRoles map[int64]string
}

// UpdateInput carries a partial project update. Nil fields are left
// untouched; updated_at is always refreshed.
type UpdateInput struct {
	Name        *string
	Description *string
	Status      *string
	TaskCount   *int
	ThreadCount *int
}

// Create inserts the project together with its creator membership (role
// "admin") and any extra members, atomically. Returns the created project
// re-read after commit.
func (r *Repo) Create(ctx context.Context, in CreateInput) (*domain.Project, error) {
	if in.Status == "" {
		in.Status = "active"
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, r.txFailed("begin create project", err)
	}
	defer tx.Rollback()

	const insertProject = `
INSERT INTO projects (name, description, creator_id, task_count, thread_count, status, created_at, updated_at)
VALUES ($1, $2, $3, 0, 0, $4, $5::timestamp, $6::timestamp)
RETURNING id;
`
	var projectID int64
	err = tx.QueryRowContext(ctx, insertProject,
		in.Name, in.Description, in.CreatorID, in.Status, in.CreatedAt, in.UpdatedAt,
	).Scan(&projectID)
	if err != nil {
		return nil, r.txFailed("insert project", err)
	}

	const insertMember = `
INSERT INTO project_members (project_id, user_id, role, joined_at)
VALUES ($1, $2, $3, $4::timestamp);
`
	if _, err := tx.ExecContext(ctx, insertMember, projectID, in.CreatorID, "admin", in.CreatedAt); err != nil {
		return nil, r.txFailed("insert creator member", err)
	}

	for _, memberID := range in.MemberIDs {
		role, ok := in.MemberRoles[memberID]
		if !ok || role == "" {
			role = "member"
		}
		if _, err := tx.ExecContext(ctx, insertMember, projectID, memberID, role, in.CreatedAt); err != nil {
			return nil, r.txFailed("insert member", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, r.txFailed("commit create project", err)
	}

	return r.GetByID(ctx, projectID)
}

// GetByID returns the project with its creator and full member list.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	const q = `
SELECT id, name, description, creator_id, task_count, thread_count, status, created_at, updated_at
FROM projects
WHERE id = $1;
`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const creatorQ = `SELECT id, name, email FROM users WHERE id = $1;`
	var creator aggregate.UserRef
	err = r.db.QueryRowContext(ctx, creatorQ, p.CreatorID).
		Scan(&creator.ID, &creator.Name, &creator.Email)
	if err == nil {
		p.Creator = &creator
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if err := r.loadMembers(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns all projects, or only those the given user is a member of
// when userID is non-nil. Each project carries its creator's name/email and
// its member list.
func (r *Repo) List(ctx context.Context, userID *int64) ([]domain.Project, error) {
	q := `
SELECT p.id, p.name, p.description, p.creator_id, p.task_count, p.thread_count, p.status, p.created_at, p.updated_at,
       u.name AS creator_name, u.email AS creator_email
FROM projects p
JOIN users u ON p.creator_id = u.id
ORDER BY p.created_at DESC;
`
	args := []any{}
	if userID != nil {
		q = `
SELECT p.id, p.name, p.description, p.creator_id, p.task_count, p.thread_count, p.status, p.created_at, p.updated_at,
       u.name AS creator_name, u.email AS creator_email
FROM projects p
JOIN users u ON p.creator_id = u.id
JOIN project_members pm ON p.id = pm.project_id
WHERE pm.user_id = $1
ORDER BY p.created_at DESC;
`
		args = append(args, *userID)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		var p domain.Project
		var desc sql.NullString
		err := rows.Scan(
			&p.ID, &p.Name, &desc, &p.CreatorID, &p.TaskCount, &p.ThreadCount,
			&p.Status, &p.CreatedAt, &p.UpdatedAt, &p.CreatorName, &p.CreatorEmail,
		)
		if err != nil {
			return nil, err
		}
		if desc.Valid {
			p.Description = &desc.String
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.loadMembers(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Update applies only the supplied fields and refreshes updated_at. Absent
// fields keep their prior values.
func (r *Repo) Update(ctx context.Context, id int64, in UpdateInput) (*domain.Project, error) {
	if err := r.mustExist(ctx, id); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []any{}
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if in.Name != nil {
		add("name", *in.Name)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.Status != nil {
		add("status", *in.Status)
	}
	if in.TaskCount != nil {
		add("task_count", *in.TaskCount)
	}
	if in.ThreadCount != nil {
		add("thread_count", *in.ThreadCount)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	q := fmt.Sprintf(`UPDATE projects SET %s WHERE id = $%d;`, strings.Join(sets, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// Delete removes the project and everything it owns — task assignee rows,
// tasks, threads, memberships — in dependency order within one transaction.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	if err := r.mustExist(ctx, id); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return r.txFailed("begin delete project", err)
	}
	defer tx.Rollback()

	steps := []struct {
		op string
		q  string
	}{
		{"delete task assignees", `DELETE FROM project_task_members WHERE task_id IN (SELECT id FROM project_tasks WHERE project_id = $1);`},
		{"delete tasks", `DELETE FROM project_tasks WHERE project_id = $1;`},
		{"delete threads", `DELETE FROM threads WHERE project_id = $1;`},
		{"delete members", `DELETE FROM project_members WHERE project_id = $1;`},
		{"delete project", `DELETE FROM projects WHERE id = $1;`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.q, id); err != nil {
			return r.txFailed(step.op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return r.txFailed("commit delete project", err)
	}
	return nil
}

// AddMember inserts a membership, failing with ErrUserNotFound when the user
// does not exist and ErrConflict when the pair already exists. joinedAt may be
// nil to default to now.
func (r *Repo) AddMember(ctx context.Context, projectID, userID int64, role string, joinedAt *string) (*domain.Member, error) {
	const userQ = `SELECT id, name, email FROM users WHERE id = $1;`
	var user aggregate.UserRef
	err := r.db.QueryRowContext(ctx, userQ, userID).Scan(&user.ID, &user.Name, &user.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	exists, err := r.memberExists(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrConflict
	}

	const insert = `
INSERT INTO project_members (project_id, user_id, role, joined_at)
VALUES ($1, $2, $3, COALESCE($4::timestamp, now()))
RETURNING joined_at;
`
	m := domain.Member{UserID: userID, User: user, Role: role}
	if err := r.db.QueryRowContext(ctx, insert, projectID, userID, role, joinedAt).Scan(&m.JoinedAt); err != nil {
		// unique violation → a concurrent add won the race
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrConflict
		}
		return nil, err
	}

	return &m, nil
}

// RemoveMember deletes a membership, failing with ErrMemberNotFound when the
// pair does not exist.
func (r *Repo) RemoveMember(ctx context.Context, projectID, userID int64) error {
	exists, err := r.memberExists(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrMemberNotFound
	}

	const q = `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2;`
	result, err := r.db.ExecContext(ctx, q, projectID, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

// UpdateMemberRole changes a membership's role, failing with
// ErrMemberNotFound when the pair does not exist.
func (r *Repo) UpdateMemberRole(ctx context.Context, projectID, userID int64, role string) error {
	exists, err := r.memberExists(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrMemberNotFound
	}

	const q = `UPDATE project_members SET role = $1 WHERE project_id = $2 AND user_id = $3;`
	result, err := r.db.ExecContext(ctx, q, role, projectID, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

// Exists reports whether the project id is present.
func (r *Repo) Exists(ctx context.Context, id int64) (bool, error) {
	err := r.mustExist(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repo) mustExist(ctx context.Context, id int64) error {
	const q = `SELECT id FROM projects WHERE id = $1;`
	var found int64
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *Repo) memberExists(ctx context.Context, projectID, userID int64) (bool, error) {
	const q = `SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2;`
	var one int
	err := r.db.QueryRowContext(ctx, q, projectID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repo) loadMembers(ctx context.Context, p *domain.Project) error {
	const q = `
SELECT pm.user_id, pm.role, pm.joined_at, u.name, u.email
FROM project_members pm
JOIN users u ON pm.user_id = u.id
WHERE pm.project_id = $1
ORDER BY pm.joined_at;
`
	rows, err := r.db.QueryContext(ctx, q, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	p.Members = make([]domain.Member, 0, 8)
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.UserID, &m.Role, &m.JoinedAt, &m.User.Name, &m.User.Email); err != nil {
			return err
		}
		m.User.ID = m.UserID
		p.Members = append(p.Members, m)
	}
	return rows.Err()
}

func scanProject(row *sql.Row) (*domain.Project, error) {
	var p domain.Project
	var desc sql.NullString
	err := row.Scan(
		&p.ID, &p.Name, &desc, &p.CreatorID, &p.TaskCount, &p.ThreadCount,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		p.Description = &desc.String
	}
	return &p, nil
}

func (r *Repo) txFailed(op string, err error) error {
	r.log.Error("project transaction failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, domain.ErrTxFailed)
}
