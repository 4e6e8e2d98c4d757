package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	dom "example.com/voltcart/app/internal/domain/user"
)

const userSelect = `
        SELECT u.id, u.name, u.email, u.password_hash, u.is_active, r.code
        FROM users u
        JOIN user_roles r ON u.user_role_id = r.id
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*dom.User, error) {
	return r.getOne(ctx, `WHERE u.id = ?`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*dom.User, error) {
	return r.getOne(ctx, `WHERE u.email = ?`, email)
}

func (r *UserRepository) Create(ctx context.Context, u *dom.User) (*dom.User, error) {
	roleID, err := r.roleID(ctx, u.RoleCode)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `
        INSERT INTO users (name, email, password_hash, user_role_id, is_active)
        VALUES (?, ?, ?, ?, ?)
    `, u.Name, u.Email, u.PasswordHash, roleID, u.IsActive)
	if err != nil {
		if isMySQLError(err, errDuplicateEntry) {
			return nil, dom.ErrEmailAlreadyUsed
		}
		return nil, err
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *dom.User) (*dom.User, error) {
	roleID, err := r.roleID(ctx, u.RoleCode)
	if err != nil {
		return nil, err
	}

	if _, err := r.db.ExecContext(ctx, `
        UPDATE users
        SET name = ?, email = ?, password_hash = ?, user_role_id = ?, is_active = ?
        WHERE id = ?
    `, u.Name, u.Email, u.PasswordHash, roleID, u.IsActive, u.ID); err != nil {
		if isMySQLError(err, errDuplicateEntry) {
			return nil, dom.ErrEmailAlreadyUsed
		}
		return nil, err
	}
	return r.GetByID(ctx, u.ID)
}

func (r *UserRepository) List(ctx context.Context, filter dom.ListFilter) ([]*dom.User, error) {
	query := userSelect
	var clauses []string
	var args []any
	if filter.RoleCode != nil {
		clauses = append(clauses, "r.code = ?")
		args = append(args, string(*filter.RoleCode))
	}
	if filter.Search != "" {
		clauses = append(clauses, "(u.name LIKE ? OR u.email LIKE ?)")
		like := fmt.Sprintf("%%%s%%", filter.Search)
		args = append(args, like, like)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY u.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*dom.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*dom.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, userSelect+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dom.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) roleID(ctx context.Context, code dom.RoleCode) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM user_roles WHERE code = ?`, string(code)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, dom.ErrInvalidRoleCode
	}
	return id, err
}

func scanUser(s rowScanner) (*dom.User, error) {
	var u dom.User
	var roleCode string
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsActive, &roleCode); err != nil {
		return nil, err
	}
	role, err := dom.ParseRoleCode(roleCode)
	if err != nil {
		return nil, err
	}
	u.RoleCode = role
	return &u, nil
}
