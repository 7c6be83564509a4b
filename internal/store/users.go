package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/models"
)

const userColumns = `id, username, email, name, phone, address, role, created_at, updated_at, version`

type CreateUserRequest struct {
	Username string
	Email    string
	Name     string
	Phone    string
	Address  string
	Role     models.Role
}

// ProfileUpdate holds the fields a customer may edit on their own account.
type ProfileUpdate struct {
	Email   string
	Name    string
	Phone   string
	Address string
}

func scanUser(row rowScanner, user *models.User) error {
	return row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Name,
		&user.Phone,
		&user.Address,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Version,
	)
}

func CreateUser(ctx context.Context, q Querier, req CreateUserRequest) (*models.User, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("%w: username is required", database.ErrInvalidInput)
	}
	if req.Role == "" {
		req.Role = models.RoleCustomer
	}
	if _, ok := models.ParseRole(string(req.Role)); !ok {
		return nil, database.ErrInvalidRole
	}

	user := &models.User{}

	query := `
		INSERT INTO users (username, email, name, phone, address, role, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW(), 1)
		RETURNING ` + userColumns

	err := scanUser(q.QueryRowContext(ctx, query,
		req.Username, req.Email, req.Name, req.Phone, req.Address, req.Role), user)
	if err != nil {
		if database.IsUniqueViolation(err, "users_username_key") {
			return nil, database.ErrDuplicateName
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func GetUser(ctx context.Context, q Querier, id int64) (*models.User, error) {
	user := &models.User{}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := scanUser(q.QueryRowContext(ctx, query, id), user)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

func GetUserByUsername(ctx context.Context, q Querier, username string) (*models.User, error) {
	user := &models.User{}

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	err := scanUser(q.QueryRowContext(ctx, query, username), user)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	return user, nil
}

func UpdateProfile(ctx context.Context, db *sql.DB, userID int64, upd ProfileUpdate) (*models.User, error) {
	user := &models.User{}

	query := `
		UPDATE users
		SET email = $1, name = $2, phone = $3, address = $4,
		    version = version + 1, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + userColumns

	err := scanUser(db.QueryRowContext(ctx, query, upd.Email, upd.Name, upd.Phone, upd.Address, userID), user)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return user, nil
}

func UpdateUserRole(ctx context.Context, db *sql.DB, userID int64, role models.Role) (*models.User, error) {
	if _, ok := models.ParseRole(string(role)); !ok {
		return nil, database.ErrInvalidRole
	}

	user := &models.User{}

	query := `
		UPDATE users
		SET role = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + userColumns

	err := scanUser(db.QueryRowContext(ctx, query, role, userID), user)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user role: %w", err)
	}

	return user, nil
}

func DeleteUser(ctx context.Context, db *sql.DB, userID int64) error {
	return deleteByID(ctx, db, "users", userID, database.ErrUserNotFound)
}

func ListUsers(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	page, pageSize = NormalizePage(page, pageSize)

	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := scanUser(rows, &user); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(users, total, page, pageSize), nil
}
