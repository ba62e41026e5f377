package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/wChoros/OpenEduLog-backend/internal/apperr"
	"github.com/wChoros/OpenEduLog-backend/internal/model"
)

const userColumns = `
	id, first_name, last_name, email, login, password_hash,
	is_email_confirmed, phone_number, birth_date, address_id, role, created_at
`

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Login,
		&user.PasswordHash,
		&user.IsEmailConfirmed,
		&user.PhoneNumber,
		&user.BirthDate,
		&user.AddressID,
		&user.Role,
		&user.CreatedAt,
	)
	return user, err
}

// CreateUserWithAddress persists the address and the user that owns it
// in one transaction, so a failed user insert leaves no orphan address.
func (s *Store) CreateUserWithAddress(ctx context.Context, user model.User, addr model.Address) (int64, error) {
	var userID int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var addressID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO addresses (street, house, city, zip, country)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, addr.Street, addr.House, addr.City, addr.Zip, addr.Country).Scan(&addressID)
		if err != nil {
			return err
		}

		return tx.QueryRow(ctx, `
			INSERT INTO users (first_name, last_name, email, login, password_hash,
				is_email_confirmed, phone_number, birth_date, address_id, role)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`,
			user.FirstName, user.LastName, user.Email, user.Login, user.PasswordHash,
			user.IsEmailConfirmed, user.PhoneNumber, user.BirthDate, addressID, user.Role,
		).Scan(&userID)
	})
	if err != nil {
		if constraint, ok := constraintViolated(err); ok {
			switch constraint {
			case "users_email_key":
				return 0, apperr.Conflict("Email already exists")
			case "users_login_key":
				return 0, apperr.Conflict("Login already exists")
			case "users_phone_number_key":
				return 0, apperr.Conflict("Phone number already exists")
			}
			return 0, apperr.Conflict("User already exists")
		}
		return 0, apperr.Store(err)
	}
	return userID, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, apperr.NotFound("user not found")
		}
		return model.User{}, apperr.Store(err)
	}
	return user, nil
}

// GetUserByLoginOrEmail resolves the login identifier; either field may
// be empty.
func (s *Store) GetUserByLoginOrEmail(ctx context.Context, email, login string) (model.User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE (email = $1 AND $1 <> '') OR (login = $2 AND $2 <> '')
	`, email, login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, apperr.NotFound("user not found")
		}
		return model.User{}, apperr.Store(err)
	}
	return user, nil
}

func (s *Store) UserExistsWithRole(ctx context.Context, id int64, role model.Role) (bool, error) {
	found, err := s.exists(ctx, `SELECT 1 FROM users WHERE id = $1 AND role = $2`, id, role)
	if err != nil {
		return false, apperr.Store(err)
	}
	return found, nil
}
