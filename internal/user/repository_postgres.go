package user

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userColumns = `"userId", email, password, "firstName", "lastName", phone, "dateOfBirth", goals, restrictions, "createAt", "updateAt"`

	getUserByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE "userId" = $1`
	getUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	insertUserQuery = `
		INSERT INTO users (email, password, "firstName", "lastName", phone, "dateOfBirth", goals, restrictions, "createAt", "updateAt")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING "userId"
	`
	updateUserQuery = `
		UPDATE users
		SET email = $1,
			"firstName" = $2,
			"lastName" = $3,
			phone = $4,
			"dateOfBirth" = $5,
			goals = $6,
			restrictions = $7,
			"updateAt" = $8
		WHERE "userId" = $9
	`
	deleteUserQuery = `DELETE FROM users WHERE "userId" = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(id int) (User, error) {
	return r.getOne(getUserByIDQuery, id)
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	return r.getOne(getUserByEmailQuery, email)
}

func (r *PostgresRepository) getOne(query string, arg any) (User, error) {
	user, err := scanUser(r.db.QueryRow(query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) Create(user User) (User, error) {
	goals, err := json.Marshal(user.Goals)
	if err != nil {
		return User{}, err
	}

	var id int
	err = r.db.QueryRow(
		insertUserQuery,
		user.Email,
		user.Password,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.DateOfBirth,
		goals,
		pq.Array(restrictionsOrEmpty(user.Restrictions)),
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}

	user.ID = id
	return user, nil
}

func (r *PostgresRepository) Update(id int, userUpdate User) (User, error) {
	goals, err := json.Marshal(userUpdate.Goals)
	if err != nil {
		return User{}, err
	}

	result, err := r.db.Exec(
		updateUserQuery,
		userUpdate.Email,
		userUpdate.FirstName,
		userUpdate.LastName,
		userUpdate.Phone,
		userUpdate.DateOfBirth,
		goals,
		pq.Array(restrictionsOrEmpty(userUpdate.Restrictions)),
		userUpdate.UpdatedAt,
		id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if affected == 0 {
		return User{}, ErrNotFound
	}

	return r.GetByID(id)
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteUserQuery, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func scanUser(scanner rowScanner) (User, error) {
	user := User{}
	var phone, dob sql.NullString
	var goals []byte
	var restrictions []string
	var createdAt, updatedAt sql.NullString

	if err := scanner.Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.FirstName,
		&user.LastName,
		&phone,
		&dob,
		&goals,
		pq.Array(&restrictions),
		&createdAt,
		&updatedAt,
	); err != nil {
		return User{}, err
	}

	user.Phone = phone.String
	user.DateOfBirth = dob.String
	user.Goals = DefaultGoals()
	if len(goals) > 0 {
		if err := json.Unmarshal(goals, &user.Goals); err != nil {
			return User{}, err
		}
	}
	user.Restrictions = restrictionsOrEmpty(restrictions)
	user.CreatedAt = createdAt.String
	user.UpdatedAt = updatedAt.String

	return user, nil
}

func restrictionsOrEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// pgx and lib/pq both surface SQLSTATE 23505 in the error text.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "23505")
}
