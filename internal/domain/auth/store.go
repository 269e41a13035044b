package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID           string
	Email        string
	DisplayName  string
	RoleName     string
	PasswordHash string
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, display_name, role_name, password_hash
    FROM users
    WHERE email = $1
  `, email).Scan(&u.ID, &u.Email, &u.DisplayName, &u.RoleName, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u User) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO users (id, email, display_name, role_name, password_hash)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (email) DO NOTHING
  `, u.ID, u.Email, u.DisplayName, u.RoleName, u.PasswordHash)
	return err
}

func (s *Store) UserByID(ctx context.Context, userID string) (User, error) {
	var u User
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, display_name, role_name, password_hash
    FROM users
    WHERE id = $1
  `, userID).Scan(&u.ID, &u.Email, &u.DisplayName, &u.RoleName, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
