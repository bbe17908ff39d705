package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tutorhive/tutorhive/internal/models"
	"github.com/tutorhive/tutorhive/internal/utils"
)

const testSecret = "test-secret"

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour)

	user, token, err := svc.Register(context.Background(), "Ada@Example.com", "correct-horse", "Ada L", models.RoleStudent)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if !user.IsApproved {
		t.Error("students must be approved immediately")
	}
	if token == "" {
		t.Fatal("no token issued")
	}

	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != user.ID {
		t.Errorf("sub = %v, want %s", claims["sub"], user.ID)
	}
	if claims["role"] != string(models.RoleStudent) {
		t.Errorf("role = %v, want student", claims["role"])
	}

	if _, _, err := svc.Login(context.Background(), "ada@example.com", "correct-horse"); err != nil {
		t.Errorf("Login: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "ada@example.com", "wrong"); !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Errorf("wrong password err = %v, want UNAUTHORIZED", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever"); !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Errorf("unknown user err = %v, want UNAUTHORIZED", err)
	}
}

func TestRegisterMentorNeedsApproval(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour)

	user, _, err := svc.Register(context.Background(), "mentor@example.com", "longenough", "M", models.RoleMentor)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.IsApproved {
		t.Error("mentors must start unapproved")
	}
}

func TestRegisterValidation(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour)

	cases := []struct {
		name     string
		email    string
		password string
		role     models.UserRole
	}{
		{"bad email", "not-an-email", "longenough", models.RoleStudent},
		{"empty email", "", "longenough", models.RoleStudent},
		{"short password", "a@b.com", "short", models.RoleStudent},
		{"admin role", "a@b.com", "longenough", models.RoleAdmin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.Register(context.Background(), tc.email, tc.password, "x", tc.role); !utils.IsCode(err, utils.CodeInvalidArgument) {
				t.Errorf("err = %v, want INVALID_ARGUMENT", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour)

	if _, _, err := svc.Register(context.Background(), "dup@example.com", "longenough", "x", models.RoleStudent); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, _, err := svc.Register(context.Background(), "DUP@example.com", "longenough", "x", models.RoleStudent); !utils.IsCode(err, utils.CodeConflict) {
		t.Errorf("second Register err = %v, want CONFLICT", err)
	}
}
