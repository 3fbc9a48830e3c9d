package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signup struct {
	Username        string `json:"username" validate:"required,min=3,username"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Email           string `json:"email" validate:"required,email"`
}

type traveller struct {
	Name string `json:"name" validate:"required,min=3"`
	Age  int    `json:"age" validate:"required,min=1,max=120"`
}

type party struct {
	Passengers []traveller `json:"passengers" validate:"required,min=1,max=6,dive"`
}

func TestValidate_Messages(t *testing.T) {
	errs := Validate(signup{
		Username:        "ab!",
		Password:        "123",
		PasswordConfirm: "1234",
		Email:           "nope",
	})

	assert.Equal(t, "Username can only contain letters, numbers and underscores", errs["username"])
	assert.Equal(t, "Password must be at least 6 characters", errs["password"])
	assert.Equal(t, "Passwords do not match", errs["password_confirm"])
	assert.Equal(t, "Please enter a valid email address", errs["email"])
}

func TestValidate_NestedPaths(t *testing.T) {
	errs := Validate(party{Passengers: []traveller{
		{Name: "Asha Rao", Age: 30},
		{Name: "Al", Age: 130},
	}})

	assert.Len(t, errs, 2)
	assert.Equal(t, "Full name must be at least 3 characters", errs["passengers[1].name"])
	assert.Equal(t, "Please enter a valid age", errs["passengers[1].age"])
}

func TestValidate_Valid(t *testing.T) {
	assert.Nil(t, Validate(signup{
		Username:        "priya_s",
		Password:        "secret1",
		PasswordConfirm: "secret1",
		Email:           "priya@example.com",
	}))
	assert.True(t, Var("2026-11-05", "datetime=2006-01-02"))
	assert.False(t, Var("5 Nov", "datetime=2006-01-02"))
}
