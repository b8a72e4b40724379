package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"qc-console/internal/model"
)

func TestAllowed(t *testing.T) {
	admin := &model.User{ID: "1", Name: "a", Role: model.RoleAdmin}
	engineer := &model.User{ID: "2", Name: "b", Role: model.RoleEngineer}

	cases := []struct {
		name  string
		user  *model.User
		roles []string
		want  bool
	}{
		{"member of single-role list", admin, []string{model.RoleAdmin}, true},
		{"member of multi-role list", engineer, []string{model.RoleAdmin, model.RoleEngineer}, true},
		{"not a member", engineer, []string{model.RoleAdmin}, false},
		{"case insensitive match", admin, []string{"admin"}, true},
		{"nil user denies", nil, []string{model.RoleAdmin}, false},
		{"empty allow-list denies", admin, nil, false},
		{"unknown role string", &model.User{ID: "3", Name: "c", Role: "Visitante"}, []string{model.RoleAdmin, model.RoleEngineer}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allowed(tc.user, tc.roles...))
		})
	}
}
