package user

import (
	"context"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCan(t *testing.T) {
	tests := []struct {
		role     Role
		action   Action
		resource Resource
		want     bool
	}{
		{RoleAdmin, ActionDelete, ResourceClient, true},
		{RoleManager, ActionCreate, ResourceReport, true},
		{RoleProjectLeader, ActionUpdate, ResourceProject, true},
		{RoleProjectLeader, ActionDelete, ResourceProject, false},
		{RoleEmployee, ActionCreate, ResourceActivity, true},
		{RoleEmployee, ActionRead, ResourceReport, false},
		{RoleEmployee, ActionDelete, ResourceMembers, false},
		{Role("ghost"), ActionRead, ResourceActivity, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"_"+string(tt.action)+"_"+string(tt.resource), func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.role, tt.action, tt.resource))
		})
	}
}

func TestCallerFromContext(t *testing.T) {
	ja := jwtauth.New("HS256", []byte("secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"employee_id": "emp-1",
		"email":       "a@b.c",
		"role":        "manager",
	})
	require.NoError(t, err)

	ctx := jwtauth.NewContext(context.Background(), token, nil)
	caller, err := CallerFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, Caller{EmployeeID: "emp-1", Email: "a@b.c", Role: RoleManager}, caller)

	_, err = CallerFromContext(context.Background())
	assert.ErrorIs(t, err, ErrInvalidToken)
}
