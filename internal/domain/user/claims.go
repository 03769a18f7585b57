package user

import (
	"context"
	"fmt"

	"github.com/go-chi/jwtauth/v5"
)

// CallerFromContext reads the verified access token claims placed in ctx by jwtauth.Verifier.
func CallerFromContext(ctx context.Context) (Caller, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Caller{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return Caller{}, fmt.Errorf("%w: employee_id claim is missing", ErrInvalidToken)
	}

	role, _ := claims["role"].(string)
	email, _ := claims["email"].(string)

	return Caller{
		EmployeeID: employeeID,
		Email:      email,
		Role:       Role(role),
	}, nil
}
