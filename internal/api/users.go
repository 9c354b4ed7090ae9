package api

import (
	"context"
	"fmt"
	"net/http"

	"taskmate/internal/domain"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns the stored user.
func (c *Client) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	var u domain.User
	err := c.do(ctx, http.MethodPost, "/user/store", registerRequest{Name: name, Email: email, Password: password}, &u)
	return u, err
}

// Login exchanges credentials for the user record.
func (c *Client) Login(ctx context.Context, email, password string) (domain.User, error) {
	var u domain.User
	err := c.do(ctx, http.MethodPost, "/user/login", loginRequest{Email: email, Password: password}, &u)
	return u, err
}

// UpdateUser saves profile fields and returns the record the server stored.
func (c *Client) UpdateUser(ctx context.Context, id int64, upd domain.ProfileUpdate) (domain.User, error) {
	var u domain.User
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/user/update/%d", id), upd, &u)
	return u, err
}

// DeleteUser removes the account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/user/delete/%d", id), nil, nil)
}
