package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/golang-jwt/jwt/v5"
)

// User is the authenticated account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// AuthSession is the result of a sign-in or sign-up.
// AccessToken is empty when the account still awaits email confirmation.
type AuthSession struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`
}

// Confirmed reports whether the session carries usable tokens.
func (s *AuthSession) Confirmed() bool {
	return s != nil && s.AccessToken != ""
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return apperr.InvalidArgument("email is required")
	}
	if password == "" {
		return apperr.InvalidArgument("password is required")
	}
	return nil
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*AuthSession, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	var out AuthSession
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   credentials{Email: strings.TrimSpace(email), Password: password},
	}, &out)
	if err != nil {
		c.logger.Warn("sign in failed", logger.Error(err))
		return nil, err
	}

	c.logger.Info("user signed in", logger.String("user_id", userID(out.User)))
	return &out, nil
}

// SignUp registers a new account. When the project requires email
// confirmation the returned session has no tokens.
func (c *Client) SignUp(ctx context.Context, email, password string) (*AuthSession, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	// The body is either a session or, pending confirmation, a bare user.
	var out struct {
		AuthSession
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   credentials{Email: strings.TrimSpace(email), Password: password},
	}, &out)
	if err != nil {
		c.logger.Warn("sign up failed", logger.Error(err))
		return nil, err
	}

	session := out.AuthSession
	if session.User == nil && out.ID != "" {
		session.User = &User{ID: out.ID, Email: out.Email}
	}

	c.logger.Info("user signed up",
		logger.String("user_id", userID(session.User)),
		logger.Bool("confirmed", session.Confirmed()))
	return &session, nil
}

// SignOut revokes the given access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/logout",
		token:  accessToken,
	}, nil)
	if err != nil {
		c.logger.Warn("sign out failed", logger.Error(err))
		return err
	}
	return nil
}

// ResolveUser returns the user owning accessToken.
//
// With a JWT secret configured the token is verified locally; otherwise
// the auth API is asked. An invalid or expired token yields an error
// wrapping apperr.ErrNotAuthenticated.
func (c *Client) ResolveUser(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, apperr.ErrNotAuthenticated
	}
	if len(c.jwtSecret) > 0 {
		return c.verifyToken(accessToken)
	}

	var user User
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/v1/user",
		token:  accessToken,
	}, &user)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrNotAuthenticated, apiErr.Message)
		}
		return nil, err
	}
	if user.ID == "" {
		return nil, apperr.ErrNotAuthenticated
	}
	return &user, nil
}

// accessClaims are the claims the auth server puts in access tokens.
type accessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func (c *Client) verifyToken(tokenString string) (*User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.jwtSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrNotAuthenticated, err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: invalid token", apperr.ErrNotAuthenticated)
	}

	return &User{ID: claims.Subject, Email: claims.Email}, nil
}

func userID(u *User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
