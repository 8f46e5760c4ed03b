// Package auth owns the session lifecycle: register, login, validation
// and logout against the backend's /api/auth endpoints.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"filedesk/internal/api"
	"filedesk/internal/config"
	"filedesk/internal/credential"
	"filedesk/internal/util/logx"
)

type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// ErrInvalidCredential means the backend refused the stored credential.
var ErrInvalidCredential = errors.New("session is not valid")

// RejectedError carries the backend's reason for refusing a register or
// login attempt.
type RejectedError struct {
	Status int
	Detail string
}

func (e *RejectedError) Error() string { return e.Detail }

type UserSummary struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type Gateway struct {
	client *api.Client
	store  credential.Store

	mu    sync.Mutex
	state State
}

func NewGateway(client *api.Client, store credential.Store) *Gateway {
	return &Gateway{client: client, store: store}
}

func (g *Gateway) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gateway) Authenticated() bool { return g.State() == Authenticated }

func (g *Gateway) setState(s State) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (g *Gateway) Register(ctx context.Context, username, password string) (UserSummary, error) {
	var out UserSummary
	err := g.client.JSON(ctx, http.MethodPost, "/api/auth/register", credentials{username, password}, true, &out)
	if err != nil {
		return UserSummary{}, rejected("register", err)
	}
	if out.Username == "" {
		out.Username = username
	}
	logx.Infof("auth: registered %s", out.Username)
	return out, nil
}

type loginResponse struct {
	SessionID   string `json:"session_id"`
	AccessToken string `json:"access_token"`
	Message     string `json:"message"`
}

// Login stores the returned credential and enters Authenticated. A failed
// attempt leaves the stored credential untouched.
func (g *Gateway) Login(ctx context.Context, username, password string) (string, error) {
	var out loginResponse
	err := g.client.JSON(ctx, http.MethodPost, "/api/auth/login", credentials{username, password}, true, &out)
	if err != nil {
		return "", rejected("login", err)
	}
	token := out.SessionID
	if g.client.Transport() == config.TransportBearer {
		token = out.AccessToken
	}
	if token == "" {
		return "", &RejectedError{Status: http.StatusOK, Detail: "login response carried no credential"}
	}
	if err := g.store.Save(token); err != nil {
		return "", fmt.Errorf("store credential: %w", err)
	}
	g.setState(Authenticated)
	logx.Infof("auth: logged in as %s", username)
	return token, nil
}

// ValidateSession reports whether a stored credential is accepted by the
// backend. Without a stored credential it returns false without a request.
// A credential the backend rejects is cleared. Transport failures also
// yield false.
func (g *Gateway) ValidateSession(ctx context.Context) bool {
	userID, err := g.CheckSession(ctx)
	if err != nil {
		g.setState(Anonymous)
		switch {
		case errors.Is(err, ErrInvalidCredential):
			logx.Infof("auth: %v", err)
		default:
			logx.Errorf("auth: session check failed: %v", err)
		}
		return false
	}
	g.setState(Authenticated)
	logx.Infof("auth: session valid (user_id=%v)", userID)
	return true
}

// CheckSession is ValidateSession with the reason exposed. It returns
// ErrInvalidCredential when no credential is stored or the backend refuses
// it, and an api.ErrNetwork wrap when the backend could not be reached.
func (g *Gateway) CheckSession(ctx context.Context) (any, error) {
	if _, ok := g.store.Load(); !ok {
		return nil, fmt.Errorf("%w: no stored credential", ErrInvalidCredential)
	}
	var out struct {
		UserID any `json:"user_id"`
	}
	err := g.client.JSON(ctx, http.MethodGet, "/api/auth/check-session", nil, false, &out)
	if err == nil {
		return out.UserID, nil
	}
	var se *api.StatusError
	if errors.As(err, &se) {
		if cerr := g.store.Clear(); cerr != nil {
			logx.Warnf("auth: clearing rejected credential: %v", cerr)
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredential, se.Error())
	}
	return nil, err
}

// Logout asks the backend to drop the session, ignoring any failure, then
// forgets the local credential.
func (g *Gateway) Logout(ctx context.Context) {
	if token, ok := g.store.Load(); ok {
		req := api.Request{Method: http.MethodPost, Path: "/api/auth/logout"}
		if g.client.Transport() == config.TransportQuery {
			// the credential travels in the body here, not the query
			data, _ := json.Marshal(map[string]string{"session_id": token})
			req.Body = bytes.NewReader(data)
			req.ContentType = "application/json"
			req.Anonymous = true
		}
		resp, err := g.client.Send(ctx, req)
		if err != nil {
			logx.Warnf("auth: logout request failed: %v", err)
		} else {
			if !api.OK(resp) {
				logx.Warnf("auth: logout rejected: %v", api.ReadStatusError(resp))
			}
			resp.Body.Close()
		}
	}
	if err := g.store.Clear(); err != nil {
		logx.Warnf("auth: clearing credential: %v", err)
	}
	g.setState(Anonymous)
	logx.Infof("auth: logged out")
}

func rejected(op string, err error) error {
	var se *api.StatusError
	if errors.As(err, &se) {
		logx.Warnf("auth: %s rejected: %v", op, se)
		return &RejectedError{Status: se.Status, Detail: se.Detail}
	}
	logx.Errorf("auth: %s failed: %v", op, err)
	return err
}
