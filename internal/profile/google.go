package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"career-backend/internal/shared/server/respond"
	"career-backend/internal/shared/telemetry"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleSignIn fills the profile from a Google account.
type GoogleSignIn struct {
	Profiles *Service

	oauthConfig *oauth2.Config
	userInfoURL string
	uiRedirect  string
	stateTTL    time.Duration
	states      *stateStore
}

// NewGoogleSignIn builds a GoogleSignIn. uiRedirect receives the token as a
// query parameter; when empty the callback answers with JSON instead.
func NewGoogleSignIn(profiles *Service, clientID, clientSecret, redirectURL, uiRedirect string) *GoogleSignIn {
	return &GoogleSignIn{
		Profiles: profiles,
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
		uiRedirect:  uiRedirect,
		stateTTL:    5 * time.Minute,
		states:      newStateStore(),
	}
}

// RegisterRoutes attaches Google sign-in routes.
func (g *GoogleSignIn) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", g.start)
	rg.GET("/auth/google/callback", g.callback)
}

func (g *GoogleSignIn) configured() bool {
	return g.oauthConfig.ClientID != "" && g.oauthConfig.ClientSecret != "" && g.oauthConfig.RedirectURL != ""
}

func (g *GoogleSignIn) start(c *gin.Context) {
	if !g.configured() {
		respond.Error(c, http.StatusServiceUnavailable, "auth_not_configured", "Google sign-in not configured", nil)
		return
	}

	state := uuid.NewString()
	g.states.put(state, time.Now().Add(g.stateTTL))
	c.Redirect(http.StatusFound, g.oauthConfig.AuthCodeURL(state))
}

func (g *GoogleSignIn) callback(c *gin.Context) {
	if !g.configured() {
		respond.Error(c, http.StatusServiceUnavailable, "auth_not_configured", "Google sign-in not configured", nil)
		return
	}
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	if !g.states.consume(state) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := g.oauthConfig.Exchange(ctx, code)
	if err != nil {
		telemetry.Warn("profile.google_exchange_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}

	info, err := g.fetchUserInfo(ctx, token)
	if err != nil || info.Sub == "" {
		telemetry.Warn("profile.google_userinfo_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}

	sess, err := g.Profiles.LoginExternal(ctx, User{
		Name:    info.Name,
		Email:   info.Email,
		Picture: info.Picture,
		Subject: "google:" + info.Sub,
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to sign in", nil)
		return
	}

	if g.uiRedirect == "" {
		respond.OK(c, sess)
		return
	}
	redirectURL, err := appendToken(g.uiRedirect, sess.Token)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	c.Redirect(http.StatusFound, redirectURL)
}

type googleUserInfo struct {
	Sub     string `json:"sub"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (g *GoogleSignIn) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := g.oauthConfig.Client(ctx, token)
	resp, err := client.Get(g.userInfoURL)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}
	// v2 userinfo answers with "id" rather than "sub".
	if info.Sub == "" {
		info.Sub = info.ID
	}
	return info, nil
}

type stateStore struct {
	items map[string]time.Time
	mu    sync.Mutex
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]time.Time)}
}

func (s *stateStore) put(state string, exp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for k, v := range s.items {
		if now.After(v) {
			delete(s.items, k)
		}
	}
	s.items[state] = exp
}

func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	exp, ok := s.items[state]
	if ok {
		delete(s.items, state)
	}
	s.mu.Unlock()
	return ok && !time.Now().After(exp)
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
