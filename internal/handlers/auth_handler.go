package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SAP-F-2025/ielts-trainer/internal/auth"
	"github.com/SAP-F-2025/ielts-trainer/internal/utils"
	"github.com/gin-gonic/gin"
)

const callbackPath = "/auth/callback"

type AuthHandlerConfig struct {
	// PublicBaseURL is prefixed to the callback path in sign-in links.
	PublicBaseURL string
	SecureCookies bool
	SessionTTL    time.Duration
}

type AuthHandler struct {
	BaseHandler
	provider auth.Provider
	config   AuthHandlerConfig
}

func NewAuthHandler(provider auth.Provider, config AuthHandlerConfig, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		provider:    provider,
		config:      config,
	}
}

// LoginPage renders the sign-in form
func (h *AuthHandler) LoginPage(c *gin.Context) {
	h.renderLogin(c, http.StatusOK, "login", gin.H{"Error": c.Query("error")})
}

// SignupPage renders the same form for new users
func (h *AuthHandler) SignupPage(c *gin.Context) {
	h.renderLogin(c, http.StatusOK, "signup", gin.H{"Error": c.Query("error")})
}

// SendLink mails a sign-in link to the submitted address
func (h *AuthHandler) SendLink(c *gin.Context) {
	mode := c.PostForm("mode")
	if mode != "signup" {
		mode = "login"
	}
	email := strings.TrimSpace(c.PostForm("email"))

	if h.provider == nil {
		h.LogWarn(c, "Sign-in requested but auth provider is not configured")
		h.renderLogin(c, http.StatusServiceUnavailable, mode, gin.H{
			"Email": email,
			"Error": "Sign-in is not available right now.",
		})
		return
	}

	err := h.provider.SendSignInLink(c.Request.Context(), email, h.callbackURL())
	switch {
	case err == nil:
		h.renderLogin(c, http.StatusOK, mode, gin.H{
			"Email":   email,
			"Message": "Check your email for the sign-in link.",
		})
	case errors.Is(err, auth.ErrInvalidEmail):
		h.renderLogin(c, http.StatusBadRequest, mode, gin.H{
			"Email": email,
			"Error": "Please enter a valid email address.",
		})
	default:
		h.LogError(c, err, "Failed to send sign-in link")
		h.renderLogin(c, http.StatusInternalServerError, mode, gin.H{
			"Email": email,
			"Error": "Could not send the sign-in link. Please try again.",
		})
	}
}

// Callback exchanges the emailed code for a session cookie
func (h *AuthHandler) Callback(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" || h.provider == nil {
		c.Redirect(http.StatusFound, loginPath)
		return
	}

	session, err := h.provider.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		message := "This sign-in link is invalid or has expired."
		if !auth.IsCredentialError(err) {
			h.LogError(c, err, "Failed to exchange sign-in code")
			message = "Could not sign you in. Please try again."
		}
		c.Redirect(http.StatusFound, loginPath+"?error="+url.QueryEscape(message))
		return
	}

	h.setSessionCookie(c, session.Token, int(time.Until(session.ExpiresAt).Seconds()))
	c.Redirect(http.StatusFound, dashboardPath)
}

// Logout revokes the session and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" && h.provider != nil {
		if err := h.provider.SignOut(c.Request.Context(), token); err != nil {
			h.LogError(c, err, "Failed to revoke session")
		}
	}
	h.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusSeeOther, loginPath)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, value, maxAge, "/", "", h.config.SecureCookies, true)
}

func (h *AuthHandler) callbackURL() string {
	return strings.TrimRight(h.config.PublicBaseURL, "/") + callbackPath
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, mode string, data gin.H) {
	title := "Sign in"
	if mode == "signup" {
		title = "Sign up"
	}
	data["Title"] = title
	data["Mode"] = mode
	c.HTML(status, "login.html", data)
}
