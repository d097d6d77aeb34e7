package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/billablehq/billable/internal/clock"
	"github.com/billablehq/billable/internal/config"
)

// cookieName names the browser cookie. The opaque token it carries is the
// key into the sessions table; nothing else is stored client-side.
const cookieName = "billable_sid"

type Manager struct {
	secure bool
	clock  clock.Clock
}

type ManagerParam struct {
	fx.In

	Cfg   config.Config
	Clock clock.Clock
}

func NewManager(p ManagerParam) *Manager {
	return &Manager{
		secure: p.Cfg.AuthCookieSecure,
		clock:  p.Clock,
	}
}

func (m *Manager) CookieName() string {
	return cookieName
}

func (m *Manager) ReadToken(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(cookieName)
	if err != nil || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return raw, true
}

// Issue writes the session cookie. The cookie lifetime tracks the stored
// session's expiry so the browser and the sessions table age out together.
func (m *Manager) Issue(c *gin.Context, token string, expiresAt time.Time) {
	ttl := expiresAt.Sub(m.clock.Now())
	if ttl < 0 {
		ttl = 0
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cookieName,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
