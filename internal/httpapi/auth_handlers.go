package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/empresa-minera/monitor/internal/audit"
	"github.com/empresa-minera/monitor/internal/auth"
	"github.com/empresa-minera/monitor/internal/obs"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"nombre_completo"`
	Role     string `json:"rol"`
}

// userInfo is the identity subset returned by login, registro and perfil.
type userInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"nombre_completo"`
	Role     string `json:"rol"`
}

func userInfoFrom(u auth.PublicUser) userInfo {
	return userInfo{ID: u.ID, Username: u.Username, FullName: u.FullName, Role: u.Role}
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	ip := clientIP(r)
	if ok, retry := a.loginLimiter.allow(ip); !ok {
		obs.ObserveLogin("limited")
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		writeError(w, r, http.StatusTooManyRequests,
			"Demasiados intentos de login. Intenta en 15 minutos.")
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "Username y password requeridos")
		return
	}

	user, token, err := a.auth.Login(r.Context(), req.Username, req.Password, ip)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			obs.ObserveLogin("invalid")
			writeError(w, r, http.StatusUnauthorized, "Credenciales inválidas")
		case errors.Is(err, auth.ErrAccountDisabled):
			obs.ObserveLogin("disabled")
			writeError(w, r, http.StatusUnauthorized, "Usuario desactivado")
		default:
			obs.ObserveLogin("error")
			handleAuthError(w, r, err)
		}
		return
	}

	obs.ObserveLogin("ok")
	a.setSessionCookie(w, token)
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"username": user.Username,
		"ip":       ip,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"mensaje": "Login exitoso",
		"token":   token,
		"usuario": userInfoFrom(user),
	})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ip := clientIP(r)
	user, err := a.auth.Register(r.Context(), auth.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
		IP:       ip,
	})
	if err != nil {
		if ve, ok := auth.AsValidation(err); ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":      "Datos de registro inválidos",
				"requisitos": ve.Rules,
				"request_id": RequestIDFromContext(r.Context()),
			})
			return
		}
		if errors.Is(err, auth.ErrDuplicateUser) {
			writeError(w, r, http.StatusBadRequest, "Usuario ya existe")
			return
		}
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"username": user.Username,
		"rol":      user.Role,
		"ip":       ip,
	})
	writeJSON(w, http.StatusCreated, map[string]any{
		"mensaje": "Usuario creado exitosamente",
		"usuario": userInfoFrom(user),
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		unauthenticated(w, r, "token requerido")
		return
	}

	a.auth.Logout(r.Context(), ident, clientIP(r))
	a.clearSessionCookie(w)
	_ = audit.LogEvent(r.Context(), "auth.logout", nil)
	writeJSON(w, http.StatusOK, map[string]any{"mensaje": "Logout exitoso"})
}

func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		unauthenticated(w, r, "token requerido")
		return
	}

	user, err := a.auth.Profile(r.Context(), ident.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			// The account vanished after the token was issued.
			unauthenticated(w, r, "token inválido")
			return
		}
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"usuario": userInfoFrom(user)})
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	users, err := a.auth.ListUsers(r.Context())
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *API) handleAccessLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, r, http.StatusBadRequest, "limit inválido")
			return
		}
		limit = v
	}
	entries, err := a.auth.AccessHistory(r.Context(), limit)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": entries})
}

func (a *API) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.auth.TokenTTL() / time.Second),
		HttpOnly: true,
		Secure:   a.production,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *API) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.production,
		SameSite: http.SameSiteLaxMode,
	})
}

// handleAuthError maps infrastructure failures: context expiry becomes 503,
// anything unexpected is logged and returned as an opaque 500.
func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, auth.ErrUnavailable) {
		writeError(w, r, http.StatusServiceUnavailable, "Servicio no disponible")
		return
	}
	obs.LogRequest(map[string]any{
		"level":      "error",
		"msg":        "auth operation failed",
		"request_id": RequestIDFromContext(r.Context()),
		"error":      err.Error(),
	})
	writeError(w, r, http.StatusInternalServerError, "Error interno del servidor")
}
