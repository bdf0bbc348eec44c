package api

import (
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/webmaek/aventus/auth"
	"github.com/webmaek/aventus/errs"
	"github.com/webmaek/aventus/models"
	"github.com/webmaek/aventus/ratelimit"
)

// authGuard verifies access tokens and puts the caller's identity in the request context.
type authGuard struct {
	responder Responder
	tokens    *auth.TokenIssuer
	cookie    auth.CookieConfig
}

func newAuthGuard(tokens *auth.TokenIssuer, cookie auth.CookieConfig) authGuard {
	logger := log.With().Str("handlerName", "authGuard").Logger()
	return authGuard{
		responder: NewResponder(logger),
		tokens:    tokens,
		cookie:    cookie,
	}
}

// identify returns the identity carried by the request, or an error when the
// token is missing or does not verify.
func (m authGuard) identify(r *http.Request) (auth.Identity, error) {
	token := auth.TokenFromRequest(r, m.cookie)
	if token == "" {
		return auth.Identity{}, errs.NewMissingTokenError()
	}
	id, err := m.tokens.Verify(token)
	if err != nil {
		return auth.Identity{}, errs.NewInvalidTokenError()
	}
	return id, nil
}

// authenticate rejects requests without a valid token with 401.
func (m authGuard) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.identify(r)
		if err != nil {
			if errs.IsInvalidTokenError(err) {
				log.Debug().Str("path", r.URL.Path).Msg("Rejected token that failed verification")
			}
			m.responder.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctxWithIdentity(r.Context(), id)))
	})
}

// requireAdmin is authenticate plus an ADMIN role check. Non-admins also get 401.
func (m authGuard) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.identify(r)
		if err != nil {
			m.responder.WriteError(w, err)
			return
		}
		if !id.IsAdmin() {
			m.responder.WriteError(w, errs.NewInsufficientRoleError(string(models.RoleAdmin)))
			return
		}
		next.ServeHTTP(w, r.WithContext(ctxWithIdentity(r.Context(), id)))
	})
}

// optionalIdentity attaches the identity when the token verifies and never rejects.
func (m authGuard) optionalIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := m.identify(r); err == nil {
			r = r.WithContext(ctxWithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func LogInternalServerErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				if !srw.wroteHeader {
					NewResponder(log.Logger).WriteError(srw, errs.NewInternalErrorWithCause("panic", nil))
				}
			}
		}()

		next.ServeHTTP(srw, r)

		if srw.status == http.StatusInternalServerError {
			log.Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("500 error response")
		}
	})
}

// corsMiddleware allows credentialed requests from the configured origins.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// rateLimit answers 429 once limiter refuses the caller's address. A failing
// limiter lets the request through.
func rateLimit(limiter ratelimit.Limiter, scope string) func(http.Handler) http.Handler {
	responder := NewResponder(log.With().Str("handlerName", "rateLimit").Logger())
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), scope+":"+clientIP(r))
			if err != nil {
				log.Warn().Err(err).Str("scope", scope).Msg("Rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Round(time.Second).Seconds())))
				}
				responder.WriteError(w, errs.NewRateLimitedError("Too many attempts, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// HTTPLoggingMiddleware logs each request at a level chosen by its status code.
// With pretty set it writes colored console lines, otherwise JSON through the global logger.
func HTTPLoggingMiddleware(pretty bool) func(http.Handler) http.Handler {
	logger := log.Logger
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			srw := &statusResponseWriter{ResponseWriter: w, status: 200}

			next.ServeHTTP(srw, r)

			var logEvent *zerolog.Event
			switch {
			case srw.status >= 500:
				logEvent = logger.Error()
			case srw.status >= 400:
				logEvent = logger.Warn()
			default:
				logEvent = logger.Info()
			}

			logEvent.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", srw.status).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP Request")
		})
	}
}
