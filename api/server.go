/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Lightweight, context-based, composes with net/http middleware, RESTful
  route patterns.

MIDDLEWARE STACK:
  1. RequestID:   Unique ID per request for tracing
  2. CORS:        Cross-origin requests for frontend
  3. httplog:     Structured request logging (slog, ECS schema)
  4. CleanPath:   Normalizes double slashes
  5. Recoverer:   Panic recovery (500 instead of crash)
  6. Heartbeat:   GET /healthz for load balancers
  7. VirtualTime: X-Virtual-Time header (development only)

ROUTE GROUPS:
  /api/employees/*      Employees, punches, attendance, payslips
  /api/punches/*        Proxy punches
  /api/reports/*        Summary and export
  /api/timesheets/*     Timesheet workflow
  /api/reset            Database reset (development only)

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/warp/punchclock/clock"
)

// VirtualTimeHeader carries an RFC 3339 instant that replaces the server
// clock for one request.
const VirtualTimeHeader = "X-Virtual-Time"

// RouterOptions configures development-only behaviour and CORS.
type RouterOptions struct {
	Development    bool
	AllowedOrigins []string
}

// NewLogger returns the JSON slog logger shared by request logging and the
// rest of the process.
func NewLogger(w io.Writer, level slog.Level, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env == "development")
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "punchclock"),
		slog.String("env", env),
	)
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", VirtualTimeHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httplog.RequestLogger(h.Logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))
	if opts.Development {
		r.Use(VirtualTime(h.Location))
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/compensation", h.GetCompensation)
			r.Put("/{id}/compensation", h.PutCompensation)
			r.Get("/{id}/punches", h.ListPunches)
			r.Post("/{id}/punches", h.RecordPunch)
			r.Get("/{id}/state", h.GetDayState)
			r.Get("/{id}/attendance", h.GetAttendance)
			r.Get("/{id}/payslips/{period}", h.GetPayslip)
			r.Post("/{id}/timesheets", h.CreateTimesheet)
		})

		r.Post("/punches/proxy", h.RecordProxyPunch)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", h.GetSummaryReport)
			r.Get("/export", h.ExportReport)
		})

		r.Route("/timesheets", func(r chi.Router) {
			r.Get("/", h.ListTimesheets)
			r.Get("/{id}", h.GetTimesheet)
			r.Post("/{id}/submit", h.SubmitTimesheet)
			r.Post("/{id}/approve", h.ApproveTimesheet)
			r.Post("/{id}/reject", h.RejectTimesheet)
		})

		if opts.Development {
			r.Post("/reset", h.ResetDatabase)
		}
	})

	return r
}

// VirtualTime installs a fixed clock from the X-Virtual-Time header so that
// validators and aggregators see the requested instant as "now".
func VirtualTime(loc *time.Location) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := r.Header.Get(VirtualTimeHeader)
			if v == "" {
				next.ServeHTTP(w, r)
				return
			}
			at, err := parseInstant(v, loc)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid "+VirtualTimeHeader, err)
				return
			}
			ctx := clock.WithContext(r.Context(), clock.Fixed(at))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResetDatabase clears all data. Development only.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.internalError(w, r, "Failed to reset database", err)
		return
	}
	h.Logger.WarnContext(r.Context(), "database reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
