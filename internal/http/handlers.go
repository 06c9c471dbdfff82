package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"showcase/internal/activity"
	applog "showcase/internal/log"
	"showcase/internal/seed"
	"showcase/internal/session"
)

type indexPage struct {
	Projects  []seed.Project
	Available int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexPage{Projects: s.seed.Projects}
	for _, p := range s.seed.Projects {
		if p.Available() {
			data.Available++
		}
	}
	s.render(w, r, "index.html", data)
}

type projectPage struct {
	Project seed.Project
}

// handleProject shows one demo. Unknown or unavailable projects send the
// visitor back to the project list.
func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	p, ok := s.seed.Project(id)
	if !ok || !p.Available() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, "project.html", projectPage{Project: p})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(),
			"Template execution failed", "error", err, "template", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	type projectView struct {
		seed.Project
		Available bool   `json:"available"`
		URL       string `json:"url,omitempty"`
	}
	out := make([]projectView, 0, len(s.seed.Projects))
	for _, p := range s.seed.Projects {
		v := projectView{Project: p, Available: p.Available()}
		if v.Available {
			v.URL = "/projects/" + strconv.Itoa(p.ID)
		}
		out = append(out, v)
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	events, err := s.activity.Recent(r.Context(), QueryLimit(r, 20, 100))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if events == nil {
		events = []activity.Event{}
	}
	NewJSONResponse().Body(events).Write(w)
}

// handleResetSession drops the caller's session; the next request starts
// over from the seed data.
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(session.CookieName); err == nil {
		s.sessions.Delete(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks the activity journal. Rates are reported but never
// make the service unready: the converter degrades to a loading state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{"sessions": map[string]any{"active": s.sessions.Len(), "status": "ok"}}

	if err := s.activity.Ping(ctx); err != nil {
		checks["journal"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["journal"] = "ok"
	}

	switch src := s.rates.(type) {
	case nil:
		checks["rates"] = "not_configured"
	case interface{ Ready() bool }:
		if src.Ready() {
			checks["rates"] = "ok"
		} else {
			checks["rates"] = "loading"
		}
	default:
		checks["rates"] = "ok"
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}
