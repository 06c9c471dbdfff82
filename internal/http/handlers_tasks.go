package http

import (
	"fmt"
	"net/http"

	"showcase/internal/activity"
	"showcase/internal/kanban"
	"showcase/internal/session"
)

type columnView struct {
	kanban.Column
	Prev kanban.Bucket `json:"prev,omitempty"`
	Next kanban.Bucket `json:"next,omitempty"`
}

type tasksView struct {
	Columns    []columnView      `json:"columns"`
	Priorities []kanban.Priority `json:"priorities"`
	Total      int               `json:"total"`
}

func tasksViewOf(b kanban.Board) tasksView {
	cols := b.Columns()
	out := tasksView{
		Columns:    make([]columnView, 0, len(cols)),
		Priorities: kanban.Priorities(),
		Total:      b.Len(),
	}
	for _, c := range cols {
		prev, next, _, _ := kanban.AdjacentBuckets(c.Bucket)
		out.Columns = append(out.Columns, columnView{Column: c, Prev: prev, Next: next})
	}
	return out
}

func (s *Server) updateTasks(w http.ResponseWriter, r *http.Request, sess *session.Session, fn func(*session.State) error) bool {
	var view tasksView
	err := sess.Update(func(st *session.State) error {
		if err := fn(st); err != nil {
			return err
		}
		view = tasksViewOf(st.Tasks.Board)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return false
	}
	NewJSONResponse().Body(view).Write(w)
	return true
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.updateTasks(w, r, sess, func(*session.State) error { return nil })
}

type taskAddRequest struct {
	Text     string `json:"text" validate:"required,max=200"`
	Priority string `json:"priority"`
	Bucket   string `json:"bucket"`
}

// handleTaskAdd creates a task. Priority defaults to medium and the bucket
// to todo.
func (s *Server) handleTaskAdd(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req taskAddRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	priority, bucket := kanban.Priority(req.Priority), kanban.Bucket(req.Bucket)
	if priority == "" {
		priority = kanban.Medium
	}
	if bucket == "" {
		bucket = kanban.Todo
	}

	var task kanban.Task
	ok := s.updateTasks(w, r, sess, func(st *session.State) error {
		next, t, err := st.Tasks.Board.Add(sanitizeInput(req.Text), bucket, priority, s.now())
		if err != nil {
			return err
		}
		st.Tasks.Board, task = next, t
		return nil
	})
	if ok {
		s.record(r, sess, activity.DemoTasks, activity.KindTaskAdded, fmt.Sprintf("id=%d bucket=%s priority=%s", task.ID, task.Bucket, task.Priority))
	}
}

type taskMoveRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// handleTaskMove moves a task between buckets. A task that is not in the
// source bucket yields 404 and the board stays as it was.
func (s *Server) handleTaskMove(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id, err := PathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req taskMoveRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	from, to := kanban.Bucket(req.From), kanban.Bucket(req.To)
	ok := s.updateTasks(w, r, sess, func(st *session.State) error {
		next, err := st.Tasks.Board.Move(id, from, to)
		if err != nil {
			return err
		}
		st.Tasks.Board = next
		return nil
	})
	if ok {
		s.record(r, sess, activity.DemoTasks, activity.KindTaskMoved, fmt.Sprintf("id=%d %s->%s", id, from, to))
	}
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id, err := PathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bucket := kanban.Bucket(r.URL.Query().Get("bucket"))
	if err := bucket.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	ok := s.updateTasks(w, r, sess, func(st *session.State) error {
		st.Tasks.Board = st.Tasks.Board.Delete(id, bucket)
		return nil
	})
	if ok {
		s.record(r, sess, activity.DemoTasks, activity.KindTaskDeleted, fmt.Sprintf("id=%d bucket=%s", id, bucket))
	}
}
