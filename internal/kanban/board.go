// Package kanban implements a task board: named buckets holding ordered
// tasks, with tasks moving between buckets by id.
package kanban

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Bucket string

const (
	Todo       Bucket = "todo"
	InProgress Bucket = "inProgress"
	Done       Bucket = "done"
)

type Priority string

const (
	Low    Priority = "low"
	Medium Priority = "medium"
	High   Priority = "high"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrEmptyText       = errors.New("task text cannot be empty")
	ErrUnknownBucket   = errors.New("unknown bucket")
	ErrUnknownPriority = errors.New("unknown priority")
)

// Buckets lists the board columns left to right.
func Buckets() []Bucket { return []Bucket{Todo, InProgress, Done} }

func (b Bucket) Validate() error {
	switch b {
	case Todo, InProgress, Done:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownBucket, b)
}

// Title is the column heading.
func (b Bucket) Title() string {
	switch b {
	case Todo:
		return "To Do"
	case InProgress:
		return "In Progress"
	case Done:
		return "Done"
	}
	return string(b)
}

func (b Bucket) Icon() string {
	switch b {
	case Todo:
		return "📋"
	case InProgress:
		return "⚡"
	case Done:
		return "✅"
	}
	return ""
}

// AdjacentBuckets returns the buckets a card can step to with the board's
// arrow buttons. The board itself accepts moves between any two buckets.
func AdjacentBuckets(b Bucket) (prev, next Bucket, hasPrev, hasNext bool) {
	switch b {
	case Todo:
		return "", InProgress, false, true
	case InProgress:
		return Todo, Done, true, true
	case Done:
		return InProgress, "", true, false
	}
	return "", "", false, false
}

func Priorities() []Priority { return []Priority{Low, Medium, High} }

func (p Priority) Validate() error {
	switch p {
	case Low, Medium, High:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownPriority, p)
}

type Task struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Priority  Priority  `json:"priority"`
	Bucket    Bucket    `json:"bucket"`
	CreatedAt time.Time `json:"createdAt"`
}

// Board maps each bucket to its tasks. It is a value type: every operation
// returns a new Board and shares no mutable slices with the receiver.
type Board struct {
	buckets map[Bucket][]Task
	lastID  int64
}

// NewBoard builds a board from existing tasks, placing each task in the
// bucket named by its Bucket field.
func NewBoard(tasks []Task) (Board, error) {
	b := Board{buckets: make(map[Bucket][]Task, 3)}
	seen := make(map[int64]struct{}, len(tasks))
	for _, t := range tasks {
		if err := t.Bucket.Validate(); err != nil {
			return Board{}, fmt.Errorf("task %d: %w", t.ID, err)
		}
		if err := t.Priority.Validate(); err != nil {
			return Board{}, fmt.Errorf("task %d: %w", t.ID, err)
		}
		if _, dup := seen[t.ID]; dup {
			return Board{}, fmt.Errorf("duplicate task id %d", t.ID)
		}
		seen[t.ID] = struct{}{}
		b.buckets[t.Bucket] = append(b.buckets[t.Bucket], t)
		if t.ID > b.lastID {
			b.lastID = t.ID
		}
	}
	return b, nil
}

// Tasks returns a copy of the tasks in bucket.
func (b Board) Tasks(bucket Bucket) []Task {
	src := b.buckets[bucket]
	out := make([]Task, len(src))
	copy(out, src)
	return out
}

// Len is the number of tasks across all buckets.
func (b Board) Len() int {
	n := 0
	for _, ts := range b.buckets {
		n += len(ts)
	}
	return n
}

func (b Board) find(bucket Bucket, id int64) int {
	for i, t := range b.buckets[bucket] {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// with returns a copy of the board whose bucket map is safe to reassign.
func (b Board) with() Board {
	m := make(map[Bucket][]Task, len(b.buckets)+1)
	for k, v := range b.buckets {
		m[k] = v
	}
	return Board{buckets: m, lastID: b.lastID}
}

// Move takes the task out of from and appends it to the end of to with its
// Bucket updated. If the task is not in from, the board is returned as is
// together with ErrTaskNotFound.
func (b Board) Move(id int64, from, to Bucket) (Board, error) {
	if err := from.Validate(); err != nil {
		return b, err
	}
	if err := to.Validate(); err != nil {
		return b, err
	}
	i := b.find(from, id)
	if i < 0 {
		return b, fmt.Errorf("%w: %d in %s", ErrTaskNotFound, id, from)
	}

	task := b.buckets[from][i]
	task.Bucket = to

	next := b.with()
	src := b.buckets[from]
	remaining := make([]Task, 0, len(src)-1)
	remaining = append(remaining, src[:i]...)
	remaining = append(remaining, src[i+1:]...)
	next.buckets[from] = remaining

	dst := next.buckets[to]
	moved := make([]Task, 0, len(dst)+1)
	moved = append(moved, dst...)
	next.buckets[to] = append(moved, task)
	return next, nil
}

// Add appends a new task to bucket. Ids are derived from now in
// milliseconds and forced above every id already issued, so they stay
// unique and follow creation order even within one millisecond.
func (b Board) Add(text string, bucket Bucket, priority Priority, now time.Time) (Board, Task, error) {
	if strings.TrimSpace(text) == "" {
		return b, Task{}, ErrEmptyText
	}
	if err := bucket.Validate(); err != nil {
		return b, Task{}, err
	}
	if err := priority.Validate(); err != nil {
		return b, Task{}, err
	}

	id := now.UnixMilli()
	if id <= b.lastID {
		id = b.lastID + 1
	}
	task := Task{ID: id, Text: text, Priority: priority, Bucket: bucket, CreatedAt: now}

	next := b.with()
	next.lastID = id
	dst := next.buckets[bucket]
	added := make([]Task, 0, len(dst)+1)
	added = append(added, dst...)
	next.buckets[bucket] = append(added, task)
	return next, task, nil
}

// Delete removes the task from bucket if it is there.
func (b Board) Delete(id int64, bucket Bucket) Board {
	i := b.find(bucket, id)
	if i < 0 {
		return b
	}
	next := b.with()
	src := b.buckets[bucket]
	remaining := make([]Task, 0, len(src)-1)
	remaining = append(remaining, src[:i]...)
	next.buckets[bucket] = append(remaining, src[i+1:]...)
	return next
}

// Column is a bucket with its display metadata and tasks.
type Column struct {
	Bucket Bucket `json:"id"`
	Title  string `json:"title"`
	Icon   string `json:"icon"`
	Tasks  []Task `json:"tasks"`
}

// Columns returns every bucket in board order, empty ones included.
func (b Board) Columns() []Column {
	cols := make([]Column, 0, 3)
	for _, bucket := range Buckets() {
		cols = append(cols, Column{
			Bucket: bucket,
			Title:  bucket.Title(),
			Icon:   bucket.Icon(),
			Tasks:  b.Tasks(bucket),
		})
	}
	return cols
}
