// Package chat models a single chat room: an append-only message log, a
// roster of users and simulated replies from the other participants.
package chat

import (
	"errors"
	"strings"
	"time"
)

// Self is the author name used for the local user's messages.
const Self = "You"

var ErrEmptyMessage = errors.New("message cannot be empty")

type Status string

const (
	Online  Status = "online"
	Away    Status = "away"
	Offline Status = "offline"
)

type User struct {
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Status Status `json:"status" yaml:"status"`
	Avatar string `json:"avatar" yaml:"avatar"`
}

type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	IsOwn     bool      `json:"isOwn"`
}

// Room is a value type; Send and Receive return a new Room.
type Room struct {
	messages []Message
	users    []User
	lastID   int64
}

func NewRoom(users []User, history []Message) Room {
	r := Room{
		users:    append([]User(nil), users...),
		messages: append([]Message(nil), history...),
	}
	for _, m := range history {
		if m.ID > r.lastID {
			r.lastID = m.ID
		}
	}
	return r
}

func (r Room) Messages() []Message { return append([]Message(nil), r.messages...) }

func (r Room) Users() []User { return append([]User(nil), r.users...) }

func (r Room) Len() int { return len(r.messages) }

// OnlineCount is the number of users currently online.
func (r Room) OnlineCount() int {
	n := 0
	for _, u := range r.users {
		if u.Status == Online {
			n++
		}
	}
	return n
}

func (r Room) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	return id
}

func (r Room) append(m Message) Room {
	next := r
	next.messages = append(r.Messages(), m)
	next.lastID = m.ID
	return next
}

// Send appends a message from the local user. Blank text is refused.
func (r Room) Send(text string, now time.Time) (Room, Message, error) {
	if strings.TrimSpace(text) == "" {
		return r, Message{}, ErrEmptyMessage
	}
	m := Message{ID: r.nextID(now), Text: text, Author: Self, Timestamp: now, IsOwn: true}
	return r.append(m), m, nil
}

// Receive appends a message from another participant.
func (r Room) Receive(author, text string, now time.Time) (Room, Message) {
	m := Message{ID: r.nextID(now), Text: text, Author: author, Timestamp: now, IsOwn: false}
	return r.append(m), m
}
