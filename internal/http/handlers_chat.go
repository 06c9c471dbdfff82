package http

import (
	"context"
	"net/http"
	"time"

	"showcase/internal/activity"
	"showcase/internal/chat"
	"showcase/internal/session"
)

type chatView struct {
	Users    []chat.User    `json:"users"`
	Online   int            `json:"online"`
	Messages []chat.Message `json:"messages"`
	Pending  int            `json:"pendingReplies"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var view chatView
	_ = sess.Update(func(st *session.State) error {
		room := st.Chat.Room
		view = chatView{Users: room.Users(), Online: room.OnlineCount(), Messages: room.Messages()}
		return nil
	})
	view.Pending = sess.PendingReplies()
	NewJSONResponse().Body(view).Write(w)
}

type chatSendRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// handleChatSend appends the visitor's message. A reply from another
// participant arrives later and shows up on the next GET.
func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req chatSendRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	msg, err := sess.SendChat(sanitizeInput(req.Text))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.record(r, sess, activity.DemoChat, activity.KindMessageSent, "")
	NewJSONResponse().Status(http.StatusCreated).Body(msg).Write(w)
}

// replyRecordTimeout bounds journaling a reply. The chat scheduler waits for
// running replies on shutdown, so a stalled broker must not hold it.
const replyRecordTimeout = 2 * time.Second

// ChatReplyRecorder journals simulated replies. Replies fire outside any
// request, so each gets its own bounded context.
func ChatReplyRecorder(rec ActivityRecorder) session.ReplyFunc {
	return func(sessionID string, msg chat.Message) {
		ctx, cancel := context.WithTimeout(context.Background(), replyRecordTimeout)
		defer cancel()
		rec.Record(ctx, activity.Event{
			SessionID: sessionID,
			Demo:      activity.DemoChat,
			Kind:      activity.KindMessageReceived,
			Detail:    "from=" + msg.Author,
			At:        msg.Timestamp,
		})
	}
}
