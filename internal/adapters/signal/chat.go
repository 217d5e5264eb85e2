package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/GuideNet/GuideNet/internal/core"
	"github.com/GuideNet/GuideNet/internal/domain"
)

func (ctl *Controller) handleRegisterUser(sid core.SessionID, c *wsConn, data []byte) {
	var p struct {
		Type   string `json:"type"`
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.UserID == "" {
		log.Error().Str("module", "signal").Msg("bad registerUser payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Board.RegisterUser(sid, domain.UserID(p.UserID))
}

func (ctl *Controller) handleJoinChat(sid core.SessionID, c *wsConn, data []byte) {
	var p struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		log.Error().Str("module", "signal").Msg("bad joinChat payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Board.JoinChat(sid, domain.RoomID(p.Room))
}

func (ctl *Controller) handleSendMessage(sid core.SessionID, c *wsConn, data []byte) {
	var p struct {
		Type    string          `json:"type"`
		Room    string          `json:"room"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" || len(p.Message) == 0 {
		log.Error().Str("module", "signal").Msg("bad sendMessage payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Board.SendMessage(sid, domain.RoomID(p.Room), p.Message)
}
