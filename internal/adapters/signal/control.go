package signal

import "github.com/GuideNet/GuideNet/internal/app"

func (ctl *Controller) handlePing(c *wsConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: app.EvtPong,
	}
	ctl.sendJSON(c, resp)
}
