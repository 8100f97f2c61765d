package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

const writeWait = 5 * time.Second

// wsPresenter renders engine output as commands on a page connection
type wsPresenter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSPresenter(conn *websocket.Conn) *wsPresenter {
	return &wsPresenter{conn: conn}
}

func (p *wsPresenter) ShowNotification(ctx context.Context, view domain.NotificationView) error {
	return p.send(CmdNotificationShow, 0, view)
}

func (p *wsPresenter) UpdateNotification(ctx context.Context, view domain.NotificationView) error {
	return p.send(CmdNotificationUpdate, 0, view)
}

func (p *wsPresenter) CloseNotification(ctx context.Context, id string) error {
	return p.send(CmdNotificationClose, 0, notificationPayload{ID: id})
}

func (p *wsPresenter) SetFieldValue(ctx context.Context, target domain.TargetID, value string) error {
	return p.send(CmdFieldSet, 0, fieldSetPayload{Target: target, Value: value})
}

func (p *wsPresenter) ShowBanner(ctx context.Context, banner domain.Banner) error {
	return p.send(CmdBannerShow, 0, banner)
}

func (p *wsPresenter) CloseBanner(ctx context.Context) error {
	return p.send(CmdBannerClose, 0, nil)
}

func (p *wsPresenter) ack(ack Ack) error {
	return p.send(CmdAck, ack.Seq, ack)
}

func (p *wsPresenter) ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (p *wsPresenter) send(cmd string, seq int64, payload any) error {
	env := Envelope{Type: cmd, Seq: seq}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s: %w", cmd, err)
		}
		env.Payload = raw
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := p.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("write %s: %w", cmd, err)
	}
	return nil
}
