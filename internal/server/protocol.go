package server

import (
	"encoding/json"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

// Inbound message types
const (
	TypeInput         = "input"
	TypeCopy          = "copy"
	TypePointerEnter  = "pointer_enter"
	TypePointerLeave  = "pointer_leave"
	TypeAccept        = "accept"
	TypeOmit          = "omit"
	TypeExamples      = "examples"
	TypeMask          = "mask"
	TypeSnapshot      = "snapshot"
	TypeClick         = "click"
	TypeBannerClear   = "banner_clear"
	TypeBannerDismiss = "banner_dismiss"
)

// Outbound command types
const (
	CmdNotificationShow   = "notification_show"
	CmdNotificationUpdate = "notification_update"
	CmdNotificationClose  = "notification_close"
	CmdFieldSet           = "field_set"
	CmdBannerShow         = "banner_show"
	CmdBannerClose        = "banner_close"
	CmdAck                = "ack"
)

// Envelope is one websocket frame in either direction
type Envelope struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq,omitempty"` // Echoed by the ack
	Payload json.RawMessage `json:"payload,omitempty"`
}

type inputPayload struct {
	Target domain.TargetID `json:"target"`
	Tag    string          `json:"tag"`
	Value  string          `json:"value"`
}

type copyPayload struct {
	ActiveTarget     domain.TargetID `json:"active_target"`
	ActiveIsPassword bool            `json:"active_is_password"`
	Clipboard        string          `json:"clipboard"`
	Selection        string          `json:"selection"`
}

type notificationPayload struct {
	ID string `json:"id"`
}

type snapshotPayload struct {
	HTML string `json:"html"`
}

type clickPayload struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

type fieldSetPayload struct {
	Target domain.TargetID `json:"target"`
	Value  string          `json:"value"`
}

// Ack answers an inbound frame that carried a seq
type Ack struct {
	Seq   int64  `json:"seq"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}
