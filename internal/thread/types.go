package thread

import (
	"errors"
	"time"
)

// Status is the complaint lifecycle state. New threads always start aberto.
type Status string

const (
	StatusAberto      Status = "aberto"
	StatusEmAndamento Status = "em_andamento"
	StatusIgnorado    Status = "ignorado"
	StatusResolvido   Status = "resolvido"
)

// Valid reports whether the status belongs to the fixed enumeration.
func (s Status) Valid() bool {
	switch s {
	case StatusAberto, StatusEmAndamento, StatusIgnorado, StatusResolvido:
		return true
	}
	return false
}

// Thread is a complaint conversation. It belongs to exactly one competência
// and was opened by exactly one authoring user.
type Thread struct {
	ID            string
	Title         string
	Status        Status
	CompetenciaID string
	UserID        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// Message is one entry in a thread's conversation. DTH is assigned by the
// writer before the insert, not by the store.
type Message struct {
	ID       string
	ThreadID string
	UserID   string
	Text     string
	Image    *string
	Lat      *float64
	Lng      *float64
	DTH      time.Time
}

// Inbound is the client-to-server socket frame shape. It carries no type
// discriminant; anything that fails Validate is dropped by the handler.
type Inbound struct {
	Text  string   `json:"text"`
	Image *string  `json:"image"`
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
}

// Validate checks the frame fields before persistence.
func (in Inbound) Validate() error {
	if in.Text == "" {
		return errors.New("text is required")
	}
	if in.Image != nil && *in.Image == "" {
		return errors.New("image must not be empty when set")
	}
	if in.Lat != nil && (*in.Lat < -90 || *in.Lat > 90) {
		return errors.New("lat out of range")
	}
	if in.Lng != nil && (*in.Lng < -180 || *in.Lng > 180) {
		return errors.New("lng out of range")
	}
	return nil
}

// ThreadFrame is the metadata frame sent once when a socket connects.
type ThreadFrame struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Status Status `json:"status"`
	Title  string `json:"title"`
}

// MessageFrame is sent for each historical and each live message.
type MessageFrame struct {
	Type   string    `json:"type"`
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	DTH    time.Time `json:"dth"`
	Image  *string   `json:"image"`
	Lat    *float64  `json:"lat"`
	Lng    *float64  `json:"lng"`
	UserID string    `json:"userId"`
}

// NewThreadFrame builds the Reclamacao frame for a thread.
func NewThreadFrame(t *Thread) ThreadFrame {
	return ThreadFrame{Type: "Reclamacao", ID: t.ID, Status: t.Status, Title: t.Title}
}

// NewMessageFrame builds the Mensagem frame for a message.
func NewMessageFrame(m Message) MessageFrame {
	return MessageFrame{
		Type:   "Mensagem",
		ID:     m.ID,
		Text:   m.Text,
		DTH:    m.DTH,
		Image:  m.Image,
		Lat:    m.Lat,
		Lng:    m.Lng,
		UserID: m.UserID,
	}
}
