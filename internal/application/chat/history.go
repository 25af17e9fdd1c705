// Package chat guarda o histórico de uma sessão de chat.
//
// Cada turno passa por dois estados: pending (pergunta do usuário registrada,
// chamada ao serviço de completion em andamento) e complete (resposta registrada).
// Quando a chamada falha, a pergunta permanece no histórico sem resposta.
// O histórico só cresce e vive apenas enquanto a sessão existir.
package chat

import (
	"context"
	"strings"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

// AnswerFunc produces the assistant reply for a question.
type AnswerFunc func(ctx context.Context, question string) (string, error)

// History is the ordered, append-only log of one session. Not safe for concurrent use.
type History struct {
	turns   []entity.ChatTurn
	pending bool
}

// NewHistory cria um histórico vazio.
func NewHistory() *History {
	return &History{}
}

// AppendUser registra a pergunta e coloca o turno em pending.
func (h *History) AppendUser(text string) error {
	if strings.TrimSpace(text) == "" {
		return types.ErrEmptyQuestion
	}
	if h.pending {
		return types.ErrTurnPending
	}
	h.turns = append(h.turns, entity.ChatTurn{Role: entity.RoleUser, Content: text})
	h.pending = true
	return nil
}

// AppendAssistant registra a resposta e completa o turno pendente.
func (h *History) AppendAssistant(text string) error {
	if !h.pending {
		return types.ErrNoPendingTurn
	}
	h.turns = append(h.turns, entity.ChatTurn{Role: entity.RoleAssistant, Content: text})
	h.pending = false
	return nil
}

// Abandon encerra o turno pendente sem resposta. A pergunta continua no histórico.
func (h *History) Abandon() {
	h.pending = false
}

// Exchange runs one turn: it appends question, calls answer once and appends the reply.
// If answer fails the history keeps only the user turn and the error is returned as is.
func (h *History) Exchange(ctx context.Context, question string, answer AnswerFunc) (string, error) {
	if err := h.AppendUser(question); err != nil {
		return "", err
	}

	reply, err := answer(ctx, question)
	if err != nil {
		h.Abandon()
		return "", err
	}

	if err := h.AppendAssistant(reply); err != nil {
		return "", err
	}
	return reply, nil
}

// Turns returns a copy of the turns in order.
func (h *History) Turns() []entity.ChatTurn {
	out := make([]entity.ChatTurn, len(h.turns))
	copy(out, h.turns)
	return out
}

func (h *History) Len() int {
	return len(h.turns)
}

func (h *History) Pending() bool {
	return h.pending
}

// Clear descarta o histórico ao fim da sessão.
func (h *History) Clear() {
	h.turns = nil
	h.pending = false
}
