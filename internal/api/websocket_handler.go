package api

import (
	"encoding/json"

	"github.com/kargig/divemap-sub000/internal/websocket"
	"github.com/kargig/divemap-sub000/pkg/logger"
)

// CalcMessageHandler answers calculator requests arriving over websocket,
// letting a form recompute on every edit without a request per keystroke
type CalcMessageHandler struct {
	calculators *Calculators
	logger      *logger.Logger
}

// NewCalcMessageHandler creates a websocket message handler for calculators
func NewCalcMessageHandler(calculators *Calculators, logger *logger.Logger) *CalcMessageHandler {
	return &CalcMessageHandler{
		calculators: calculators,
		logger:      logger.Named("ws-calc"),
	}
}

// HandleMessage implements websocket.MessageHandler
func (h *CalcMessageHandler) HandleMessage(client *websocket.Client, messageType string, data json.RawMessage) error {
	resp, err := h.calculators.Run(messageType, data)
	if err != nil {
		return err
	}

	if !client.SendMessage(&websocket.Message{Type: messageType + websocket.MessageTypeResult, Data: resp}) {
		h.logger.Warn("Dropped calculator result for slow client", logger.String("calculator", messageType))
	}
	return nil
}
