package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fairyhunter13/amiral-order-service/internal/model"
	"github.com/fairyhunter13/amiral-order-service/internal/sink"
)

type functionResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// sinkFunction exposes one sink as a standalone endpoint taking an already
// priced order. It answers 200 on success and 500 otherwise.
func (a *App) sinkFunction(s sink.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p model.OrderPayload
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&p); err != nil {
			writeJSON(w, http.StatusInternalServerError, functionResponse{Error: err.Error()})
			return
		}
		res := s.Send(r.Context(), p)
		if !res.Success {
			writeJSON(w, http.StatusInternalServerError, functionResponse{Error: res.Error})
			return
		}
		writeJSON(w, http.StatusOK, functionResponse{Success: true, OrderID: res.OrderID, Message: res.Message})
	}
}
