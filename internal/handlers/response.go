package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

// WriteJSONResponse writes a success envelope.
func WriteJSONResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.GenericResponse{
		Success: true,
		Status:  status,
		Payload: map[string]interface{}{"data": data},
	})
}

// WriteJSONError writes an error envelope.
func WriteJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.GenericResponse{
		Success: false,
		Status:  status,
		Error: &model.ErrorInfo{
			ErrorType: "API_ERROR",
			Code:      status,
			Message:   message,
		},
	})
}
