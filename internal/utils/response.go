package utils

import (
	"encoding/json"
	"net/http"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	"go.uber.org/zap"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L().Warn("encode response", zap.Error(err))
	}
}

func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

// Created répond 201 avec la ressource créée
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, APIResponse{Success: true, Data: data})
}

// Error répond avec un message public et log l'erreur interne si présente
func Error(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		if status >= http.StatusInternalServerError {
			logger.L().Error(msg, zap.Int("status", status), zap.Error(err))
		} else {
			logger.L().Debug(msg, zap.Int("status", status), zap.Error(err))
		}
	}
	JSON(w, status, APIResponse{Success: false, Error: msg})
}

// ErrorSimple répond avec un message sans erreur sous-jacente
func ErrorSimple(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, APIResponse{Success: false, Error: msg})
}

func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, APIResponse{Success: true, Message: msg})
}
