package ratelimit

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// rejection é o corpo das respostas de bloqueio deste pacote.
type rejection struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func reject(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rejection{OK: false, Message: message})
}

// retryAfterSeconds arredonda para cima e nunca devolve menos de 1.
func retryAfterSeconds(secs float64) string {
	n := int(secs)
	if float64(n) < secs {
		n++
	}
	if n < 1 {
		n = 1
	}
	return strconv.Itoa(n)
}
