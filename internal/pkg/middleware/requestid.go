package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"gogas/internal/pkg/logger"
)

// ContextKey é um tipo próprio para chaves de contexto, evitando conflito com
// chaves string de outros pacotes.
type ContextKey int

const (
	RequestIDKey ContextKey = iota
)

// RequestID anexa um identificador único a cada requisição. O identificador é
// propagado no contexto e devolvido no cabeçalho X-Request-ID, para correlação
// entre os logs do gateway e os da API remota. Se o chamador já enviou um
// X-Request-ID, ele é reaproveitado.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestIDFromContext extrai o identificador da requisição do contexto.
func GetRequestIDFromContext(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(RequestIDKey).(string)
	return requestID, ok
}

// statusRecorder captura o status escrito pelo handler para o log de acesso.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// AccessLog registra cada requisição atendida pelo gateway: método, rota,
// status, duração e o identificador de correlação.
func AccessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			requestID, _ := GetRequestIDFromContext(r.Context())
			log.Info("Requisição atendida.", map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      recorder.status,
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  requestID,
			})
		})
	}
}
