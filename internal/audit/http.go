package audit

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Popolzen/linkguard/internal/pool"
	"go.uber.org/zap"
)

// HTTPObserver отправляет события на удалённый сервер
type HTTPObserver struct {
	url     string
	client  *http.Client
	buffers *pool.Pool[*bytes.Buffer]
	log     *zap.Logger
}

// NewHTTPObserver создаёт наблюдателя для отправки на HTTP endpoint
func NewHTTPObserver(url string, log *zap.Logger) *HTTPObserver {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPObserver{
		url: url,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		buffers: pool.NewBuffers(),
		log:     log,
	}
}

// Notify отправляет событие; ошибки только логируются
func (h *HTTPObserver) Notify(event Event) {
	buf := h.buffers.Get()

	if err := json.NewEncoder(buf).Encode(event); err != nil {
		h.buffers.Put(buf)
		h.log.Error("audit http: ошибка сериализации", zap.Error(err))
		return
	}

	resp, err := h.client.Post(h.url, "application/json", buf)
	if err != nil {
		// транспорт может ещё читать тело, буфер в пул не возвращаем
		h.log.Warn("audit http: ошибка отправки", zap.String("url", h.url), zap.Error(err))
		return
	}
	defer h.buffers.Put(buf)
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		h.log.Warn("audit http: сервер вернул ошибку", zap.Int("status", resp.StatusCode))
	}
}

// Close для HTTP ничего не делает
func (h *HTTPObserver) Close() error {
	return nil
}
