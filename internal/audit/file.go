package audit

import (
	"bytes"
	"encoding/json"
	"os"
	"sync"

	"github.com/Popolzen/linkguard/internal/pool"
	"go.uber.org/zap"
)

// FileObserver пишет события в файл, по одному JSON на строку
type FileObserver struct {
	file    *os.File
	mu      sync.Mutex
	buffers *pool.Pool[*bytes.Buffer]
	log     *zap.Logger
}

// NewFileObserver создаёт наблюдателя для записи в файл
func NewFileObserver(path string, log *zap.Logger) (*FileObserver, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileObserver{file: file, buffers: pool.NewBuffers(), log: log}, nil
}

// Notify записывает событие в файл
func (f *FileObserver) Notify(event Event) {
	buf := f.buffers.Get()
	defer f.buffers.Put(buf)

	// Encode дописывает перевод строки
	if err := json.NewEncoder(buf).Encode(event); err != nil {
		f.log.Error("audit file: ошибка сериализации", zap.Error(err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.file.Write(buf.Bytes()); err != nil {
		f.log.Error("audit file: ошибка записи", zap.Error(err))
	}
}

// Close закрывает файл
func (f *FileObserver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}
