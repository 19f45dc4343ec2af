package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const fileName = "kv.json"

type fileState struct {
	Entries map[string][]byte `json:"entries"`
}

// FileStore 单文件 JSON 键值存储,每次写入后整体落盘
type FileStore struct {
	mu     sync.RWMutex
	path   string
	s      fileState
	logger logrus.FieldLogger
}

// NewFileStore 在 dataDir 下创建或加载文件存储
// 文件损坏时移到一旁并以空存储启动,草稿丢失不阻塞服务
func NewFileStore(dataDir string, logger logrus.FieldLogger) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	st := &FileStore{
		path:   filepath.Join(dataDir, fileName),
		s:      fileState{Entries: map[string][]byte{}},
		logger: logger.WithField("component", "kvstore"),
	}
	if err := st.load(); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
		if rerr := os.Rename(s.path, aside); rerr != nil {
			return fmt.Errorf("kvstore: move corrupt file %s: %w", s.path, rerr)
		}
		s.logger.WithError(err).WithField("moved_to", aside).Warn("corrupt store file, starting empty")
		return nil
	}
	if loaded.Entries == nil {
		loaded.Entries = map[string][]byte{}
	}
	s.s = loaded
	return nil
}

func (s *FileStore) saveLocked() error {
	b, err := json.MarshalIndent(s.s, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.s.Entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.s.Entries[key]
	s.s.Entries[key] = clone(value)
	if err := s.saveLocked(); err != nil {
		if had {
			s.s.Entries[key] = prev
		} else {
			delete(s.s.Entries, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.s.Entries[key]
	if !had {
		return nil
	}
	delete(s.s.Entries, key)
	if err := s.saveLocked(); err != nil {
		s.s.Entries[key] = prev
		return err
	}
	return nil
}
