// Package sessionstore is the device-local key/value store that holds the
// backend session id, the cached roadmap and per-module quiz snapshots.
package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is a string-keyed blob store. Values are JSON documents.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists keys beginning with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Well-known keys.
const (
	KeySessionID     = "sessionId"
	KeyRoadmap       = "roadmap"
	KeyRoadmapMeta   = "roadmapMeta"
	KeyCurrentModule = "current_module"

	quizProgressPrefix = "quiz_progress_"
	quizResultsPrefix  = "quiz_results_"
)

// QuizProgressKey is the in-progress snapshot key for a module.
func QuizProgressKey(moduleID string) string { return quizProgressPrefix + moduleID }

// QuizResultsKey is the final results key for a module.
func QuizResultsKey(moduleID string) string { return quizResultsPrefix + moduleID }

// GetJSON decodes the value at key into v. It reports false when the key
// is absent.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// SessionID returns the persisted backend session id, creating and
// storing a new one on first use.
func SessionID(ctx context.Context, s Store) (string, error) {
	var id string
	ok, err := GetJSON(ctx, s, KeySessionID, &id)
	if err != nil {
		return "", err
	}
	if ok && id != "" {
		return id, nil
	}

	id = NewSessionID(time.Now())
	if err := SetJSON(ctx, s, KeySessionID, id); err != nil {
		return "", err
	}
	return id, nil
}

// NewSessionID formats a session id as session-<unix ms>-<random>.
func NewSessionID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session-%d-%s", now.UnixMilli(), random)
}

// Clear removes every key this client writes.
func Clear(ctx context.Context, s Store) error {
	keys := []string{KeySessionID, KeyRoadmap, KeyRoadmapMeta, KeyCurrentModule}
	for _, prefix := range []string{quizProgressPrefix, quizResultsPrefix} {
		more, err := s.Keys(ctx, prefix)
		if err != nil {
			return err
		}
		keys = append(keys, more...)
	}
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil {
			return fmt.Errorf("delete %q: %w", k, err)
		}
	}
	return nil
}
