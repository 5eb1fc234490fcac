package sessionstore

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nayidisha/disha/internal/store"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mr := miniredis.RunT(t)
	rs, err := NewRedis(context.Background(), mr.Addr(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { rs.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": NewSQLite(st.KV()),
		"redis":  rs,
	}
}

type snapshot struct {
	Index  int    `json:"currentQuestionIndex"`
	Status string `json:"status"`
}

func TestBackends(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var got snapshot
			ok, err := GetJSON(ctx, s, QuizProgressKey("m1"), &got)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, SetJSON(ctx, s, QuizProgressKey("m1"), snapshot{Index: 3, Status: "active"}))
			require.NoError(t, SetJSON(ctx, s, QuizProgressKey("m2"), snapshot{}))
			require.NoError(t, SetJSON(ctx, s, QuizResultsKey("m1"), snapshot{Status: "done"}))

			ok, err = GetJSON(ctx, s, QuizProgressKey("m1"), &got)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, snapshot{Index: 3, Status: "active"}, got)

			keys, err := s.Keys(ctx, "quiz_progress_")
			require.NoError(t, err)
			assert.Equal(t, []string{"quiz_progress_m1", "quiz_progress_m2"}, keys)

			require.NoError(t, s.Delete(ctx, QuizProgressKey("m1")))
			_, ok, err = s.Get(ctx, QuizProgressKey("m1"))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestGetJSON_CorruptValue(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, KeyRoadmap, []byte("{not json")))

	var v map[string]any
	_, err := GetJSON(ctx, s, KeyRoadmap, &v)
	assert.Error(t, err)
}

func TestSessionID_CreatedOnce(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	id1, err := SessionID(ctx, s)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^session-\d+-[0-9a-f]{9}$`), id1)

	id2, err := SessionID(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestNewSessionID_Format(t *testing.T) {
	id := NewSessionID(time.UnixMilli(1700000000123))
	assert.Regexp(t, `^session-1700000000123-[0-9a-f]{9}$`, id)
}

func TestClear(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, k := range []string{KeySessionID, KeyRoadmap, KeyRoadmapMeta, QuizProgressKey("a"), QuizResultsKey("a"), "unrelated"} {
				require.NoError(t, s.Set(ctx, k, []byte(`1`)))
			}

			require.NoError(t, Clear(ctx, s))

			left, err := s.Keys(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"unrelated"}, left)
		})
	}
}

func TestNewRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedis(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)

	_, err = NewRedis(ctx, "", "")
	assert.Error(t, err)
}
