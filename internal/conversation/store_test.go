package conversation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testPrompt = "system prompt"
	testAck    = "understood"
)

func newTestStore() *Store {
	return NewStore(testPrompt, testAck)
}

// fill appends n numbered entries after the preamble, alternating user/model
// roles starting with user, and returns the resulting transcript copy.
func fill(s *Store, userID string, n int) []Entry {
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			s.Append(userID, RoleUser, fmt.Sprintf("u%d", i/2))
		} else {
			s.Append(userID, RoleModel, fmt.Sprintf("m%d", i/2))
		}
	}
	return s.GetOrCreate(userID)
}

func TestGetOrCreate_SeedsPreamble(t *testing.T) {
	s := newTestStore()
	got := s.GetOrCreate("user-a")

	require.Len(t, got, 2)
	require.Equal(t, Entry{Role: RoleSystem, Text: testPrompt}, got[0])
	require.Equal(t, Entry{Role: RoleModel, Text: testAck}, got[1])
}

func TestGetOrCreate_IsIdempotent(t *testing.T) {
	s := newTestStore()
	first := s.GetOrCreate("user-a")
	second := s.GetOrCreate("user-a")
	require.Equal(t, first, second)
	require.Equal(t, 2, s.Len("user-a"))
}

func TestGetOrCreate_ReturnsCopy(t *testing.T) {
	s := newTestStore()
	got := s.GetOrCreate("user-a")
	got[0] = Entry{Role: RoleUser, Text: "tampered"}

	require.Equal(t, Entry{Role: RoleSystem, Text: testPrompt}, s.GetOrCreate("user-a")[0])
}

func TestLen_UnknownUser(t *testing.T) {
	require.Zero(t, newTestStore().Len("nobody"))
}

func TestAppend_SeedsAbsentTranscript(t *testing.T) {
	s := newTestStore()
	s.Append("user-a", RoleUser, "hello")

	got := s.GetOrCreate("user-a")
	require.Len(t, got, 3)
	require.Equal(t, RoleSystem, got[0].Role)
	require.Equal(t, RoleModel, got[1].Role)
	require.Equal(t, Entry{Role: RoleUser, Text: "hello"}, got[2])
}

func TestAppend_NeverExceedsCap(t *testing.T) {
	s := newTestStore()
	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			s.Append("user-a", RoleUser, fmt.Sprintf("u%d", i/2))
		} else {
			s.Append("user-a", RoleModel, fmt.Sprintf("m%d", i/2))
		}
		require.LessOrEqual(t, s.Len("user-a"), maxEntries, "append %d", i)

		got := s.GetOrCreate("user-a")
		require.Equal(t, Entry{Role: RoleSystem, Text: testPrompt}, got[0])
		require.Equal(t, Entry{Role: RoleModel, Text: testAck}, got[1])
	}
}

func TestAppend_EvictsOldestPair(t *testing.T) {
	s := newTestStore()
	before := fill(s, "user-a", maxEntries-preambleLen)
	require.Len(t, before, maxEntries)

	s.Append("user-a", RoleUser, "overflow")

	got := s.GetOrCreate("user-a")
	require.Len(t, got, maxEntries-1)
	require.Equal(t, before[0], got[0])
	require.Equal(t, before[1], got[1])
	// Old indices 4,5 shift into 2,3; the pair at 2,3 is gone.
	require.Equal(t, before[4], got[2])
	require.Equal(t, before[5], got[3])
	require.Equal(t, Entry{Role: RoleUser, Text: "overflow"}, got[len(got)-1])
}

func TestAppendTurn_AppendsPairInOrder(t *testing.T) {
	s := newTestStore()
	s.AppendTurn("user-a", "hello", "hi")

	got := s.GetOrCreate("user-a")
	require.Len(t, got, 4)
	require.Equal(t, Entry{Role: RoleUser, Text: "hello"}, got[2])
	require.Equal(t, Entry{Role: RoleModel, Text: "hi"}, got[3])
}

func TestAppendTurn_EvictionAcrossThreshold(t *testing.T) {
	s := newTestStore()
	before := fill(s, "user-a", 27)
	require.Len(t, before, 29)

	// 29 +2 crosses the cap: the turn lands and the oldest pair is dropped.
	s.AppendTurn("user-a", "new question", "new answer")

	got := s.GetOrCreate("user-a")
	require.Len(t, got, 29)
	require.Equal(t, before[0], got[0])
	require.Equal(t, before[1], got[1])
	require.Equal(t, before[4], got[2])
	require.Equal(t, before[5], got[3])
	require.Equal(t, Entry{Role: RoleUser, Text: "new question"}, got[27])
	require.Equal(t, Entry{Role: RoleModel, Text: "new answer"}, got[28])
}

func TestStore_IsolatesUsers(t *testing.T) {
	s := newTestStore()
	s.AppendTurn("user-a", "question a", "answer a")
	s.AppendTurn("user-b", "question b", "answer b")

	require.Equal(t, "question a", s.GetOrCreate("user-a")[2].Text)
	require.Equal(t, "question b", s.GetOrCreate("user-b")[2].Text)
}

func TestStore_ConcurrentTurns(t *testing.T) {
	s := newTestStore()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.AppendTurn("user-a", fmt.Sprintf("q%d-%d", g, i), fmt.Sprintf("a%d-%d", g, i))
			}
		}(g)
	}
	wg.Wait()

	got := s.GetOrCreate("user-a")
	require.LessOrEqual(t, len(got), maxEntries)
	require.Equal(t, Entry{Role: RoleSystem, Text: testPrompt}, got[0])
	require.Equal(t, Entry{Role: RoleModel, Text: testAck}, got[1])
	// Pair eviction keeps user/model alternation after the preamble.
	for i := preambleLen; i < len(got); i++ {
		want := RoleUser
		if (i-preambleLen)%2 == 1 {
			want = RoleModel
		}
		require.Equal(t, want, got[i].Role, "entry %d", i)
	}
}
