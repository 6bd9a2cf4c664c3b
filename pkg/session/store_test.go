package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuraltwin/assistant-engine/pkg/assistant/insight"
	"github.com/neuraltwin/assistant-engine/pkg/assistant/painpoint"
	"github.com/neuraltwin/assistant-engine/pkg/assistant/profile"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGetOrCreateNewSession(t *testing.T) {
	store := newTestStore(t)

	session, err := store.GetOrCreate(context.Background(), "sess-1")

	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.ID)
	assert.Zero(t, session.TurnCount)
	assert.Empty(t, session.Insights)
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session, err := store.GetOrCreate(ctx, "sess-2")
	require.NoError(t, err)

	session.TurnCount = 4
	session.Profile = profile.Profile{
		Industry:  "패션",
		StoreSize: profile.StoreSizeMedium,
		Interests: []profile.TopicID{"heatmap_analysis"},
	}
	session.Profile.AddPainPoint(painpoint.CategoryLowConversion)
	session.Insights = []insight.Insight{
		{Turn: 1, TopicID: "heatmap_analysis", UserIntent: insight.IntentLearning, KeyPoint: "히트맵이 뭔가요?"},
	}
	require.NoError(t, store.Save(ctx, session))

	reloaded, err := store.GetOrCreate(ctx, "sess-2")
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.TurnCount)
	assert.Equal(t, "패션", reloaded.Profile.Industry)
	assert.Equal(t, profile.StoreSizeMedium, reloaded.Profile.StoreSize)
	assert.Equal(t, []painpoint.Category{painpoint.CategoryLowConversion}, reloaded.Profile.PainPoints)
	require.Len(t, reloaded.Insights, 1)
	assert.Equal(t, "히트맵이 뭔가요?", reloaded.Insights[0].KeyPoint)
}

func TestSessionsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.GetOrCreate(ctx, "sess-a")
	require.NoError(t, err)
	first.TurnCount = 7
	require.NoError(t, store.Save(ctx, first))

	second, err := store.GetOrCreate(ctx, "sess-b")
	require.NoError(t, err)
	assert.Zero(t, second.TurnCount)
}

func TestMigrationsCreateKnowledgeTable(t *testing.T) {
	store := newTestStore(t)

	var count int
	err := store.DB().Get(&count, `SELECT COUNT(*) FROM knowledge_documents`)
	require.NoError(t, err)
	assert.Zero(t, count)
}
