package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookEventDedupe(t *testing.T) {
	db := openTestDB(t)
	repo := NewWebhookEventRepository(db)
	ctx := context.Background()

	seen, err := repo.Exists(ctx, "WH-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, repo.MarkProcessed(ctx, db, "WH-1", "PAYMENT.CAPTURE.COMPLETED"))
	// replaying the same delivery is harmless
	require.NoError(t, repo.MarkProcessed(ctx, db, "WH-1", "PAYMENT.CAPTURE.COMPLETED"))

	seen, err = repo.Exists(ctx, "WH-1")
	require.NoError(t, err)
	assert.True(t, seen)
}
