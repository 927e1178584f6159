package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizePersistsReview(t *testing.T) {
	w := newWorld(t)
	svc := NewQueryLogService(w.db, w.access, &stubOptimizer{})

	entry, err := svc.Optimize(context.Background(), w.member.ID, &dto.OptimizeQueryRequest{
		ProjectID: w.alpha.ID.String(), FunctionName: "findUser", Query: "SELECT * FROM users WHERE email = ?",
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT", entry.QueryType)
	assert.Equal(t, "findUser", entry.FunctionName)

	got, err := svc.Get(w.owner.ID, entry.ID)
	require.NoError(t, err)
	require.Len(t, got.Optimizations, 1)
	assert.Equal(t, "medium", got.Optimizations[0].Impact)
	require.Len(t, got.IndexSuggestions, 1)
	assert.Equal(t, []string{"email"}, got.IndexSuggestions[0].Columns)
	assert.NotEmpty(t, got.AIRaw)

	_, err = svc.Get(w.stranger.ID, entry.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = svc.Get(w.owner.ID, uuid.New())
	assert.ErrorIs(t, err, ErrQueryLogNotFound)
}

func TestOptimizeRequiresAccessAndStoresNothingOnFailure(t *testing.T) {
	w := newWorld(t)
	svc := NewQueryLogService(w.db, w.access, &stubOptimizer{err: errors.New("AI query optimization failed: boom")})

	_, err := svc.Optimize(context.Background(), w.stranger.ID, &dto.OptimizeQueryRequest{ProjectID: w.alpha.ID.String(), Query: "SELECT 1"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.Optimize(context.Background(), w.owner.ID, &dto.OptimizeQueryRequest{ProjectID: w.alpha.ID.String(), Query: "SELECT 1"})
	assert.Error(t, err)

	var count int64
	w.db.Model(&models.QueryOptimizationLog{}).Count(&count)
	assert.Zero(t, count)
}

func TestQueryLogList(t *testing.T) {
	w := newWorld(t)
	svc := NewQueryLogService(w.db, w.access, &stubOptimizer{})
	require.NoError(t, w.db.Create(&models.QueryOptimizationLog{Query: "SELECT 1", ProjectID: w.alpha.ID}).Error)
	require.NoError(t, w.db.Create(&models.QueryOptimizationLog{Query: "SELECT 2", ProjectID: w.beta.ID}).Error)

	list, err := svc.List(w.member.ID, nil, 0)
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "SELECT 1", list.QueryLogs[0].Query)
	assert.Equal(t, "Unknown", list.QueryLogs[0].QueryType)

	_, err = svc.List(w.member.ID, &w.beta.ID, 0)
	assert.ErrorIs(t, err, ErrAccessDenied)

	empty, err := svc.List(uuid.New(), nil, 0)
	require.NoError(t, err)
	assert.NotNil(t, empty.QueryLogs)
	assert.Zero(t, empty.Count)
}
