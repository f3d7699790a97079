package services

import (
	"errors"
	"testing"
	"time"

	"cylink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeImpressionRepo struct {
	recentExists bool
	existsErr    error
	createErr    error
	lastSince    time.Time
	created      []*models.Impression
}

func (f *fakeImpressionRepo) Create(impression *models.Impression) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, impression)
	return nil
}

func (f *fakeImpressionRepo) ExistsSince(urlID uint, ipAddress string, since time.Time) (bool, error) {
	f.lastSince = since
	return f.recentExists, f.existsErr
}

func (f *fakeImpressionRepo) Counts(urlID uint) (int64, int64, error) {
	return int64(len(f.created)), 0, nil
}

func TestImpressionRecordFirstVisitIsUnique(t *testing.T) {
	repo := &fakeImpressionRepo{recentExists: false}
	svc := NewImpressionService(repo, zap.NewNop())

	err := svc.Record(7, VisitorMeta{IPAddress: "10.0.0.1", Referrer: "https://news.ycombinator.com/item?id=1"})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	imp := repo.created[0]
	assert.True(t, imp.IsUnique)
	assert.Equal(t, uint(7), imp.URLID)
	assert.Equal(t, "10.0.0.1", imp.IPAddress)
	assert.Equal(t, "news.ycombinator.com", imp.Source)
}

func TestImpressionRecordRepeatVisitInsideWindowIsNotUnique(t *testing.T) {
	repo := &fakeImpressionRepo{recentExists: true}
	svc := NewImpressionService(repo, zap.NewNop())

	err := svc.Record(7, VisitorMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.False(t, repo.created[0].IsUnique)
}

func TestImpressionRecordUsesThirtyMinuteWindow(t *testing.T) {
	repo := &fakeImpressionRepo{}
	svc := NewImpressionService(repo, zap.NewNop())

	require.NoError(t, svc.Record(7, VisitorMeta{IPAddress: "10.0.0.1"}))
	assert.WithinDuration(t, time.Now().Add(-30*time.Minute), repo.lastSince, 2*time.Second)
}

func TestImpressionRecordPropagatesCheckFailure(t *testing.T) {
	repo := &fakeImpressionRepo{existsErr: errors.New("db down")}
	svc := NewImpressionService(repo, zap.NewNop())

	err := svc.Record(7, VisitorMeta{IPAddress: "10.0.0.1"})
	require.Error(t, err)
	assert.Empty(t, repo.created)
}

func TestTrafficSource(t *testing.T) {
	tests := []struct {
		name     string
		referrer string
		want     string
	}{
		{"empty referrer is direct", "", "direct"},
		{"full url reduces to host", "https://www.google.com/search?q=cylink", "www.google.com"},
		{"subdomain preserved", "http://blog.example.com/post/1", "blog.example.com"},
		{"unparseable kept verbatim", "android-app referral", "android-app referral"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trafficSource(tt.referrer))
		})
	}
}
