// internal/service/settings/settings_test.go
package settings

import (
	"context"
	"testing"

	"checkout-service/internal/domain/settings"
	xerrors "checkout-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	saved   map[int64]*settings.SellerSettings
	upserts []*settings.SellerSettings
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: map[int64]*settings.SellerSettings{}}
}

func (f *fakeStore) FindSellerSettings(_ context.Context, sellerID int64) (*settings.SellerSettings, error) {
	s, ok := f.saved[sellerID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) UpsertSellerSettings(_ context.Context, s *settings.SellerSettings) error {
	f.saved[s.SellerID] = s
	f.upserts = append(f.upserts, s)
	return nil
}

func (f *fakeStore) FindPlatformSettings(_ context.Context) (*settings.PlatformSettings, error) {
	return &settings.PlatformSettings{}, nil
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestGetSellerSettingsDefaultsAttributionOn(t *testing.T) {
	svc := NewService(newFakeStore(), zap.NewNop())

	got, err := svc.GetSellerSettings(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), got.SellerID)
	assert.True(t, got.AttributionEnabled, "a seller who never saved settings is not opted out")
	assert.Empty(t, got.SMTPHost)
}

func TestFirstUpdateKeepsAttributionDefault(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())

	// First save touches only SMTP fields; the attribution toggle was
	// never sent and must survive as enabled.
	got, err := svc.UpdateSellerSettings(context.Background(), 7, &settings.UpdateSellerSettingsRequest{
		SMTPHost: strPtr("smtp.example.com"),
		SMTPUser: strPtr("mailer@example.com"),
	})
	require.NoError(t, err)

	assert.True(t, got.AttributionEnabled)
	require.Len(t, store.upserts, 1)
	assert.True(t, store.upserts[0].AttributionEnabled, "the persisted row must carry the default, not the zero value")
	assert.Equal(t, "smtp.example.com", store.upserts[0].SMTPHost)
}

func TestUpdatePreservesExplicitOptOut(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())

	_, err := svc.UpdateSellerSettings(context.Background(), 7, &settings.UpdateSellerSettingsRequest{
		AttributionEnabled: boolPtr(false),
	})
	require.NoError(t, err)

	// A later SMTP-only save must not silently re-enable attribution.
	got, err := svc.UpdateSellerSettings(context.Background(), 7, &settings.UpdateSellerSettingsRequest{
		SMTPHost: strPtr("smtp.example.com"),
	})
	require.NoError(t, err)

	assert.False(t, got.AttributionEnabled)
	assert.False(t, store.saved[7].AttributionEnabled)
}
