package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DanielPopoola/wallee-gateway/internal/application/services"
	"github.com/DanielPopoola/wallee-gateway/internal/config"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/processor"
	"github.com/DanielPopoola/wallee-gateway/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type settingsFixture struct {
	repo        *fakeSettingsRepo
	client      *mocks.MockProcessorClient
	invalidator *fakeInvalidator
	notifier    *fakeNotifier
	service     *services.SettingsService
}

func newSettingsFixture(t *testing.T, repo *fakeSettingsRepo) *settingsFixture {
	f := &settingsFixture{
		repo:        repo,
		client:      mocks.NewMockProcessorClient(t),
		invalidator: &fakeInvalidator{},
		notifier:    &fakeNotifier{},
	}
	f.service = services.NewSettingsService(f.repo, f.client, f.invalidator, f.notifier, quietLogger())
	return f
}

func TestSettingsService_UpdateInvalidatesAndPublishes(t *testing.T) {
	f := newSettingsFixture(t, enabledSettings())

	got, err := f.service.Update(context.Background(), services.UpdateSettingsCommand{
		SpaceID:       ptr(int64(999)),
		WebhookSecret: ptr("rotated"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(999), got.SpaceID)
	assert.Equal(t, "rotated", f.repo.settings.WebhookSecret)
	assert.Equal(t, int64(512), f.repo.settings.UserID)
	assert.Equal(t, 1, f.repo.saves)
	assert.Equal(t, 1, f.invalidator.calls)
	assert.Equal(t, 1, f.notifier.calls)
}

func TestSettingsService_PublishFailureIsNotFatal(t *testing.T) {
	f := newSettingsFixture(t, enabledSettings())
	f.notifier.err = errors.New("redis down")

	_, err := f.service.Update(context.Background(), services.UpdateSettingsCommand{LogAPICalls: ptr(true)})

	require.NoError(t, err)
	assert.True(t, f.repo.settings.LogAPICalls)
	assert.Equal(t, 1, f.invalidator.calls)
}

func TestSettingsService_EnableRequiresCredentials(t *testing.T) {
	f := newSettingsFixture(t, &fakeSettingsRepo{})

	_, err := f.service.Update(context.Background(), services.UpdateSettingsCommand{Enabled: ptr(true)})

	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	assert.Equal(t, 0, f.repo.saves)
	assert.Equal(t, 0, f.invalidator.calls)
}

func TestSettingsService_DisableWithoutCredentials(t *testing.T) {
	f := newSettingsFixture(t, &fakeSettingsRepo{})

	got, err := f.service.Update(context.Background(), services.UpdateSettingsCommand{Enabled: ptr(false)})

	require.NoError(t, err)
	assert.False(t, got.Enabled)
}

func TestSettingsService_TestConnection(t *testing.T) {
	f := newSettingsFixture(t, enabledSettings())
	f.client.EXPECT().ReadSpace(mock.Anything).
		Return(map[string]any{"id": 405, "name": "Shop", "state": "ACTIVE"}, nil).Once()

	result, err := f.service.TestConnection(context.Background())

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(405), *result.SpaceID)
	assert.Equal(t, "Shop", result.SpaceName)
	assert.Equal(t, "ACTIVE", result.SpaceState)
}

func TestSettingsService_TestConnectionFailure(t *testing.T) {
	f := newSettingsFixture(t, enabledSettings())
	f.client.EXPECT().ReadSpace(mock.Anything).
		Return(nil, &processor.ProcessorError{Code: "UNAUTHORIZED", Message: "bad key", StatusCode: 401}).Once()

	result, err := f.service.TestConnection(context.Background())

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestSettingsService_SeedKeepsExisting(t *testing.T) {
	f := newSettingsFixture(t, enabledSettings())

	err := f.service.Seed(context.Background(), config.SettingsSeed{UserID: 1, SpaceID: 2}, "https://app-wallee.com")

	require.NoError(t, err)
	assert.Equal(t, int64(512), f.repo.settings.UserID)
}

func TestSettingsService_SeedEmpty(t *testing.T) {
	f := newSettingsFixture(t, &fakeSettingsRepo{})

	err := f.service.Seed(context.Background(), config.SettingsSeed{UserID: 1, SpaceID: 2, AuthenticationKey: " a2V5 "}, "https://app-wallee.com")

	require.NoError(t, err)
	assert.Equal(t, int64(1), f.repo.settings.UserID)
	assert.Equal(t, "a2V5", f.repo.settings.AuthenticationKey)
	assert.Equal(t, "https://app-wallee.com", f.repo.settings.APIHost)
}
