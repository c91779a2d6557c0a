package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cafetunes/publisher/internal/publisher/models"
)

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) Upsert(ctx context.Context, owner int64, channelID, name, caption string) (*models.Channel, error) {
	args := m.Called(ctx, owner, channelID, name, caption)
	if v := args.Get(0); v != nil {
		return v.(*models.Channel), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) ListByOwner(ctx context.Context, owner int64) ([]models.Channel, error) {
	args := m.Called(ctx, owner)
	if v := args.Get(0); v != nil {
		return v.([]models.Channel), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Channel), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) SetName(ctx context.Context, id int64, name string) error {
	return m.Called(ctx, id, name).Error(0)
}

func (m *StoreMock) SetCaption(ctx context.Context, id int64, caption string) error {
	return m.Called(ctx, id, caption).Error(0)
}

func (m *StoreMock) SetLogo(ctx context.Context, id int64, logo []byte) error {
	return m.Called(ctx, id, logo).Error(0)
}

func (m *StoreMock) SetDefault(ctx context.Context, owner, id int64) error {
	return m.Called(ctx, owner, id).Error(0)
}

func (m *StoreMock) GetDefault(ctx context.Context, owner int64) (*models.Channel, error) {
	args := m.Called(ctx, owner)
	if v := args.Get(0); v != nil {
		return v.(*models.Channel), args.Error(1)
	}
	return nil, args.Error(1)
}

type SongLogMock struct {
	mock.Mock
}

func (m *SongLogMock) Record(ctx context.Context, s *models.Song) (*models.Song, error) {
	args := m.Called(ctx, s)
	if v := args.Get(0); v != nil {
		return v.(*models.Song), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SongLogMock) History(ctx context.Context, owner int64) ([]models.Song, error) {
	args := m.Called(ctx, owner)
	if v := args.Get(0); v != nil {
		return v.([]models.Song), args.Error(1)
	}
	return nil, args.Error(1)
}
