package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/opengov-tools/budget_import_app/internal/core/services"
	"github.com/opengov-tools/budget_import_app/internal/models"
)

type CacheServiceTestSuite struct {
	suite.Suite
	mockShared *MockSharedReferenceCache
	mockDims   *MockDimensionRepository
	service    *services.CacheService
}

func (suite *CacheServiceTestSuite) SetupTest() {
	suite.mockShared = new(MockSharedReferenceCache)
	suite.mockDims = new(MockDimensionRepository)
	suite.service = services.NewCacheService(suite.mockShared, suite.mockDims, discardLogger())
}

func (suite *CacheServiceTestSuite) TestPreloadAll_CoversEveryLevel() {
	ctx := context.Background()

	for _, level := range models.HierarchyOrder {
		suite.mockShared.On("HasLevel", ctx, level).Return(false, nil).Once()
		suite.mockDims.On("ListCodes", ctx, level).Return(map[string]string{}, nil).Once()
		suite.mockShared.On("PutLevelIfAbsent", ctx, level, map[string]string{}).Return(true, nil).Once()
	}

	suite.Require().NoError(suite.service.PreloadAll(ctx))
	suite.mockShared.AssertExpectations(suite.T())
	suite.mockDims.AssertExpectations(suite.T())
}

func (suite *CacheServiceTestSuite) TestPreloadLevel_SkipsWhenAlreadyCached() {
	ctx := context.Background()

	suite.mockShared.On("HasLevel", ctx, models.LevelAccount).Return(true, nil).Once()

	suite.Require().NoError(suite.service.PreloadLevel(ctx, models.LevelAccount))
	suite.mockDims.AssertNotCalled(suite.T(), "ListCodes", mock.Anything, mock.Anything)
}

func (suite *CacheServiceTestSuite) TestInvalidateAll_ClearsEveryLevel() {
	ctx := context.Background()

	for _, level := range models.HierarchyOrder {
		suite.mockShared.On("Invalidate", ctx, level).Return(nil).Once()
	}

	suite.Require().NoError(suite.service.InvalidateAll(ctx))
	suite.mockShared.AssertExpectations(suite.T())
}

func (suite *CacheServiceTestSuite) TestInvalidateLevel_Error() {
	ctx := context.Background()

	suite.mockShared.On("Invalidate", ctx, models.LevelProgram).Return(assert.AnError).Once()

	err := suite.service.InvalidateLevel(ctx, models.LevelProgram)
	suite.Require().Error(err)
	suite.ErrorIs(err, assert.AnError)
}

func (suite *CacheServiceTestSuite) TestLevelStates() {
	ctx := context.Background()

	for _, level := range models.HierarchyOrder {
		suite.mockShared.On("HasLevel", ctx, level).Return(level == models.LevelProgram, nil).Once()
	}

	states, err := suite.service.LevelStates(ctx)
	suite.Require().NoError(err)
	suite.Len(states, len(models.HierarchyOrder))
	suite.True(states[models.LevelProgram])
	suite.False(states[models.LevelAccount])
}

func TestCacheServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CacheServiceTestSuite))
}
