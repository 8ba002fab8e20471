package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/mocks"
)

type EngineTestSuite struct {
	suite.Suite
	ctx      context.Context
	registry *ComponentRegistry
	adapter  *mocks.MockResourceAdapter
	query    *mocks.MockQueryAdapter
	source   *mocks.MockManifestSource
	reporter *mocks.MockReporter
	logger   *mocks.MockLogger
}

func (s *EngineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.registry = NewComponentRegistry()
	s.adapter = &mocks.MockResourceAdapter{KindValue: domain.KindPlacementGroup, RuleSet: groupRules}
	s.query = &mocks.MockQueryAdapter{KindValue: domain.KindVPCInfo}
	s.source = new(mocks.MockManifestSource)
	s.reporter = new(mocks.MockReporter)
	s.logger = mocks.NewMockLogger()

	s.Require().NoError(s.registry.RegisterAdapter(s.adapter))
	s.Require().NoError(s.registry.RegisterQuery(s.query))
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) engine(opts EngineOptions) *ReconcileEngine {
	e, err := NewReconcileEngine(s.registry, NewReconciler(s.logger, domain.DefaultFailurePolicies()), s.source, s.reporter, s.logger, opts)
	s.Require().NoError(err)
	return e
}

func (s *EngineTestSuite) TestRunsEveryEntryAndReports() {
	pgParams := map[string]any{"name": "a"}
	vpcParams := map[string]any{"vpc_ids": []string{"vpc-1"}}
	desired := desiredGroup(map[string]any{"strategy": "cluster"})

	s.source.On("Load", s.ctx).Return([]domain.ResourceRequest{
		{Kind: domain.KindPlacementGroup, Source: "placement_group.a", Params: pgParams},
		{Kind: domain.KindVPCInfo, Source: "vpc_info.main", Params: vpcParams},
	}, nil).Once()
	s.adapter.On("Decode", pgParams).Return(desired, nil).Once()
	s.adapter.On("Describe", s.ctx, desired).Return(observedGroup(map[string]any{"strategy": "cluster"}), nil).Once()
	s.query.On("Query", s.ctx, vpcParams, mock.Anything).Return([]any{map[string]any{"id": "vpc-1"}}, nil).Once()
	s.reporter.On("Report", s.ctx, mock.MatchedBy(func(rs []domain.Result) bool { return len(rs) == 2 })).Return(nil).Once()

	results, err := s.engine(EngineOptions{}).Run(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal("placement_group.a", results[0].Source)
	s.False(results[0].Changed)
	s.Equal("vpc_info.main", results[1].Source)
	s.Len(results[1].Items, 1)
	s.reporter.AssertExpectations(s.T())
}

func (s *EngineTestSuite) TestFailureContinuesUnlessFailFast() {
	requests := []domain.ResourceRequest{
		{Kind: "unknown_kind", Source: "unknown.x"},
		{Kind: domain.KindVPCInfo, Source: "vpc_info.main", Params: map[string]any{}},
	}

	s.Run("continue", func() {
		s.SetupTest()
		s.source.On("Load", s.ctx).Return(requests, nil).Once()
		s.query.On("Query", s.ctx, map[string]any{}, mock.Anything).Return([]any{}, nil).Once()
		s.reporter.On("Report", s.ctx, mock.Anything).Return(nil).Once()

		results, err := s.engine(EngineOptions{}).Run(s.ctx)
		s.Error(err)
		s.True(apperrors.Is(err, apperrors.CodeNotImplemented))
		s.Contains(err.Error(), "1 of 2 resources failed")
		s.Len(results, 2)
		s.Error(results[0].Error)
		s.NoError(results[1].Error)
	})

	s.Run("fail fast", func() {
		s.SetupTest()
		s.source.On("Load", s.ctx).Return(requests, nil).Once()
		s.reporter.On("Report", s.ctx, mock.Anything).Return(nil).Once()

		results, err := s.engine(EngineOptions{FailFast: true}).Run(s.ctx)
		s.Error(err)
		s.Len(results, 1)
		s.query.AssertNotCalled(s.T(), "Query", mock.Anything, mock.Anything, mock.Anything)
	})
}

func (s *EngineTestSuite) TestEmptyManifest() {
	s.source.On("Load", s.ctx).Return([]domain.ResourceRequest{}, nil).Once()
	_, err := s.engine(EngineOptions{}).Run(s.ctx)
	s.True(apperrors.Is(err, apperrors.CodeConfigValidation))
}

func (s *EngineTestSuite) TestRegistryRejectsDuplicates() {
	err := s.registry.RegisterQuery(&mocks.MockQueryAdapter{KindValue: domain.KindPlacementGroup})
	s.Error(err)
	s.Equal([]domain.ResourceKind{domain.KindPlacementGroup, domain.KindVPCInfo}, s.registry.Kinds())
}
