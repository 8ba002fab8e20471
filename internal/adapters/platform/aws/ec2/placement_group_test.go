package ec2

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/service"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/mocks"
)

type PlacementGroupTestSuite struct {
	suite.Suite
	client     *mocks.MockEC2Client
	adapter    *PlacementGroupAdapter
	reconciler *service.Reconciler
	ctx        context.Context
}

func (s *PlacementGroupTestSuite) SetupTest() {
	s.client = new(mocks.MockEC2Client)
	logger := mocks.NewMockLogger()
	s.adapter = NewPlacementGroupAdapter(s.client, mocks.MockCaller{}, logger)
	s.reconciler = service.NewReconciler(logger, domain.DefaultFailurePolicies())
	s.ctx = context.Background()
}

func (s *PlacementGroupTestSuite) TearDownTest() {
	s.client.AssertExpectations(s.T())
}

func TestPlacementGroupTestSuite(t *testing.T) {
	suite.Run(t, new(PlacementGroupTestSuite))
}

func group(name, strategy, state string, tags ...types.Tag) types.PlacementGroup {
	return types.PlacementGroup{
		GroupName: aws.String(name),
		GroupId:   aws.String("pg-" + name),
		Strategy:  types.PlacementStrategy(strategy),
		State:     types.PlacementGroupState(state),
		Tags:      tags,
	}
}

func byName(name string) any {
	return mock.MatchedBy(func(in *ec2.DescribePlacementGroupsInput) bool {
		return len(in.Filters) == 1 && aws.ToString(in.Filters[0].Name) == "group-name" && in.Filters[0].Values[0] == name
	})
}

func (s *PlacementGroupTestSuite) TestDecodeRejectsPartitionCountWithoutPartitionStrategy() {
	_, err := s.adapter.Decode(map[string]any{"name": "web", "partition_count": 3})
	s.Require().Error(err)
	s.True(apperrors.Is(err, apperrors.CodeValidation))
	s.Contains(err.Error(), "'partition_count' can only be set when strategy is set to 'partition'.")

	desired, err := s.adapter.Decode(map[string]any{"name": "web", "strategy": "partition", "partition_count": 3})
	s.Require().NoError(err)
	s.Equal(int32(3), desired.Attributes[domain.PlacementGroupPartitionCountKey])
	s.True(desired.PurgeTags)
}

func (s *PlacementGroupTestSuite) TestCreateWhenMissing() {
	s.client.On("DescribePlacementGroups", mock.Anything, byName("web")).
		Return(&ec2.DescribePlacementGroupsOutput{}, nil).Once()
	s.client.On("CreatePlacementGroup", mock.Anything, mock.MatchedBy(func(in *ec2.CreatePlacementGroupInput) bool {
		return aws.ToString(in.GroupName) == "web" && in.Strategy == types.PlacementStrategyCluster &&
			len(in.TagSpecifications) == 1 && in.TagSpecifications[0].ResourceType == types.ResourceTypePlacementGroup
	})).Return(&ec2.CreatePlacementGroupOutput{}, nil).Once()
	s.client.On("DescribePlacementGroups", mock.Anything, byName("web")).
		Return(&ec2.DescribePlacementGroupsOutput{PlacementGroups: []types.PlacementGroup{
			group("web", "cluster", "pending", types.Tag{Key: aws.String("env"), Value: aws.String("prod")}),
		}}, nil).Once()

	result, err := s.reconciler.Reconcile(s.ctx, s.adapter, map[string]any{"name": "web", "tags": map[string]any{"env": "prod"}}, false)
	s.Require().NoError(err)
	s.True(result.Changed)
	s.Equal(domain.ActionCreate, result.Action)
	s.Equal("pending", result.Resource[domain.KeyState])
	s.Equal(map[string]string{"env": "prod"}, result.Resource[domain.KeyTags])
}

func (s *PlacementGroupTestSuite) TestExistingGroupIsUnchanged() {
	s.client.On("DescribePlacementGroups", mock.Anything, byName("web")).
		Return(&ec2.DescribePlacementGroupsOutput{PlacementGroups: []types.PlacementGroup{group("web", "cluster", "available")}}, nil).Once()

	result, err := s.reconciler.Reconcile(s.ctx, s.adapter, map[string]any{"name": "web"}, false)
	s.Require().NoError(err)
	s.False(result.Changed)
	s.Equal(domain.ActionNoop, result.Action)
	s.Equal("available", result.Resource[domain.KeyState])
}

func (s *PlacementGroupTestSuite) TestStrategyChangeIsRefused() {
	s.client.On("DescribePlacementGroups", mock.Anything, byName("web")).
		Return(&ec2.DescribePlacementGroupsOutput{PlacementGroups: []types.PlacementGroup{group("web", "cluster", "available")}}, nil).Once()

	result, err := s.reconciler.Reconcile(s.ctx, s.adapter, map[string]any{"name": "web", "strategy": "spread"}, false)
	s.Require().Error(err)
	s.False(result.Changed)
	s.True(apperrors.Is(err, apperrors.CodeImmutableField))
	s.Contains(err.Error(), "can't change strategy from 'cluster' to 'spread'")
	s.client.AssertNotCalled(s.T(), "CreatePlacementGroup", mock.Anything, mock.Anything)
}

func (s *PlacementGroupTestSuite) TestTagUpdate() {
	s.client.On("DescribePlacementGroups", mock.Anything, byName("web")).
		Return(&ec2.DescribePlacementGroupsOutput{PlacementGroups: []types.PlacementGroup{
			group("web", "cluster", "available", types.Tag{Key: aws.String("old"), Value: aws.String("1")}),
		}}, nil).Once()
	s.client.On("CreateTags", mock.Anything, &ec2.CreateTagsInput{
		Resources: []string{"pg-web"},
		Tags:      []types.Tag{{Key: aws.String("env"), Value: aws.String("prod")}},
	}).Return(&ec2.CreateTagsOutput{}, nil).Once()
	s.client.On("DeleteTags", mock.Anything, &ec2.DeleteTagsInput{
		Resources: []string{"pg-web"},
		Tags:      []types.Tag{{Key: aws.String("old")}},
	}).Return(&ec2.DeleteTagsOutput{}, nil).Once()
	s.client.On("DescribePlacementGroups", mock.Anything, byName("web")).
		Return(&ec2.DescribePlacementGroupsOutput{PlacementGroups: []types.PlacementGroup{
			group("web", "cluster", "available", types.Tag{Key: aws.String("env"), Value: aws.String("prod")}),
		}}, nil).Once()

	result, err := s.reconciler.Reconcile(s.ctx, s.adapter, map[string]any{"name": "web", "tags": map[string]any{"env": "prod"}}, false)
	s.Require().NoError(err)
	s.True(result.Changed)
	s.Equal(domain.ActionUpdate, result.Action)
}

func (s *PlacementGroupTestSuite) TestDryRunCreatePreview() {
	s.client.On("DescribePlacementGroups", mock.Anything, byName("web")).
		Return(&ec2.DescribePlacementGroupsOutput{}, nil).Once()

	result, err := s.reconciler.Reconcile(s.ctx, s.adapter, map[string]any{"name": "web", "strategy": "spread"}, true)
	s.Require().NoError(err)
	s.True(result.Changed)
	s.Equal("DryRun", result.Resource[domain.KeyState])
	s.Equal("spread", result.Resource[domain.PlacementGroupStrategyKey])
	s.client.AssertNotCalled(s.T(), "CreatePlacementGroup", mock.Anything, mock.Anything)
}

func (s *PlacementGroupTestSuite) TestDeleteAndAbsentNoop() {
	s.client.On("DescribePlacementGroups", mock.Anything, byName("web")).
		Return(&ec2.DescribePlacementGroupsOutput{PlacementGroups: []types.PlacementGroup{group("web", "cluster", "available")}}, nil).Once()
	s.client.On("DeletePlacementGroup", mock.Anything, &ec2.DeletePlacementGroupInput{GroupName: aws.String("web")}).
		Return(&ec2.DeletePlacementGroupOutput{}, nil).Once()

	result, err := s.reconciler.Reconcile(s.ctx, s.adapter, map[string]any{"name": "web", "state": "absent"}, false)
	s.Require().NoError(err)
	s.True(result.Changed)
	s.Nil(result.Resource)

	s.client.On("DescribePlacementGroups", mock.Anything, byName("gone")).
		Return(nil, &smithy.GenericAPIError{Code: "InvalidPlacementGroup.Unknown"}).Once()
	result, err = s.reconciler.Reconcile(s.ctx, s.adapter, map[string]any{"name": "gone", "state": "absent"}, false)
	s.Require().NoError(err)
	s.False(result.Changed)
}

func (s *PlacementGroupTestSuite) TestAmbiguousLookup() {
	s.client.On("DescribePlacementGroups", mock.Anything, byName("web")).
		Return(&ec2.DescribePlacementGroupsOutput{PlacementGroups: []types.PlacementGroup{
			group("web", "cluster", "available"), group("web", "spread", "available"),
		}}, nil).Once()

	_, err := s.reconciler.Reconcile(s.ctx, s.adapter, map[string]any{"name": "web"}, false)
	s.Require().Error(err)
	s.True(apperrors.Is(err, apperrors.CodeAmbiguousResource))
}

func (s *PlacementGroupTestSuite) TestInfoListsGroups() {
	info := NewPlacementGroupInfo(s.client, mocks.MockCaller{}, mocks.NewMockLogger())
	s.client.On("DescribePlacementGroups", mock.Anything, &ec2.DescribePlacementGroupsInput{}).
		Return(&ec2.DescribePlacementGroupsOutput{PlacementGroups: []types.PlacementGroup{
			group("a", "cluster", "available"), group("b", "spread", "available"),
		}}, nil).Once()

	result, err := s.reconciler.Query(s.ctx, info, map[string]any{})
	s.Require().NoError(err)
	s.Len(result.Items, 2)
	s.Equal("b", result.Items[1].(map[string]any)[domain.KeyName])
	s.Equal([]any{result.Items[0], result.Items[1]}, result.Output()["placement_groups"])
}
