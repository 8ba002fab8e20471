package secretsmanager

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/service"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/mocks"
)

type SecretLookupTestSuite struct {
	suite.Suite
	client     *mocks.MockSecretsClient
	lookup     *SecretLookup
	reconciler *service.Reconciler
	ctx        context.Context
}

func (s *SecretLookupTestSuite) SetupTest() {
	s.client = new(mocks.MockSecretsClient)
	logger := mocks.NewMockLogger()
	s.lookup = NewSecretLookup(s.client, mocks.MockCaller{}, logger)
	s.reconciler = service.NewReconciler(logger, domain.DefaultFailurePolicies())
	s.ctx = context.Background()
}

func (s *SecretLookupTestSuite) TearDownTest() {
	s.client.AssertExpectations(s.T())
}

func TestSecretLookupTestSuite(t *testing.T) {
	suite.Run(t, new(SecretLookupTestSuite))
}

func (s *SecretLookupTestSuite) expectValue(id string, out *secretsmanager.GetSecretValueOutput, err error) {
	s.client.On("GetSecretValue", mock.Anything, &secretsmanager.GetSecretValueInput{SecretId: aws.String(id)}).
		Return(out, err).Once()
}

var (
	notFound = &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "Secrets Manager can't find the specified secret."}
	denied   = &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "not authorized"}
)

func (s *SecretLookupTestSuite) TestValuesInTermOrder() {
	s.expectValue("db/user", &secretsmanager.GetSecretValueOutput{SecretString: aws.String("admin")}, nil)
	s.expectValue("db/cert", &secretsmanager.GetSecretValueOutput{SecretBinary: []byte("PEM")}, nil)

	result, err := s.reconciler.Query(s.ctx, s.lookup, map[string]any{"terms": []string{"db/user", "db/cert"}})
	s.Require().NoError(err)
	s.Equal([]any{"admin", "PEM"}, result.Items)
	s.Empty(result.Warnings)
}

func (s *SecretLookupTestSuite) TestVersionSelectorsAreSent() {
	s.client.On("GetSecretValue", mock.Anything, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String("api"),
		VersionStage: aws.String("AWSPREVIOUS"),
	}).Return(&secretsmanager.GetSecretValueOutput{SecretString: aws.String("old")}, nil).Once()

	result, err := s.reconciler.Query(s.ctx, s.lookup, map[string]any{"terms": []string{"api"}, "version_stage": "AWSPREVIOUS"})
	s.Require().NoError(err)
	s.Equal([]any{"old"}, result.Items)
}

func (s *SecretLookupTestSuite) TestJoin() {
	s.expectValue("part1", &secretsmanager.GetSecretValueOutput{SecretString: aws.String("abc")}, nil)
	s.expectValue("part2", &secretsmanager.GetSecretValueOutput{SecretString: aws.String("def")}, nil)

	result, err := s.reconciler.Query(s.ctx, s.lookup, map[string]any{"terms": []string{"part1", "part2"}, "join": true})
	s.Require().NoError(err)
	s.Equal([]any{"abcdef"}, result.Items)
}

func (s *SecretLookupTestSuite) TestMissingSecretFailsByDefault() {
	s.expectValue("gone", nil, notFound)
	s.expectValue("kept", &secretsmanager.GetSecretValueOutput{SecretString: aws.String("v")}, nil)

	result, err := s.reconciler.Query(s.ctx, s.lookup, map[string]any{"terms": []string{"gone", "kept"}})
	s.Require().Error(err)
	s.True(apperrors.Is(err, apperrors.CodeResourceNotFound))
	s.Contains(err.Error(), "failed to find secret gone")
	s.Equal([]any{"v"}, result.Items)
}

func (s *SecretLookupTestSuite) TestFatalTermDoesNotBlockOthers() {
	s.expectValue("a", &secretsmanager.GetSecretValueOutput{SecretString: aws.String("va")}, nil)
	s.expectValue("b", nil, &smithy.GenericAPIError{Code: "DecryptionFailure", Message: "kms key disabled"})
	s.expectValue("c", &secretsmanager.GetSecretValueOutput{SecretString: aws.String("vc")}, nil)

	result, err := s.reconciler.Query(s.ctx, s.lookup, map[string]any{"terms": []string{"a", "b", "c"}})
	s.Require().Error(err)
	s.True(apperrors.Is(err, apperrors.CodePlatformAPIError))
	s.Contains(err.Error(), "1 of 3 secret lookups failed")
	s.Contains(err.Error(), "DecryptionFailure")
	s.Equal([]any{"va", "vc"}, result.Items)
}

func (s *SecretLookupTestSuite) TestFailFastStopsAtFirstFailure() {
	s.expectValue("a", &secretsmanager.GetSecretValueOutput{SecretString: aws.String("va")}, nil)
	s.expectValue("b", nil, &smithy.GenericAPIError{Code: "DecryptionFailure"})

	result, err := s.reconciler.Query(s.ctx, s.lookup, map[string]any{"terms": []string{"a", "b", "c"}, "fail_fast": true})
	s.Require().Error(err)
	s.Equal([]any{"va"}, result.Items)
	s.client.AssertNotCalled(s.T(), "GetSecretValue", mock.Anything, &secretsmanager.GetSecretValueInput{SecretId: aws.String("c")})
}

func (s *SecretLookupTestSuite) TestEmptySecretValueIsKept() {
	s.expectValue("blank", &secretsmanager.GetSecretValueOutput{SecretString: aws.String("")}, nil)
	s.expectValue("set", &secretsmanager.GetSecretValueOutput{SecretString: aws.String("x")}, nil)

	result, err := s.reconciler.Query(s.ctx, s.lookup, map[string]any{"terms": []string{"blank", "set"}})
	s.Require().NoError(err)
	s.Equal([]any{"", "x"}, result.Items)
}

func (s *SecretLookupTestSuite) TestByPathKeepsEmptyValueAndContinuesAfterFailure() {
	s.client.On("ListSecrets", mock.Anything, mock.Anything).Return(&secretsmanager.ListSecretsOutput{SecretList: []types.SecretListEntry{
		{Name: aws.String("/app/blank")},
		{Name: aws.String("/app/broken")},
		{Name: aws.String("/app/c")},
	}}, nil).Once()
	s.expectValue("/app/blank", &secretsmanager.GetSecretValueOutput{SecretString: aws.String("")}, nil)
	s.expectValue("/app/broken", nil, &smithy.GenericAPIError{Code: "DecryptionFailure"})
	s.expectValue("/app/c", &secretsmanager.GetSecretValueOutput{SecretString: aws.String("3")}, nil)

	result, err := s.reconciler.Query(s.ctx, s.lookup, map[string]any{"terms": []string{"/app/"}, "bypath": true})
	s.Require().Error(err)
	s.Equal([]any{map[string]any{"/app/blank": "", "/app/c": "3"}}, result.Items)
}

func (s *SecretLookupTestSuite) TestMissingSecretWarnContinues() {
	s.expectValue("gone", nil, notFound)
	s.expectValue("kept", &secretsmanager.GetSecretValueOutput{SecretString: aws.String("v")}, nil)

	result, err := s.reconciler.Query(s.ctx, s.lookup, map[string]any{"terms": []string{"gone", "kept"}, "on_missing": "WARN"})
	s.Require().NoError(err)
	s.Equal([]any{"v"}, result.Items)
	s.Equal([]string{"skipping, did not find secret gone"}, result.Warnings)
}

func (s *SecretLookupTestSuite) TestDeniedSecretSkipIsSilent() {
	s.expectValue("locked", nil, denied)

	result, err := s.reconciler.Query(s.ctx, s.lookup, map[string]any{"terms": []string{"locked"}, "on_denied": "skip"})
	s.Require().NoError(err)
	s.Empty(result.Items)
	s.Empty(result.Warnings)
}

func (s *SecretLookupTestSuite) TestInvalidPolicyIsRejected() {
	_, err := s.reconciler.Query(s.ctx, s.lookup, map[string]any{"terms": []string{"x"}, "on_missing": "ignore"})
	s.Require().Error(err)
	s.True(apperrors.Is(err, apperrors.CodeValidation))
}

func (s *SecretLookupTestSuite) TestByPath() {
	s.client.On("ListSecrets", mock.Anything, mock.MatchedBy(func(in *secretsmanager.ListSecretsInput) bool {
		return len(in.Filters) == 1 && in.Filters[0].Key == types.FilterNameStringTypeName && in.Filters[0].Values[0] == "/app/"
	})).Return(&secretsmanager.ListSecretsOutput{SecretList: []types.SecretListEntry{
		{Name: aws.String("/app/a")},
		{Name: aws.String("/app/b")},
	}}, nil).Once()
	s.expectValue("/app/a", &secretsmanager.GetSecretValueOutput{SecretString: aws.String("1")}, nil)
	s.expectValue("/app/b", nil, denied)

	result, err := s.reconciler.Query(s.ctx, s.lookup, map[string]any{"terms": []string{"/app/"}, "bypath": true, "on_denied": "warn"})
	s.Require().NoError(err)
	s.Equal([]any{map[string]any{"/app/a": "1"}}, result.Items)
	s.Equal([]string{"skipping, access denied for secret /app/b"}, result.Warnings)
}
