package iam

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/iam"
)

//go:generate mockery --name IAMClientInterface --output ./mocks --outpkg mocks --case underscore

type IAMClientInterface interface {
	ListMFADevices(ctx context.Context, params *iam.ListMFADevicesInput, optFns ...func(*iam.Options)) (*iam.ListMFADevicesOutput, error)
}
