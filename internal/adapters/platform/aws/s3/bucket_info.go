package s3

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/pkg/convert"
)

type bucketInfoSpec struct {
	Name              string          `mapstructure:"name" validate:"excluded_with=NameFilter"`
	NameFilter        string          `mapstructure:"name_filter"`
	BucketFacts       map[string]bool `mapstructure:"bucket_facts"`
	TransformLocation bool            `mapstructure:"transform_location"`

	domain.FailurePolicies `mapstructure:",squash"`
}

// BucketInfo lists buckets and, per bucket, the configuration facts the
// caller opted into.
type BucketInfo struct {
	client      S3ClientInterface
	caller      shared.Caller
	logger      ports.Logger
	concurrency int
}

// NewBucketInfo returns a BucketInfo fetching up to concurrency facts of one
// bucket at a time. Values below one mean sequential.
func NewBucketInfo(client S3ClientInterface, caller shared.Caller, logger ports.Logger, concurrency int) *BucketInfo {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BucketInfo{client: client, caller: caller, logger: logger, concurrency: concurrency}
}

func (q *BucketInfo) Kind() domain.ResourceKind { return domain.KindS3BucketInfo }
func (q *BucketInfo) Noun() string              { return "buckets" }

func (q *BucketInfo) Query(ctx context.Context, params map[string]any, failures ports.FailureHandler) ([]any, error) {
	var spec bucketInfoSpec
	if err := shared.DecodeParams(q.Kind(), params, &spec); err != nil {
		return nil, err
	}
	requested, err := requestedFacts(spec.BucketFacts)
	if err != nil {
		return nil, err
	}

	buckets, err := q.listBuckets(ctx, spec)
	if err != nil {
		return nil, err
	}

	items := make([]any, 0, len(buckets))
	for _, bucket := range buckets {
		if len(requested) > 0 {
			name, _ := bucket["name"].(string)
			facts, err := q.fetchFacts(ctx, name, requested, spec, failures)
			if err != nil {
				return nil, err
			}
			for k, v := range facts {
				bucket[k] = v
			}
		}
		items = append(items, bucket)
	}
	return items, nil
}

func requestedFacts(flags map[string]bool) ([]bucketFact, error) {
	known := make(map[string]bucketFact, len(bucketFacts))
	for _, f := range bucketFacts {
		known[f.name] = f
	}

	var unknown []string
	for name := range flags {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, shared.Invalid("unsupported bucket_facts: %s", strings.Join(unknown, ", "))
	}

	var out []bucketFact
	for _, f := range bucketFacts {
		if flags[f.name] {
			out = append(out, f)
		}
	}
	return out, nil
}

// listBuckets returns buckets matching name exactly, or containing
// name_filter, or all of them.
func (q *BucketInfo) listBuckets(ctx context.Context, spec bucketInfoSpec) ([]map[string]any, error) {
	input := &s3.ListBucketsInput{}
	var buckets []map[string]any
	for {
		out, err := shared.Invoke(ctx, q.caller, "s3", "ListBuckets", func(ctx context.Context) (*s3.ListBucketsOutput, error) {
			return q.client.ListBuckets(ctx, input)
		})
		if err != nil {
			return nil, err
		}

		for _, b := range out.Buckets {
			name := aws.ToString(b.Name)
			switch {
			case spec.NameFilter != "" && !strings.Contains(name, spec.NameFilter):
				continue
			case spec.Name != "" && name != spec.Name:
				continue
			}
			entry, err := convert.ToSnakeMap(b)
			if err != nil {
				return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to normalize bucket")
			}
			buckets = append(buckets, entry)
		}

		if aws.ToString(out.ContinuationToken) == "" {
			break
		}
		input.ContinuationToken = out.ContinuationToken
	}
	q.logger.Debugf(ctx, "Matched %d buckets", len(buckets))
	return buckets, nil
}

// fetchFacts reads the requested facts of one bucket. A fact the bucket does
// not have renders as an empty map. Access denied goes to the failure policy
// and an absorbed denial leaves the fact out. Any other error is fatal.
func (q *BucketInfo) fetchFacts(ctx context.Context, bucket string, facts []bucketFact, spec bucketInfoSpec, failures ports.FailureHandler) (map[string]any, error) {
	log := q.logger.WithFields(map[string]any{"bucket_name": bucket})
	results := make(map[string]any, len(facts))
	var mu sync.Mutex

	g, childCtx := errgroup.WithContext(ctx)
	g.SetLimit(q.concurrency)

	for _, fact := range facts {
		g.Go(func() error {
			var rendered any = map[string]any{}
			out, err := shared.Invoke(childCtx, q.caller, "s3", fact.operation, func(ctx context.Context) (any, error) {
				return fact.fetch(ctx, q.client, bucket)
			})
			switch {
			case err == nil:
				rendered, err = renderFact(fact.name, out, spec.TransformLocation)
				if err != nil {
					return apperrors.Wrap(err, apperrors.CodeInternal, "failed to normalize "+fact.name)
				}
			case factAbsent(err):
				log.Debugf(childCtx, "No %s: %v", fact.name, err)
			case apperrors.Is(err, apperrors.CodePlatformAuthError):
				subject := fmt.Sprintf("%s of bucket %s", fact.name, bucket)
				if err := failures.Handle(childCtx, subject, err, spec.FailurePolicies); err != nil {
					return err
				}
				return nil
			default:
				return err
			}

			mu.Lock()
			results[fact.name] = rendered
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
