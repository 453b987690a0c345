package dns

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
)

// DefaultTTL is the TTL used when a record does not set one.
const DefaultTTL int64 = 300

// API is the subset of the Route 53 client used here.
// *route53.Client satisfies it.
type API interface {
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
	GetChange(ctx context.Context, params *route53.GetChangeInput, optFns ...func(*route53.Options)) (*route53.GetChangeOutput, error)
}

// Record is a CNAME record to upsert.
type Record struct {
	// Name is the fully qualified record name.
	Name string `json:"name"`

	// Value is the canonical name the record points at.
	Value string `json:"value"`

	// TTL is the record TTL in seconds.
	TTL int64 `json:"ttl"`

	// HostedZoneID is the zone that owns Name. A "/hostedzone/" prefix is accepted.
	HostedZoneID string `json:"hosted_zone_id"`

	// Comment is attached to the change batch.
	Comment string `json:"comment,omitempty"`
}

// Validate checks that the record can be submitted.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNoName
	}
	if strings.TrimSpace(r.Value) == "" {
		return ErrNoValue
	}
	if strings.TrimSpace(r.HostedZoneID) == "" {
		return ErrNoHostedZone
	}
	if r.TTL <= 0 {
		return ErrInvalidTTL
	}
	return nil
}

// Change describes a submitted change batch.
type Change struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
	Comment     string    `json:"comment,omitempty"`
}

// Insync reports whether Route 53 has propagated the change.
func (c *Change) Insync() bool {
	return c.Status == string(types.ChangeStatusInsync)
}

// Upserter submits CNAME upserts.
type Upserter struct {
	api    API
	logger *slog.Logger
}

// NewUpserter creates an Upserter around api.
func NewUpserter(api API, logger *slog.Logger) *Upserter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Upserter{api: api, logger: logger}
}

// NewClient builds a Route 53 client from the shared-config profile and
// region. Empty values fall back to the SDK's default resolution.
func NewClient(ctx context.Context, profile, region string) (*route53.Client, error) {
	opts := make([]func(*awsconfig.LoadOptions) error, 0, 2)
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for profile %q: %w", profile, err)
	}
	return route53.NewFromConfig(cfg), nil
}

// Upsert creates or replaces the CNAME record in a single change batch.
func (u *Upserter) Upsert(ctx context.Context, rec Record) (*Change, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	input := &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(trimZonePrefix(rec.HostedZoneID)),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{
				{
					Action: types.ChangeActionUpsert,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name: aws.String(rec.Name),
						Type: types.RRTypeCname,
						TTL:  aws.Int64(rec.TTL),
						ResourceRecords: []types.ResourceRecord{
							{Value: aws.String(rec.Value)},
						},
					},
				},
			},
		},
	}
	if rec.Comment != "" {
		input.ChangeBatch.Comment = aws.String(rec.Comment)
	}

	u.logger.Info("upserting CNAME record",
		"name", rec.Name,
		"value", rec.Value,
		"ttl", rec.TTL,
		"zone", rec.HostedZoneID,
	)

	out, err := u.api.ChangeResourceRecordSets(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert %s: %w", rec.Name, err)
	}
	if out.ChangeInfo == nil {
		return nil, ErrNoChangeInfo
	}

	change := toChange(out.ChangeInfo)
	u.logger.Info("change submitted", "id", change.ID, "status", change.Status)
	return change, nil
}

// Wait blocks until the change is INSYNC or maxWait elapses.
func (u *Upserter) Wait(ctx context.Context, change *Change, maxWait time.Duration) (*Change, error) {
	waiter := route53.NewResourceRecordSetsChangedWaiter(u.api)
	input := &route53.GetChangeInput{Id: aws.String(change.ID)}

	out, err := waiter.WaitForOutput(ctx, input, maxWait)
	if err != nil {
		return nil, fmt.Errorf("change %s did not reach INSYNC: %w", change.ID, err)
	}
	if out.ChangeInfo == nil {
		return nil, ErrNoChangeInfo
	}
	return toChange(out.ChangeInfo), nil
}

func toChange(info *types.ChangeInfo) *Change {
	c := &Change{
		ID:      aws.ToString(info.Id),
		Status:  string(info.Status),
		Comment: aws.ToString(info.Comment),
	}
	if info.SubmittedAt != nil {
		c.SubmittedAt = *info.SubmittedAt
	}
	return c
}

// trimZonePrefix accepts zone IDs copied from ARNs or API output.
func trimZonePrefix(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "/hostedzone/")
}
