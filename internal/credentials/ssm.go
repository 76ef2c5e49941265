package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// ParameterGetter is the subset of the SSM client used to look up key paths.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMResolver reads the private key path of a service from AWS SSM Parameter
// Store, under /<service>/<variable>. The explicit request path is ignored.
type SSMResolver struct {
	client   ParameterGetter
	Service  string
	Variable string
}

// NewSSMResolver creates a resolver backed by the given client.
func NewSSMResolver(client ParameterGetter, service, variable string) *SSMResolver {
	return &SSMResolver{
		client:   client,
		Service:  service,
		Variable: variable,
	}
}

// NewSSMResolverFromEnv loads the default AWS configuration (env, shared
// config, IMDS) and returns a resolver using it. An empty region keeps the
// region from the environment.
func NewSSMResolverFromEnv(ctx context.Context, region, service, variable string) (*SSMResolver, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSSMResolver(ssm.NewFromConfig(awsCfg), service, variable), nil
}

// ParameterName returns the SSM parameter holding the key path.
func ParameterName(service, variable string) string {
	return "/" + service + "/" + variable
}

// Resolve looks the key path up and expands it.
func (r *SSMResolver) Resolve(ctx context.Context, _ string) (string, error) {
	if r.Service == "" || r.Variable == "" {
		return "", fmt.Errorf("%w: key_source needs both service and variable", ErrNotConfigured)
	}

	name := ParameterName(r.Service, r.Variable)
	out, err := r.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: parameter %s not found", ErrNotConfigured, name)
		}
		return "", fmt.Errorf("failed to read parameter %s: %w", name, err)
	}

	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return "", fmt.Errorf("%w: parameter %s is empty", ErrNotConfigured, name)
	}

	return ExpandHome(aws.ToString(out.Parameter.Value))
}
