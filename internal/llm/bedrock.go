package llm

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/roamchat/roam/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/bedrock"
)

// newBedrockModel builds a Bedrock-backed model from the ambient AWS
// credential chain. Region comes from config when set, otherwise from
// the usual AWS environment.
func newBedrockModel(ctx context.Context, cfg config.Config) (llms.Model, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.BedrockRegion != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.BedrockRegion))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := bedrockruntime.NewFromConfig(awsCfg)
	model, err := bedrock.New(
		bedrock.WithClient(client),
		bedrock.WithModel(cfg.LLMModel),
	)
	if err != nil {
		return nil, fmt.Errorf("create bedrock client: %w", err)
	}
	return model, nil
}
