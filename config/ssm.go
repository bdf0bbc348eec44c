package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// ParameterSource lists parameters stored under a path.
type ParameterSource interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadSSM fills config with the parameters stored under SSM_PARAMETER_PATH.
// The last path segment becomes the key (/aventus/prod/JWT_SECRET -> JWT_SECRET).
// Keys already present in config win over SSM values.
func LoadSSM(ctx context.Context, config map[string]string) error {
	paramPath := GetString(config, "SSM_PARAMETER_PATH", "")
	if paramPath == "" {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	return OverlayParameters(ctx, ssm.NewFromConfig(awsCfg), paramPath, config)
}

// OverlayParameters pages through every parameter under paramPath and copies
// missing keys into config.
func OverlayParameters(ctx context.Context, source ParameterSource, paramPath string, config map[string]string) error {
	paginator := ssm.NewGetParametersByPathPaginator(source, &ssm.GetParametersByPathInput{
		Path:           aws.String(paramPath),
		Recursive:      aws.Bool(false),
		WithDecryption: aws.Bool(true),
	})

	loaded := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("read ssm parameters under %s: %w", paramPath, err)
		}
		for _, p := range page.Parameters {
			key := path.Base(aws.ToString(p.Name))
			if key == "" || key == "." || key == "/" {
				continue
			}
			if existing, ok := config[key]; ok && strings.TrimSpace(existing) != "" {
				continue
			}
			config[key] = aws.ToString(p.Value)
			loaded++
		}
	}

	log.Info().Str("path", paramPath).Int("loaded", loaded).Msg("Loaded configuration from SSM")
	return nil
}
