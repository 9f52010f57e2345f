package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360/semunits/errors"
	"github.com/c360/semunits/loader"
	"github.com/c360/semunits/unit"
)

func newPublishCmd(c *cli) *cobra.Command {
	var target, contextLoader string
	cmd := &cobra.Command{
		Use:   "publish FILE",
		Short: "Store a configuration resource in the NATS key-value bucket",
		Long: `publish decodes FILE by its extension, re-encodes it in the bucket format
(nats.kv_codec) and stores it under the key the kv loader reads for
--target and --context-loader.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !c.cfg.NATS.Enabled() {
				return errors.WrapInvalid(errors.ErrMissingConfig, "publish", "RunE", "nats.bucket is not configured")
			}

			path := args[0]
			if target == "" {
				target = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			var params unit.Params
			if contextLoader != "" {
				params = params.Set(unit.ContextLoaderParam, contextLoader)
			}

			data, err := encodeForBucket(path, c.cfg.NATS.KVCodec)
			if err != nil {
				return err
			}

			rt, err := newApp(ctx, c)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(ctx) }()

			key := loader.Key(target, params)
			rev, err := rt.store.Put(ctx, key, data)
			if err != nil {
				return err
			}
			rt.logger.Info("Configuration published", "key", key, "revision", rev)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "loader target, defaults to the file name without extension")
	cmd.Flags().StringVar(&contextLoader, "context-loader", "", "context-loader the key is scoped to")
	return cmd
}

// encodeForBucket decodes path by its extension and re-encodes it with the
// bucket codec.
func encodeForBucket(path, bucketCodec string) ([]byte, error) {
	in, ok := loader.CodecFor(strings.TrimPrefix(filepath.Ext(path), "."))
	if !ok {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "publish", "encodeForBucket", "unknown format of "+path)
	}
	out, ok := loader.CodecFor(bucketCodec)
	if !ok {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "publish", "encodeForBucket", "unknown bucket codec "+bucketCodec)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "publish", "encodeForBucket", "read "+path)
	}
	cfg, err := in.Decode(data)
	if err != nil {
		return nil, err
	}
	return out.Encode(cfg)
}
