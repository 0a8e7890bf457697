package scan

import (
	"context"
	"fmt"
)

// Scan runs the requested scans of the named artifact. A scan whose archive
// path is empty is skipped and leaves its outcome nil.
func Scan(ctx context.Context, name, sdistPath, wheelPath string, kinds Kind) (*Result, error) {
	res := &Result{Name: name}

	if kinds.Has(KindSource) && sdistPath != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := Source(sdistPath)
		if err != nil {
			return nil, fmt.Errorf("scan source of %s: %w", name, err)
		}
		res.Source = src
	}

	if kinds.Has(KindBinary) && wheelPath != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bin, err := Binary(wheelPath)
		if err != nil {
			return nil, fmt.Errorf("scan binary of %s: %w", name, err)
		}
		res.Binary = bin
	}

	return res, nil
}
