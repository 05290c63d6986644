package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tempo/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the statistics proxy.
//
// The stored token, when present, is attached the same way the query layer
// attaches it; --no-token sends the request bare.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	useJSON := cmd.Bool("json")
	noToken := cmd.Bool("no-token")

	if path == "" {
		return fmt.Errorf("%w: path argument is required", shared.ErrMissingArgument)
	}

	if r.service == nil {
		return fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	token := ""
	if !noToken {
		if cred := r.store.Read(); cred != nil {
			token = cred.Token
		}
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.service.Raw(ctx, path, token)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if useJSON {
		if resp.IsJSON {
			return r.writeJSON(resp.JSONData, false)
		}
		r.output.Write(resp.Body)
		r.output.Write([]byte("\n"))
		return nil
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}
