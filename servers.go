package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

const probeTimeout = 10 * time.Second

// ServersList prints the configured servers in configuration order.
func (r *Runner) ServersList(ctx context.Context, cmd *cli.Command) error {
	env, err := r.setup(cmd)
	if err != nil {
		return err
	}
	for _, server := range env.registry.Servers() {
		if err := r.writePlainln("%s  %s (%s) %s", server.ID, server.Name, server.Type, server.BaseURL); err != nil {
			return err
		}
	}
	return nil
}

// ServersTest probes every configured server with its credentials and
// reports per-server results. It fails when any probe fails.
func (r *Runner) ServersTest(ctx context.Context, cmd *cli.Command) error {
	env, err := r.setup(cmd)
	if err != nil {
		return err
	}

	servers := env.registry.Servers()
	failures := 0
	for _, server := range servers {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		status, err := env.router.TestConnection(probeCtx, server)
		cancel()

		switch {
		case err != nil:
			failures++
			r.writePlainln("FAIL %s (%s): %v", server.Name, server.Type, err)
		case !status.Success:
			failures++
			r.writePlainln("FAIL %s (%s): %s", server.Name, server.Type, status.Message)
		default:
			version := status.ServerVersion
			if version == "" {
				version = "version unknown"
			}
			r.writePlainln("OK   %s (%s): %s", server.Name, server.Type, version)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d servers failed", failures, len(servers))
	}
	return nil
}
