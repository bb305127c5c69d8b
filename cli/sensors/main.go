// Package main is the sensors CLI.
package main

import (
	"context"

	"github.com/edaniels/golog"
	"go.viam.com/utils"

	"go.hostsense.dev/hostsense/cli"
	// registers all sensor models.
	_ "go.hostsense.dev/hostsense/sensor/register"
)

var logger = golog.NewDebugLogger("sensors")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

func mainWithArgs(ctx context.Context, args []string, _ golog.Logger) error {
	return cli.NewApp().RunContext(ctx, args)
}
