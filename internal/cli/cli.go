// Package cli implements the happyctl maintenance commands.
package cli

import (
	"context"
	"io"

	"happythings/internal/app"
)

// Context is handed to every command's Run method.
type Context struct {
	Ctx context.Context
	App *app.App
	Out io.Writer
}
