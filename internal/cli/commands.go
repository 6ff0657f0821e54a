package cli

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"happythings/internal/auth"
	"happythings/internal/collage"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	if ctx.App.DB == nil {
		return errors.New("DATABASE_URL is required")
	}
	if err := ctx.App.Migrate(ctx.Ctx); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, "migrations applied")
	return nil
}

type EnsureTodayCmd struct {
	Date string `arg:"" optional:"" help:"Date as YYYY-MM-DD. Defaults to today in the business timezone."`
}

func (c *EnsureTodayCmd) Run(ctx *Context) error {
	date := c.Date
	if date == "" {
		date = ctx.App.Calendar.Today()
	}
	id, err := ctx.App.Entries.Ensure(ctx.Ctx, date)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "entry for %s: %s\n", date, id)
	return nil
}

type CollageCmd struct {
	WeekStart string `arg:"" help:"First day of the week (YYYY-MM-DD)."`
	WeekEnd   string `arg:"" help:"Last day of the week (YYYY-MM-DD)."`
}

func (c *CollageCmd) Run(ctx *Context) error {
	cfg := ctx.App.Config
	if err := cfg.ValidateCollage(); err != nil {
		return err
	}
	gen := collage.NewOpenAIGenerator(cfg.OpenAIAPIKey, collage.OpenAIOptions{
		Model:   cfg.ImageModel,
		Size:    cfg.ImageSize,
		Quality: cfg.ImageQuality,
	})
	uploader := collage.NewHTTPUploader(cfg.APIBaseURL, []byte(cfg.UploadSecret), cfg.UploadTokenTTL,
		&http.Client{Timeout: 2 * time.Minute}, ctx.App.Calendar.Clock)

	res, err := collage.NewJob(ctx.App.Entries, gen, uploader, ctx.App.Logger).Run(ctx.Ctx, c.WeekStart, c.WeekEnd)
	if err != nil {
		return err
	}
	if res != nil {
		fmt.Fprintln(ctx.Out, res.URL)
	}
	return nil
}

type CleanupSessionsCmd struct{}

func (c *CleanupSessionsCmd) Run(ctx *Context) error {
	n, err := ctx.App.Auth.CleanupExpiredSessions(ctx.Ctx)
	if err != nil {
		return err
	}
	ctx.App.Logger.Info("session cleanup finished", zap.Int64("deleted", n))
	fmt.Fprintf(ctx.Out, "deleted %d expired sessions\n", n)
	return nil
}

type UploadTokenCmd struct {
	TTL time.Duration `help:"Token lifetime. Defaults to UPLOAD_TOKEN_TTL."`
}

func (c *UploadTokenCmd) Run(ctx *Context) error {
	ttl := c.TTL
	if ttl <= 0 {
		ttl = ctx.App.Config.UploadTokenTTL
	}
	token, err := auth.IssueUploadToken([]byte(ctx.App.Config.UploadSecret), ttl, ctx.App.Calendar.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, token)
	return nil
}
