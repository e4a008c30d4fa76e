// Package prompt runs a single create or edit form as line-oriented prompts,
// for terminals where the full-screen interface is unwanted.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clubdesk/clubdesk/internal/form"
)

// Options configures Run.
type Options struct {
	Mode     form.Mode
	Resource form.Resource
	Client   form.ResourceClient
	Cache    form.Invalidator
	Driver   Driver
	Logger   *slog.Logger
}

// Run loads the record in Edit mode, then prompts for the name until the
// submission succeeds or the user gives up. Rejected submissions re-prompt
// with the typed value; server and transport failures ask before retrying.
func Run(ctx context.Context, opts Options) error {
	if opts.Driver == nil {
		return errors.New("prompt: driver is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	out := &printer{ctx: ctx, driver: opts.Driver, logger: logger}
	ctrl, err := form.New(opts.Mode, form.Options{
		Resource:   opts.Resource,
		Client:     opts.Client,
		Cache:      opts.Cache,
		Notifier:   out,
		OnComplete: func() {},
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer ctrl.Dispose()

	if err := ctrl.Load(ctx); err != nil {
		return err
	}

	out.info(ctrl.Title())
	label := form.FieldLabel(form.FieldName)
	for {
		value, err := opts.Driver.Input(ctx, InputConfig{
			Message:   label + ":",
			Default:   ctrl.Value(),
			Help:      fmt.Sprintf("Required, at most %d characters", form.MaxNameLength),
			Validator: validateName,
		})
		if err != nil {
			if errors.Is(err, ErrAborted) {
				ctrl.Cancel()
			}
			return err
		}
		ctrl.SetValue(value)

		err = ctrl.Submit(ctx, value)
		if err == nil {
			return nil
		}

		var verr *form.ValidationError
		var serr *form.SubmissionError
		switch {
		case errors.As(err, &verr):
			out.info(verr.Fields[form.FieldName])
		case errors.As(err, &serr) && serr.Kind == form.KindRejected:
			// The notifier already printed the message; ask again.
		case errors.As(err, &serr):
			retry, cerr := opts.Driver.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
			if cerr != nil || !retry {
				ctrl.Cancel()
				return err
			}
		default:
			return err
		}
	}
}

func validateName(value string) error {
	if verr := form.ValidateName(value); verr != nil {
		return errors.New(verr.Fields[form.FieldName])
	}
	return nil
}

// printer reports controller notifications through the driver.
type printer struct {
	ctx    context.Context
	driver Driver
	logger *slog.Logger
}

func (p *printer) NotifySuccess(message string) {
	p.info("✓ " + message)
}

func (p *printer) NotifyError(message string) {
	p.info("✗ " + message)
}

func (p *printer) info(msg string) {
	if err := p.driver.Info(p.ctx, msg); err != nil {
		p.logger.Debug("print failed", "error", err)
	}
}
