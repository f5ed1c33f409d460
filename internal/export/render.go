/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/friendsincode/crewrota/internal/planner"
)

// Format is a rasterized output format.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts png or pdf, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPNG:
		return FormatPNG, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported render format %q (want png or pdf)", s)
}

// ContentType is the MIME type of the rendered output.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "image/png"
}

// Renderer turns the HTML report into PNG or PDF with a headless browser.
type Renderer struct {
	browserBin string
	logger     zerolog.Logger
}

// NewRenderer constructs a renderer. An empty browserBin lets rod find a
// local browser or download one.
func NewRenderer(browserBin string, logger zerolog.Logger) *Renderer {
	return &Renderer{
		browserBin: browserBin,
		logger:     logger.With().Str("component", "renderer").Logger(),
	}
}

// Render loads document into a fresh headless browser and captures it.
func (r *Renderer) Render(ctx context.Context, document []byte, format Format) ([]byte, error) {
	bin := r.browserBin
	if bin == "" {
		bin, _ = launcher.LookPath()
	}
	l := launcher.New().Context(ctx).Headless(true)
	if bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().Context(ctx).ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			r.logger.Debug().Err(err).Msg("closing browser")
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	if err := page.SetDocumentContent(string(document)); err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for report: %w", err)
	}

	var out []byte
	switch format {
	case FormatPDF:
		stream, err := page.PDF(&proto.PagePrintToPDF{
			Landscape:       true,
			PrintBackground: true,
		})
		if err != nil {
			return nil, fmt.Errorf("print pdf: %w", err)
		}
		if out, err = io.ReadAll(stream); err != nil {
			return nil, fmt.Errorf("read pdf: %w", err)
		}
	default:
		if out, err = page.Screenshot(true, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		}); err != nil {
			return nil, fmt.Errorf("capture png: %w", err)
		}
	}

	r.logger.Debug().Str("format", string(format)).Int("bytes", len(out)).Msg("report rendered")
	return out, nil
}

// RenderPlan renders the HTML report of plan and rasterizes it.
func (r *Renderer) RenderPlan(ctx context.Context, plan *planner.Plan, format Format) (*Result, error) {
	report, err := ExportHTML(plan)
	if err != nil {
		return nil, err
	}
	data, err := r.Render(ctx, report.Data, format)
	if err != nil {
		return nil, err
	}
	return &Result{
		Data:        data,
		Filename:    planSlug(plan) + "." + string(format),
		ContentType: format.ContentType(),
	}, nil
}
