package render

import (
    "context"

    "github.com/vizlink/dashboard-engine/internal/frame"
    "github.com/vizlink/dashboard-engine/internal/models"
)

// FigurePayload is what the engine hands to the plotting front end: the
// component's unchanged axis mappings plus the filtered rows. The actual
// drawing happens outside the engine.
type FigurePayload struct {
    Visu       string            `json:"visu"`
    DictKwargs map[string]string `json:"dict_kwargs"`
    Records    []frame.Record    `json:"records"`
}

// PayloadRenderer implements the figure-renderer boundary by packaging the
// filtered frame with the declared plotting transform.
type PayloadRenderer struct{}

// NewPayloadRenderer returns the default figure renderer.
func NewPayloadRenderer() *PayloadRenderer {
    return &PayloadRenderer{}
}

// RenderFigure builds the rendering payload for one figure component.
func (r *PayloadRenderer) RenderFigure(ctx context.Context, cfg *models.FigureConfig, fr *frame.Frame) (interface{}, error) {
    return &FigurePayload{
        Visu:       cfg.Visu,
        DictKwargs: cfg.DictKwargs,
        Records:    fr.Records(),
    }, nil
}
