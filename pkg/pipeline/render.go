package pipeline

import (
	"bytes"
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/stormgraph/pkg/export/nodelink"
	"github.com/matzehuels/stormgraph/pkg/graph"
	"github.com/matzehuels/stormgraph/pkg/layout"
	"github.com/matzehuels/stormgraph/pkg/render"
)

// Render settles g and generates output artifacts in the requested formats.
// The settled scene is returned alongside the artifacts.
func Render(ctx context.Context, g graph.Graph, lay layout.Result, opts Options) (map[string][]byte, render.Scene, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, render.Scene{}, err
	}

	surface, err := render.Static(g, opts.RenderOptions(), opts.Highlight)
	if err != nil {
		return nil, render.Scene{}, err
	}
	scene := surface.Scene()

	var dot string
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var buf bytes.Buffer
		switch format {
		case FormatSVG:
			err = surface.WriteSVG(&buf)
		case FormatPNG:
			err = surface.WritePNG(&buf)
		case FormatJSON:
			var data []byte
			data, err = json.MarshalIndent(scene, "", "  ")
			buf.Write(data)
		case FormatDOT, FormatGraphviz:
			if dot == "" {
				dot = nodelink.ToDOT(g, lay, dotOptions(opts))
			}
			if format == FormatDOT {
				buf.WriteString(dot)
				break
			}
			var data []byte
			data, err = nodelink.RenderSVG(ctx, dot)
			buf.Write(data)
		default:
			err = ValidateFormats([]string{format})
		}
		if err != nil {
			return nil, render.Scene{}, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = buf.Bytes()
	}
	return artifacts, scene, nil
}

func dotOptions(opts Options) nodelink.Options {
	ro := opts.RenderOptions()
	return nodelink.Options{
		Detailed:       opts.Detailed,
		Highlight:      opts.Highlight,
		FillColor:      ro.DefaultColor,
		HighlightColor: ro.HighlightColor,
		EdgeColor:      ro.EdgeColor,
	}
}
