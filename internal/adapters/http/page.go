package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/usecases"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// pageForm holds the parsed selection controls from the index page.
type pageForm struct {
	Country        string
	Years          []int
	ShowNDVI       bool
	ShowBloom      bool
	ShowBloomGraph bool
	Coarsen        bool
	ShowOverlap    bool
}

// HasYear reports whether a year is selected, for template state.
func (f pageForm) HasYear(y int) bool {
	for _, sel := range f.Years {
		if sel == y {
			return true
		}
	}
	return false
}

type pageData struct {
	Form       pageForm
	Countries  []string
	Years      []int
	MapHTML    template.HTML
	NDVIChart  string
	BloomChart string
}

// parsePageForm reads the selection controls from the query string (GET) or
// the form body (POST). Missing or malformed values fall back to the global
// extent and the default year; checkbox presence means enabled.
func parsePageForm(c *fiber.Ctx) pageForm {
	args := c.Request().URI().QueryArgs()
	if c.Method() == fiber.MethodPost {
		args = c.Request().PostArgs()
	}

	f := pageForm{
		Country:        strings.TrimSpace(string(args.Peek("country"))),
		ShowNDVI:       args.Has("show_ndvi"),
		ShowBloom:      args.Has("show_bloom"),
		ShowBloomGraph: args.Has("show_bloom_graph"),
		Coarsen:        args.Has("coarsen"),
		ShowOverlap:    args.Has("show_overlap"),
	}
	if f.Country == "" {
		f.Country = domain.WorldName
	}

	for _, raw := range args.PeekMulti("year") {
		y, err := strconv.Atoi(string(raw))
		if err != nil || y < FirstYear || y > LastYear {
			continue
		}
		f.Years = append(f.Years, y)
	}
	if len(f.Years) == 0 {
		f.Years = []int{DefaultYear}
	}
	sort.Ints(f.Years)

	// First visit with no controls submitted: show the index layer.
	if !args.Has("country") && !args.Has("year") {
		f.ShowNDVI = true
	}
	return f
}

// PageHandler serves the interactive map page. Map and chart failures degrade
// the page rather than failing the request: the map slot gets inline error
// markup and failed charts are simply absent.
func PageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		form := parsePageForm(c)
		log := LoggerFromCtx(ctx)

		countries, err := deps.Boundaries.Countries(ctx)
		if err != nil {
			log.Warn("list countries", "error", err)
			countries = []string{domain.WorldName}
		}

		data := pageData{
			Form:      form,
			Countries: countries,
			Years:     YearChoices(),
		}

		view, err := deps.Maps.Compose(ctx, usecases.MapRequest{
			Country:     form.Country,
			Years:       form.Years,
			ShowNDVI:    form.ShowNDVI,
			ShowBloom:   form.ShowBloom,
			Coarsen:     form.Coarsen,
			ShowOverlap: form.ShowOverlap,
		})
		if err != nil {
			log.Warn("compose map", "country", form.Country, "error", err)
			data.MapHTML = inlineMapError(err)
		} else if markup, rerr := RenderMap(view); rerr != nil {
			log.Warn("render map markup", "error", rerr)
			data.MapHTML = inlineMapError(rerr)
		} else {
			data.MapHTML = markup
		}

		if b, rerr := deps.Boundaries.Resolve(ctx, form.Country); rerr == nil {
			// Charts cover the first selected year; the map layers carry
			// the rest of the selection.
			year := form.Years[0]
			url, gerr := deps.TimeSeries.Generate(ctx, b, domain.SourceMODIS, year, domain.GranularityComposite, domain.MetricNDVI)
			if gerr != nil {
				log.Warn("ndvi chart", "country", form.Country, "year", year, "error", gerr)
			} else {
				data.NDVIChart = url
			}
			if form.ShowBloomGraph {
				url, gerr = deps.TimeSeries.Generate(ctx, b, domain.SourceMODIS, year, domain.GranularityComposite, domain.MetricBloom)
				if gerr != nil {
					log.Warn("bloom chart", "country", form.Country, "year", year, "error", gerr)
				} else {
					data.BloomChart = url
				}
			}
		}

		var buf bytes.Buffer
		if err := indexTmpl.Execute(&buf, data); err != nil {
			slog.Error("render index", "error", err)
			return errInternal(c, "failed to render page")
		}
		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	}
}

func inlineMapError(err error) template.HTML {
	return template.HTML("<h3>Error generating map: " + template.HTMLEscapeString(err.Error()) + "</h3>")
}
