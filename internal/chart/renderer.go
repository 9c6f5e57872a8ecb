package chart

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"CanSlimHunter/internal/calculator"
	"CanSlimHunter/internal/model"
)

// Page geometry in millimetres, landscape A4.
const (
	marginL   = 15.0
	marginR   = 20.0
	pageW     = 297.0
	plotW     = pageW - marginL - marginR
	priceTop  = 25.0
	priceH    = 115.0
	volumeTop = 148.0
	volumeH   = 45.0
)

type rgb struct{ r, g, b int }

var (
	colorUp     = rgb{38, 166, 154}
	colorDown   = rgb{239, 83, 80}
	colorShort  = rgb{33, 150, 243}
	colorLong   = rgb{255, 152, 0}
	colorGrid   = rgb{220, 220, 220}
	colorVolume = rgb{120, 144, 156}
)

// Renderer draws candlestick charts with two SMA overlays and a volume panel as PDF files.
type Renderer struct {
	OutputDir   string
	DisplayBars int // trailing bars drawn, SMAs still use the full history
	ShortMA     int
	LongMA      int
	logger      *zap.Logger
}

// NewRenderer creates the output directory if needed.
func NewRenderer(outputDir string, logger *zap.Logger) (*Renderer, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}
	return &Renderer{
		OutputDir:   outputDir,
		DisplayBars: 252,
		ShortMA:     50,
		LongMA:      200,
		logger:      logger,
	}, nil
}

// Path returns where the chart for symbol is written.
func (r *Renderer) Path(symbol string) string {
	return filepath.Join(r.OutputDir, "chart_"+symbol+".pdf")
}

// Render writes the chart for series and returns its path.
func (r *Renderer) Render(series *model.PriceSeries, title string) (string, error) {
	if series.Len() == 0 {
		return "", fmt.Errorf("render %s: %w", series.Symbol, calculator.ErrInsufficientData)
	}

	bars := series.Bars
	start := 0
	if r.DisplayBars > 0 && len(bars) > r.DisplayBars {
		start = len(bars) - r.DisplayBars
	}
	view := bars[start:]
	closes := series.Closes()
	short := overlay(calculator.RollingSMA(closes, r.ShortMA), r.ShortMA, start, len(bars))
	long := overlay(calculator.RollingSMA(closes, r.LongMA), r.LongMA, start, len(bars))

	lo, hi := priceRange(view, short, long)
	maxVol := 0.0
	for _, b := range view {
		maxVol = math.Max(maxVol, b.Volume)
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s daily chart", series.Symbol), true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(marginL, 15, fmt.Sprintf("%s  %s", series.Symbol, title))
	pdf.SetFont("Helvetica", "", 8)
	last := view[len(view)-1]
	pdf.Text(marginL, 20, fmt.Sprintf("%s to %s   last close %.2f",
		view[0].Time.Format("2006-01-02"), last.Time.Format("2006-01-02"), last.Close))

	slot := plotW / float64(len(view))
	bodyW := math.Max(slot*0.6, 0.2)
	yPrice := func(p float64) float64 { return priceTop + priceH - (p-lo)/(hi-lo)*priceH }
	xAt := func(i int) float64 { return marginL + slot*(float64(i)+0.5) }

	drawGrid(pdf, lo, hi, yPrice)

	for i, b := range view {
		c := colorUp
		if b.Close < b.Open {
			c = colorDown
		}
		setDraw(pdf, c)
		pdf.SetFillColor(c.r, c.g, c.b)
		pdf.SetLineWidth(0.15)
		x := xAt(i)
		pdf.Line(x, yPrice(b.High), x, yPrice(b.Low))
		top, bottom := yPrice(math.Max(b.Open, b.Close)), yPrice(math.Min(b.Open, b.Close))
		pdf.Rect(x-bodyW/2, top, bodyW, math.Max(bottom-top, 0.1), "F")

		if maxVol > 0 {
			h := b.Volume / maxVol * volumeH
			pdf.SetFillColor(colorVolume.r, colorVolume.g, colorVolume.b)
			pdf.Rect(x-bodyW/2, volumeTop+volumeH-h, bodyW, h, "F")
		}
	}

	drawLine(pdf, short, xAt, yPrice, colorShort)
	drawLine(pdf, long, xAt, yPrice, colorLong)

	pdf.SetFont("Helvetica", "", 8)
	setText(pdf, colorShort)
	pdf.Text(marginL+2, priceTop+4, fmt.Sprintf("SMA%d", r.ShortMA))
	setText(pdf, colorLong)
	pdf.Text(marginL+16, priceTop+4, fmt.Sprintf("SMA%d", r.LongMA))
	setText(pdf, rgb{0, 0, 0})
	pdf.Text(marginL, volumeTop-1, "Volume")

	path := r.Path(series.Symbol)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write chart %s: %w", path, err)
	}
	r.logger.Debug("chart rendered", zap.String("symbol", series.Symbol), zap.String("path", path), zap.Int("bars", len(view)))
	return path, nil
}

// overlay aligns a rolling SMA with the visible window. Entries before the
// SMA is defined are NaN.
func overlay(sma []float64, period, start, total int) []float64 {
	out := make([]float64, total-start)
	for i := range out {
		idx := start + i - (period - 1)
		if idx < 0 || idx >= len(sma) {
			out[i] = math.NaN()
			continue
		}
		out[i] = sma[idx]
	}
	return out
}

func priceRange(view []model.OHLCV, lines ...[]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range view {
		lo = math.Min(lo, b.Low)
		hi = math.Max(hi, b.High)
	}
	for _, l := range lines {
		for _, v := range l {
			if !math.IsNaN(v) {
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
		}
	}
	if hi <= lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

func drawGrid(pdf *fpdf.Fpdf, lo, hi float64, y func(float64) float64) {
	setDraw(pdf, colorGrid)
	pdf.SetLineWidth(0.1)
	pdf.SetFont("Helvetica", "", 7)
	setText(pdf, rgb{90, 90, 90})
	const lines = 5
	for i := 0; i <= lines; i++ {
		p := lo + (hi-lo)*float64(i)/lines
		pdf.Line(marginL, y(p), marginL+plotW, y(p))
		pdf.Text(marginL+plotW+1, y(p)+1, fmt.Sprintf("%.2f", p))
	}
	pdf.Rect(marginL, priceTop, plotW, priceH, "D")
	pdf.Rect(marginL, volumeTop, plotW, volumeH, "D")
}

func drawLine(pdf *fpdf.Fpdf, vals []float64, x func(int) float64, y func(float64) float64, c rgb) {
	setDraw(pdf, c)
	pdf.SetLineWidth(0.35)
	for i := 1; i < len(vals); i++ {
		if math.IsNaN(vals[i-1]) || math.IsNaN(vals[i]) {
			continue
		}
		pdf.Line(x(i-1), y(vals[i-1]), x(i), y(vals[i]))
	}
}

func setDraw(pdf *fpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.r, c.g, c.b) }

func setText(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
