// Package invoice renders the order invoice attached to notification emails.
package invoice

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"order-fulfillment/order-processing/money"
	"order-fulfillment/order-processing/types"
)

const bodyFamily = "InvoiceBody"

// Layout holds the page geometry and type sizes, all in points
type Layout struct {
	Margin       float64
	ColumnWidths []float64 // last column takes the remaining content width
	CellPadX     float64
	CellPadY     float64
	TitleSize    float64
	DetailSize   float64
	SectionSize  float64
	TableSize    float64
	TotalSize    float64
	LineSpacing  float64
}

func DefaultLayout() Layout {
	return Layout{
		Margin:       40,
		ColumnWidths: []float64{180, 40, 90, 90, 0},
		CellPadX:     6,
		CellPadY:     6,
		TitleSize:    22,
		DetailSize:   11,
		SectionSize:  14,
		TableSize:    10,
		TotalSize:    13,
		LineSpacing:  1.2,
	}
}

var tableHeader = []string{"Модель", "К-сть", "Ціна од.", "Сума", "Параметри"}

// Renderer produces invoice PDFs
type Renderer struct {
	newCanvas CanvasFactory
	fonts     FontSource
	layout    Layout
	log       *zap.Logger
}

// Option customizes a Renderer
type Option func(*Renderer)

func WithCanvas(factory CanvasFactory) Option {
	return func(r *Renderer) { r.newCanvas = factory }
}

func WithLayout(layout Layout) Option {
	return func(r *Renderer) { r.layout = layout }
}

func NewRenderer(fonts FontSource, log *zap.Logger, opts ...Option) *Renderer {
	r := &Renderer{
		newCanvas: NewPDFCanvas,
		fonts:     fonts,
		layout:    DefaultLayout(),
		log:       log.Named("invoice"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render lays out the order and returns the encoded document. Any failure
// while measuring, drawing or encoding discards the whole document.
func (r *Renderer) Render(order types.Order) (out []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = &types.RenderError{Msg: fmt.Sprintf("render order %d: %v", order.ID, rec)}
		}
	}()

	created := time.Unix(0, 0).UTC()
	if order.CreatedAt != nil {
		created = order.CreatedAt.UTC()
	}
	canvas := r.newCanvas(DocumentMeta{
		Title:   fmt.Sprintf("Замовлення #%d", order.ID),
		Created: created,
	})
	r.registerFonts(canvas)

	doc := newDocument(canvas, r.layout)
	doc.header(order)
	doc.table(order.Items)
	doc.total(order.Items)

	if err := canvas.Err(); err != nil {
		return nil, &types.RenderError{Msg: fmt.Sprintf("render order %d: %v", order.ID, err)}
	}
	var buf bytes.Buffer
	if err := canvas.Output(&buf); err != nil {
		return nil, &types.RenderError{Msg: fmt.Sprintf("encode order %d: %v", order.ID, err)}
	}
	return buf.Bytes(), nil
}

func (r *Renderer) registerFonts(canvas Canvas) {
	if r.fonts == nil {
		r.log.Warn("no font source configured, using built-in font")
		return
	}
	regular, bold, err := r.fonts.Load()
	if err != nil {
		r.log.Warn("fonts unavailable, using built-in font", zap.Error(err))
		return
	}
	if !canvas.RegisterFont(bodyFamily, regular, bold) {
		r.log.Warn("font registration rejected, using built-in font")
	}
}

// document tracks the vertical cursor across pages
type document struct {
	canvas  Canvas
	layout  Layout
	widths  []float64
	content float64
	bottom  float64
	y       float64
}

func newDocument(canvas Canvas, layout Layout) *document {
	canvas.AddPage()
	pageW, pageH := canvas.PageSize()
	content := pageW - 2*layout.Margin

	widths := make([]float64, len(layout.ColumnWidths))
	copy(widths, layout.ColumnWidths)
	used := 0.0
	for _, w := range widths[:len(widths)-1] {
		used += w
	}
	widths[len(widths)-1] = content - used

	return &document{
		canvas:  canvas,
		layout:  layout,
		widths:  widths,
		content: content,
		bottom:  pageH - layout.Margin,
		y:       layout.Margin,
	}
}

func (d *document) lineHeight(size float64) float64 {
	return size * d.layout.LineSpacing
}

// ensure starts a new page when a block of height h does not fit
func (d *document) ensure(h float64) {
	if d.y+h > d.bottom {
		d.canvas.AddPage()
		d.y = d.layout.Margin
	}
}

func (d *document) moveDown(lines, size float64) {
	d.y += lines * d.lineHeight(size)
}

func (d *document) paragraph(text string, style FontStyle, size float64) {
	d.canvas.SetFont(style, size)
	lines := d.canvas.SplitText(text, d.content)
	lh := d.lineHeight(size)
	d.ensure(float64(len(lines)) * lh)
	for _, line := range lines {
		d.canvas.Text(d.layout.Margin, d.y, d.content, lh, line)
		d.y += lh
	}
}

func (d *document) header(o types.Order) {
	l := d.layout
	d.paragraph(fmt.Sprintf("Замовлення #%d", o.ID), Bold, l.TitleSize)
	d.moveDown(0.8, l.DetailSize)

	d.paragraph("Ім'я: "+o.CustomerName(), Regular, l.DetailSize)
	d.paragraph("Email: "+types.Value(o.Email), Regular, l.DetailSize)
	d.paragraph("Телефон: "+types.Value(o.Phone), Regular, l.DetailSize)
	if v := types.Value(o.DeliveryMethod); v != "" {
		d.paragraph("Доставка: "+v, Regular, l.DetailSize)
	}
	if v := types.Value(o.DeliveryAddress); v != "" {
		d.paragraph("Адреса: "+v, Regular, l.DetailSize)
	}
	if v := types.Value(o.PaymentMethod); v != "" {
		d.paragraph("Оплата: "+v, Regular, l.DetailSize)
	}
	if o.PrepaymentAgreement != nil {
		answer := "ні"
		if *o.PrepaymentAgreement {
			answer = "так"
		}
		d.paragraph("Передоплата: "+answer, Regular, l.DetailSize)
	}
	if v := types.Value(o.Comment); v != "" {
		d.moveDown(0.3, l.DetailSize)
		d.paragraph("Коментар: "+v, Regular, l.DetailSize)
	}

	d.moveDown(1.2, l.DetailSize)
	d.paragraph("Позиції", Bold, l.SectionSize)
	d.moveDown(0.4, l.SectionSize)
}

func (d *document) table(items []types.OrderItem) {
	d.row(tableHeader, Bold)
	for _, item := range items {
		d.row(itemCells(item), Regular)
	}
}

// row draws bordered cells whose height follows the tallest wrapped cell
func (d *document) row(cells []string, style FontStyle) {
	l := d.layout
	d.canvas.SetFont(style, l.TableSize)
	lh := d.lineHeight(l.TableSize)

	wrapped := make([][]string, len(cells))
	textH := lh
	for i, cell := range cells {
		wrapped[i] = d.canvas.SplitText(cell, d.widths[i]-2*l.CellPadX)
		if h := float64(len(wrapped[i])) * lh; h > textH {
			textH = h
		}
	}
	rowH := textH + 2*l.CellPadY
	d.ensure(rowH)

	x := l.Margin
	for i := range cells {
		d.canvas.Rect(x, d.y, d.widths[i], rowH)
		for j, line := range wrapped[i] {
			d.canvas.Text(x+l.CellPadX, d.y+l.CellPadY+float64(j)*lh, d.widths[i]-2*l.CellPadX, lh, line)
		}
		x += d.widths[i]
	}
	d.y += rowH
}

func (d *document) total(items []types.OrderItem) {
	d.moveDown(0.8, d.layout.DetailSize)
	d.paragraph("Разом: "+money.Format(money.OrderTotal(items)), Bold, d.layout.TotalSize)
}

func itemCells(item types.OrderItem) []string {
	qty := ""
	if item.Qty != nil && *item.Qty != 0 {
		qty = strconv.FormatFloat(*item.Qty, 'f', -1, 64)
	}
	return []string{
		types.Value(item.ModelName),
		qty,
		money.Format(money.Amount(item.UnitPrice).Decimal),
		money.Format(money.LineTotal(item)),
		itemParams(item),
	}
}

// itemParams lists the present dimensions followed by material titles
func itemParams(item types.OrderItem) string {
	var params []string
	if s := item.Size; s != nil {
		var dims []string
		for _, dim := range []struct {
			v      *int
			suffix string
		}{{s.Width, "W"}, {s.Height, "H"}, {s.Depth, "D"}} {
			if dim.v != nil && *dim.v != 0 {
				dims = append(dims, strconv.Itoa(*dim.v)+dim.suffix)
			}
		}
		if len(dims) > 0 {
			params = append(params, strings.Join(dims, "×"))
		}
	}
	if t := materialTitle(item.BodyMaterial); t != "" {
		params = append(params, "Корпус: "+t)
	}
	if t := materialTitle(item.FrontMaterial); t != "" {
		params = append(params, "Фасад: "+t)
	}
	return strings.Join(params, "; ")
}

func materialTitle(m *types.Material) string {
	if m == nil {
		return ""
	}
	return types.Value(m.Title)
}
