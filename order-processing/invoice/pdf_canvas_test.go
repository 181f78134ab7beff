package invoice

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"order-fulfillment/order-processing/types"
)

var testMeta = DocumentMeta{Title: "Замовлення #1", Created: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}

func pageCount(pdf []byte) int {
	return bytes.Count(pdf, []byte("<</Type /Page\n"))
}

func TestRegisterFontRejectsUnparseableBytes(t *testing.T) {
	canvas := NewPDFCanvas(testMeta)

	assert.False(t, canvas.RegisterFont("Body", []byte("regular"), []byte("bold")))

	canvas.AddPage()
	canvas.SetFont(Regular, 10)
	assert.NotEmpty(t, canvas.SplitText("Разом: 1 000 грн", 200))
	assert.NoError(t, canvas.Err())
}

func TestRegisterFontRejectsCFFOutlines(t *testing.T) {
	cff := append([]byte("OTTO"), make([]byte, 64)...)

	assert.False(t, NewPDFCanvas(testMeta).RegisterFont("Body", cff, cff))
	assert.ErrorContains(t, probeGlyphs(cff), "unsupported font format")
}

func TestRegisterFontAcceptsEmbeddedFaces(t *testing.T) {
	canvas := NewPDFCanvas(testMeta)
	require.True(t, canvas.RegisterFont("Body", goregular.TTF, gobold.TTF))

	canvas.AddPage()
	canvas.SetFont(Bold, 12)
	assert.Equal(t, []string{"Ґанок"}, canvas.SplitText("Ґанок", 300))
	assert.NoError(t, canvas.Err())
}

func TestSplitTextReplacesRunesOutsideFont(t *testing.T) {
	canvas := NewPDFCanvas(testMeta)
	require.True(t, canvas.RegisterFont("Body", goregular.TTF, gobold.TTF))
	canvas.AddPage()
	canvas.SetFont(Regular, 10)

	assert.Equal(t, []string{"Дякую ?"}, canvas.SplitText("Дякую 🙂", 300))
}

func TestEmbeddedFontSourceCoversLabels(t *testing.T) {
	regular, bold, err := EmbeddedFontSource{}.Load()
	require.NoError(t, err)
	assert.NoError(t, probeGlyphs(regular))
	assert.NoError(t, probeGlyphs(bold))
}

func TestFontChainFallsThroughToEmbedded(t *testing.T) {
	regular, bold, err := FontChain{DirFontSource{Dir: t.TempDir()}, EmbeddedFontSource{}}.Load()
	require.NoError(t, err)
	assert.Equal(t, goregular.TTF, regular)
	assert.Equal(t, gobold.TTF, bold)

	_, _, err = FontChain{DirFontSource{Dir: t.TempDir()}}.Load()
	assert.Error(t, err)
	_, _, err = FontChain{}.Load()
	assert.Error(t, err)
}

func TestRenderWithUnparseableFontsFallsBackToCoreFont(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := NewRenderer(staticFonts{}, zap.New(core))

	out, err := r.Render(types.Order{ID: 1, FirstName: str("Олена")})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, 1, logs.FilterMessage("font registration rejected, using built-in font").Len())
}

func TestRenderEmbeddedFontPaginatesDeterministically(t *testing.T) {
	items := make([]types.OrderItem, 80)
	for i := range items {
		items[i] = types.OrderItem{
			ModelName:    str(fmt.Sprintf("Шафа-купе №%d", i+1)),
			Qty:          num(1),
			UnitPrice:    num(100),
			Size:         &types.Size{Width: dim(120), Depth: dim(60)},
			BodyMaterial: &types.Material{Title: str("Дуб сонома")},
		}
	}
	order := types.Order{
		ID:        77,
		FirstName: str("Олена Ґ Є І Ї"),
		Comment:   str("Дякую 🙂"),
		Items:     items,
	}
	r := NewRenderer(EmbeddedFontSource{}, zap.NewNop())

	first, err := r.Render(order)
	require.NoError(t, err)
	second, err := r.Render(order)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(first, []byte("%PDF-")))
	assert.Greater(t, pageCount(first), 1)
	assert.Equal(t, first, second)
}
