package style

import (
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/c9s/ohlcv/pkg/types"
)

func NewDefaultTableStyle() *table.Style {
	style := table.Style{
		Name:    "StyleRounded",
		Box:     table.StyleBoxRounded,
		Format:  table.FormatOptionsDefault,
		HTML:    table.DefaultHTMLOptions,
		Options: table.OptionsDefault,
		Title:   table.TitleOptionsDefault,
		Color:   table.ColorOptionsYellowWhiteOnBlack,
	}
	style.Color.Row = text.Colors{text.FgHiYellow, text.BgHiBlack}
	style.Color.RowAlternate = text.Colors{text.FgYellow, text.BgBlack}
	return &style
}

// ChangeString colors the close-open change, green for up candles and red for down candles.
func ChangeString(c types.Candle) string {
	s := strconv.FormatFloat(c.GetChange(), 'f', -1, 64)
	switch c.Direction() {
	case types.DirectionUp:
		return color.GreenString("+" + s)
	case types.DirectionDown:
		return color.RedString(s)
	}
	return s
}

// RenderCandles renders the candles as a table to w.
func RenderCandles(w io.Writer, title string, candles []types.Candle) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(*NewDefaultTableStyle())
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Time", "Open", "High", "Low", "Close", "Volume", "Count", "Change"})

	var volume float64
	var count int64
	for _, c := range candles {
		t.AppendRow(table.Row{
			c.StartTime().UTC().Format(time.DateTime),
			c.Open, c.High, c.Low, c.Close, c.Volume, c.Count,
			ChangeString(c),
		})
		volume += c.Volume
		count += c.Count
	}

	t.AppendFooter(table.Row{"Total", "", "", "", "", volume, count, ""})
	t.Render()
}
