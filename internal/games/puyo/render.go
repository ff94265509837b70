package puyo

import (
	"fmt"

	platformcore "github.com/vovakirdan/tui-puyo/internal/core"
	"github.com/vovakirdan/tui-puyo/internal/games/puyo/core"
)

// Board geometry in terminal cells. Each field column is two characters wide.
const (
	cellWidth   = 2
	BoardWidth  = core.FieldCols*cellWidth + 2
	BoardHeight = core.VisibleRows + 2
	panelWidth  = 18
	minWidth    = BoardWidth + 2 + panelWidth
	minHeight   = BoardHeight + 2
)

const (
	blobRune  = '●'
	ghostRune = '·'
	// PopRune marks cells being erased.
	PopRune   = '✸'
)

var colorMap = map[core.Color]platformcore.Color{
	core.ColorRed:    platformcore.ColorBrightRed,
	core.ColorBlue:   platformcore.ColorBrightBlue,
	core.ColorGreen:  platformcore.ColorBrightGreen,
	core.ColorYellow: platformcore.ColorBrightYellow,
	core.ColorPurple: platformcore.ColorBrightMagenta,
}

// ScreenColor maps a puzzle color to a terminal color.
func ScreenColor(c core.Color) platformcore.Color {
	if sc, ok := colorMap[c]; ok {
		return sc
	}
	return platformcore.ColorDefault
}

// cellOrigin converts a field position to screen coordinates for a board drawn at (x, y).
// The hidden row is not drawn; ok is false for it.
func cellOrigin(x, y int, p core.Pos) (sx, sy int, ok bool) {
	if p.Y < core.HiddenRows || p.X < 0 || p.X >= core.FieldCols || p.Y >= core.FieldRows {
		return 0, 0, false
	}
	return x + 1 + p.X*cellWidth, y + 1 + p.Y - core.HiddenRows, true
}

// DrawField draws the framed visible part of a field with its top-left corner at (x, y).
func DrawField(dst *platformcore.Screen, x, y int, f core.Field) {
	dst.DrawBoxColored(platformcore.NewRect(x, y, BoardWidth, BoardHeight), platformcore.ColorGray)
	for fy := core.HiddenRows; fy < core.FieldRows; fy++ {
		for fx := 0; fx < core.FieldCols; fx++ {
			c := f[fy][fx]
			if c == core.ColorNone {
				continue
			}
			sx, sy, _ := cellOrigin(x, y, core.P(fx, fy))
			dst.SetColored(sx, sy, blobRune, ScreenColor(c))
		}
	}
	// Game over cells
	for _, p := range []core.Pos{core.P(2, 1), core.P(3, 1)} {
		if f.IsEmpty(p) {
			sx, sy, _ := cellOrigin(x, y, p)
			dst.SetColored(sx, sy, 'x', platformcore.ColorGray)
		}
	}
}

// DrawCells overlays cells on a board drawn at (x, y) using the given rune.
func DrawCells(dst *platformcore.Screen, x, y int, cells []core.Cell, r rune) {
	for _, c := range cells {
		if sx, sy, ok := cellOrigin(x, y, c.Pos); ok {
			dst.SetColored(sx, sy, r, ScreenColor(c.Color))
		}
	}
}

// DrawPair draws a vertical pair preview, satellite on top.
func DrawPair(dst *platformcore.Screen, x, y int, p core.Pair) {
	dst.SetColored(x, y, blobRune, ScreenColor(p.Satellite()))
	dst.SetColored(x, y+1, blobRune, ScreenColor(p.Pivot()))
}

// Render draws the current state to the screen buffer.
func (g *Game) Render(dst *platformcore.Screen) {
	dst.Clear()

	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}
	if g.engine == nil {
		return
	}

	s := g.engine.State()
	area := dst.Bounds().Centered(minWidth, minHeight)
	boardX, boardY := area.X, area.Y+1

	dst.DrawTextColored(boardX, boardY-1, g.Title(), platformcore.ColorCyan)
	DrawField(dst, boardX, boardY, s.Field)

	if s.Piece != nil {
		ghost := core.HardDrop(s.Field, *s.Piece)
		DrawCells(dst, boardX, boardY, pieceCells(ghost), ghostRune)
		DrawCells(dst, boardX, boardY, pieceCells(*s.Piece), blobRune)
	}
	if er := g.engine.Erasure(); er != nil {
		DrawCells(dst, boardX, boardY, er.Cells, PopRune)
	}

	g.renderPanel(dst, boardX+BoardWidth+2, boardY, s)
	g.renderOverlay(dst, boardX, boardY, s)
}

func pieceCells(p core.Piece) []core.Cell {
	return []core.Cell{
		{Pos: p.Pivot, Color: p.PivotColor},
		{Pos: p.Satellite(), Color: p.SatelliteColor},
	}
}

// renderPanel draws the queue preview and counters.
func (g *Game) renderPanel(dst *platformcore.Screen, x, y int, s core.State) {
	dst.DrawText(x, y, "NEXT")
	for i := 0; i < 2 && i < len(s.Queue); i++ {
		DrawPair(dst, x+1+i*4, y+1, s.Queue[i])
	}

	dst.DrawText(x, y+4, fmt.Sprintf("Score  %d", s.Score))
	dst.DrawText(x, y+5, fmt.Sprintf("Chain  %d", s.ChainCount))
	dst.DrawText(x, y+6, fmt.Sprintf("Max    %d", s.MaxChain))
	dst.DrawText(x, y+7, fmt.Sprintf("Drops  %d", s.Ledger.DropCount()))

	colorsY := y + 9
	dst.DrawText(x, colorsY, "Colors")
	for i, c := range s.Colors {
		dst.SetColored(x+7+i*2, colorsY, blobRune, ScreenColor(c))
	}

	if g.lastChain > 0 {
		msg := fmt.Sprintf("%d chain!", g.lastChain)
		dst.DrawTextColored(x, y+11, msg, platformcore.ColorOrange)
		if g.lastAllClear {
			dst.DrawTextColored(x, y+12, "ALL CLEAR", platformcore.ColorBrightYellow)
		}
	}
}

// renderOverlay draws phase messages over the board.
func (g *Game) renderOverlay(dst *platformcore.Screen, boardX, boardY int, s core.State) {
	hintY := boardY + BoardHeight
	switch {
	case s.Phase == core.PhaseReady:
		g.centerOnBoard(dst, boardX, boardY+BoardHeight/2, "READY", platformcore.ColorBrightGreen)
		dst.DrawText(boardX, hintY, "Enter: start  Q: quit")
	case s.Phase == core.PhaseGameOver:
		g.centerOnBoard(dst, boardX, boardY+BoardHeight/2, "GAME OVER", platformcore.ColorBrightRed)
		dst.DrawText(boardX, hintY, "R: restart  U: undo  Q: quit")
	case g.paused:
		g.centerOnBoard(dst, boardX, boardY+BoardHeight/2, "PAUSED", platformcore.ColorYellow)
		dst.DrawText(boardX, hintY, "P: resume")
	default:
		dst.DrawText(boardX, hintY, "←→ move  z/x turn  spc drop")
	}
}

func (g *Game) centerOnBoard(dst *platformcore.Screen, boardX, y int, text string, c platformcore.Color) {
	x := boardX + (BoardWidth-len([]rune(text)))/2
	dst.DrawTextColored(x, y, text, c)
}

// renderTooSmall shows a "window too small" message.
func (g *Game) renderTooSmall(dst *platformcore.Screen) {
	y := g.screenH / 2
	dst.DrawTextCentered(y, "Window too small")
	dst.DrawTextCentered(y+1, fmt.Sprintf("Need %dx%d", minWidth, minHeight))
}
