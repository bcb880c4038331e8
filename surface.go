package eraconsole

import "image"

// Surface is the drawing target of Console.Draw. Coordinates are screen
// pixels with the origin at the top-left. DrawText positions the top-left
// corner of the line box; the surface owns the font used to rasterize it.
type Surface interface {
	FillRect(r Rect, c RGB)
	StrokeRect(r Rect, c RGB)
	DrawText(s string, x, y float64, c RGB)
	DrawImage(img *image.RGBA, x, y float64)
}
