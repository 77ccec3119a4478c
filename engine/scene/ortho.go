package scene

// ScreenOrtho returns a column-major projection that maps framebuffer
// pixels with a top-left origin (Y down) to clip space.
func ScreenOrtho(width, height int) [16]float32 {
	w, h := float32(width), float32(height)
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return ortho(0, w, h, 0, -1, 1)
}

// Apply transforms (x, y, 0, 1) by the column-major matrix m.
func Apply(m [16]float32, x, y float32) (float32, float32) {
	cx := m[0]*x + m[4]*y + m[12]
	cy := m[1]*x + m[5]*y + m[13]
	cw := m[3]*x + m[7]*y + m[15]
	if cw != 0 && cw != 1 {
		cx /= cw
		cy /= cw
	}
	return cx, cy
}

// ---- tiny mat helpers (column-major, GLSL-style) ----

func ortho(l, r, b, t, n, f float32) [16]float32 {
	rl := 1 / (r - l)
	tb := 1 / (t - b)
	fn := 1 / (f - n)
	return [16]float32{
		2 * rl, 0, 0, 0,
		0, 2 * tb, 0, 0,
		0, 0, -2 * fn, 0,
		-(r + l) * rl, -(t + b) * tb, -(f + n) * fn, 1,
	}
}
