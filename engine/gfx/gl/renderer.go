package glbackend

import (
	"embed"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/hubastard/canopy/engine/assets"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
	"github.com/hubastard/canopy/engine/gfx/renderer2d"
	"github.com/hubastard/canopy/engine/scene"
)

//go:embed shaders/*.vert shaders/*.frag
var shaderFS embed.FS

// attribute locations, bound before linking
var attribs = []string{"aPos", "aColor", "aUV"}

const maxQuads = 10000

// Info describes the active GL context.
type Info struct {
	Vendor, Renderer, Version, GLSL string
}

// RendererGL implements core.Renderer with an OpenGL 3.2 core context that
// the window has already made current.
type RendererGL struct {
	program uint32
	vao     uint32
	vbo     uint32
	ebo     uint32
	tex     uint32
	uProj   int32
	uTex    int32

	atlasVersion uint64
	fbW, fbH     int
	batch        *renderer2d.Batch
	info         Info
}

var _ core.Renderer = (*RendererGL)(nil)

func NewRendererGL(win core.Window, cfg core.Config) (*RendererGL, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	r := &RendererGL{}
	if err := r.init(cfg); err != nil {
		r.Shutdown()
		return nil, err
	}
	r.Resize(win.FramebufferSize())
	return r, nil
}

func (r *RendererGL) init(cfg core.Config) error {
	vs, err := assets.LoadShader(shaderFS, "shaders/ui.vert")
	if err != nil {
		return err
	}
	fs, err := assets.LoadShader(shaderFS, "shaders/ui.frag")
	if err != nil {
		return err
	}
	r.program, err = makeProgram(vs, fs, attribs)
	if err != nil {
		return err
	}
	r.uProj = gl.GetUniformLocation(r.program, gl.Str("uProj\x00"))
	r.uTex = gl.GetUniformLocation(r.program, gl.Str("uTex\x00"))

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)

	// pos2 + color4 + uv2
	const stride = renderer2d.VertexStride * 4
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 4, gl.FLOAT, false, stride, 2*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
	gl.BindVertexArray(0)

	gl.GenTextures(1, &r.tex)
	gl.BindTexture(gl.TEXTURE_2D, r.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	if cfg.SRGB {
		gl.Enable(gl.FRAMEBUFFER_SRGB)
	}
	if cfg.Samples > 0 {
		gl.Enable(gl.MULTISAMPLE)
	}

	r.batch = renderer2d.NewBatch(r, maxQuads)
	r.info = Info{
		Vendor:   gl.GoStr(gl.GetString(gl.VENDOR)),
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
		GLSL:     gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
	}
	return glError("init")
}

// Info reports the driver strings of the current context.
func (r *RendererGL) Info() Info { return r.info }

// Stats returns the batch statistics of the last Paint.
func (r *RendererGL) Stats() renderer2d.Statistics { return r.batch.Stats() }

func (r *RendererGL) Resize(w, h int) {
	r.fbW, r.fbH = max(w, 1), max(h, 1)
	gl.Viewport(0, 0, int32(r.fbW), int32(r.fbH))
}

func (r *RendererGL) Clear(c colors.Color) {
	gl.Disable(gl.SCISSOR_TEST)
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (r *RendererGL) Paint(prims []core.Primitive, atlas *core.Atlas, pixelsPerPoint float32) error {
	if len(prims) == 0 {
		return nil
	}
	if atlas == nil {
		return fmt.Errorf("paint: no atlas")
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.tex)
	if atlas.Version != r.atlasVersion {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(atlas.Width), int32(atlas.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(atlas.Pix))
		r.atlasVersion = atlas.Version
	}

	gl.UseProgram(r.program)
	proj := scene.ScreenOrtho(r.fbW, r.fbH)
	gl.UniformMatrix4fv(r.uProj, 1, false, &proj[0])
	gl.Uniform1i(r.uTex, 0)
	gl.BindVertexArray(r.vao)

	r.batch.Begin(pixelsPerPoint, atlas.WhiteUV)
	for _, p := range prims {
		r.batch.Add(p)
	}
	err := r.batch.End()

	gl.BindVertexArray(0)
	gl.UseProgram(0)
	gl.Disable(gl.SCISSOR_TEST)
	if err != nil {
		return err
	}
	return glError("paint")
}

// DrawBatch uploads one batch and draws it with the clip as scissor rect.
func (r *RendererGL) DrawBatch(verts []float32, inds []uint32, clip core.Rect) error {
	if clip.Empty() {
		gl.Disable(gl.SCISSOR_TEST)
	} else {
		// GL scissor has a bottom-left origin
		gl.Enable(gl.SCISSOR_TEST)
		gl.Scissor(int32(clip.X), int32(float32(r.fbH)-clip.Y-clip.H), int32(clip.W+0.5), int32(clip.H+0.5))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STREAM_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(inds)*4, gl.Ptr(inds), gl.STREAM_DRAW)
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(len(inds)), gl.UNSIGNED_INT, 0)
	return nil
}

func (r *RendererGL) Shutdown() {
	if r.tex != 0 {
		gl.DeleteTextures(1, &r.tex)
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: gl error 0x%x", op, code)
	}
	return nil
}

// --- Shader utilities ---

func makeShader(src string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	defer free()
	gl.ShaderSource(sh, 1, csrc, nil)
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(log))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("shader compile error: %s", strings.TrimRight(log, "\x00"))
	}
	return sh, nil
}

func makeProgram(vsSrc, fsSrc string, attribs []string) (uint32, error) {
	vs, err := makeShader(vsSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := makeShader(fsSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}
	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	for i, name := range attribs {
		gl.BindAttribLocation(prog, uint32(i), gl.Str(name+"\x00"))
	}
	gl.BindFragDataLocation(prog, 0, gl.Str("FragColor\x00"))
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("program link error: %s", strings.TrimRight(log, "\x00"))
	}
	return prog, nil
}
