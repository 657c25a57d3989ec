package software

import (
	"fmt"

	"github.com/codeandkey/shadows/internal/render"
)

// kernelFunc computes one destination pixel at (x, y) from the pass sources.
type kernelFunc func(dst *Image, sources [2]*Image, params map[string][]float32, x, y int) ([4]float32, error)

// Program binds a built-in kernel by name. The software backend does not
// compile anything; program source is the GPU backends' concern.
type Program struct {
	name   string
	kernel kernelFunc
}

// Dispose is a no-op for software programs.
func (p *Program) Dispose() {}

// CompileProgram resolves a built-in program by name. src is ignored.
func (r *Renderer) CompileProgram(name string, src []byte) (render.Program, error) {
	switch name {
	case "blur1d":
		return &Program{name: name, kernel: kernelBlur1D}, nil
	case "modulate":
		return &Program{name: name, kernel: kernelModulate}, nil
	default:
		return nil, fmt.Errorf("software: unknown program %q", name)
	}
}

// RunPass runs the pass program over every pixel of the image. Kernel output
// is stored without clamping.
func (img *Image) RunPass(p *render.Pass) error {
	prog, ok := p.Program.(*Program)
	if !ok || prog.kernel == nil {
		return fmt.Errorf("software: pass has no software program")
	}

	var sources [2]*Image
	for i, s := range p.Sources {
		if s == nil {
			continue
		}
		si, ok := s.(*Image)
		if !ok {
			return fmt.Errorf("software: pass source %d is not a software image", i)
		}
		if si.w != img.w || si.h != img.h {
			return fmt.Errorf("software: pass source %d is %dx%d, want %dx%d", i, si.w, si.h, img.w, img.h)
		}
		sources[i] = si
	}

	// Kernels read sources and write only the destination, so running in
	// place over a source would violate the pass barrier. The pipeline
	// always uses distinct scratch targets; enforce it here.
	for i, s := range sources {
		if s == img {
			return fmt.Errorf("software: pass source %d aliases the destination", i)
		}
	}

	out := make([]float32, len(img.pix))
	for y := 0; y < img.h; y++ {
		for x := 0; x < img.w; x++ {
			c, err := prog.kernel(img, sources, p.Params, x, y)
			if err != nil {
				return err
			}
			i := (y*img.w + x) * 4
			out[i+0] = c[0]
			out[i+1] = c[1]
			out[i+2] = c[2]
			out[i+3] = c[3]
		}
	}
	copy(img.pix, out)
	return nil
}

// kernelBlur1D is a 1D convolution along the direction given by the Offset
// parameter (in pixels). Params: "Kernel" (odd-length weights), "Offset"
// ([2]float32). Samples outside the source are transparent; alpha is forced
// to 1 after the pass.
func kernelBlur1D(dst *Image, sources [2]*Image, params map[string][]float32, x, y int) ([4]float32, error) {
	src := sources[0]
	if src == nil {
		return [4]float32{}, fmt.Errorf("software: blur1d needs source 0")
	}
	kernel := params["Kernel"]
	offset := params["Offset"]
	if len(kernel) == 0 || len(kernel)%2 == 0 {
		return [4]float32{}, fmt.Errorf("software: blur1d kernel must have odd length, got %d", len(kernel))
	}
	if len(offset) != 2 {
		return [4]float32{}, fmt.Errorf("software: blur1d needs a 2-component Offset")
	}

	center := len(kernel) / 2
	var sum [3]float32
	for i, w := range kernel {
		step := float32(i - center)
		sx := x + int(offset[0]*step)
		sy := y + int(offset[1]*step)
		p := src.Pixel(sx, sy)
		sum[0] += p[0] * w
		sum[1] += p[1] * w
		sum[2] += p[2] * w
	}
	return [4]float32{sum[0], sum[1], sum[2], 1}, nil
}

// kernelModulate multiplies the two sources componentwise, scaled by the
// Scale parameter, with both inputs' alpha treated as 1. This is the final
// composite: out = illumination * Scale * world.
func kernelModulate(dst *Image, sources [2]*Image, params map[string][]float32, x, y int) ([4]float32, error) {
	if sources[0] == nil || sources[1] == nil {
		return [4]float32{}, fmt.Errorf("software: modulate needs two sources")
	}
	scale := float32(1)
	if s := params["Scale"]; len(s) > 0 {
		scale = s[0]
	}
	a := sources[0].Pixel(x, y)
	b := sources[1].Pixel(x, y)
	return [4]float32{
		a[0] * scale * b[0],
		a[1] * scale * b[1],
		a[2] * scale * b[2],
		1,
	}, nil
}
