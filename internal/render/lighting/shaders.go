package lighting

import _ "embed"

// blurTaps fixes the kernel length; the Kage program declares a matching
// uniform array.
const blurTaps = 7

// Kage sources for the per-pixel programs. GPU backends compile these;
// the software backend implements the same programs natively.
var (
	//go:embed shaders/blur1d.kage
	blurShaderSrc []byte

	//go:embed shaders/modulate.kage
	modulateShaderSrc []byte
)
