// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package recompile

// SpecConstants is a bitmask of runtime-toggleable shader behaviors,
// resolved to literal specialization-constant values by the downstream
// compiler rather than baked into the emitted text.
type SpecConstants uint32

const (
	// SpecR11G11B10Normal selects packed-normal decode in place of a
	// plain float3 read.
	SpecR11G11B10Normal SpecConstants = 1 << 0
	// SpecAlphaTest enables an `if (color.a < ref) discard;` tail on
	// pixel shaders that export a color with alpha test active.
	SpecAlphaTest SpecConstants = 1 << 1
	// SpecBicubicGIFilter is exercised only by shaders compiled for the
	// Unleashed Recompiled title profile.
	SpecBicubicGIFilter SpecConstants = 1 << 2
	// SpecAlphaToCoverage is exercised only by the Unleashed Recompiled
	// profile.
	SpecAlphaToCoverage SpecConstants = 1 << 3
	// SpecReverseZ is reserved for reverse-Z depth. No emitted text
	// references it, so Compile never sets this bit.
	SpecReverseZ SpecConstants = 1 << 4
)

// Profile distinguishes the small set of title-specific extensions
// from the generic Xenos emitter behavior.
type Profile int

const (
	// ProfileGeneric emits no title-specific extensions.
	ProfileGeneric Profile = iota
	// ProfileUnleashedRecomp enables bicubic GI filtering for texture
	// fetches through fetch constant 10, the alpha-to-coverage branch of
	// the pixel-shader alpha-test tail, and the clip-plane distance in
	// the vertex-shader epilogue. It does not inspect constant names.
	ProfileUnleashedRecomp
)

// Options configures shader recompilation.
type Options struct {
	// EmitSpirvDialect additionally produces HLSLSpirv text using
	// [[vk::binding]] resource attributes in place of register().
	EmitSpirvDialect bool
	// Profile selects which title-specific extensions are emitted.
	Profile Profile
	// Include is a text blob prepended verbatim to every emitted
	// dialect's output, ahead of the generated declarations. It carries
	// the shared helper functions (texture-fetch wrappers and similar)
	// the caller maintains outside the recompiled program itself; the
	// recompiler treats it as opaque text.
	Include string
}

// DefaultOptions returns the options used by a plain two-target
// (DXIL + SPIR-V-via-HLSL) recompilation with no title extensions.
func DefaultOptions() *Options {
	return &Options{
		EmitSpirvDialect: true,
		Profile:          ProfileGeneric,
	}
}

// Result is the emitted shader text for every target dialect the
// caller requested, plus the specialization-constant mask the
// downstream compiler must bind at pipeline-creation time.
type Result struct {
	// HLSL is DXIL-targeted HLSL (register()-based resource binding).
	HLSL string
	// HLSLSpirv is the same program compiled for SPIR-V via DXC
	// ([[vk::binding]]-based resource binding). Nil unless requested.
	HLSLSpirv *string

	// SpecConstants is the mask of specialization constants this
	// program's emitted body and epilogue reference; the caller binds concrete
	// values for these at pipeline-creation time.
	SpecConstants SpecConstants
}
