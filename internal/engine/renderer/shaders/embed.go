// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// MeshVertexShader transforms lit meshes and the ground.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader shades meshes with the sun, ambient light and shadows.
// Points and debug lines take the unlit path.
//
//go:embed mesh.frag
var MeshFragmentShader string

// DepthVertexShader renders meshes from the sun for the shadow map.
//
//go:embed depth.vert
var DepthVertexShader string

// DepthFragmentShader writes depth only.
//
//go:embed depth.frag
var DepthFragmentShader string
