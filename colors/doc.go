/*
Package colors converts OKLCH color samples into displayable values and
human-readable descriptions, and measures perceptual distance between them.

Conversion never fails from the caller's point of view: malformed samples
render as FallbackHex and are described as unknown. Nearest-name lookups
against an empty palette fall back to the uppercased hex string.
*/
package colors
