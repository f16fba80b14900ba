package common

// Capture file encodings
const (
	CaptureFormatPNG  = "png"
	CaptureFormatWebP = "webp"
)

// CaptureExtensions lists the file extensions the catalog recognises as captures
var CaptureExtensions = []string{"." + CaptureFormatPNG, "." + CaptureFormatWebP}
