// Package imaging provides the raster file handling around the partitioning engine.
//
// This package loads and caches source images, reports their metadata, writes
// rendered results in several formats, encodes results as base64 PNG for the
// MCP server, pre-smooths noisy inputs, and draws partition outlines. All
// operations work with standard Go image.Image types and use a coordinate system
// where (0,0) is at the top-left corner, X increases rightward, and Y increases downward.
//
// # Supported Formats
//
// Decoding goes through disintegration/imaging and the registered image
// decoders: PNG, JPEG, GIF, TIFF, BMP and QOI. Save picks the encoder from the
// output file extension.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The remaining functions are
// stateless and never modify their input images.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - File I/O errors during image loading
//   - Unsupported output extensions (ErrUnsupportedFormat)
//   - Encoding errors during image output
//
// # Performance Considerations
//
// For repeated operations on the same image, use ImageCache to avoid redundant
// disk reads. Large images may consume significant memory when cached.
// Consider using Evict() or Clear() to manage memory for long-running processes.
package imaging
