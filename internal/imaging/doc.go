// Package imaging provides the pixel-level operations behind the crop editor.
//
// It maps pointer rectangles from the display-scaled preview back to source
// pixels, crops, applies the editor's transforms (grayscale, clockwise
// rotation, brightness scaling, proportional resize), draws the selection
// outline, samples colors, finds rectangular regions worth cropping and
// reads and writes image files. All functions work on standard image.Image
// values and never modify their inputs.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For rectangles, (X1,Y1) is inclusive (top-left), (X2,Y2) is exclusive
//     (bottom-right) once normalized
//
// Two coordinate spaces appear: display space (the preview shown on the
// surface) and source space (the loaded image). ScaleFactors converts
// between them; ToSourceRect is the only place the conversion happens.
//
// # Pixel Formats
//
// Results are *image.NRGBA, except that luminance (*image.Gray) inputs stay
// luminance through Crop, Rotate90, Brightness and Resize.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Crop regions with no area or outside the image (ErrInvalidRegion)
//   - Factors outside [MinFactor, MaxFactor] (ErrFactorOutOfRange)
//   - File extensions with no known format (ErrUnsupportedFormat)
//   - Detection thresholds out of range (ErrInvalidDetection)
//   - File I/O and encoding errors
package imaging
