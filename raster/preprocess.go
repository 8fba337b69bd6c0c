package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// preprocess applies the uniform OCR preparation chain: greyscale,
// conditional downscale, contrast boost, unsharp mask.
func (r *Rasterizer) preprocess(src image.Image) *image.Gray {
	grey := toGray(src)

	if r.cfg.MaxDimension > 0 {
		grey = downscale(grey, r.cfg.MaxDimension)
	}
	if r.cfg.Contrast != 0 && r.cfg.Contrast != 1 {
		grey = adjustContrast(grey, r.cfg.Contrast)
	}
	if r.cfg.SharpenAmount > 0 {
		grey = unsharpMask(grey, r.cfg.SharpenAmount, r.cfg.SharpenThreshold)
	}

	return grey
}

// toGray converts any image to 8-bit greyscale.
func toGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}

	bounds := src.Bounds()
	grey := image.NewGray(bounds)
	draw.Draw(grey, bounds, src, bounds.Min, draw.Src)
	return grey
}

// downscale shrinks the image so neither dimension exceeds maxDim,
// preserving aspect ratio. Images already within the ceiling are
// returned unchanged. Catmull-Rom resampling keeps glyph edges sharp
// enough for OCR.
func downscale(src *image.Gray, maxDim int) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}

	dst := image.NewGray(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}

// adjustContrast scales pixel values around mid-grey by the given
// factor.
func adjustContrast(src *image.Gray, factor float64) *image.Gray {
	var lut [256]uint8
	for i := range lut {
		lut[i] = clampByte(128 + factor*(float64(i)-128))
	}

	dst := image.NewGray(src.Bounds())
	for i, v := range src.Pix {
		dst.Pix[i] = lut[v]
	}
	return dst
}

// unsharpMask sharpens the image by adding back a scaled difference
// between the original and a 3x3 box blur. Differences at or below the
// threshold are ignored so flat scanner noise is not amplified.
func unsharpMask(src *image.Gray, amount float64, threshold int) *image.Gray {
	blurred := boxBlur3(src)

	dst := image.NewGray(src.Bounds())
	for i, v := range src.Pix {
		diff := int(v) - int(blurred.Pix[i])
		if diff > -threshold && diff < threshold {
			dst.Pix[i] = v
			continue
		}
		dst.Pix[i] = clampByte(float64(v) + amount*float64(diff))
	}
	return dst
}

// boxBlur3 applies a single-pass 3x3 box blur.
func boxBlur3(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(bounds)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum, count := 0, 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					sum += int(src.Pix[ny*src.Stride+nx])
					count++
				}
			}
			dst.Pix[y*dst.Stride+x] = uint8(sum / count)
		}
	}
	return dst
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
