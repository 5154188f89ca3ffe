package fow

import (
	"encoding/binary"
	"image"
)

const fixedOne = 1 << 16

// bilinearRatio is the 16.16 source step per destination pixel. Using
// srcExtent-1 keeps the right/bottom sample inside the source rectangle.
func bilinearRatio(srcExtent, dstExtent int) int64 {
	return int64(srcExtent-1) << 16 / int64(dstExtent)
}

// DrawBilinear scales the srcRect region of src, an alpha buffer with row
// length srcStride, into dstRect of dst using bilinear filtering. Every
// destination pixel becomes the fog colour at the filtered alpha.
func DrawBilinear(src []uint8, srcRect image.Rectangle, srcStride int, dst *image.RGBA, dstRect image.Rectangle, pal *fogPalette, workers int) {
	dw, dh := dstRect.Dx(), dstRect.Dy()
	if dw <= 0 || dh <= 0 || srcRect.Empty() {
		return
	}
	xRatio := bilinearRatio(srcRect.Dx(), dw)
	yRatio := bilinearRatio(srcRect.Dy(), dh)
	stride := int64(srcStride)

	forEachRowRange(dh, workers, func(lo, hi int) {
		y := int64(srcRect.Min.Y)<<16 + int64(lo)*yRatio
		for yDst := lo; yDst < hi; yDst++ {
			ySrc := y >> 16
			yDiff := y - ySrc<<16
			oneMinusY := fixedOne - yDiff
			rowIndex := ySrc * stride
			pix := dst.Pix[dst.PixOffset(dstRect.Min.X, dstRect.Min.Y+yDst):]

			x := int64(srcRect.Min.X) << 16
			for xDst := 0; xDst < dw; xDst++ {
				xSrc := x >> 16
				xDiff := x - xSrc<<16
				oneMinusX := fixedOne - xDiff
				i := rowIndex + xSrc

				a := int64(src[i])
				b := int64(src[i+1])
				c := int64(src[i+stride])
				d := int64(src[i+stride+1])

				alpha := (a*oneMinusX*oneMinusY +
					b*xDiff*oneMinusY +
					c*yDiff*oneMinusX +
					d*xDiff*yDiff) >> 32

				binary.LittleEndian.PutUint32(pix[xDst*4:], pal[alpha])
				x += xRatio
			}
			y += yRatio
		}
	})
}

// DrawSimple expands every texel of srcRect into a texelW x texelH block of
// dst starting at dstOrigin: each block row is filled once per texel row
// and then copied down.
func DrawSimple(src []uint8, srcRect image.Rectangle, srcStride int, dst *image.RGBA, dstOrigin image.Point, texelW, texelH int, pal *fogPalette, workers int) {
	sw := srcRect.Dx()
	if sw <= 0 || srcRect.Dy() <= 0 || texelW <= 0 || texelH <= 0 {
		return
	}
	rowBytes := sw * texelW * 4

	forEachRowRange(srcRect.Dy(), workers, func(lo, hi int) {
		for ySrc := lo; ySrc < hi; ySrc++ {
			srcIndex := (srcRect.Min.Y+ySrc)*srcStride + srcRect.Min.X
			trgIndex := dst.PixOffset(dstOrigin.X, dstOrigin.Y+ySrc*texelH)
			row := dst.Pix[trgIndex : trgIndex+rowBytes]

			for xSrc := 0; xSrc < sw; xSrc++ {
				px := pal[src[srcIndex+xSrc]]
				block := row[xSrc*texelW*4 : (xSrc+1)*texelW*4]
				for k := 0; k < len(block); k += 4 {
					binary.LittleEndian.PutUint32(block[k:], px)
				}
			}
			for texelRow := 1; texelRow < texelH; texelRow++ {
				off := trgIndex + texelRow*dst.Stride
				copy(dst.Pix[off:off+rowBytes], row)
			}
		}
	})
}
