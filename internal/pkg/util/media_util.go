package util

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// GetSafeContentType 根据文件头识别真实类型，并将读取位置复位
func GetSafeContentType(reader io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(reader)
	if err != nil {
		return "", err
	}
	if _, err = reader.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mtype.String(), nil
}

// ResizeImage 将宽度超过 maxWidth 的图片等比缩小并重新编码
// 返回值 resized 为 false 时调用方应直接使用原始数据
func ResizeImage(reader io.Reader, contentType string, maxWidth int) (data []byte, resized bool, err error) {
	format, ok := imageFormat(contentType)
	if !ok || maxWidth <= 0 {
		return nil, false, nil
	}

	img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		return nil, false, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() <= maxWidth {
		return nil, false, nil
	}

	dst := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err = imaging.Encode(&buf, dst, format, imaging.JPEGQuality(85)); err != nil {
		return nil, false, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), true, nil
}

func imageFormat(contentType string) (imaging.Format, bool) {
	switch contentType {
	case "image/jpeg":
		return imaging.JPEG, true
	case "image/png":
		return imaging.PNG, true
	case "image/gif":
		return imaging.GIF, true
	case "image/bmp":
		return imaging.BMP, true
	case "image/tiff":
		return imaging.TIFF, true
	default:
		return 0, false
	}
}
